package domain

// Leaf is an indivisible parcel. Its area and price per area are
// authoritative inputs; the total price is derived.
type Leaf struct {
	id           string
	address      Address
	status       Status
	area         float64
	pricePerArea float64
	totalPrice   float64
}

var _ Unit = (*Leaf)(nil)

// NewLeaf constructs a leaf unit. The address must be set and area and price
// per area must be non-negative; zero is accepted as a deferred placeholder
// state that readers reject until a positive value is assigned.
func NewLeaf(id string, address Address, area, pricePerArea float64, status Status) (*Leaf, error) {
	if address.IsZero() {
		return nil, MalformedAddressError{Input: ""}
	}
	if area < 0 {
		return nil, InvalidAssignmentError{Field: "area", Value: area}
	}
	if pricePerArea < 0 {
		return nil, InvalidAssignmentError{Field: "price per area", Value: pricePerArea}
	}
	return &Leaf{
		id:           id,
		address:      address,
		status:       status,
		area:         area,
		pricePerArea: pricePerArea,
		totalPrice:   area * pricePerArea,
	}, nil
}

// ID returns the unit identifier.
func (l *Leaf) ID() string { return l.id }

// Kind returns KindLeaf.
func (l *Leaf) Kind() UnitKind { return KindLeaf }

// Address returns the unit address.
func (l *Leaf) Address() Address { return l.address }

// Status returns the market status.
func (l *Leaf) Status() Status { return l.status }

// PricePerArea returns the stored price per area unit.
func (l *Leaf) PricePerArea() float64 { return l.pricePerArea }

// Area returns the measured area. A zero placeholder fails with
// NonPositiveAreaError.
func (l *Leaf) Area() (float64, error) {
	if l.area == 0 {
		return 0, NonPositiveAreaError{ID: l.id}
	}
	return l.area, nil
}

// TotalPrice returns area times price per area. Either measurement still at
// its zero placeholder fails with NonPositiveMeasurementError.
func (l *Leaf) TotalPrice() (float64, error) {
	if l.area == 0 || l.pricePerArea == 0 {
		return 0, NonPositiveMeasurementError{ID: l.id}
	}
	return l.area * l.pricePerArea, nil
}

// Children returns an empty slice; a leaf owns no children.
func (l *Leaf) Children() []Unit { return []Unit{} }

// Add always fails: a leaf cannot contain children.
func (l *Leaf) Add(Unit) error { return UnsupportedForLeafError{Op: "add"} }

// Remove always fails: a leaf cannot contain children.
func (l *Leaf) Remove(Unit) error { return UnsupportedForLeafError{Op: "remove"} }

// SetStatus updates the market status.
func (l *Leaf) SetStatus(status Status) { l.status = status }

// SetArea assigns a new measured area, rejecting non-positive values, and
// refreshes the cached total price.
func (l *Leaf) SetArea(area float64) error {
	if area <= 0 {
		return InvalidAssignmentError{Field: "area", Value: area}
	}
	l.area = area
	l.totalPrice = l.area * l.pricePerArea
	return nil
}

// SetPricePerArea assigns a new price per area, rejecting non-positive
// values, and refreshes the cached total price.
func (l *Leaf) SetPricePerArea(price float64) error {
	if price <= 0 {
		return InvalidAssignmentError{Field: "price per area", Value: price}
	}
	l.pricePerArea = price
	l.totalPrice = l.area * l.pricePerArea
	return nil
}

// FindByAddress returns the leaf itself on a structural address match, nil
// otherwise.
func (l *Leaf) FindByAddress(target Address) Unit {
	if l.address.Equal(target) {
		return l
	}
	return nil
}

// Clone returns a copy of the leaf.
func (l *Leaf) Clone() Unit {
	cp := *l
	return &cp
}
