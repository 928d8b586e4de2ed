package domain

// Group is a composite unit owning an ordered, duplicate-free collection of
// child units. Its area and price are never authoritative: every aggregate
// query recomputes from the children, and the cached fields exist only as a
// display convenience.
type Group struct {
	id           string
	address      Address
	status       Status
	pricePerArea float64
	area         float64
	totalPrice   float64
	children     []Unit
}

var _ Unit = (*Group)(nil)

// NewGroup constructs an empty group unit. A group with no children is valid
// to hold but invalid to query; aggregate reads fail with
// EmptyAggregateError until a child is attached.
func NewGroup(id string, address Address, status Status) (*Group, error) {
	if address.IsZero() {
		return nil, MalformedAddressError{Input: ""}
	}
	return &Group{id: id, address: address, status: status}, nil
}

// ID returns the unit identifier.
func (g *Group) ID() string { return g.id }

// Kind returns KindGroup.
func (g *Group) Kind() UnitKind { return KindGroup }

// Address returns the unit address.
func (g *Group) Address() Address { return g.address }

// Status returns the market status.
func (g *Group) Status() Status { return g.status }

// PricePerArea returns the last propagated price per area.
func (g *Group) PricePerArea() float64 { return g.pricePerArea }

// Area sums the areas of all children, recursing through nested groups.
// A childless group fails with EmptyAggregateError, and a failure anywhere
// in the subtree aborts the whole query; a partial or silent-zero sum would
// misreport the aggregate.
func (g *Group) Area() (float64, error) {
	if len(g.children) == 0 {
		return 0, EmptyAggregateError{ID: g.id, Address: g.address}
	}
	var total float64
	for _, child := range g.children {
		area, err := child.Area()
		if err != nil {
			return 0, err
		}
		total += area
	}
	g.area = total
	return total, nil
}

// TotalPrice sums the total prices of all children with the same empty-check
// and propagation discipline as Area.
func (g *Group) TotalPrice() (float64, error) {
	if len(g.children) == 0 {
		return 0, EmptyAggregateError{ID: g.id, Address: g.address}
	}
	var total float64
	for _, child := range g.children {
		price, err := child.TotalPrice()
		if err != nil {
			return 0, err
		}
		total += price
	}
	g.totalPrice = total
	return total, nil
}

// Children returns a defensive copy of the direct children in insertion
// order.
func (g *Group) Children() []Unit {
	out := make([]Unit, len(g.children))
	copy(out, g.children)
	return out
}

// Add appends a direct child, preserving insertion order. Nil children and
// units already present as direct children are rejected.
func (g *Group) Add(child Unit) error {
	if child == nil {
		return NullChildError{}
	}
	for _, existing := range g.children {
		if existing == child {
			return DuplicateChildError{ID: child.ID()}
		}
	}
	g.children = append(g.children, child)
	return nil
}

// Remove detaches the first matching direct child. Removing a unit that is
// not a direct child fails with ChildNotFoundError.
func (g *Group) Remove(child Unit) error {
	if child == nil {
		return ChildNotFoundError{}
	}
	for i, existing := range g.children {
		if existing == child {
			g.children = append(g.children[:i], g.children[i+1:]...)
			return nil
		}
	}
	return ChildNotFoundError{ID: child.ID()}
}

// SetStatus sets the group status and propagates it to every descendant.
// Per-leaf statuses are not independent once inside a group; the propagated
// status wins.
func (g *Group) SetStatus(status Status) {
	g.status = status
	for _, child := range g.children {
		child.SetStatus(status)
	}
}

// SetArea always fails: a group's area is derived from its children.
func (g *Group) SetArea(float64) error {
	return UnsupportedForGroupError{Op: "set area"}
}

// SetPricePerArea rejects non-positive values, propagates the price to every
// descendant, then eagerly recomputes the cached aggregate price.
func (g *Group) SetPricePerArea(price float64) error {
	if price <= 0 {
		return InvalidAssignmentError{Field: "price per area", Value: price}
	}
	g.pricePerArea = price
	for _, child := range g.children {
		if err := child.SetPricePerArea(price); err != nil {
			return err
		}
	}
	if _, err := g.TotalPrice(); err != nil {
		return err
	}
	return nil
}

// FindByAddress returns the group itself on a structural match, otherwise
// depth-first searches children in insertion order and returns the first
// match, or nil.
func (g *Group) FindByAddress(target Address) Unit {
	if g.address.Equal(target) {
		return g
	}
	for _, child := range g.children {
		if found := child.FindByAddress(target); found != nil {
			return found
		}
	}
	return nil
}

// Clone returns a deep copy of the subtree rooted at this group.
func (g *Group) Clone() Unit {
	cp := &Group{
		id:           g.id,
		address:      g.address,
		status:       g.status,
		pricePerArea: g.pricePerArea,
		area:         g.area,
		totalPrice:   g.totalPrice,
	}
	if len(g.children) > 0 {
		cp.children = make([]Unit, len(g.children))
		for i, child := range g.children {
			cp.children[i] = child.Clone()
		}
	}
	return cp
}
