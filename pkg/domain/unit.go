package domain

// Status is the market status of a unit.
type Status string

// Market statuses carried by every unit and propagated downward by groups.
const (
	StatusForSale Status = "FOR_SALE"
	StatusSold    Status = "SOLD"
)

// ParseStatus maps the storage form of a status onto its enum value.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusForSale, StatusSold:
		return Status(s), true
	default:
		return "", false
	}
}

// UnitKind discriminates the two unit variants.
type UnitKind string

const (
	// KindLeaf is an indivisible parcel with authoritative area and price.
	KindLeaf UnitKind = "leaf"
	// KindGroup is a composite whose area and price are derived from its
	// children.
	KindGroup UnitKind = "group"
)

// Unit is the shared contract of leaf and group units. All traversal and
// reporting layers operate exclusively through this interface; only the
// hierarchy builder and the editing facade construct or rewire concrete
// variants.
//
// Area and TotalPrice may fail on every call: a leaf holding a zero
// placeholder measurement or a childless group is a data-quality condition,
// not a crash, and failures from any descendant propagate to the aggregate
// rather than being treated as zero.
type Unit interface {
	ID() string
	Kind() UnitKind
	Address() Address
	Status() Status
	PricePerArea() float64

	Area() (float64, error)
	TotalPrice() (float64, error)

	// Children returns a defensive copy of the direct children, empty for a
	// leaf. Mutating the returned slice never affects the tree.
	Children() []Unit

	Add(child Unit) error
	Remove(child Unit) error

	SetStatus(status Status)
	SetArea(area float64) error
	SetPricePerArea(price float64) error

	// FindByAddress returns the unit in this subtree whose address is
	// structurally equal to target, or nil when no such unit exists. Absence
	// is a normal outcome, not an error.
	FindByAddress(target Address) Unit

	// Clone returns a deep copy of the subtree. The transactional store
	// clones units so that no caller can reach committed state through a
	// retained reference.
	Clone() Unit
}
