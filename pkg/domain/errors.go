package domain

import "fmt"

// MalformedAddressError reports an address string that could not be parsed:
// empty after trimming, or containing a token that is not a non-negative
// integer.
type MalformedAddressError struct {
	Input string
}

func (e MalformedAddressError) Error() string {
	return fmt.Sprintf("malformed address %q", e.Input)
}

// NoParentError is returned when the parent of a top-level (depth <= 2)
// address is requested.
type NoParentError struct {
	Address Address
}

func (e NoParentError) Error() string {
	return fmt.Sprintf("address %s has no parent", e.Address)
}

// NonPositiveAreaError is returned when a leaf is queried for its area while
// the stored area is zero. A leaf may be constructed with area zero as a
// placeholder, but it cannot be read in that state.
type NonPositiveAreaError struct {
	ID string
}

func (e NonPositiveAreaError) Error() string {
	return fmt.Sprintf("unit %s: area must be positive", e.ID)
}

// NonPositiveMeasurementError is returned when a leaf's total price is
// queried while either the area or the price per area is zero.
type NonPositiveMeasurementError struct {
	ID string
}

func (e NonPositiveMeasurementError) Error() string {
	return fmt.Sprintf("unit %s: area and price per area must be positive", e.ID)
}

// EmptyAggregateError is returned when an aggregate query is issued against a
// group with no children. It is distinct from NonPositiveAreaError so callers
// can tell "nothing to sum" from "a measured area of zero".
type EmptyAggregateError struct {
	ID      string
	Address Address
}

func (e EmptyAggregateError) Error() string {
	return fmt.Sprintf("group %s at %s has no children to aggregate", e.ID, e.Address)
}

// InvalidAssignmentError is returned by setters that require strictly
// positive values.
type InvalidAssignmentError struct {
	Field string
	Value float64
}

func (e InvalidAssignmentError) Error() string {
	return fmt.Sprintf("%s must be positive, got %v", e.Field, e.Value)
}

// UnsupportedForLeafError is returned when a composite-only operation is
// invoked on a leaf unit.
type UnsupportedForLeafError struct {
	Op string
}

func (e UnsupportedForLeafError) Error() string {
	return fmt.Sprintf("%s is not supported on a leaf unit", e.Op)
}

// UnsupportedForGroupError is returned when a leaf-only operation is invoked
// on a group unit. Group area is derived from children and never directly
// settable.
type UnsupportedForGroupError struct {
	Op string
}

func (e UnsupportedForGroupError) Error() string {
	return fmt.Sprintf("%s is not supported on a group unit", e.Op)
}

// NullChildError is returned when a nil unit is added to a group.
type NullChildError struct{}

func (NullChildError) Error() string {
	return "cannot add nil unit to a group"
}

// DuplicateChildError is returned when a unit already present as a direct
// child is added to the same group again.
type DuplicateChildError struct {
	ID string
}

func (e DuplicateChildError) Error() string {
	return fmt.Sprintf("unit %s is already a child of this group", e.ID)
}

// ChildNotFoundError is returned when removing a unit that is not a direct
// child of the group.
type ChildNotFoundError struct {
	ID string
}

func (e ChildNotFoundError) Error() string {
	return fmt.Sprintf("unit %s is not a child of this group", e.ID)
}
