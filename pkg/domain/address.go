// Package domain defines the core entities, value types, and rule evaluation
// primitives of the estatecore property catalog: variable-depth addresses,
// the leaf/group unit contract, the hierarchy builder that reconstructs a
// unit forest from flat records, and its flattening inverse.
package domain

import (
	"strconv"
	"strings"
)

// mainDepth is the component count of a top-level (street, avenue) address.
// Anything deeper locates a unit nested inside its depth-2 parent.
const mainDepth = 2

// Address is an immutable ordered path of non-negative integers locating a
// unit at arbitrary nesting depth. The first two components identify the
// street and avenue; each further component narrows one nesting level.
type Address struct {
	parts []int
}

// NewAddress constructs an address from explicit path components.
// At least one component is required and all components must be non-negative.
func NewAddress(parts ...int) (Address, error) {
	if len(parts) == 0 {
		return Address{}, MalformedAddressError{Input: ""}
	}
	for _, p := range parts {
		if p < 0 {
			return Address{}, MalformedAddressError{Input: joinParts(parts, " ")}
		}
	}
	cp := make([]int, len(parts))
	copy(cp, parts)
	return Address{parts: cp}, nil
}

// ParseAddress builds an address from a whitespace-delimited component string
// such as "5 1 2". Empty input or a non-integer token fails with
// MalformedAddressError.
func ParseAddress(s string) (Address, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Address{}, MalformedAddressError{Input: s}
	}
	parts := make([]int, 0, len(fields))
	for _, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil || n < 0 {
			return Address{}, MalformedAddressError{Input: s}
		}
		parts = append(parts, n)
	}
	return Address{parts: parts}, nil
}

// IsZero reports whether the address is the uninitialized zero value.
func (a Address) IsZero() bool { return len(a.parts) == 0 }

// Depth returns the number of path components.
func (a Address) Depth() int { return len(a.parts) }

// Path returns a copy of the path components. Callers never observe the
// internal storage.
func (a Address) Path() []int {
	cp := make([]int, len(a.parts))
	copy(cp, a.parts)
	return cp
}

// IsSubAddress reports whether the address locates a unit nested below a
// top-level address (depth greater than two).
func (a Address) IsSubAddress() bool { return len(a.parts) > mainDepth }

// MainAddress returns the first two components of the address. Addresses at
// depth two or less are returned unchanged.
func (a Address) MainAddress() Address {
	if len(a.parts) <= mainDepth {
		return a
	}
	return Address{parts: a.parts[:mainDepth:mainDepth]}
}

// ParentAddress removes the last path component. Requesting the parent of a
// top-level address fails with NoParentError.
func (a Address) ParentAddress() (Address, error) {
	if len(a.parts) <= mainDepth {
		return Address{}, NoParentError{Address: a}
	}
	n := len(a.parts) - 1
	cp := make([]int, n)
	copy(cp, a.parts[:n])
	return Address{parts: cp}, nil
}

// Equal reports structural equality: two addresses are equal iff their
// component sequences match element-wise.
func (a Address) Equal(other Address) bool {
	if len(a.parts) != len(other.parts) {
		return false
	}
	for i, p := range a.parts {
		if p != other.parts[i] {
			return false
		}
	}
	return true
}

// String renders the human form, e.g. "(5,6,7)".
func (a Address) String() string {
	return "(" + joinParts(a.parts, ",") + ")"
}

// FileString renders the storage form used by the flat record format,
// components separated by single spaces, e.g. "5 6 7".
func (a Address) FileString() string {
	return joinParts(a.parts, " ")
}

// Key returns the canonical map key for the address. It is the storage form;
// structural equality of addresses and string equality of keys coincide.
func (a Address) Key() string { return a.FileString() }

func joinParts(parts []int, sep string) string {
	var sb strings.Builder
	for i, p := range parts {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(strconv.Itoa(p))
	}
	return sb.String()
}
