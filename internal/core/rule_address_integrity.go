package core

import (
	"context"
	"fmt"

	"estatecore/pkg/domain"
)

// NewAddressIntegrityRule returns the default in-transaction rule enforcing
// that every group's address is a strict prefix of each direct child's
// address.
func NewAddressIntegrityRule() domain.Rule {
	return addressIntegrityRule{}
}

type addressIntegrityRule struct{}

func (addressIntegrityRule) Name() string { return "address_integrity" }

func (addressIntegrityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, unit := range view.ListUnits() {
		checkAddressIntegrity(unit, &res)
	}
	return res, nil
}

func checkAddressIntegrity(unit domain.Unit, res *domain.Result) {
	parent := unit.Address()
	for _, child := range unit.Children() {
		addr := child.Address()
		if addr.Depth() <= parent.Depth() || !isPrefix(parent, addr) {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "address_integrity",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("unit %s at %s is not addressed under parent %s", child.ID(), addr, parent),
				Entity:   domain.EntityUnit,
				EntityID: child.ID(),
			})
		}
		checkAddressIntegrity(child, res)
	}
}

func isPrefix(parent, child domain.Address) bool {
	parentPath := parent.Path()
	childPath := child.Path()
	if len(parentPath) >= len(childPath) {
		return false
	}
	for i, part := range parentPath {
		if childPath[i] != part {
			return false
		}
	}
	return true
}
