package core

import (
	"context"
	"fmt"

	"estatecore/pkg/domain"
)

// NewDuplicateAddressRule returns the default in-transaction rule rejecting
// two top-level units registered at the same address.
func NewDuplicateAddressRule() domain.Rule {
	return duplicateAddressRule{}
}

type duplicateAddressRule struct{}

func (duplicateAddressRule) Name() string { return "duplicate_address" }

func (duplicateAddressRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	seen := make(map[string]string)
	for _, unit := range view.ListUnits() {
		key := unit.Address().Key()
		if firstID, ok := seen[key]; ok {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "duplicate_address",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("unit %s duplicates address %s of unit %s", unit.ID(), unit.Address(), firstID),
				Entity:   domain.EntityUnit,
				EntityID: unit.ID(),
			})
			continue
		}
		seen[key] = unit.ID()
	}
	return res, nil
}
