package core

import (
	"context"
	"fmt"

	"estatecore/pkg/domain"
)

// NewVacantGroupRule returns the default in-transaction rule flagging
// childless groups. Aggregate queries on them fail, so they are surfaced as
// a data-quality warning without blocking the commit.
func NewVacantGroupRule() domain.Rule {
	return vacantGroupRule{}
}

type vacantGroupRule struct{}

func (vacantGroupRule) Name() string { return "vacant_group" }

func (vacantGroupRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, unit := range view.ListUnits() {
		checkVacant(unit, &res)
	}
	return res, nil
}

func checkVacant(unit domain.Unit, res *domain.Result) {
	if unit.Kind() != domain.KindGroup {
		return
	}
	children := unit.Children()
	if len(children) == 0 {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "vacant_group",
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("group %s at %s has no units; aggregates are undefined", unit.ID(), unit.Address()),
			Entity:   domain.EntityUnit,
			EntityID: unit.ID(),
		})
		return
	}
	for _, child := range children {
		checkVacant(child, res)
	}
}
