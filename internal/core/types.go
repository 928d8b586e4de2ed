package core

import "estatecore/pkg/domain"

type (
	EntityType         = domain.EntityType
	Status             = domain.Status
	UnitKind           = domain.UnitKind
	Address            = domain.Address
	Unit               = domain.Unit
	Leaf               = domain.Leaf
	Group              = domain.Group
	RawRecord          = domain.RawRecord
	RecordError        = domain.RecordError
	Severity           = domain.Severity
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	Rule               = domain.Rule
	RuleView           = domain.RuleView
	RulesEngine        = domain.RulesEngine
	RuleViolationError = domain.RuleViolationError
)

const (
	EntityUnit = domain.EntityUnit

	StatusForSale = domain.StatusForSale
	StatusSold    = domain.StatusSold

	KindLeaf  = domain.KindLeaf
	KindGroup = domain.KindGroup
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate  = domain.ActionCreate
	ActionUpdate  = domain.ActionUpdate
	ActionDelete  = domain.ActionDelete
	ActionReplace = domain.ActionReplace
)

// NewRulesEngine constructs an empty rules engine.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}
