package domain

import "context"

// Transaction exposes the catalog operations that a persistence
// implementation must support within an atomic scope. Units passed in are
// cloned on write; units handed out are clones of transactional state.
type Transaction interface {
	Snapshot() TransactionView
	RegisterUnit(unit Unit) (Unit, error)
	UpdateUnit(id string, mutator func(Unit) error) (Unit, error)
	RemoveUnit(id string) error
	// ReplaceForest swaps the entire catalog content, as a flat-file import
	// does.
	ReplaceForest(forest []Unit) error
	FindUnit(id string) (Unit, bool)
}

// TransactionView provides read-only access to snapshot data for rules and
// queries.
type TransactionView interface {
	RuleView
}

// PersistentStore is a minimal abstraction over durable catalog backends. It
// mirrors the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetUnit(id string) (Unit, bool)
	ListUnits() []Unit
	FindByAddress(target Address) Unit
}
