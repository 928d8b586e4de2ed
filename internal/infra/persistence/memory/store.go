// Package memory provides the in-memory implementation of the catalog
// persistence store, used directly for tests and ephemeral environments and
// embedded by the durable sqlite and postgres backends.
package memory

import (
	"context"
	"fmt"
	"sync"

	"estatecore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the
// domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type catalogState struct {
	units map[string]domain.Unit
	order []string
}

func newCatalogState() catalogState {
	return catalogState{units: make(map[string]domain.Unit)}
}

func (s catalogState) clone() catalogState {
	cloned := newCatalogState()
	for id, unit := range s.units {
		cloned.units[id] = unit.Clone()
	}
	cloned.order = append([]string(nil), s.order...)
	return cloned
}

// Store is an in-memory transactional catalog of top-level unit trees keyed
// by id. Every transaction works on a deep clone of the committed state, and
// registered rules are evaluated against the post-state before commit.
type Store struct {
	mu     sync.RWMutex
	state  catalogState
	engine *domain.RulesEngine
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *domain.RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{state: newCatalogState(), engine: engine}
}

// RunInTransaction executes fn within a transactional copy of the store
// state. Blocking rule violations roll the transaction back with
// RuleViolationError.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		view := catalogView{state: &tx.state}
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(catalogView{state: &snapshot})
}

// GetUnit returns a clone of the top-level unit with the given id.
func (s *Store) GetUnit(id string) (domain.Unit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	unit, ok := s.state.units[id]
	if !ok {
		return nil, false
	}
	return unit.Clone(), true
}

// ListUnits returns clones of all top-level units in registration order.
func (s *Store) ListUnits() []domain.Unit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listClones(&s.state)
}

// FindByAddress searches every tree for a node with the given address and
// returns a clone of the first match, or nil.
func (s *Store) FindByAddress(target domain.Address) domain.Unit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findClone(&s.state, target)
}

// Snapshot captures a point-in-time encoding of the store state.
type Snapshot struct {
	Units []domain.UnitSnapshot `json:"units"`
}

// ExportState encodes the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := Snapshot{}
	for _, id := range s.state.order {
		snapshot.Units = append(snapshot.Units, domain.EncodeUnit(s.state.units[id]))
	}
	return snapshot
}

// ImportState replaces the store state with the provided snapshot. Nodes
// that fail to decode are reported; the import is all-or-nothing.
func (s *Store) ImportState(snapshot Snapshot) error {
	state := newCatalogState()
	for _, snap := range snapshot.Units {
		unit, err := domain.DecodeUnit(snap)
		if err != nil {
			return fmt.Errorf("decode unit %s: %w", snap.ID, err)
		}
		state.units[unit.ID()] = unit
		state.order = append(state.order, unit.ID())
	}
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return nil
}

// transaction mutates a cloned catalog state and records change entries for
// rule evaluation.
type transaction struct {
	state   catalogState
	changes []domain.Change
}

var _ domain.Transaction = (*transaction)(nil)

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() domain.TransactionView {
	return catalogView{state: &tx.state}
}

func (tx *transaction) recordChange(change domain.Change) {
	tx.changes = append(tx.changes, change)
}

// RegisterUnit stores a new top-level unit tree within the transaction.
func (tx *transaction) RegisterUnit(unit domain.Unit) (domain.Unit, error) {
	if unit == nil {
		return nil, fmt.Errorf("unit cannot be nil")
	}
	id := unit.ID()
	if id == "" {
		return nil, fmt.Errorf("unit id cannot be empty")
	}
	if _, exists := tx.state.units[id]; exists {
		return nil, fmt.Errorf("unit %q already exists", id)
	}
	stored := unit.Clone()
	tx.state.units[id] = stored
	tx.state.order = append(tx.state.order, id)
	tx.recordChange(domain.Change{Entity: domain.EntityUnit, Action: domain.ActionCreate, ID: id, After: flatSnapshot(stored)})
	return stored.Clone(), nil
}

// UpdateUnit mutates a top-level unit using the provided mutator. The
// mutator receives the transactional clone and may call any Unit mutation
// entry point on it.
func (tx *transaction) UpdateUnit(id string, mutator func(domain.Unit) error) (domain.Unit, error) {
	current, ok := tx.state.units[id]
	if !ok {
		return nil, fmt.Errorf("unit %q not found", id)
	}
	before := flatSnapshot(current)
	if err := mutator(current); err != nil {
		return nil, err
	}
	tx.recordChange(domain.Change{Entity: domain.EntityUnit, Action: domain.ActionUpdate, ID: id, Before: before, After: flatSnapshot(current)})
	return current.Clone(), nil
}

// RemoveUnit deletes a top-level unit from the transaction state.
func (tx *transaction) RemoveUnit(id string) error {
	current, ok := tx.state.units[id]
	if !ok {
		return fmt.Errorf("unit %q not found", id)
	}
	delete(tx.state.units, id)
	for i, existing := range tx.state.order {
		if existing == id {
			tx.state.order = append(tx.state.order[:i], tx.state.order[i+1:]...)
			break
		}
	}
	tx.recordChange(domain.Change{Entity: domain.EntityUnit, Action: domain.ActionDelete, ID: id, Before: flatSnapshot(current)})
	return nil
}

// ReplaceForest swaps the entire catalog content, as a flat-file import does.
func (tx *transaction) ReplaceForest(forest []domain.Unit) error {
	next := newCatalogState()
	for _, unit := range forest {
		if unit == nil {
			return fmt.Errorf("unit cannot be nil")
		}
		id := unit.ID()
		if _, exists := next.units[id]; exists {
			return fmt.Errorf("unit %q appears twice in forest", id)
		}
		next.units[id] = unit.Clone()
		next.order = append(next.order, id)
	}
	tx.state = next
	for _, id := range next.order {
		tx.recordChange(domain.Change{Entity: domain.EntityUnit, Action: domain.ActionReplace, ID: id, After: flatSnapshot(next.units[id])})
	}
	return nil
}

// FindUnit retrieves a top-level unit by id from the transactional state.
func (tx *transaction) FindUnit(id string) (domain.Unit, bool) {
	unit, ok := tx.state.units[id]
	if !ok {
		return nil, false
	}
	return unit.Clone(), true
}

// catalogView exposes a read-only clone-on-read view of a catalog state to
// rules and queries.
type catalogView struct {
	state *catalogState
}

var _ domain.TransactionView = catalogView{}

// ListUnits returns clones of all top-level units in registration order.
func (v catalogView) ListUnits() []domain.Unit {
	return listClones(v.state)
}

// FindUnit retrieves a top-level unit by id.
func (v catalogView) FindUnit(id string) (domain.Unit, bool) {
	unit, ok := v.state.units[id]
	if !ok {
		return nil, false
	}
	return unit.Clone(), true
}

// FindByAddress returns the first node matching target across all trees.
func (v catalogView) FindByAddress(target domain.Address) domain.Unit {
	return findClone(v.state, target)
}

func listClones(state *catalogState) []domain.Unit {
	out := make([]domain.Unit, 0, len(state.order))
	for _, id := range state.order {
		out = append(out, state.units[id].Clone())
	}
	return out
}

func findClone(state *catalogState, target domain.Address) domain.Unit {
	for _, id := range state.order {
		if found := state.units[id].FindByAddress(target); found != nil {
			return found.Clone()
		}
	}
	return nil
}

// flatSnapshot renders a unit as flat records for change payloads. Subtrees
// that cannot be aggregated yet (placeholders, empty groups) yield nil; the
// change entry still carries the unit id.
func flatSnapshot(unit domain.Unit) any {
	records, err := domain.Flatten(unit)
	if err != nil {
		return nil
	}
	return records
}
