package core

import "estatecore/internal/infra/persistence/memory"

// NewMemoryStore constructs an in-memory persistent store. State is lost when
// the process exits; intended for tests and ephemeral runs.
func NewMemoryStore(engine *RulesEngine) *memory.Store {
	return memory.NewStore(engine)
}
