package application

import (
	"sync"

	contractsv1 "daogov/contracts/gen/events/v1"
	"daogov/contexts/governance/dao-engine/domain/entities"
	"daogov/contexts/governance/dao-engine/domain/services"
)

// Backlog holds committed transitions that are not durable yet. Events move
// to Envelopes once they carry an event id, so a retried append reuses it.
type Backlog struct {
	Events    []entities.Event
	Envelopes []contractsv1.Envelope
	Snapshot  bool
}

func (b *Backlog) Empty() bool {
	return len(b.Events) == 0 && len(b.Envelopes) == 0 && !b.Snapshot
}

// EngineGuard is the single writer in front of an engine instance. Commands
// hold the write lock for the whole transition including persistence, so
// snapshots and outbox rows are written in commit order.
type EngineGuard struct {
	mu      sync.RWMutex
	engine  *services.Engine
	backlog Backlog
}

func NewEngineGuard(engine *services.Engine) *EngineGuard {
	return &EngineGuard{engine: engine}
}

func (g *EngineGuard) Apply(fn func(engine *services.Engine, backlog *Backlog) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.engine, &g.backlog)
}

func (g *EngineGuard) View(fn func(engine *services.Engine)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	fn(g.engine)
}

// Degraded reports whether committed state is still waiting to be persisted.
func (g *EngineGuard) Degraded() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return !g.backlog.Empty()
}
