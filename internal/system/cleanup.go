package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/skiff2d/skiff/internal/core/event"
	coresys "github.com/skiff2d/skiff/internal/core/system"
	"github.com/skiff2d/skiff/internal/entity"
)

// removal is one queued component detach request.
type removal struct {
	owner *entity.Entity
	comp  *entity.Component
}

// CleanupSystem defers structural removal to the CLEANUP phase. Systems
// that want a component gone call QueueRemove instead of mutating the
// entity mid-frame; the FIFO queue is drained only after all EARLY and
// LATE updates, so no iterator held by another system is invalidated.
//
// Entity destruction is deferred the same way via QueueDestroy.
type CleanupSystem struct {
	coresys.Base
	runner *coresys.Runner
	bus    *event.Bus
	log    *zap.Logger

	removals []removal
	destroys []*entity.Entity

	// onDestroy lets the engine drop its table entry before the native
	// reference is released.
	onDestroy func(*entity.Entity)
}

// SetOnDestroy installs the engine's pre-release hook.
func (s *CleanupSystem) SetOnDestroy(fn func(*entity.Entity)) { s.onDestroy = fn }

func NewCleanupSystem(runner *coresys.Runner, bus *event.Bus, log *zap.Logger) *CleanupSystem {
	if runner == nil {
		panic("system: NewCleanupSystem with nil runner")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CleanupSystem{runner: runner, bus: bus, log: log}
}

func (s *CleanupSystem) Name() string { return "cleanup" }
func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

// QueueRemove enqueues (owner, comp) for end-of-frame detach. Requests
// against already-destroyed entities are dropped immediately; duplicate
// requests are tolerated and collapse to a single removal at drain time.
func (s *CleanupSystem) QueueRemove(owner *entity.Entity, comp *entity.Component) {
	if owner == nil || comp == nil {
		panic("system: QueueRemove with nil argument")
	}
	if owner.Destroyed {
		return
	}
	s.removals = append(s.removals, removal{owner: owner, comp: comp})
}

// QueueDestroy enqueues an entity for end-of-frame destruction.
func (s *CleanupSystem) QueueDestroy(e *entity.Entity) {
	if e == nil {
		panic("system: QueueDestroy with nil entity")
	}
	if e.Destroyed {
		return
	}
	s.destroys = append(s.destroys, e)
}

// Update drains the queues. Removal locates the component by reference,
// not id: a duplicate request finds nothing on its second pass and is
// discarded, so the component is detached and released exactly once.
func (s *CleanupSystem) Update(_ time.Duration) {
	for _, r := range s.removals {
		if r.owner.Destroyed {
			continue
		}
		if !r.owner.RemoveComponentRef(r.comp) {
			continue // already removed (duplicate request) or never attached
		}
		s.runner.ComponentRemoved(r.comp)
		ownerID := r.owner.ID
		compID := r.comp.ID
		r.comp.ReleaseScript()
		r.comp.Release()
		if s.bus != nil {
			event.Emit(s.bus, event.ComponentRemoved{EntityID: ownerID, ComponentID: compID})
		}
	}
	s.removals = s.removals[:0]

	seen := make(map[uint64]struct{}, len(s.destroys))
	for _, e := range s.destroys {
		if e.Destroyed {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		for _, c := range e.Components {
			s.runner.ComponentRemoved(c)
		}
		if s.onDestroy != nil {
			s.onDestroy(e)
		}
		id := e.ID
		e.ReleaseScript()
		e.Release()
		if s.bus != nil {
			event.Emit(s.bus, event.EntityDestroyed{EntityID: id})
		}
		s.log.Debug("entity destroyed", zap.Uint64("entity", id))
	}
	s.destroys = s.destroys[:0]
}
