package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/skiff2d/skiff/internal/entity"
)

// Runner executes systems each frame: every EARLY system in registration
// order, then every LATE system, then every CLEANUP system. The phase
// ordering and the registration order within a phase are hard
// guarantees — EARLY results must be visible to LATE systems, and
// CLEANUP runs only after all per-frame mutation is done.
type Runner struct {
	systems []System
	log     *zap.Logger
}

func NewRunner(log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		systems: make([]System, 0, 16),
		log:     log,
	}
}

// Register appends a system and runs its Init.
func (r *Runner) Register(s System) error {
	if s == nil {
		panic("system: Register with nil system")
	}
	if err := s.Init(); err != nil {
		return err
	}
	r.systems = append(r.systems, s)
	r.log.Debug("system registered",
		zap.String("system", s.Name()),
		zap.Stringer("phase", s.Phase()))
	return nil
}

// Tick runs one frame: EARLY, then LATE, then CLEANUP.
func (r *Runner) Tick(dt time.Duration) {
	r.TickPhase(PhaseEarly, dt)
	r.TickPhase(PhaseLate, dt)
	r.TickPhase(PhaseCleanup, dt)
}

// TickPhase runs only the systems declaring the given phase, in
// registration order.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

// ComponentAdded fans the attach event out to every system accepting the
// component's kind.
func (r *Runner) ComponentAdded(c *entity.Component) {
	if c == nil {
		panic("system: ComponentAdded with nil component")
	}
	for _, s := range r.systems {
		if s.Accepts(c.Kind()) {
			s.OnComponentAdded(c)
		}
	}
}

// ComponentRemoved fans the detach event out likewise.
func (r *Runner) ComponentRemoved(c *entity.Component) {
	if c == nil {
		panic("system: ComponentRemoved with nil component")
	}
	for _, s := range r.systems {
		if s.Accepts(c.Kind()) {
			s.OnComponentRemoved(c)
		}
	}
}

// Shutdown stops every system in reverse registration order.
func (r *Runner) Shutdown() {
	for i := len(r.systems) - 1; i >= 0; i-- {
		r.systems[i].Shutdown()
	}
	r.systems = r.systems[:0]
}
