package system

import (
	"time"

	"github.com/skiff2d/skiff/internal/entity"
)

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseEarly   Phase = iota // 0: bounds refresh, animation, behaviors, collision
	PhaseLate                 // 1: draw-list submission
	PhaseCleanup              // 2: deferred structural removal
)

var phaseNames = [...]string{
	PhaseEarly:   "early",
	PhaseLate:    "late",
	PhaseCleanup: "cleanup",
}

func (p Phase) String() string {
	if int(p) >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// System is the interface every engine system implements. Lifecycle:
// Init once at registration time, Update once per frame in its declared
// phase, Shutdown once when the runner shuts down.
//
// Accepts declares which component kinds the system processes; the
// runner calls OnComponentAdded/OnComponentRemoved for matching kinds
// whenever a component is attached to or detached from any entity,
// letting each system keep its own dense tracking slice decoupled from
// the entity's component list.
type System interface {
	Name() string
	Phase() Phase

	Init() error
	Shutdown()

	Accepts(kind entity.Kind) bool
	OnComponentAdded(c *entity.Component)
	OnComponentRemoved(c *entity.Component)

	Update(dt time.Duration)
}

// Base provides no-op lifecycle and accept hooks for systems that track
// no components.
type Base struct{}

func (Base) Init() error { return nil }
func (Base) Shutdown() {}
func (Base) Accepts(entity.Kind) bool { return false }
func (Base) OnComponentAdded(*entity.Component) {}
func (Base) OnComponentRemoved(*entity.Component) {}
