package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skiff2d/skiff/internal/entity"
	"github.com/skiff2d/skiff/internal/geom"
)

type recordingSystem struct {
	Base
	name    string
	phase   Phase
	trace   *[]string
	accepts entity.Kind
	added   int
	removed int
	ok      bool
}

func (s *recordingSystem) Name() string { return s.name }
func (s *recordingSystem) Phase() Phase { return s.phase }

func (s *recordingSystem) Accepts(k entity.Kind) bool { return s.ok && k == s.accepts }

func (s *recordingSystem) OnComponentAdded(*entity.Component) { s.added++ }
func (s *recordingSystem) OnComponentRemoved(*entity.Component) { s.removed++ }

func (s *recordingSystem) Update(time.Duration) {
	*s.trace = append(*s.trace, s.name)
}

func TestTickPhaseOrdering(t *testing.T) {
	var trace []string
	r := NewRunner(nil)

	// Registered deliberately out of phase order.
	require.NoError(t, r.Register(&recordingSystem{name: "cleanup", phase: PhaseCleanup, trace: &trace}))
	require.NoError(t, r.Register(&recordingSystem{name: "late", phase: PhaseLate, trace: &trace}))
	require.NoError(t, r.Register(&recordingSystem{name: "early-a", phase: PhaseEarly, trace: &trace}))
	require.NoError(t, r.Register(&recordingSystem{name: "early-b", phase: PhaseEarly, trace: &trace}))

	r.Tick(time.Millisecond)
	assert.Equal(t, []string{"early-a", "early-b", "late", "cleanup"}, trace,
		"EARLY before LATE before CLEANUP; registration order within a phase")
}

func TestComponentHooksFilteredByAccepts(t *testing.T) {
	var trace []string
	r := NewRunner(nil)
	wants := &recordingSystem{name: "wants-sprites", phase: PhaseEarly, trace: &trace, accepts: entity.KindSprite, ok: true}
	ignores := &recordingSystem{name: "ignores-all", phase: PhaseEarly, trace: &trace}
	require.NoError(t, r.Register(wants))
	require.NoError(t, r.Register(ignores))

	c := entity.NewComponent(stubVariant{kind: entity.KindSprite})
	r.ComponentAdded(c)
	r.ComponentRemoved(c)

	assert.Equal(t, 1, wants.added)
	assert.Equal(t, 1, wants.removed)
	assert.Zero(t, ignores.added)
	assert.Zero(t, ignores.removed)
}

type stubVariant struct {
	kind entity.Kind
}

func (v stubVariant) Kind() entity.Kind { return v.kind }
func (v stubVariant) Copy() entity.Variant { return v }
func (v stubVariant) Destroy() {}
func (v stubVariant) OnAttach(*entity.Entity) {}
func (v stubVariant) Bounds() (geom.Bounds, bool) { return geom.Bounds{}, false }

func TestShutdownReverseOrder(t *testing.T) {
	var order []string
	r := NewRunner(nil)
	mk := func(name string) System {
		return &shutdownSystem{name: name, order: &order}
	}
	require.NoError(t, r.Register(mk("first")))
	require.NoError(t, r.Register(mk("second")))

	r.Shutdown()
	assert.Equal(t, []string{"second", "first"}, order)
}

type shutdownSystem struct {
	Base
	name  string
	order *[]string
}

func (s *shutdownSystem) Name() string { return s.name }
func (s *shutdownSystem) Phase() Phase { return PhaseEarly }
func (s *shutdownSystem) Update(time.Duration) {}
func (s *shutdownSystem) Shutdown() { *s.order = append(*s.order, s.name) }
