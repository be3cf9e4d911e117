package system

import (
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/skiff2d/skiff/internal/component"
	coresys "github.com/skiff2d/skiff/internal/core/system"
	"github.com/skiff2d/skiff/internal/entity"
	"github.com/skiff2d/skiff/internal/scripting"
)

// BehaviorSystem drives ScriptBehavior components: it binds a per
// instance self table when a behavior is attached and invokes its
// update function every EARLY frame.
type BehaviorSystem struct {
	coresys.Base
	scripts *scripting.Engine
	log     *zap.Logger

	behaviors []*entity.Component
}

func NewBehaviorSystem(scripts *scripting.Engine, log *zap.Logger) *BehaviorSystem {
	if scripts == nil {
		panic("system: NewBehaviorSystem with nil scripting engine")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BehaviorSystem{scripts: scripts, log: log}
}

func (s *BehaviorSystem) Name() string { return "behavior" }
func (s *BehaviorSystem) Phase() coresys.Phase { return coresys.PhaseEarly }

func (s *BehaviorSystem) Accepts(k entity.Kind) bool { return k == entity.KindScript }

func (s *BehaviorSystem) OnComponentAdded(c *entity.Component) {
	if c.Handle() == 0 {
		sb := c.Data.(*component.ScriptBehavior)
		h, err := s.scripts.BindBehavior(sb.Script)
		if err != nil {
			s.log.Warn("behavior bind failed",
				zap.String("script", sb.Script),
				zap.Error(err))
			return
		}
		c.BindScript(s.scripts, h)
	}
	s.behaviors = append(s.behaviors, c)
}

func (s *BehaviorSystem) OnComponentRemoved(c *entity.Component) {
	for i, got := range s.behaviors {
		if got == c {
			last := len(s.behaviors) - 1
			s.behaviors[i] = s.behaviors[last]
			s.behaviors[last] = nil
			s.behaviors = s.behaviors[:last]
			return
		}
	}
}

func (s *BehaviorSystem) Update(dt time.Duration) {
	secs := lua.LNumber(dt.Seconds())
	for _, c := range s.behaviors {
		e := c.Owner
		if e == nil || e.Destroyed || !e.Active || !c.Active || c.Handle() == 0 {
			continue
		}
		// Errors are logged by the engine; one failing script must not
		// stall the rest of the frame.
		_, _ = s.scripts.Invoke(c.Handle(), component.FnUpdate, lua.LNumber(e.ID), secs)
	}
}
