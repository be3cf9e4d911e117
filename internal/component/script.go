package component

import (
	"github.com/skiff2d/skiff/internal/entity"
	"github.com/skiff2d/skiff/internal/geom"
)

// Script callback names invoked by the behavior and collision systems.
const (
	FnUpdate         = "update"
	FnCollisionEnter = "on_collision_enter"
	FnCollisionStay  = "on_collision_stay"
	FnCollisionExit  = "on_collision_exit"
	FnCellEnter      = "on_cell_enter"
	FnCellExit       = "on_cell_exit"
)

// ScriptBehavior binds an entity to a named script table in the
// embedded Lua runtime. The behavior system invokes its update function
// each frame; the collision system invokes the enter/stay/exit
// callbacks. The per-instance self table lives on the wrapping
// Component's registry handle.
type ScriptBehavior struct {
	Script string
}

// NewScriptBehavior references the script table registered under name.
func NewScriptBehavior(name string) *ScriptBehavior {
	if name == "" {
		panic("component: NewScriptBehavior with empty script name")
	}
	return &ScriptBehavior{Script: name}
}

func (s *ScriptBehavior) Kind() entity.Kind { return entity.KindScript }
func (s *ScriptBehavior) OnAttach(*entity.Entity) {}
func (s *ScriptBehavior) Destroy() {}
func (s *ScriptBehavior) Copy() entity.Variant { return &ScriptBehavior{Script: s.Script} }
func (s *ScriptBehavior) Bounds() (geom.Bounds, bool) { return geom.Bounds{}, false }

// Listener subscribes an entity to a named engine event; dispatch calls
// the given function in the script table with the event payload.
type Listener struct {
	Event    string
	Script   string
	Function string
}

func NewListener(event, script, function string) *Listener {
	if event == "" || script == "" || function == "" {
		panic("component: NewListener with empty field")
	}
	return &Listener{Event: event, Script: script, Function: function}
}

func (l *Listener) Kind() entity.Kind { return entity.KindListener }
func (l *Listener) OnAttach(*entity.Entity) {}
func (l *Listener) Destroy() {}
func (l *Listener) Copy() entity.Variant { cp := *l; return &cp }
func (l *Listener) Bounds() (geom.Bounds, bool) { return geom.Bounds{}, false }
