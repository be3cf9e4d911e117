package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/skiff2d/skiff/internal/component"
	"github.com/skiff2d/skiff/internal/config"
	"github.com/skiff2d/skiff/internal/entity"
	"github.com/skiff2d/skiff/internal/geom"
)

const frame = 16 * time.Millisecond

func newTestEngine(t *testing.T, script string) *Engine {
	t.Helper()
	dir := t.TempDir()
	if script != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "main.lua"), []byte(script), 0o644))
	}
	cfg := config.Defaults()
	cfg.Scripting.Dir = dir
	cfg.Collision.AutoTuneEvery = 0
	eng, err := New(cfg, nil, nil, nil, nil)
	require.NoError(t, err)
	t.Cleanup(eng.Shutdown)
	return eng
}

func (e *Engine) luaNumber(t *testing.T, table, field string) float64 {
	t.Helper()
	vm := e.Scripts().VM()
	tbl, ok := vm.GetGlobal(table).(*lua.LTable)
	require.True(t, ok, "global table %q", table)
	n, ok := vm.GetField(tbl, field).(lua.LNumber)
	require.True(t, ok, "%s.%s is a number", table, field)
	return float64(n)
}

func spawnBox(t *testing.T, eng *Engine, x, y float64, script string) *entity.Entity {
	t.Helper()
	en := eng.CreateEntity()
	en.SetPos(x, y)
	col := component.NewCollider()
	col.AddRect(geom.NewRect(0, 0, 10, 10))
	eng.AttachComponent(en, entity.NewComponent(col))
	if script != "" {
		eng.AttachComponent(en, entity.NewComponent(component.NewScriptBehavior(script)))
	}
	return en
}

func TestCollisionCallbackLifecycle(t *testing.T) {
	eng := newTestEngine(t, `
		tally = { enter = 0, stay = 0, exit = 0, last_other = 0 }
		pawn = {}
		function pawn:on_collision_enter(other)
			tally.enter = tally.enter + 1
			tally.last_other = other
		end
		function pawn:on_collision_stay(other)
			tally.stay = tally.stay + 1
		end
		function pawn:on_collision_exit(other)
			tally.exit = tally.exit + 1
		end
	`)

	spawnBox(t, eng, 0, 0, "pawn")
	b := spawnBox(t, eng, 5, 5, "pawn")

	// Overlap starts: enter fires on both sides of the pair.
	eng.Tick(frame)
	assert.Equal(t, 2.0, eng.luaNumber(t, "tally", "enter"))
	assert.Equal(t, 0.0, eng.luaNumber(t, "tally", "stay"))

	// Still overlapping: stay.
	eng.Tick(frame)
	assert.Equal(t, 2.0, eng.luaNumber(t, "tally", "enter"))
	assert.Equal(t, 2.0, eng.luaNumber(t, "tally", "stay"))

	// Separate: exit fires once per side, then the pair goes quiet.
	b.SetPos(100, 100)
	eng.Tick(frame)
	assert.Equal(t, 2.0, eng.luaNumber(t, "tally", "exit"))
	eng.Tick(frame)
	assert.Equal(t, 2.0, eng.luaNumber(t, "tally", "exit"))
}

func TestBehaviorUpdateDrivesMovement(t *testing.T) {
	eng := newTestEngine(t, `
		walker = {}
		function walker:update(id, dt)
			local x, y = skiff.get_pos(id)
			skiff.set_pos(id, x + 10, y)
		end
	`)

	en := eng.CreateEntity()
	en.SetPos(0, 0)
	eng.AttachComponent(en, entity.NewComponent(component.NewScriptBehavior("walker")))

	eng.Tick(frame)
	eng.Tick(frame)
	assert.Equal(t, 20.0, en.Pos.X)
}

func TestDestroyFromScriptIsDeferred(t *testing.T) {
	eng := newTestEngine(t, `
		reaper = {}
		function reaper:update(id, dt)
			skiff.destroy(id)
		end
	`)

	en := eng.CreateEntity()
	eng.AttachComponent(en, entity.NewComponent(component.NewScriptBehavior("reaper")))
	require.Equal(t, 1, eng.EntityCount())

	eng.Tick(frame)
	assert.True(t, en.Destroyed)
	assert.Equal(t, 0, eng.EntityCount())

	_, ok := eng.EntityByID(en.ID)
	assert.False(t, ok)
}

func TestDestroyFreesScriptRegistryHandles(t *testing.T) {
	eng := newTestEngine(t, `ghost = {}`)

	en := eng.CreateEntity()
	require.Equal(t, 2, en.Refs(), "engine table plus script proxy")
	entHandle := en.Handle()
	require.NotZero(t, entHandle)

	comp := entity.NewComponent(component.NewScriptBehavior("ghost"))
	eng.AttachComponent(en, comp)
	require.Equal(t, 2, comp.Refs(), "native owner plus behavior instance")
	compHandle := comp.Handle()
	require.NotZero(t, compHandle)

	eng.DestroyEntity(en)
	eng.Tick(frame)

	require.True(t, en.Destroyed)
	assert.Zero(t, en.Refs())
	assert.Zero(t, comp.Refs())
	assert.Equal(t, lua.LNil, eng.Scripts().Get(entHandle), "entity proxy returned to the registry")
	assert.Equal(t, lua.LNil, eng.Scripts().Get(compHandle), "behavior instance returned to the registry")
}

func TestRemoveComponentFreesScriptRegistryHandle(t *testing.T) {
	eng := newTestEngine(t, `ghost = {}`)

	en := eng.CreateEntity()
	comp := entity.NewComponent(component.NewScriptBehavior("ghost"))
	eng.AttachComponent(en, comp)
	h := comp.Handle()
	require.NotZero(t, h)

	eng.RemoveComponent(en, comp)
	eng.Tick(frame)

	assert.Empty(t, en.Components)
	assert.Zero(t, comp.Refs())
	assert.Equal(t, lua.LNil, eng.Scripts().Get(h))
}

func TestDestroyedEntityStopsColliding(t *testing.T) {
	eng := newTestEngine(t, `
		tally = { enter = 0, exit = 0 }
		pawn = {}
		function pawn:on_collision_enter(other)
			tally.enter = tally.enter + 1
		end
		function pawn:on_collision_exit(other)
			tally.exit = tally.exit + 1
		end
	`)

	spawnBox(t, eng, 0, 0, "pawn")
	b := spawnBox(t, eng, 5, 5, "")
	eng.Tick(frame)
	require.Equal(t, 1.0, eng.luaNumber(t, "tally", "enter"))

	// Destruction lands in this tick's CLEANUP phase. The pair is retired
	// silently: a destroyed participant triggers no exit callbacks.
	eng.DestroyEntity(b)
	eng.Tick(frame)
	require.True(t, b.Destroyed)
	eng.Tick(frame)
	assert.Equal(t, 0.0, eng.luaNumber(t, "tally", "exit"))
	eng.Tick(frame)
	assert.Equal(t, 1.0, eng.luaNumber(t, "tally", "enter"), "no further callbacks for the dead pair")
}

func TestRaiseEventReachesListeners(t *testing.T) {
	eng := newTestEngine(t, `
		hud = { last = "", source = 0 }
		function hud.on_score(listener_id, source, who, amount)
			hud.last = who .. ":" .. amount
			hud.source = source
		end
	`)

	en := eng.CreateEntity()
	eng.AttachComponent(en, entity.NewComponent(component.NewListener("score", "hud", "on_score")))

	eng.RaiseEvent("score", 42, "p1", 25)
	// Events are delivered at the start of the next frame.
	vm := eng.Scripts().VM()
	hud := vm.GetGlobal("hud").(*lua.LTable)
	assert.Equal(t, lua.LString(""), hud.RawGetString("last"))

	eng.Tick(frame)
	assert.Equal(t, lua.LString("p1:25"), hud.RawGetString("last"))
	assert.Equal(t, 42.0, eng.luaNumber(t, "hud", "source"))

	// Listeners for other event names stay silent.
	eng.RaiseEvent("unrelated", 0)
	eng.Tick(frame)
	assert.Equal(t, lua.LString("p1:25"), hud.RawGetString("last"))
}

func TestMapCellCallbacks(t *testing.T) {
	eng := newTestEngine(t, `
		cells = { enters = 0, exits = 0, last_cx = -1, last_cy = -1 }
		probe = {}
		function probe:on_cell_enter(map_id, cx, cy)
			cells.enters = cells.enters + 1
			cells.last_cx = cx
			cells.last_cy = cy
		end
		function probe:on_cell_exit(map_id, cx, cy)
			cells.exits = cells.exits + 1
		end
	`)

	mapEnt := eng.CreateEntity()
	grid := component.NewMapGrid(component.Orthogonal, 4, 4, 32, 32)
	eng.AttachComponent(mapEnt, entity.NewComponent(grid))

	probe := eng.CreateEntity()
	probe.SetPos(32, 32)
	col := component.NewCollider()
	col.MapInteraction = true
	col.AddRect(geom.NewRect(0, 0, 32, 32))
	eng.AttachComponent(probe, entity.NewComponent(col))
	eng.AttachComponent(probe, entity.NewComponent(component.NewScriptBehavior("probe")))

	// Exactly over cell (1,1): one cell entered.
	eng.Tick(frame)
	assert.Equal(t, 1.0, eng.luaNumber(t, "cells", "enters"))
	assert.Equal(t, 1.0, eng.luaNumber(t, "cells", "last_cx"))
	assert.Equal(t, 1.0, eng.luaNumber(t, "cells", "last_cy"))

	// Stay put: no repeat enter.
	eng.Tick(frame)
	assert.Equal(t, 1.0, eng.luaNumber(t, "cells", "enters"))

	// Leave the grid entirely.
	probe.SetPos(500, 500)
	eng.Tick(frame)
	assert.Equal(t, 1.0, eng.luaNumber(t, "cells", "exits"))
}
