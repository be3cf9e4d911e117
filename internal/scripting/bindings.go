package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/skiff2d/skiff/internal/audio"
	"github.com/skiff2d/skiff/internal/component"
	"github.com/skiff2d/skiff/internal/entity"
)

// WorldAPI is the slice of the engine the script bindings may touch.
// Destruction is deferred — scripts can only queue it.
type WorldAPI interface {
	EntityByID(id uint64) (*entity.Entity, bool)
	QueueDestroy(id uint64)
}

// OpenBindings registers the `skiff` table in the VM. Argument
// validation uses the Check* family, so script-level misuse surfaces as
// a Lua error to the calling script rather than crashing the engine.
// Music functions mutate playback state through the audio context,
// which locks the mutex shared with the mixer goroutine.
func (e *Engine) OpenBindings(world WorldAPI, audioCtx *audio.Context) {
	if world == nil {
		panic("scripting: OpenBindings with nil world")
	}
	b := &bindings{engine: e, world: world, audio: audioCtx}
	mod := e.vm.NewTable()
	e.vm.SetFuncs(mod, map[string]lua.LGFunction{
		"get_pos":           b.getPos,
		"set_pos":           b.setPos,
		"add_tag":           b.addTag,
		"has_tag":           b.hasTag,
		"set_active":        b.setActive,
		"is_active":         b.isActive,
		"collider_set_rect": b.colliderSetRect,
		"music_play":        b.musicPlay,
		"music_stop":        b.musicStop,
		"music_volume":      b.musicVolume,
		"destroy":           b.destroy,
		"log":               b.logInfo,
	})
	e.vm.SetGlobal("skiff", mod)
}

type bindings struct {
	engine *Engine
	world  WorldAPI
	audio  *audio.Context
}

// checkEntity resolves the entity id argument at position 1, raising a
// Lua error for unknown ids.
func (b *bindings) checkEntity(L *lua.LState) *entity.Entity {
	id := uint64(L.CheckNumber(1))
	e, ok := b.world.EntityByID(id)
	if !ok {
		L.ArgError(1, "unknown entity id")
		return nil
	}
	return e
}

func (b *bindings) getPos(L *lua.LState) int {
	e := b.checkEntity(L)
	L.Push(lua.LNumber(e.Pos.X))
	L.Push(lua.LNumber(e.Pos.Y))
	return 2
}

func (b *bindings) setPos(L *lua.LState) int {
	e := b.checkEntity(L)
	x := float64(L.CheckNumber(2))
	y := float64(L.CheckNumber(3))
	e.SetPos(x, y)
	return 0
}

func (b *bindings) addTag(L *lua.LState) int {
	e := b.checkEntity(L)
	L.Push(lua.LBool(e.AddTag(L.CheckString(2))))
	return 1
}

func (b *bindings) hasTag(L *lua.LState) int {
	e := b.checkEntity(L)
	L.Push(lua.LBool(e.HasTag(L.CheckString(2))))
	return 1
}

func (b *bindings) setActive(L *lua.LState) int {
	e := b.checkEntity(L)
	e.Active = L.CheckBool(2)
	return 0
}

func (b *bindings) isActive(L *lua.LState) int {
	e := b.checkEntity(L)
	L.Push(lua.LBool(e.Active))
	return 1
}

// colliderSetRect rewrites one rect of the entity's collider:
// skiff.collider_set_rect(id, index, x, y, w, h [, rotation]).
// Watchers fire from the setter, so bounds recompute immediately.
func (b *bindings) colliderSetRect(L *lua.LState) int {
	e := b.checkEntity(L)
	idx := L.CheckInt(2)
	x := float64(L.CheckNumber(3))
	y := float64(L.CheckNumber(4))
	w := float64(L.CheckNumber(5))
	h := float64(L.CheckNumber(6))
	rot := float64(L.OptNumber(7, 0))

	comp, ok := e.FindComponent(entity.KindCollider)
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}
	col := comp.Data.(*component.Collider)
	r, ok := col.RectAt(idx)
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}
	r.Set(x, y, w, h, rot)
	L.Push(lua.LTrue)
	return 1
}

func (b *bindings) musicComponent(L *lua.LState) (*component.Music, bool) {
	e := b.checkEntity(L)
	comp, ok := e.FindComponent(entity.KindMusic)
	if !ok {
		return nil, false
	}
	return comp.Data.(*component.Music), true
}

func (b *bindings) musicPlay(L *lua.LState) int {
	m, ok := b.musicComponent(L)
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}
	m.Looping = L.OptBool(2, m.Looping)
	m.Playing = true
	if b.audio != nil {
		if err := b.audio.Play(m.Track, m.Looping, m.Volume); err != nil {
			L.RaiseError("music_play %s: %v", m.Track, err)
		}
	}
	L.Push(lua.LTrue)
	return 1
}

func (b *bindings) musicStop(L *lua.LState) int {
	m, ok := b.musicComponent(L)
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}
	m.Playing = false
	if b.audio != nil {
		b.audio.Stop(m.Track)
	}
	L.Push(lua.LTrue)
	return 1
}

func (b *bindings) musicVolume(L *lua.LState) int {
	m, ok := b.musicComponent(L)
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}
	m.Volume = float64(L.CheckNumber(2))
	if b.audio != nil {
		b.audio.SetVolume(m.Track, m.Volume)
	}
	L.Push(lua.LTrue)
	return 1
}

func (b *bindings) destroy(L *lua.LState) int {
	id := uint64(L.CheckNumber(1))
	b.world.QueueDestroy(id)
	return 0
}

func (b *bindings) logInfo(L *lua.LState) int {
	b.engine.log.Info("script", zap.String("msg", L.CheckString(1)))
	return 0
}
