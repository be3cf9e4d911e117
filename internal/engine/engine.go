// Package engine wires the entity table, the phased system runner, the
// collision subsystem, and the scripting runtime into one frame-driven
// core.
package engine

import (
	"context"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/skiff2d/skiff/internal/asset"
	"github.com/skiff2d/skiff/internal/audio"
	"github.com/skiff2d/skiff/internal/collision"
	"github.com/skiff2d/skiff/internal/component"
	"github.com/skiff2d/skiff/internal/config"
	"github.com/skiff2d/skiff/internal/core/event"
	coresys "github.com/skiff2d/skiff/internal/core/system"
	"github.com/skiff2d/skiff/internal/entity"
	"github.com/skiff2d/skiff/internal/render"
	"github.com/skiff2d/skiff/internal/scripting"
	"github.com/skiff2d/skiff/internal/system"
)

// Engine owns the frame pipeline. All methods are frame-goroutine only;
// the audio context is the single cross-thread boundary and carries its
// own lock.
type Engine struct {
	cfg *config.Config
	log *zap.Logger

	runner  *coresys.Runner
	bus     *event.Bus
	scripts *scripting.Engine
	audio   *audio.Context
	bin     *collision.Bin

	colliderSys *system.ColliderSystem
	cleanupSys  *system.CleanupSystem
	renderSys   *system.RenderSystem

	entities map[uint64]*entity.Entity
}

// New builds a fully wired engine. renderer, sink, and assets may be
// nil for headless runs.
func New(cfg *config.Config, log *zap.Logger, renderer render.Renderer, sink audio.Sink, assets asset.Source) (*Engine, error) {
	if cfg == nil {
		panic("engine: New with nil config")
	}
	if log == nil {
		log = zap.NewNop()
	}

	e := &Engine{
		cfg:      cfg,
		log:      log,
		runner:   coresys.NewRunner(log),
		bus:      event.NewBus(),
		scripts:  scripting.NewEngine(log),
		audio:    audio.NewContext(sink),
		bin:      collision.NewBin(cfg.Collision.CellSize),
		entities: make(map[uint64]*entity.Entity),
	}
	e.scripts.OpenBindings(e, e.audio)

	if err := e.scripts.LoadDir(cfg.Scripting.Dir); err != nil {
		e.scripts.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}

	// Registration order within EARLY is load-bearing: behaviors move
	// entities, sprites animate, then collision observes the results.
	e.colliderSys = system.NewColliderSystem(e.bin, e.scripts, cfg.Collision.AutoTuneEvery, log)
	e.cleanupSys = system.NewCleanupSystem(e.runner, e.bus, log)
	e.renderSys = system.NewRenderSystem(renderer, assets, render.Camera{})
	e.cleanupSys.SetOnDestroy(func(en *entity.Entity) {
		delete(e.entities, en.ID)
	})

	for _, s := range []coresys.System{
		system.NewBehaviorSystem(e.scripts, log),
		system.NewSpriteSystem(assets),
		e.colliderSys,
		system.NewAudioSystem(e.audio, log),
		e.renderSys,
		e.cleanupSys,
	} {
		if err := e.runner.Register(s); err != nil {
			e.scripts.Close()
			return nil, fmt.Errorf("register system %s: %w", s.Name(), err)
		}
	}

	event.Subscribe(e.bus, e.dispatchToListeners)
	return e, nil
}

// ── Entity management ─────────────────────────────────────────────

// CreateEntity allocates an entity owned by the engine table and
// registers it with the scripting side: the entity's proxy table holds
// the second strong reference until destruction releases it.
func (e *Engine) CreateEntity() *entity.Entity {
	en := entity.New()
	en.BindScript(e.scripts, e.scripts.BindEntity(en.ID))
	e.entities[en.ID] = en
	return en
}

// AttachComponent attaches c to en and fans the add event out to the
// systems. Mid-frame attach is safe; removal is not — use
// RemoveComponent.
func (e *Engine) AttachComponent(en *entity.Entity, c *entity.Component) {
	en.AddComponent(c)
	e.runner.ComponentAdded(c)
}

// RemoveComponent queues the detach for the CLEANUP phase.
func (e *Engine) RemoveComponent(en *entity.Entity, c *entity.Component) {
	e.cleanupSys.QueueRemove(en, c)
}

// DestroyEntity queues the entity for end-of-frame destruction.
func (e *Engine) DestroyEntity(en *entity.Entity) {
	e.cleanupSys.QueueDestroy(en)
}

// EntityByID resolves an entity id; part of the script binding surface.
func (e *Engine) EntityByID(id uint64) (*entity.Entity, bool) {
	en, ok := e.entities[id]
	return en, ok
}

// QueueDestroy implements the script-facing deferred destroy.
func (e *Engine) QueueDestroy(id uint64) {
	if en, ok := e.entities[id]; ok {
		e.cleanupSys.QueueDestroy(en)
	}
}

var _ scripting.WorldAPI = (*Engine)(nil)

// EntityCount returns the number of live entities.
func (e *Engine) EntityCount() int { return len(e.entities) }

// Render returns the render system for viewport control.
func (e *Engine) Render() *system.RenderSystem { return e.renderSys }

// Scripts exposes the scripting engine to embedding code.
func (e *Engine) Scripts() *scripting.Engine { return e.scripts }

// Bin exposes the spatial bin (debug overlays, tests).
func (e *Engine) Bin() *collision.Bin { return e.bin }

// ── Events ────────────────────────────────────────────────────────

// RaiseEvent queues a named script event for delivery at the start of
// the next frame.
func (e *Engine) RaiseEvent(name string, source uint64, args ...any) {
	event.Emit(e.bus, event.Script{Name: name, Source: source, Args: args})
}

// dispatchToListeners fans a script event out to every Listener
// component subscribed to its name.
func (e *Engine) dispatchToListeners(ev event.Script) {
	for _, en := range e.entities {
		if en.Destroyed || !en.Active {
			continue
		}
		for _, c := range en.Components {
			if !c.Active || c.Kind() != entity.KindListener {
				continue
			}
			l := c.Data.(*component.Listener)
			if l.Event != ev.Name {
				continue
			}
			args := make([]lua.LValue, 0, len(ev.Args)+2)
			args = append(args, lua.LNumber(en.ID), lua.LNumber(ev.Source))
			for _, a := range ev.Args {
				args = append(args, toLua(a))
			}
			_, _ = e.scripts.InvokeGlobal(l.Script, l.Function, args...)
		}
	}
}

func toLua(v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case uint64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	default:
		return lua.LString(fmt.Sprint(x))
	}
}

// ── Frame loop ────────────────────────────────────────────────────

// Tick runs one frame: deliver last frame's events, then EARLY, LATE,
// and CLEANUP phases.
func (e *Engine) Tick(dt time.Duration) {
	e.bus.SwapBuffers()
	e.bus.DispatchAll()
	e.runner.Tick(dt)
}

// Run drives Tick at the configured rate until ctx is cancelled, then
// shuts the systems and the VM down.
func (e *Engine) Run(ctx context.Context) error {
	rate := e.cfg.Engine.TickRate.Duration
	if rate <= 0 {
		rate = 16 * time.Millisecond
	}
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	e.log.Info("engine running",
		zap.Duration("tick_rate", rate),
		zap.Float64("bin_cell_size", e.bin.CellSize()))

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			e.Shutdown()
			return ctx.Err()
		case now := <-ticker.C:
			e.Tick(now.Sub(last))
			last = now
		}
	}
}

// Shutdown stops all systems (reverse order) and closes the VM.
func (e *Engine) Shutdown() {
	e.runner.Shutdown()
	e.scripts.Close()
	e.log.Info("engine stopped")
}
