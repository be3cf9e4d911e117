package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/skiff2d/skiff/internal/entity"
)

// Engine wraps a single gopher-lua VM for behavior scripts and collision
// callbacks. Single-goroutine access only (frame loop).
//
// The registry table implements the dual-owner reference contract: a
// value handed to Ref stays reachable from Lua's collector until Unref,
// independent of any native reference count pointing at the same object.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger

	refs    *lua.LTable
	nextRef int
	free    []int
}

// NewEngine creates a Lua engine. Scripts are loaded separately via
// LoadDir.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:      vm,
		log:     log,
		refs:    vm.NewTable(),
		nextRef: 1,
	}
	// Anchor the registry table itself so the collector never drops it.
	vm.SetGlobal("__skiff_refs", e.refs)
	return e
}

// Close shuts the VM down.
func (e *Engine) Close() {
	e.vm.Close()
}

// VM exposes the underlying state to the binding layer.
func (e *Engine) VM() *lua.LState { return e.vm }

// LoadDir loads all .lua files in a directory. A missing directory is
// skipped.
func (e *Engine) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// ── Registry handles ──────────────────────────────────────────────

// Ref stores v in the registry table and returns its handle. The handle
// keeps v alive from Lua's perspective until Unref.
func (e *Engine) Ref(v lua.LValue) int {
	var h int
	if n := len(e.free); n > 0 {
		h = e.free[n-1]
		e.free = e.free[:n-1]
	} else {
		h = e.nextRef
		e.nextRef++
	}
	e.refs.RawSetInt(h, v)
	return h
}

// Unref releases a handle. Unknown or already-released handles are a
// no-op, so the native and script sides may race their releases safely.
func (e *Engine) Unref(handle int) {
	if handle <= 0 || handle >= e.nextRef {
		return
	}
	if e.refs.RawGetInt(handle) == lua.LNil {
		return
	}
	e.refs.RawSetInt(handle, lua.LNil)
	e.free = append(e.free, handle)
}

// Get returns the value behind a handle, or LNil.
func (e *Engine) Get(handle int) lua.LValue {
	if handle <= 0 {
		return lua.LNil
	}
	return e.refs.RawGetInt(handle)
}

var _ entity.ScriptContext = (*Engine)(nil)

// ── Behavior instances ────────────────────────────────────────────

// BindEntity registers an entity proxy table and returns its registry
// handle. Scripts that capture the proxy see one stable table per
// entity for its whole lifetime; the handle is the scripting side's
// strong reference, released when the entity is destroyed.
func (e *Engine) BindEntity(id uint64) int {
	tbl := e.vm.NewTable()
	tbl.RawSetString("id", lua.LNumber(id))
	return e.Ref(tbl)
}

// BindBehavior creates a per-instance self table delegating to the
// global script table of the given name and returns its registry
// handle. The handle is what the wrapping component carries.
func (e *Engine) BindBehavior(script string) (int, error) {
	gt := e.vm.GetGlobal(script)
	tbl, ok := gt.(*lua.LTable)
	if !ok {
		return 0, fmt.Errorf("script table %q not found", script)
	}
	inst := e.vm.NewTable()
	mt := e.vm.NewTable()
	mt.RawSetString("__index", tbl)
	e.vm.SetMetatable(inst, mt)
	return e.Ref(inst), nil
}

// Invoke calls the named function on the instance behind handle, passing
// the instance as self plus the given arguments. Returns found=false
// when the instance defines no such function (a clean no-op: scripts
// implement only the callbacks they care about). Script errors are
// caught by the protected call, logged, and returned — they never crash
// the engine.
func (e *Engine) Invoke(handle int, fn string, args ...lua.LValue) (found bool, err error) {
	self := e.Get(handle)
	inst, ok := self.(*lua.LTable)
	if !ok {
		return false, nil
	}
	f := e.vm.GetField(inst, fn)
	if f == lua.LNil {
		return false, nil
	}
	callArgs := make([]lua.LValue, 0, len(args)+1)
	callArgs = append(callArgs, inst)
	callArgs = append(callArgs, args...)
	if err := e.vm.CallByParam(lua.P{
		Fn:      f,
		NRet:    0,
		Protect: true,
	}, callArgs...); err != nil {
		e.log.Error("lua callback error",
			zap.String("fn", fn),
			zap.Error(err))
		return true, err
	}
	return true, nil
}

// InvokeGlobal calls a named function on a global script table with
// positional arguments (no self). Used for Listener dispatch where the
// callback is not bound to a behavior instance.
func (e *Engine) InvokeGlobal(table, fn string, args ...lua.LValue) (bool, error) {
	gt := e.vm.GetGlobal(table)
	tbl, ok := gt.(*lua.LTable)
	if !ok {
		return false, nil
	}
	f := e.vm.GetField(tbl, fn)
	if f == lua.LNil {
		return false, nil
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      f,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		e.log.Error("lua listener error",
			zap.String("table", table),
			zap.String("fn", fn),
			zap.Error(err))
		return true, err
	}
	return true, nil
}
