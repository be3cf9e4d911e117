package entity

import (
	"strings"
	"sync/atomic"

	"github.com/skiff2d/skiff/internal/geom"
)

// maxTagLen caps stored tag length. Tags are normalized to uppercase.
const maxTagLen = 32

var nextEntityID atomic.Uint64

// Entity is a tagged bag of polymorphic components plus the cached
// collision state the collider/collision systems maintain for it.
//
// LocalBounds and WorldBounds are derived, never authoritative: they are
// recomputed from collider/map components on geometry changes and
// refreshed from Pos every frame. A nil bounds means "no spatial extent",
// not a zero-sized box.
type Entity struct {
	ID         uint64
	Active     bool
	Visible    bool
	Persistent bool
	Pos        geom.Point

	Components []*Component
	tags       []string

	// CurrentPairs/PreviousPairs are the double-buffered "touching" sets
	// keyed by canonical pair key, swapped each frame by the collision
	// state tracker.
	CurrentPairs  map[uint64]struct{}
	PreviousPairs map[uint64]struct{}

	LocalBounds *geom.Bounds
	WorldBounds *geom.Bounds

	Destroyed bool

	script ScriptContext
	handle int
	refs   int32
}

// New allocates an active, visible entity with one reference held by the
// caller.
func New() *Entity {
	return &Entity{
		ID:            nextEntityID.Add(1),
		Active:        true,
		Visible:       true,
		CurrentPairs:  make(map[uint64]struct{}),
		PreviousPairs: make(map[uint64]struct{}),
		refs:          1,
	}
}

// ── Lifetime ──────────────────────────────────────────────────────

// Retain adds a strong reference.
func (e *Entity) Retain() {
	if e.refs <= 0 {
		panic("entity: Retain on destroyed entity")
	}
	e.refs++
}

// Release drops a strong reference. At zero the entity is destroyed:
// its script handle is returned and every owned component released.
func (e *Entity) Release() {
	if e.refs <= 0 {
		panic("entity: Release past zero on entity")
	}
	e.refs--
	if e.refs > 0 {
		return
	}
	e.Destroyed = true
	if e.script != nil && e.handle != 0 {
		e.script.Unref(e.handle)
		e.handle = 0
	}
	for _, c := range e.Components {
		c.Owner = nil
		c.ReleaseScript()
		c.Release()
	}
	e.Components = nil
}

// BindScript records the scripting-side handle; the script side counts
// as one strong reference until released.
func (e *Entity) BindScript(ctx ScriptContext, handle int) {
	if ctx == nil {
		panic("entity: BindScript with nil context")
	}
	e.script = ctx
	e.handle = handle
	e.Retain()
}

// ReleaseScript drops the scripting side's strong reference: the
// registry handle is returned and the reference taken by BindScript is
// released. A no-op when no script is bound.
func (e *Entity) ReleaseScript() {
	if e.script == nil || e.handle == 0 {
		return
	}
	e.script.Unref(e.handle)
	e.script = nil
	e.handle = 0
	e.Release()
}

// Handle returns the scripting registry handle, or 0 when unbound.
func (e *Entity) Handle() int { return e.handle }

// Refs returns the current strong-reference count.
func (e *Entity) Refs() int { return int(e.refs) }

// ── Components ────────────────────────────────────────────────────

// AddComponent appends c to the entity and sets the back-reference.
// The variant's OnAttach hook runs afterwards, so colliders recompute
// bounds immediately (bounds need the owner).
func (e *Entity) AddComponent(c *Component) {
	if c == nil {
		panic("entity: AddComponent with nil component")
	}
	if c.Owner != nil {
		panic("entity: component already attached")
	}
	c.Owner = e
	e.Components = append(e.Components, c)
	c.Data.OnAttach(e)
}

// RemoveComponent detaches the component with the given id, filling the
// slot by swapping in the last element. Returns false when no component
// has that id. The caller keeps the component's reference; removal here
// does not release it.
//
// Must not be called while systems may be iterating component lists —
// mid-frame removal goes through the cleanup queue instead.
func (e *Entity) RemoveComponent(id uint64) (*Component, bool) {
	for i, c := range e.Components {
		if c.ID == id {
			e.detachAt(i)
			return c, true
		}
	}
	return nil, false
}

// RemoveComponentRef detaches by identity rather than id, so a stale
// duplicate request (component already gone) is a clean no-op.
func (e *Entity) RemoveComponentRef(c *Component) bool {
	for i, got := range e.Components {
		if got == c {
			e.detachAt(i)
			return true
		}
	}
	return false
}

func (e *Entity) detachAt(i int) {
	c := e.Components[i]
	last := len(e.Components) - 1
	e.Components[i] = e.Components[last]
	e.Components[last] = nil
	e.Components = e.Components[:last]
	c.Owner = nil
}

// FindComponent returns the first component of the given kind.
func (e *Entity) FindComponent(k Kind) (*Component, bool) {
	for _, c := range e.Components {
		if c.Kind() == k {
			return c, true
		}
	}
	return nil, false
}

// ComponentByID returns the component with the given id.
func (e *Entity) ComponentByID(id uint64) (*Component, bool) {
	for _, c := range e.Components {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// ── Tags ──────────────────────────────────────────────────────────

// AddTag stores the tag normalized to uppercase. Rejects empty tags,
// tags over the length cap, and duplicates.
func (e *Entity) AddTag(tag string) bool {
	if tag == "" || len(tag) > maxTagLen {
		return false
	}
	tag = strings.ToUpper(tag)
	for _, t := range e.tags {
		if t == tag {
			return false
		}
	}
	e.tags = append(e.tags, tag)
	return true
}

// HasTag reports whether the entity carries the tag (case-insensitive).
func (e *Entity) HasTag(tag string) bool {
	tag = strings.ToUpper(tag)
	for _, t := range e.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// RemoveTag drops the tag; returns false when absent.
func (e *Entity) RemoveTag(tag string) bool {
	tag = strings.ToUpper(tag)
	for i, t := range e.tags {
		if t == tag {
			e.tags = append(e.tags[:i], e.tags[i+1:]...)
			return true
		}
	}
	return false
}

// Tags returns the stored (normalized) tags.
func (e *Entity) Tags() []string { return e.tags }

// ── Position & bounds ─────────────────────────────────────────────

// SetPos moves the entity and refreshes world bounds via the cheap
// translate path. Rectangle geometry is untouched, so no full recompute.
func (e *Entity) SetPos(x, y float64) {
	e.Pos = geom.Point{X: x, Y: y}
	e.RefreshWorldBounds()
}

// RecomputeBounds rebuilds the entity-local bounds as the union of every
// spatial component's local bounds, then refreshes world bounds. With no
// spatial components the bounds are cleared to nil.
func (e *Entity) RecomputeBounds() {
	var acc *geom.Bounds
	for _, c := range e.Components {
		if b, ok := c.Data.Bounds(); ok {
			if acc == nil {
				cp := b
				acc = &cp
			} else {
				u := acc.Union(b)
				acc = &u
			}
		}
	}
	e.LocalBounds = acc
	e.RefreshWorldBounds()
}

// RefreshWorldBounds translates local bounds by the current position.
// This is the per-frame fast path used by the collider system.
func (e *Entity) RefreshWorldBounds() {
	if e.LocalBounds == nil {
		e.WorldBounds = nil
		return
	}
	w := e.LocalBounds.Translate(e.Pos)
	e.WorldBounds = &w
}

// SwapPairs rotates the touching-pair buffers at the start of a
// collision pass: previous takes last frame's current, and the new
// current starts empty.
func (e *Entity) SwapPairs() {
	e.CurrentPairs, e.PreviousPairs = e.PreviousPairs, e.CurrentPairs
	for k := range e.CurrentPairs {
		delete(e.CurrentPairs, k)
	}
}

// Copy deep-copies position, flags, tags, and every component. Collision
// state, cached bounds, and watcher registrations start empty; attaching
// the copied components rebuilds derived bounds.
func (e *Entity) Copy() *Entity {
	cp := New()
	cp.Active = e.Active
	cp.Visible = e.Visible
	cp.Persistent = e.Persistent
	cp.Pos = e.Pos
	cp.tags = append([]string(nil), e.tags...)
	for _, c := range e.Components {
		cp.AddComponent(NewComponent(c.Data.Copy()))
	}
	return cp
}
