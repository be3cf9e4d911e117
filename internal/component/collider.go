package component

import (
	"github.com/skiff2d/skiff/internal/entity"
	"github.com/skiff2d/skiff/internal/geom"
)

// Collider holds one or more local-space rectangles plus an offset, and
// maintains the owning entity's cached bounds. Every rect is watched: any
// geometry mutation triggers a full local-bounds recompute, while plain
// entity movement only takes the cheap world-translate path.
type Collider struct {
	Offset         geom.Point
	DebugDraw      bool
	MapInteraction bool

	rects []*geom.Rect
	local *geom.Bounds
	owner *entity.Entity
}

// NewCollider returns an empty collider. Bounds stay nil until the first
// rect is added.
func NewCollider() *Collider {
	return &Collider{}
}

func (c *Collider) Kind() entity.Kind { return entity.KindCollider }

func (c *Collider) OnAttach(owner *entity.Entity) {
	c.owner = owner
	c.Recompute()
}

func (c *Collider) Destroy() {
	c.rects = nil
	c.local = nil
	c.owner = nil
}

// Copy clones offset, flags, and rect geometry. The copy is detached:
// watchers are re-registered against the new collider, bounds rebuild on
// attach.
func (c *Collider) Copy() entity.Variant {
	cp := NewCollider()
	cp.Offset = c.Offset
	cp.DebugDraw = c.DebugDraw
	cp.MapInteraction = c.MapInteraction
	for _, r := range c.rects {
		cp.AddRect(r.Clone())
	}
	return cp
}

// Bounds returns the cached entity-local bounds (offset applied), or
// false when the collider has no rects.
func (c *Collider) Bounds() (geom.Bounds, bool) {
	if c.local == nil {
		return geom.Bounds{}, false
	}
	return *c.local, true
}

// AddRect takes ownership of r and watches it for geometry changes.
func (c *Collider) AddRect(r *geom.Rect) {
	if r == nil {
		panic("component: AddRect with nil rect")
	}
	r.Watch(func(*geom.Rect) { c.Recompute() })
	c.rects = append(c.rects, r)
	c.Recompute()
}

// RemoveRect drops the rect at index i; returns false when out of range.
func (c *Collider) RemoveRect(i int) bool {
	if i < 0 || i >= len(c.rects) {
		return false
	}
	c.rects = append(c.rects[:i], c.rects[i+1:]...)
	c.Recompute()
	return true
}

// RectAt returns the rect at index i.
func (c *Collider) RectAt(i int) (*geom.Rect, bool) {
	if i < 0 || i >= len(c.rects) {
		return nil, false
	}
	return c.rects[i], true
}

// RectCount returns the number of rects.
func (c *Collider) RectCount() int { return len(c.rects) }

// SetOffset moves the collider offset and recomputes bounds.
func (c *Collider) SetOffset(x, y float64) {
	c.Offset = geom.Point{X: x, Y: y}
	c.Recompute()
}

// Recompute rebuilds the cached local bounds as the rotation-aware union
// box over every rect, shifted by the offset, then propagates to the
// owning entity. Zero rects clears the bounds to nil.
func (c *Collider) Recompute() {
	if len(c.rects) == 0 {
		c.local = nil
	} else {
		acc := c.rects[0].Bounds()
		for _, r := range c.rects[1:] {
			acc = acc.Union(r.Bounds())
		}
		acc = acc.Translate(c.Offset)
		c.local = &acc
	}
	if c.owner != nil {
		c.owner.RecomputeBounds()
	}
}

// WorldRect returns rect i translated into world space using the given
// entity position plus the collider offset. The returned rect is a
// detached copy.
func (c *Collider) WorldRect(i int, pos geom.Point) *geom.Rect {
	return c.rects[i].Translated(pos.Add(c.Offset))
}
