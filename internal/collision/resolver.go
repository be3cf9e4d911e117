package collision

import (
	"github.com/skiff2d/skiff/internal/component"
	"github.com/skiff2d/skiff/internal/entity"
	"github.com/skiff2d/skiff/internal/geom"
)

// Resolver performs narrow-phase overlap testing. It is stateless;
// transition classification lives in Tracker.
type Resolver struct{}

// NewResolver returns a narrow-phase resolver.
func NewResolver() *Resolver { return &Resolver{} }

// colliders collects the entity's collider variants.
func colliders(e *entity.Entity) []*component.Collider {
	var out []*component.Collider
	for _, c := range e.Components {
		if !c.Active {
			continue
		}
		if col, ok := c.Data.(*component.Collider); ok {
			out = append(out, col)
		}
	}
	return out
}

// TestEntities reports whether any world-space rect of a's colliders
// overlaps any world-space rect of b's. It short-circuits on the first
// intersecting pair: the result is a boolean "colliding" fact, not an
// enumeration of overlaps. Symmetric in its arguments.
func (r *Resolver) TestEntities(a, b *entity.Entity) bool {
	if a == nil || b == nil {
		panic("collision: TestEntities with nil entity")
	}
	for _, ca := range colliders(a) {
		for i := 0; i < ca.RectCount(); i++ {
			ra := ca.WorldRect(i, a.Pos)
			for _, cb := range colliders(b) {
				for j := 0; j < cb.RectCount(); j++ {
					if geom.Intersects(ra, cb.WorldRect(j, b.Pos)) {
						return true
					}
				}
			}
		}
	}
	return false
}

// TestEntityMap tests ent's collider rects against every cell of
// mapEnt's map grid, appending one hit per intersecting cell to out.
//
// Unlike TestEntities there is no early exit: every intersecting cell is
// collected, because cell-level enter/exit callbacks depend on the full
// enumeration. Returns the number of hits appended.
//
// No map component, missing world bounds on either entity, or a collider
// with zero rects all yield no hits.
func (r *Resolver) TestEntityMap(mapEnt, ent *entity.Entity, out *[]Hit) int {
	if mapEnt == nil || ent == nil {
		panic("collision: TestEntityMap with nil entity")
	}
	if out == nil {
		panic("collision: TestEntityMap with nil output slice")
	}
	mc, ok := mapEnt.FindComponent(entity.KindMap)
	if !ok || !mc.Active {
		return 0
	}
	grid := mc.Data.(*component.MapGrid)
	if mapEnt.WorldBounds == nil || ent.WorldBounds == nil {
		return 0
	}
	cols := colliders(ent)
	rects := 0
	for _, c := range cols {
		rects += c.RectCount()
	}
	if rects == 0 {
		return 0
	}

	// Coarse reject before walking cells.
	if !mapEnt.WorldBounds.Intersects(*ent.WorldBounds) {
		return 0
	}

	// World-space collider rects, computed once.
	world := make([]*geom.Rect, 0, rects)
	for _, c := range cols {
		for i := 0; i < c.RectCount(); i++ {
			world = append(world, c.WorldRect(i, ent.Pos))
		}
	}

	appended := 0
	for cy := 0; cy < grid.Rows; cy++ {
		for cx := 0; cx < grid.Cols; cx++ {
			cell := grid.CellRect(cx, cy)
			cell.X += mapEnt.Pos.X
			cell.Y += mapEnt.Pos.Y
			for _, wr := range world {
				if geom.Intersects(&cell, wr) {
					*out = append(*out, Hit{
						Kind:   HitMap,
						Source: ent,
						Target: mapEnt,
						CellX:  cx,
						CellY:  cy,
					})
					appended++
					break // one hit per cell, keep scanning cells
				}
			}
		}
	}
	return appended
}
