package component

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skiff2d/skiff/internal/entity"
	"github.com/skiff2d/skiff/internal/geom"
)

func TestColliderBoundsUnionOfRects(t *testing.T) {
	e := entity.New()
	col := NewCollider()
	e.AddComponent(entity.NewComponent(col))

	require.Nil(t, e.WorldBounds, "no rects yet → nil bounds")

	col.AddRect(geom.NewRect(0, 0, 10, 10))
	col.AddRect(geom.NewRect(20, 5, 10, 10))

	require.NotNil(t, e.LocalBounds)
	assert.Equal(t, geom.Point{X: 0, Y: 0}, e.LocalBounds.Min)
	assert.Equal(t, geom.Point{X: 30, Y: 15}, e.LocalBounds.Max)
}

func TestColliderBoundsRotationAware(t *testing.T) {
	e := entity.New()
	col := NewCollider()
	e.AddComponent(entity.NewComponent(col))

	// 20x10 rect rotated 90° about its center (10, 5).
	r := geom.NewRect(0, 0, 20, 10)
	col.AddRect(r)
	r.SetRotation(math.Pi / 2)

	require.NotNil(t, e.LocalBounds)
	assert.InDelta(t, 5, e.LocalBounds.Min.X, 1e-9)
	assert.InDelta(t, -5, e.LocalBounds.Min.Y, 1e-9)
	assert.InDelta(t, 15, e.LocalBounds.Max.X, 1e-9)
	assert.InDelta(t, 15, e.LocalBounds.Max.Y, 1e-9)
}

func TestColliderOffsetAndWorldTranslate(t *testing.T) {
	e := entity.New()
	col := NewCollider()
	col.SetOffset(100, 0)
	e.AddComponent(entity.NewComponent(col))
	col.AddRect(geom.NewRect(0, 0, 10, 10))

	e.SetPos(0, 50)
	require.NotNil(t, e.WorldBounds)
	assert.Equal(t, geom.Point{X: 100, Y: 50}, e.WorldBounds.Min)
	assert.Equal(t, geom.Point{X: 110, Y: 60}, e.WorldBounds.Max)
}

func TestColliderRectMutationTriggersRecompute(t *testing.T) {
	e := entity.New()
	col := NewCollider()
	e.AddComponent(entity.NewComponent(col))
	r := geom.NewRect(0, 0, 10, 10)
	col.AddRect(r)

	r.SetSize(40, 10)
	require.NotNil(t, e.LocalBounds)
	assert.Equal(t, float64(40), e.LocalBounds.Max.X)

	r.SetPos(-5, -5)
	assert.Equal(t, geom.Point{X: -5, Y: -5}, e.LocalBounds.Min)
}

func TestColliderRemoveLastRectClearsBounds(t *testing.T) {
	e := entity.New()
	col := NewCollider()
	e.AddComponent(entity.NewComponent(col))
	col.AddRect(geom.NewRect(0, 0, 10, 10))
	require.NotNil(t, e.LocalBounds)

	assert.True(t, col.RemoveRect(0))
	assert.Nil(t, e.LocalBounds, "zero rects → bounds cleared, not zero-sized")
	assert.Nil(t, e.WorldBounds)
	assert.False(t, col.RemoveRect(0), "out of range is a no-op")
}

func TestColliderCopyDetached(t *testing.T) {
	src := NewCollider()
	src.DebugDraw = true
	src.MapInteraction = true
	src.SetOffset(3, 4)
	src.AddRect(geom.NewRect(0, 0, 10, 10))

	cp, ok := src.Copy().(*Collider)
	require.True(t, ok)
	assert.Equal(t, src.Offset, cp.Offset)
	assert.True(t, cp.DebugDraw)
	assert.True(t, cp.MapInteraction)
	require.Equal(t, 1, cp.RectCount())

	// Mutating the copy's rect must not touch the source geometry.
	r, _ := cp.RectAt(0)
	r.SetSize(99, 99)
	sr, _ := src.RectAt(0)
	assert.Equal(t, float64(10), sr.W)
}

func TestMapGridCellRects(t *testing.T) {
	orth := NewMapGrid(Orthogonal, 4, 4, 32, 32)
	r := orth.CellRect(1, 1)
	assert.Equal(t, geom.Rect{X: 32, Y: 32, W: 32, H: 32}, r)

	pointy := NewMapGrid(HexPointyTop, 4, 4, 32, 32)
	r = pointy.CellRect(1, 1)
	assert.Equal(t, float64(32+16), r.X, "odd rows shift right by half a tile")
	assert.Equal(t, 32*0.75, r.Y, "rows overlap by a quarter tile")

	flat := NewMapGrid(HexFlatTop, 4, 4, 32, 32)
	r = flat.CellRect(1, 1)
	assert.Equal(t, 32*0.75, r.X)
	assert.Equal(t, float64(32+16), r.Y, "odd columns shift down by half a tile")

	iso := NewMapGrid(Isometric, 4, 4, 64, 32)
	r = iso.CellRect(1, 0)
	assert.Equal(t, float64(32), r.X)
	assert.Equal(t, float64(16), r.Y)
	r = iso.CellRect(0, 1)
	assert.Equal(t, float64(-32), r.X)
	assert.Equal(t, float64(16), r.Y)
}

func TestMapGridBounds(t *testing.T) {
	m := NewMapGrid(Orthogonal, 4, 4, 32, 32)
	b, ok := m.Bounds()
	require.True(t, ok)
	assert.Equal(t, geom.Point{X: 0, Y: 0}, b.Min)
	assert.Equal(t, geom.Point{X: 128, Y: 128}, b.Max)

	// Staggered layouts extend past the plain cols×tile box: the shifted
	// odd row sticks out on the right.
	hex := NewMapGrid(HexPointyTop, 2, 2, 32, 32)
	b, ok = hex.Bounds()
	require.True(t, ok)
	assert.Equal(t, geom.Point{X: 0, Y: 0}, b.Min)
	assert.Equal(t, geom.Point{X: 80, Y: 56}, b.Max)
}

func TestSpriteAdvanceWraps(t *testing.T) {
	s := NewSprite("hero", 4)
	s.FrameTime = 0.1

	s.Advance(0.25)
	assert.Equal(t, 2, s.Frame)
	s.Advance(0.2)
	assert.Equal(t, 0, s.Frame, "frame index wraps at FrameCount")
}
