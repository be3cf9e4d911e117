package component

import (
	"github.com/skiff2d/skiff/internal/entity"
	"github.com/skiff2d/skiff/internal/geom"
)

// CoordSystem selects the analytic transform from cell coordinates to a
// local-space tile rectangle.
type CoordSystem uint8

const (
	Orthogonal CoordSystem = iota
	HexPointyTop
	HexFlatTop
	Isometric
)

var coordNames = [...]string{
	Orthogonal:   "orthogonal",
	HexPointyTop: "hex-pointy",
	HexFlatTop:   "hex-flat",
	Isometric:    "isometric",
}

func (s CoordSystem) String() string {
	if int(s) < len(coordNames) {
		return coordNames[s]
	}
	return "unknown"
}

// MapGrid is the Map component variant: a cols×rows cell grid whose
// world-space tile rectangles depend on the coordinate system. The grid
// itself holds no tile content — cell population is owned by the
// excluded map-generation layer; collision only needs the geometry.
type MapGrid struct {
	System CoordSystem
	Cols   int
	Rows   int
	TileW  float64
	TileH  float64
	Origin geom.Point

	owner *entity.Entity
}

// NewMapGrid builds a map grid. Cols, rows, and tile size must be
// positive.
func NewMapGrid(system CoordSystem, cols, rows int, tileW, tileH float64) *MapGrid {
	if cols <= 0 || rows <= 0 || tileW <= 0 || tileH <= 0 {
		panic("component: NewMapGrid with non-positive dimensions")
	}
	return &MapGrid{System: system, Cols: cols, Rows: rows, TileW: tileW, TileH: tileH}
}

func (m *MapGrid) Kind() entity.Kind { return entity.KindMap }

func (m *MapGrid) OnAttach(owner *entity.Entity) {
	m.owner = owner
	owner.RecomputeBounds()
}

func (m *MapGrid) Destroy() { m.owner = nil }

func (m *MapGrid) Copy() entity.Variant {
	cp := *m
	cp.owner = nil
	return &cp
}

// Bounds unions every cell rect into the map's entity-local bounds.
func (m *MapGrid) Bounds() (geom.Bounds, bool) {
	first := m.CellRect(0, 0)
	acc := first.Bounds()
	for cy := 0; cy < m.Rows; cy++ {
		for cx := 0; cx < m.Cols; cx++ {
			cell := m.CellRect(cx, cy)
			acc = acc.Union(cell.Bounds())
		}
	}
	return acc, true
}

// CellRect returns the local-space rectangle of cell (cx, cy).
//
// Orthogonal cells tile the plane directly. Hex grids use the staggered
// offset layouts (odd rows shifted for pointy-top, odd columns for
// flat-top) with 3/4 overlap along the hex axis. Isometric cells land on
// the diamond lattice.
func (m *MapGrid) CellRect(cx, cy int) geom.Rect {
	fx, fy := float64(cx), float64(cy)
	var x, y float64
	switch m.System {
	case Orthogonal:
		x = fx * m.TileW
		y = fy * m.TileH
	case HexPointyTop:
		x = fx * m.TileW
		if cy&1 == 1 {
			x += m.TileW / 2
		}
		y = fy * m.TileH * 0.75
	case HexFlatTop:
		x = fx * m.TileW * 0.75
		y = fy * m.TileH
		if cx&1 == 1 {
			y += m.TileH / 2
		}
	case Isometric:
		x = (fx - fy) * m.TileW / 2
		y = (fx + fy) * m.TileH / 2
	default:
		panic("component: unknown map coordinate system")
	}
	return geom.Rect{X: m.Origin.X + x, Y: m.Origin.Y + y, W: m.TileW, H: m.TileH}
}
