package collision

import (
	"math"

	"github.com/skiff2d/skiff/internal/entity"
)

// MinCellSize is the floor for the bin cell size, in world units.
const MinCellSize = 32

// Bin is the broad-phase uniform grid. It is cleared and repopulated
// every frame — entities are never removed individually. An entity is
// inserted into every cell its world bounds overlaps.
//
// Accessed only from the frame goroutine — no locks.
type Bin struct {
	cellSize float64
	cells    map[uint64][]*entity.Entity
}

// NewBin builds a bin; cell sizes below MinCellSize are clamped.
func NewBin(cellSize float64) *Bin {
	return &Bin{
		cellSize: math.Max(MinCellSize, cellSize),
		cells:    make(map[uint64][]*entity.Entity),
	}
}

// CellSize returns the current (possibly auto-tuned) cell size.
func (b *Bin) CellSize() float64 { return b.cellSize }

func cellKey(cx, cy int32) uint64 {
	return uint64(uint32(cx))<<32 | uint64(uint32(cy))
}

// CellCoords maps a world coordinate to its cell.
func (b *Bin) CellCoords(x, y float64) (int32, int32) {
	return int32(math.Floor(x / b.cellSize)), int32(math.Floor(y / b.cellSize))
}

// Clear drops all cell contents, keeping the allocated buckets.
func (b *Bin) Clear() {
	for k, cell := range b.cells {
		b.cells[k] = cell[:0]
	}
}

// Insert adds e to every cell its world bounds overlaps. Entities with
// no world bounds are skipped.
func (b *Bin) Insert(e *entity.Entity) bool {
	if e == nil {
		panic("collision: Insert with nil entity")
	}
	if e.WorldBounds == nil {
		return false
	}
	cx0, cy0 := b.CellCoords(e.WorldBounds.Min.X, e.WorldBounds.Min.Y)
	cx1, cy1 := b.CellCoords(e.WorldBounds.Max.X, e.WorldBounds.Max.Y)
	for cy := cy0; cy <= cy1; cy++ {
		for cx := cx0; cx <= cx1; cx++ {
			k := cellKey(cx, cy)
			b.cells[k] = append(b.cells[k], e)
		}
	}
	return true
}

// Cell returns the entity list for one cell; nil when empty.
func (b *Bin) Cell(cx, cy int32) []*entity.Entity {
	cell := b.cells[cellKey(cx, cy)]
	if len(cell) == 0 {
		return nil
	}
	return cell
}

// Neighbors returns the union of the cell and its eight neighbors,
// deduplicated. Used for broad-phase candidate generation.
func (b *Bin) Neighbors(cx, cy int32) []*entity.Entity {
	var result []*entity.Entity
	seen := make(map[uint64]struct{})
	for dy := int32(-1); dy <= 1; dy++ {
		for dx := int32(-1); dx <= 1; dx++ {
			for _, e := range b.cells[cellKey(cx+dx, cy+dy)] {
				if _, dup := seen[e.ID]; dup {
					continue
				}
				seen[e.ID] = struct{}{}
				result = append(result, e)
			}
		}
	}
	return result
}

// AutoTune samples one entity per occupied cell, averages their bounds
// diagonals, and sets the cell size to max(MinCellSize, 2×average). This
// keeps cells populated with a small, roughly constant candidate count
// regardless of entity size distribution. Takes effect on the next
// rebuild.
func (b *Bin) AutoTune() {
	var sum float64
	var n int
	for _, cell := range b.cells {
		if len(cell) == 0 {
			continue
		}
		sample := cell[0]
		if sample.WorldBounds == nil {
			continue
		}
		sum += sample.WorldBounds.Diagonal()
		n++
	}
	if n == 0 {
		return
	}
	b.cellSize = math.Max(MinCellSize, 2*sum/float64(n))
}
