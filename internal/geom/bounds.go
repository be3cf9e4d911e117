package geom

import "math"

// Bounds is an axis-aligned bounding box in world or entity-local space.
type Bounds struct {
	Min Point
	Max Point
}

// BoundsFromPoints builds the minimal box enclosing every given point.
// Panics on an empty slice — callers represent "no bounds" as a nil *Bounds.
func BoundsFromPoints(pts []Point) Bounds {
	if len(pts) == 0 {
		panic("geom: BoundsFromPoints on empty point set")
	}
	b := Bounds{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		b.Min.X = math.Min(b.Min.X, p.X)
		b.Min.Y = math.Min(b.Min.Y, p.Y)
		b.Max.X = math.Max(b.Max.X, p.X)
		b.Max.Y = math.Max(b.Max.Y, p.Y)
	}
	return b
}

// Union returns the minimal box enclosing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		Min: Point{X: math.Min(b.Min.X, o.Min.X), Y: math.Min(b.Min.Y, o.Min.Y)},
		Max: Point{X: math.Max(b.Max.X, o.Max.X), Y: math.Max(b.Max.Y, o.Max.Y)},
	}
}

// Translate returns b shifted by offset.
func (b Bounds) Translate(off Point) Bounds {
	return Bounds{Min: b.Min.Add(off), Max: b.Max.Add(off)}
}

// Intersects reports whether the boxes overlap with positive area.
// Edge contact does not count as an intersection.
func (b Bounds) Intersects(o Bounds) bool {
	return b.Min.X < o.Max.X && b.Max.X > o.Min.X &&
		b.Min.Y < o.Max.Y && b.Max.Y > o.Min.Y
}

// Width returns the horizontal extent of the box.
func (b Bounds) Width() float64 { return b.Max.X - b.Min.X }

// Height returns the vertical extent of the box.
func (b Bounds) Height() float64 { return b.Max.Y - b.Min.Y }

// Diagonal returns the length of the box diagonal. Used by the spatial
// bin to auto-tune its cell size from the entity size distribution.
func (b Bounds) Diagonal() float64 {
	return math.Hypot(b.Width(), b.Height())
}
