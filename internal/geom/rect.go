package geom

import "math"

// rotationEpsilon is the threshold below which a rect is treated as
// axis-aligned, skipping the cos/sin corner transform.
const rotationEpsilon = 1e-9

// Watcher is notified synchronously after any mutating setter on a Rect.
// A watcher must not mutate the same rect's geometry from inside the
// callback (non-reentrant).
type Watcher func(*Rect)

// Rect is a rectangle with an optional rotation (radians, about its own
// center). Mutation goes through the setters so that watchers — typically
// a collider's bounds recompute — observe every geometry change.
type Rect struct {
	X        float64
	Y        float64
	W        float64
	H        float64
	Rotation float64

	watchers []Watcher
}

// NewRect returns an axis-aligned rect at (x, y) with size w×h.
func NewRect(x, y, w, h float64) *Rect {
	return &Rect{X: x, Y: y, W: w, H: h}
}

// Watch registers fn to be called after every mutating setter.
// Watchers are not carried over by Clone.
func (r *Rect) Watch(fn Watcher) {
	r.watchers = append(r.watchers, fn)
}

// Clone copies the geometry only. The clone starts with no watchers.
func (r *Rect) Clone() *Rect {
	return &Rect{X: r.X, Y: r.Y, W: r.W, H: r.H, Rotation: r.Rotation}
}

func (r *Rect) notify() {
	for _, fn := range r.watchers {
		fn(r)
	}
}

// SetPos moves the rect origin and notifies watchers.
func (r *Rect) SetPos(x, y float64) {
	r.X, r.Y = x, y
	r.notify()
}

// SetSize resizes the rect and notifies watchers.
func (r *Rect) SetSize(w, h float64) {
	r.W, r.H = w, h
	r.notify()
}

// SetRotation sets the rotation in radians and notifies watchers.
func (r *Rect) SetRotation(rad float64) {
	r.Rotation = rad
	r.notify()
}

// Set replaces the whole geometry in one notification.
func (r *Rect) Set(x, y, w, h, rad float64) {
	r.X, r.Y, r.W, r.H, r.Rotation = x, y, w, h, rad
	r.notify()
}

// Center returns the rect center point.
func (r *Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// AxisAligned reports whether the rotation is below the epsilon where the
// rect is treated as axis-aligned.
func (r *Rect) AxisAligned() bool {
	return math.Abs(r.Rotation) < rotationEpsilon
}

// Corners returns the four corner points. Axis-aligned rects take the
// fast path; rotated rects spin each corner around the rect center.
func (r *Rect) Corners() [4]Point {
	if r.AxisAligned() {
		return [4]Point{
			{X: r.X, Y: r.Y},
			{X: r.X + r.W, Y: r.Y},
			{X: r.X + r.W, Y: r.Y + r.H},
			{X: r.X, Y: r.Y + r.H},
		}
	}
	c := r.Center()
	sin, cos := math.Sincos(r.Rotation)
	rot := func(p Point) Point {
		dx, dy := p.X-c.X, p.Y-c.Y
		return Point{
			X: c.X + dx*cos - dy*sin,
			Y: c.Y + dx*sin + dy*cos,
		}
	}
	return [4]Point{
		rot(Point{X: r.X, Y: r.Y}),
		rot(Point{X: r.X + r.W, Y: r.Y}),
		rot(Point{X: r.X + r.W, Y: r.Y + r.H}),
		rot(Point{X: r.X, Y: r.Y + r.H}),
	}
}

// Bounds returns the minimal axis-aligned box containing all four
// (possibly rotated) corners.
func (r *Rect) Bounds() Bounds {
	c := r.Corners()
	return BoundsFromPoints(c[:])
}

// Translated returns a copy of the geometry shifted by off. Rotation is
// preserved; the copy has no watchers.
func (r *Rect) Translated(off Point) *Rect {
	return &Rect{X: r.X + off.X, Y: r.Y + off.Y, W: r.W, H: r.H, Rotation: r.Rotation}
}

// Intersects reports whether two possibly-rotated rects overlap with
// positive area, via separating-axis testing over both rects' edge
// normals. Edge or corner contact alone does not count.
func Intersects(a, b *Rect) bool {
	if a.AxisAligned() && b.AxisAligned() {
		return a.Bounds().Intersects(b.Bounds())
	}
	ca := a.Corners()
	cb := b.Corners()
	return !separated(ca, cb) && !separated(cb, ca)
}

// separated reports whether any edge normal of poly a separates the two
// corner sets. Projections touching at a single value do not overlap.
func separated(a, b [4]Point) bool {
	for i := 0; i < 4; i++ {
		edge := a[(i+1)%4].Sub(a[i])
		// Normal of the edge; length is irrelevant for interval comparison.
		axis := Point{X: -edge.Y, Y: edge.X}
		minA, maxA := project(a, axis)
		minB, maxB := project(b, axis)
		if maxA <= minB || maxB <= minA {
			return true
		}
	}
	return false
}

func project(pts [4]Point, axis Point) (min, max float64) {
	min = pts[0].X*axis.X + pts[0].Y*axis.Y
	max = min
	for _, p := range pts[1:] {
		d := p.X*axis.X + p.Y*axis.Y
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}
