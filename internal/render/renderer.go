// Package render defines the narrow interface the engine core submits
// draw data through. Actual rendering (textures, fonts, GPU state) is an
// external collaborator.
package render

import "github.com/skiff2d/skiff/internal/geom"

// Camera is the world-space viewport used to convert world coordinates
// to screen space.
type Camera struct {
	Viewport geom.Bounds
}

// ToScreen converts a world point into screen space for the current
// viewport.
func (c Camera) ToScreen(p geom.Point) geom.Point {
	return p.Sub(c.Viewport.Min)
}

// Contains reports whether the world-space box is at least partly inside
// the viewport.
func (c Camera) Contains(b geom.Bounds) bool {
	return c.Viewport.Intersects(b)
}

// Empty reports whether the viewport has no area. An empty camera means
// "no viewport set": conversion still works, culling is disabled.
func (c Camera) Empty() bool {
	return c.Viewport.Max.X <= c.Viewport.Min.X || c.Viewport.Max.Y <= c.Viewport.Min.Y
}

// Renderer is the set of draw callbacks a renderer supplies. Coordinates are
// screen space; Order is the draw-order key (higher draws later);
// texture and font references are opaque names resolved by the asset
// layer.
type Renderer interface {
	DrawTexture(texture string, frame int, pos geom.Point, flipX, flipY bool, order int)
	DrawText(font, value string, pos geom.Point, color [4]uint8, order int)
	DrawRect(r *geom.Rect, color [4]uint8, order int)
	DrawPolyline(pts []geom.Point, color [4]uint8, order int)
}
