// Package asset defines the lookup interface the engine core consumes
// from the asset/atlas subsystem. Loading and atlas management are
// external collaborators.
package asset

import "github.com/skiff2d/skiff/internal/geom"

// Source resolves texture names and per-frame geometry.
type Source interface {
	// HasTexture reports whether a texture with the given name exists.
	HasTexture(name string) bool

	// FrameCount returns the number of frames a texture carries, or 0
	// when the texture is unknown.
	FrameCount(name string) int

	// FrameBounds returns one frame's local-space rectangle, with the
	// origin at the sprite position it is drawn under.
	FrameBounds(name string, frame int) (geom.Bounds, bool)
}
