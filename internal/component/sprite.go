package component

import (
	"github.com/skiff2d/skiff/internal/entity"
	"github.com/skiff2d/skiff/internal/geom"
)

// Sprite references a texture by name and animates through its frames.
// Frame geometry lives in the asset layer; the sprite only tracks which
// frame is current and how it is flipped when drawn.
type Sprite struct {
	Texture    string
	Frame      int
	FrameCount int
	FrameTime  float64 // seconds per frame; 0 disables animation
	FlipX      bool
	FlipY      bool
	Order      int // draw order, higher draws later

	elapsed float64
}

func NewSprite(texture string, frameCount int) *Sprite {
	if texture == "" {
		panic("component: NewSprite with empty texture name")
	}
	if frameCount < 1 {
		frameCount = 1
	}
	return &Sprite{Texture: texture, FrameCount: frameCount}
}

func (s *Sprite) Kind() entity.Kind { return entity.KindSprite }
func (s *Sprite) OnAttach(*entity.Entity) {}
func (s *Sprite) Destroy() {}
func (s *Sprite) Bounds() (geom.Bounds, bool) { return geom.Bounds{}, false }

func (s *Sprite) Copy() entity.Variant {
	cp := *s
	return &cp
}

// Advance steps the frame timer by dt seconds, wrapping the frame index.
func (s *Sprite) Advance(dt float64) {
	if s.FrameTime <= 0 || s.FrameCount <= 1 {
		return
	}
	s.elapsed += dt
	for s.elapsed >= s.FrameTime {
		s.elapsed -= s.FrameTime
		s.Frame = (s.Frame + 1) % s.FrameCount
	}
}

// Text draws a string with a named font. Layout and glyph metrics are
// renderer concerns; the component is plain data.
type Text struct {
	Value string
	Font  string
	Color [4]uint8 // RGBA
	Order int
}

func NewText(value, font string) *Text {
	return &Text{Value: value, Font: font, Color: [4]uint8{255, 255, 255, 255}}
}

func (t *Text) Kind() entity.Kind { return entity.KindText }
func (t *Text) OnAttach(*entity.Entity) {}
func (t *Text) Destroy() {}
func (t *Text) Bounds() (geom.Bounds, bool) { return geom.Bounds{}, false }

func (t *Text) Copy() entity.Variant {
	cp := *t
	return &cp
}
