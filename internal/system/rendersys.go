package system

import (
	"time"

	"github.com/skiff2d/skiff/internal/asset"
	"github.com/skiff2d/skiff/internal/component"
	coresys "github.com/skiff2d/skiff/internal/core/system"
	"github.com/skiff2d/skiff/internal/entity"
	"github.com/skiff2d/skiff/internal/geom"
	"github.com/skiff2d/skiff/internal/render"
)

var debugColliderColor = [4]uint8{0, 255, 0, 160}

// RenderSystem submits visible sprites, texts, and debug collider
// outlines to the renderer callbacks in the LATE phase, after all EARLY
// mutation has settled. With a nil renderer (headless) it is inert.
//
// Given an asset source and a non-empty camera, sprites whose current
// frame falls entirely outside the viewport are culled before
// submission.
type RenderSystem struct {
	coresys.Base
	renderer render.Renderer
	assets   asset.Source
	camera   render.Camera

	sprites   []*entity.Component
	texts     []*entity.Component
	colliders []*entity.Component
}

func NewRenderSystem(renderer render.Renderer, assets asset.Source, camera render.Camera) *RenderSystem {
	return &RenderSystem{renderer: renderer, assets: assets, camera: camera}
}

func (s *RenderSystem) Name() string { return "render" }
func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseLate }

// SetCamera replaces the viewport used for world→screen conversion.
func (s *RenderSystem) SetCamera(c render.Camera) { s.camera = c }

func (s *RenderSystem) Accepts(k entity.Kind) bool {
	return k == entity.KindSprite || k == entity.KindText || k == entity.KindCollider
}

func (s *RenderSystem) OnComponentAdded(c *entity.Component) {
	switch c.Kind() {
	case entity.KindSprite:
		s.sprites = append(s.sprites, c)
	case entity.KindText:
		s.texts = append(s.texts, c)
	case entity.KindCollider:
		s.colliders = append(s.colliders, c)
	}
}

func (s *RenderSystem) OnComponentRemoved(c *entity.Component) {
	var list *[]*entity.Component
	switch c.Kind() {
	case entity.KindSprite:
		list = &s.sprites
	case entity.KindText:
		list = &s.texts
	case entity.KindCollider:
		list = &s.colliders
	default:
		return
	}
	for i, got := range *list {
		if got == c {
			last := len(*list) - 1
			(*list)[i] = (*list)[last]
			(*list)[last] = nil
			*list = (*list)[:last]
			return
		}
	}
}

func drawable(c *entity.Component) bool {
	e := c.Owner
	return e != nil && !e.Destroyed && e.Active && e.Visible && c.Active
}

func (s *RenderSystem) Update(_ time.Duration) {
	if s.renderer == nil {
		return
	}
	cull := s.assets != nil && !s.camera.Empty()
	for _, c := range s.sprites {
		if !drawable(c) {
			continue
		}
		sp := c.Data.(*component.Sprite)
		if cull {
			if fb, ok := s.assets.FrameBounds(sp.Texture, sp.Frame); ok && !s.camera.Contains(fb.Translate(c.Owner.Pos)) {
				continue
			}
		}
		pos := s.camera.ToScreen(c.Owner.Pos)
		s.renderer.DrawTexture(sp.Texture, sp.Frame, pos, sp.FlipX, sp.FlipY, sp.Order)
	}
	for _, c := range s.texts {
		if !drawable(c) {
			continue
		}
		tx := c.Data.(*component.Text)
		s.renderer.DrawText(tx.Font, tx.Value, s.camera.ToScreen(c.Owner.Pos), tx.Color, tx.Order)
	}
	for _, c := range s.colliders {
		if !drawable(c) {
			continue
		}
		col := c.Data.(*component.Collider)
		if !col.DebugDraw {
			continue
		}
		for i := 0; i < col.RectCount(); i++ {
			wr := col.WorldRect(i, c.Owner.Pos)
			corners := wr.Corners()
			pts := make([]geom.Point, 0, 5)
			for _, p := range corners {
				pts = append(pts, s.camera.ToScreen(p))
			}
			pts = append(pts, pts[0]) // close the loop
			s.renderer.DrawPolyline(pts, debugColliderColor, 0)
		}
	}
}
