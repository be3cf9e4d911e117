package system

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skiff2d/skiff/internal/component"
	"github.com/skiff2d/skiff/internal/entity"
	"github.com/skiff2d/skiff/internal/geom"
	"github.com/skiff2d/skiff/internal/render"
)

type recordingRenderer struct {
	textures []string
}

func (r *recordingRenderer) DrawTexture(texture string, frame int, pos geom.Point, flipX, flipY bool, order int) {
	r.textures = append(r.textures, texture)
}
func (r *recordingRenderer) DrawText(font, value string, pos geom.Point, color [4]uint8, order int) {
}
func (r *recordingRenderer) DrawRect(*geom.Rect, [4]uint8, int) {}
func (r *recordingRenderer) DrawPolyline([]geom.Point, [4]uint8, int) {}

func addSprite(s *RenderSystem, x, y float64, texture string) {
	e := entity.New()
	e.SetPos(x, y)
	c := entity.NewComponent(component.NewSprite(texture, 1))
	e.AddComponent(c)
	s.OnComponentAdded(c)
}

func TestRenderSystemCullsOffscreenSprites(t *testing.T) {
	atlas := &fakeAtlas{
		frames: map[string]int{"hero": 1},
		size:   geom.Bounds{Max: geom.Point{X: 16, Y: 16}},
	}
	rec := &recordingRenderer{}
	cam := render.Camera{Viewport: geom.Bounds{Max: geom.Point{X: 100, Y: 100}}}
	s := NewRenderSystem(rec, atlas, cam)

	addSprite(s, 10, 10, "hero")
	addSprite(s, 500, 500, "hero")
	// A texture the atlas does not know has no frame bounds to cull by.
	addSprite(s, 500, 500, "mystery")

	s.Update(0)
	assert.Equal(t, []string{"hero", "mystery"}, rec.textures)
}

func TestRenderSystemEmptyCameraDrawsEverything(t *testing.T) {
	atlas := &fakeAtlas{
		frames: map[string]int{"hero": 1},
		size:   geom.Bounds{Max: geom.Point{X: 16, Y: 16}},
	}
	rec := &recordingRenderer{}
	s := NewRenderSystem(rec, atlas, render.Camera{})

	addSprite(s, 500, 500, "hero")
	s.Update(0)
	assert.Equal(t, []string{"hero"}, rec.textures, "no viewport set, culling disabled")
}
