package system

import (
	"time"

	"github.com/skiff2d/skiff/internal/asset"
	"github.com/skiff2d/skiff/internal/component"
	coresys "github.com/skiff2d/skiff/internal/core/system"
	"github.com/skiff2d/skiff/internal/entity"
)

// SpriteSystem advances sprite animation frames in the EARLY phase, so
// the LATE render pass observes the frame chosen for this frame tick.
//
// When an asset source is attached, the atlas is authoritative for frame
// counts: a sprite whose texture the atlas knows is reconciled against
// it on attach, so animation never runs past the frames that exist.
type SpriteSystem struct {
	coresys.Base
	assets  asset.Source
	sprites []*entity.Component
}

// NewSpriteSystem builds the system. assets may be nil; sprites then
// keep their declared frame counts.
func NewSpriteSystem(assets asset.Source) *SpriteSystem {
	return &SpriteSystem{assets: assets}
}

func (s *SpriteSystem) Name() string { return "sprite" }
func (s *SpriteSystem) Phase() coresys.Phase { return coresys.PhaseEarly }

func (s *SpriteSystem) Accepts(k entity.Kind) bool { return k == entity.KindSprite }

func (s *SpriteSystem) OnComponentAdded(c *entity.Component) {
	sp := c.Data.(*component.Sprite)
	if s.assets != nil && s.assets.HasTexture(sp.Texture) {
		if n := s.assets.FrameCount(sp.Texture); n > 0 && n != sp.FrameCount {
			sp.FrameCount = n
			if sp.Frame >= n {
				sp.Frame = 0
			}
		}
	}
	s.sprites = append(s.sprites, c)
}

func (s *SpriteSystem) OnComponentRemoved(c *entity.Component) {
	for i, got := range s.sprites {
		if got == c {
			last := len(s.sprites) - 1
			s.sprites[i] = s.sprites[last]
			s.sprites[last] = nil
			s.sprites = s.sprites[:last]
			return
		}
	}
}

func (s *SpriteSystem) Update(dt time.Duration) {
	secs := dt.Seconds()
	for _, c := range s.sprites {
		e := c.Owner
		if e == nil || e.Destroyed || !e.Active || !c.Active {
			continue
		}
		c.Data.(*component.Sprite).Advance(secs)
	}
}
