package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/skiff2d/skiff/internal/audio"
	"github.com/skiff2d/skiff/internal/component"
	coresys "github.com/skiff2d/skiff/internal/core/system"
	"github.com/skiff2d/skiff/internal/entity"
)

// AudioSystem reconciles Music component state against the audio
// context each EARLY frame. Every context call takes the mutex shared
// with the background mixer goroutine; this system and the script
// bindings are the only writers.
type AudioSystem struct {
	coresys.Base
	ctx *audio.Context
	log *zap.Logger

	music []*entity.Component
}

func NewAudioSystem(ctx *audio.Context, log *zap.Logger) *AudioSystem {
	if ctx == nil {
		panic("system: NewAudioSystem with nil audio context")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AudioSystem{ctx: ctx, log: log}
}

func (s *AudioSystem) Name() string { return "audio" }
func (s *AudioSystem) Phase() coresys.Phase { return coresys.PhaseEarly }

func (s *AudioSystem) Accepts(k entity.Kind) bool { return k == entity.KindMusic }

func (s *AudioSystem) OnComponentAdded(c *entity.Component) {
	s.music = append(s.music, c)
}

func (s *AudioSystem) OnComponentRemoved(c *entity.Component) {
	for i, got := range s.music {
		if got == c {
			// Detached music stops playing.
			s.ctx.Stop(c.Data.(*component.Music).Track)
			last := len(s.music) - 1
			s.music[i] = s.music[last]
			s.music[last] = nil
			s.music = s.music[:last]
			return
		}
	}
}

func (s *AudioSystem) Update(_ time.Duration) {
	for _, c := range s.music {
		e := c.Owner
		m := c.Data.(*component.Music)
		active := e != nil && !e.Destroyed && e.Active && c.Active
		if !active || !m.Playing {
			s.ctx.Stop(m.Track)
			continue
		}
		if err := s.ctx.Play(m.Track, m.Looping, m.Volume); err != nil {
			s.log.Warn("music playback failed",
				zap.String("track", m.Track),
				zap.Error(err))
			m.Playing = false
		}
	}
}
