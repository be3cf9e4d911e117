package component

import (
	"github.com/skiff2d/skiff/internal/entity"
	"github.com/skiff2d/skiff/internal/geom"
)

// Music holds the desired playback state for one track. The audio system
// reconciles this state against the audio context each frame; all actual
// playback mutation happens there, under the context mutex shared with
// the background mixer goroutine.
type Music struct {
	Track   string
	Playing bool
	Looping bool
	Volume  float64 // 0..1
}

func NewMusic(track string) *Music {
	if track == "" {
		panic("component: NewMusic with empty track name")
	}
	return &Music{Track: track, Volume: 1}
}

func (m *Music) Kind() entity.Kind { return entity.KindMusic }
func (m *Music) OnAttach(*entity.Entity) {}
func (m *Music) Destroy() {}
func (m *Music) Bounds() (geom.Bounds, bool) { return geom.Bounds{}, false }

func (m *Music) Copy() entity.Variant {
	cp := *m
	// Playback restarts on the copy rather than resuming mid-track.
	cp.Playing = false
	return &cp
}
