// Package audio holds the engine-side playback state shared with the
// background mixer goroutine. Actual PCM decoding and output are an
// external collaborator behind the Sink interface; this package only
// enforces the locking discipline around the shared state.
package audio

import "sync"

// Sink is implemented by the platform mixer. Its methods are called with
// the Context mutex held, from either the frame goroutine (script
// bindings, audio system) or the mixer's own maintenance callbacks.
type Sink interface {
	// Play starts the track at the given volume; SetVolume is only used
	// for adjustments while a track is already playing.
	Play(track string, loop bool, volume float64) error
	Stop(track string)
	SetVolume(track string, volume float64)
}

// trackState mirrors what the engine last told the sink, so the audio
// system can reconcile component state without redundant sink calls.
type trackState struct {
	playing bool
	looping bool
	volume  float64
}

// Context is the single cross-thread shared-mutable-state boundary in
// the core. Every access to the sink or the track table must hold mu.
// It is passed explicitly to the audio system and the script binding
// layer — never a package global.
type Context struct {
	mu     sync.Mutex
	sink   Sink
	tracks map[string]trackState
}

// NewContext wraps a sink. A nil sink is allowed: state is tracked but
// no playback happens (headless runs, tests).
func NewContext(sink Sink) *Context {
	return &Context{
		sink:   sink,
		tracks: make(map[string]trackState),
	}
}

// Play starts (or restarts the intent to play) a track.
func (c *Context) Play(track string, loop bool, volume float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.tracks[track]
	if st.playing && st.looping == loop && st.volume == volume {
		return nil
	}
	if c.sink != nil {
		if !st.playing || st.looping != loop {
			if err := c.sink.Play(track, loop, volume); err != nil {
				return err
			}
		} else if st.volume != volume {
			c.sink.SetVolume(track, volume)
		}
	}
	c.tracks[track] = trackState{playing: true, looping: loop, volume: volume}
	return nil
}

// Stop halts a track; unknown tracks are a no-op.
func (c *Context) Stop(track string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.tracks[track]
	if !ok || !st.playing {
		return
	}
	if c.sink != nil {
		c.sink.Stop(track)
	}
	st.playing = false
	c.tracks[track] = st
}

// SetVolume adjusts a playing track's volume.
func (c *Context) SetVolume(track string, volume float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.tracks[track]
	if !ok {
		return
	}
	if st.volume == volume {
		return
	}
	st.volume = volume
	c.tracks[track] = st
	if c.sink != nil && st.playing {
		c.sink.SetVolume(track, volume)
	}
}

// Playing reports whether the engine considers the track playing.
func (c *Context) Playing(track string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracks[track].playing
}
