package collision

import "github.com/skiff2d/skiff/internal/entity"

// pairRef remembers the two entities behind an active pair key, so pairs
// that stop being broad-phase candidates can still be exited.
type pairRef struct {
	a *entity.Entity
	b *entity.Entity
}

// Tracker classifies pair transitions across frames using the
// double-buffered "touching" sets on each entity. One pass per frame:
//
//	BeginPass → Classify(per candidate pair) → FinishPass
//
// Classify writes Enter/Stay keys into both entities' current sets;
// FinishPass sweeps pairs that were touching last frame but were never
// re-confirmed this frame (moved apart, despawned, or no longer
// broad-phase candidates) and reports them as exits.
type Tracker struct {
	active map[uint64]pairRef
}

func NewTracker() *Tracker {
	return &Tracker{active: make(map[uint64]pairRef)}
}

// BeginPass swaps every entity's pair buffers: previous takes last
// frame's current, and the new current starts cleared.
func (t *Tracker) BeginPass(entities []*entity.Entity) {
	for _, e := range entities {
		e.SwapPairs()
	}
}

// Classify resolves the transition state for pair (a, b) given this
// frame's overlap fact. Enter and Stay record the pair key in both
// entities' current sets so Stay persists across frames; Exit retires
// the pair immediately so FinishPass does not report it again.
func (t *Tracker) Classify(a, b *entity.Entity, overlapping bool) State {
	if a == nil || b == nil {
		panic("collision: Classify with nil entity")
	}
	key := PairKey(a.ID, b.ID)
	_, before := a.PreviousPairs[key]
	switch {
	case overlapping && !before:
		a.CurrentPairs[key] = struct{}{}
		b.CurrentPairs[key] = struct{}{}
		t.active[key] = pairRef{a: a, b: b}
		return StateEnter
	case overlapping && before:
		a.CurrentPairs[key] = struct{}{}
		b.CurrentPairs[key] = struct{}{}
		t.active[key] = pairRef{a: a, b: b}
		return StateStay
	case !overlapping && before:
		delete(a.CurrentPairs, key)
		delete(b.CurrentPairs, key)
		delete(t.active, key)
		return StateExit
	default:
		return StateNone
	}
}

// FinishPass reports exits for active pairs that were not re-confirmed
// by Classify this frame. Pairs involving destroyed entities are retired
// silently.
func (t *Tracker) FinishPass(onExit func(a, b *entity.Entity)) {
	for key, p := range t.active {
		if _, ok := p.a.CurrentPairs[key]; ok {
			continue
		}
		delete(t.active, key)
		if p.a.Destroyed || p.b.Destroyed {
			continue
		}
		if onExit != nil {
			onExit(p.a, p.b)
		}
	}
}

// ActivePairs returns the number of currently touching pairs.
func (t *Tracker) ActivePairs() int { return len(t.active) }
