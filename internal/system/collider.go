package system

import (
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/skiff2d/skiff/internal/collision"
	"github.com/skiff2d/skiff/internal/component"
	coresys "github.com/skiff2d/skiff/internal/core/system"
	"github.com/skiff2d/skiff/internal/entity"
	"github.com/skiff2d/skiff/internal/scripting"
)

// ColliderSystem runs the whole per-frame collision pass in the EARLY
// phase: world-bounds refresh, spatial bin rebuild, broad-phase
// candidate generation, narrow-phase testing, enter/stay/exit
// classification, and script callback dispatch. It tracks collider and
// map components in dense private slices via the accept-filter hooks.
type ColliderSystem struct {
	coresys.Base
	resolver *collision.Resolver
	bin      *collision.Bin
	tracker  *collision.Tracker
	scripts  *scripting.Engine
	log      *zap.Logger

	colliders []*entity.Component
	maps      []*entity.Component

	// cellPairs tracks which map cells each (entity, map) pair touched
	// last frame, double-buffered like the entity pair sets, for
	// cell_enter/cell_exit dispatch.
	cellPairs map[uint64]map[uint64]struct{}

	autoTuneEvery int
	frames        int

	hits []collision.Hit // scratch, reused across frames
}

// NewColliderSystem wires the collision subsystem. autoTuneEvery is in
// frames; 0 disables auto-tuning.
func NewColliderSystem(bin *collision.Bin, scripts *scripting.Engine, autoTuneEvery int, log *zap.Logger) *ColliderSystem {
	if bin == nil {
		panic("system: NewColliderSystem with nil bin")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ColliderSystem{
		resolver:      collision.NewResolver(),
		bin:           bin,
		tracker:       collision.NewTracker(),
		scripts:       scripts,
		log:           log,
		cellPairs:     make(map[uint64]map[uint64]struct{}),
		autoTuneEvery: autoTuneEvery,
	}
}

func (s *ColliderSystem) Name() string { return "collider" }
func (s *ColliderSystem) Phase() coresys.Phase { return coresys.PhaseEarly }

func (s *ColliderSystem) Accepts(k entity.Kind) bool {
	return k == entity.KindCollider || k == entity.KindMap
}

func (s *ColliderSystem) OnComponentAdded(c *entity.Component) {
	switch c.Kind() {
	case entity.KindCollider:
		s.colliders = append(s.colliders, c)
	case entity.KindMap:
		s.maps = append(s.maps, c)
	}
}

func (s *ColliderSystem) OnComponentRemoved(c *entity.Component) {
	var list *[]*entity.Component
	switch c.Kind() {
	case entity.KindCollider:
		list = &s.colliders
	case entity.KindMap:
		list = &s.maps
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

// Tracker exposes the pair tracker (tests, debug overlays).
func (s *ColliderSystem) Tracker() *collision.Tracker { return s.tracker }

func (s *ColliderSystem) Update(_ time.Duration) {
	entities := s.activeEntities()

	// 1. Cheap world-bounds refresh; geometry recompute already ran from
	// rect watchers when something actually changed.
	for _, e := range entities {
		e.RefreshWorldBounds()
	}

	// 2. Rebuild the bin from scratch.
	s.bin.Clear()
	for _, e := range entities {
		s.bin.Insert(e)
	}

	// 3. Pair pass.
	s.tracker.BeginPass(entities)
	tested := make(map[uint64]struct{})
	for _, a := range entities {
		if a.WorldBounds == nil {
			continue
		}
		// With auto-tuned cells (≥ 2× the average diagonal) an entity's
		// extent fits inside the 3×3 neighborhood of its center cell.
		cx, cy := s.bin.CellCoords(
			(a.WorldBounds.Min.X+a.WorldBounds.Max.X)/2,
			(a.WorldBounds.Min.Y+a.WorldBounds.Max.Y)/2)
		for _, b := range s.bin.Neighbors(cx, cy) {
			if b.ID == a.ID {
				continue
			}
			key := collision.PairKey(a.ID, b.ID)
			if _, done := tested[key]; done {
				continue
			}
			tested[key] = struct{}{}
			overlapping := s.resolver.TestEntities(a, b)
			switch s.tracker.Classify(a, b, overlapping) {
			case collision.StateEnter:
				s.dispatchPair(component.FnCollisionEnter, a, b)
			case collision.StateStay:
				s.dispatchPair(component.FnCollisionStay, a, b)
			case collision.StateExit:
				s.dispatchPair(component.FnCollisionExit, a, b)
			}
		}
	}
	s.tracker.FinishPass(func(a, b *entity.Entity) {
		s.dispatchPair(component.FnCollisionExit, a, b)
	})

	// 4. Entity-vs-map pass for map-interacting colliders.
	s.mapPass(entities)

	// 5. Periodic bin auto-tune.
	if s.autoTuneEvery > 0 {
		s.frames++
		if s.frames >= s.autoTuneEvery {
			s.frames = 0
			before := s.bin.CellSize()
			s.bin.AutoTune()
			if after := s.bin.CellSize(); after != before {
				s.log.Debug("spatial bin retuned",
					zap.Float64("cell_size", after))
			}
		}
	}
}

// activeEntities collects the distinct, live, active owners of tracked
// collider components.
func (s *ColliderSystem) activeEntities() []*entity.Entity {
	out := make([]*entity.Entity, 0, len(s.colliders))
	seen := make(map[uint64]struct{}, len(s.colliders))
	for _, c := range s.colliders {
		e := c.Owner
		if e == nil || e.Destroyed || !e.Active || !c.Active {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}

func (s *ColliderSystem) mapPass(entities []*entity.Entity) {
	if len(s.maps) == 0 {
		return
	}
	for _, mc := range s.maps {
		mapEnt := mc.Owner
		if mapEnt == nil || mapEnt.Destroyed || !mapEnt.Active || !mc.Active {
			continue
		}
		mapEnt.RefreshWorldBounds()
		for _, e := range entities {
			if e.ID == mapEnt.ID || !s.mapInteracting(e) {
				continue
			}
			s.hits = s.hits[:0]
			s.resolver.TestEntityMap(mapEnt, e, &s.hits)
			s.classifyCells(mapEnt, e, s.hits)
		}
	}
}

func (s *ColliderSystem) mapInteracting(e *entity.Entity) bool {
	for _, c := range e.Components {
		if !c.Active {
			continue
		}
		if col, ok := c.Data.(*component.Collider); ok && col.MapInteraction {
			return true
		}
	}
	return false
}

func packCell(cx, cy int) uint64 {
	return uint64(uint32(int32(cx)))<<32 | uint64(uint32(int32(cy)))
}

// classifyCells diffs this frame's intersecting cell set against last
// frame's for the (entity, map) pair, dispatching cell_enter for new
// cells and cell_exit for vacated ones. Unlike the entity pair pass,
// every cell is enumerated — the callbacks depend on it.
func (s *ColliderSystem) classifyCells(mapEnt, e *entity.Entity, hits []collision.Hit) {
	pair := collision.PairKey(e.ID, mapEnt.ID)
	prev := s.cellPairs[pair]
	cur := make(map[uint64]struct{}, len(hits))
	for _, h := range hits {
		ck := packCell(h.CellX, h.CellY)
		cur[ck] = struct{}{}
		if _, had := prev[ck]; !had {
			s.dispatchCell(component.FnCellEnter, e, mapEnt, h.CellX, h.CellY)
		}
	}
	for ck := range prev {
		if _, still := cur[ck]; !still {
			cx := int(int32(ck >> 32))
			cy := int(int32(uint32(ck)))
			s.dispatchCell(component.FnCellExit, e, mapEnt, cx, cy)
		}
	}
	if len(cur) == 0 {
		delete(s.cellPairs, pair)
	} else {
		s.cellPairs[pair] = cur
	}
}

// dispatchPair invokes the collision callback on both participants,
// passing the other entity's id — symmetric, always both directions.
func (s *ColliderSystem) dispatchPair(fn string, a, b *entity.Entity) {
	s.invoke(a, fn, lua.LNumber(b.ID))
	s.invoke(b, fn, lua.LNumber(a.ID))
}

func (s *ColliderSystem) dispatchCell(fn string, e, mapEnt *entity.Entity, cx, cy int) {
	s.invoke(e, fn, lua.LNumber(mapEnt.ID), lua.LNumber(cx), lua.LNumber(cy))
}

func (s *ColliderSystem) invoke(e *entity.Entity, fn string, args ...lua.LValue) {
	if s.scripts == nil || e.Destroyed {
		return
	}
	comp, ok := e.FindComponent(entity.KindScript)
	if !ok || !comp.Active || comp.Handle() == 0 {
		return
	}
	// Script errors are already logged by the engine; a failing callback
	// must not abort the pass.
	_, _ = s.scripts.Invoke(comp.Handle(), fn, args...)
}
