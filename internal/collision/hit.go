package collision

import "github.com/skiff2d/skiff/internal/entity"

// HitKind discriminates entity-vs-entity from entity-vs-map hits.
type HitKind uint8

const (
	HitEntity HitKind = iota
	HitMap
)

// State classifies a pair transition across frames.
type State uint8

const (
	StateNone State = iota
	StateEnter
	StateStay
	StateExit
)

var stateNames = [...]string{
	StateNone:  "none",
	StateEnter: "enter",
	StateStay:  "stay",
	StateExit:  "exit",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Hit records one detected overlap. Hits are created fresh per frame and
// appended to the caller-supplied slice; the caller owns them.
type Hit struct {
	Kind   HitKind
	Source *entity.Entity
	Target *entity.Entity
	State  State

	// RectIndex is the source collider rect involved (entity hits).
	RectIndex int
	// CellX, CellY are the intersecting map cell (map hits).
	CellX int
	CellY int
}
