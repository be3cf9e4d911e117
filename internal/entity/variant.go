package entity

import "github.com/skiff2d/skiff/internal/geom"

// Kind identifies a component variant. The set is closed: systems and the
// collision code switch exhaustively over it.
type Kind uint8

const (
	KindCollider Kind = iota
	KindScript
	KindMap
	KindSprite
	KindText
	KindMusic
	KindListener
)

var kindNames = [...]string{
	KindCollider: "collider",
	KindScript:   "script",
	KindMap:      "map",
	KindSprite:   "sprite",
	KindText:     "text",
	KindMusic:    "music",
	KindListener: "listener",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Variant is the per-kind capability table carried by every component.
// Per-frame update and draw are driven by the systems that track each
// kind; the variant itself only covers lifetime and spatial queries.
type Variant interface {
	Kind() Kind

	// Copy deep-copies the variant data. Watcher registrations and any
	// cached state derived from the owning entity start empty.
	Copy() Variant

	// Destroy releases variant-owned resources. Called exactly once,
	// when the component's last reference is dropped.
	Destroy()

	// OnAttach is invoked after the owning entity back-reference is set.
	// Variants whose derived state needs the owner (collider bounds)
	// recompute here.
	OnAttach(owner *Entity)

	// Bounds returns the variant's entity-local bounding box, or false
	// when the variant has no spatial extent.
	Bounds() (geom.Bounds, bool)
}
