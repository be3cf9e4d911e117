package event

// EntityDestroyed fires after the cleanup phase releases an entity.
type EntityDestroyed struct {
	EntityID uint64
}

// ComponentRemoved fires after the cleanup phase detaches a component.
type ComponentRemoved struct {
	EntityID    uint64
	ComponentID uint64
}

// Script is a named event raised by gameplay code and delivered to
// Listener components subscribed to the matching name.
type Script struct {
	Name   string
	Source uint64 // raising entity id, 0 when engine-raised
	Args   []any
}
