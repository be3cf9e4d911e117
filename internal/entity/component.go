package entity

import "sync/atomic"

// ScriptContext is the narrow slice of the scripting engine the entity
// model needs: releasing a registry handle when the native side drops its
// last reference.
type ScriptContext interface {
	Unref(handle int)
}

var nextComponentID atomic.Uint64

// Component wraps one variant with identity, lifetime, and the script
// ownership contract. A component belongs to exactly one entity at a
// time; the back-reference is set on attach and cleared on detach.
//
// Lifetime is reference-counted: the owning entity holds one reference,
// the scripting runtime holds another while a registry handle is bound.
// The variant is destroyed only when the count reaches zero.
type Component struct {
	ID     uint64
	Active bool
	Owner  *Entity
	Data   Variant

	script ScriptContext
	handle int
	refs   int32
}

// NewComponent allocates a component around the given variant data with
// one (native) reference held by the caller.
func NewComponent(data Variant) *Component {
	if data == nil {
		panic("entity: NewComponent with nil variant")
	}
	return &Component{
		ID:     nextComponentID.Add(1),
		Active: true,
		Data:   data,
		refs:   1,
	}
}

// Kind returns the variant kind.
func (c *Component) Kind() Kind { return c.Data.Kind() }

// BindScript records the scripting-side handle for this component. The
// script side counts as one strong reference until Release drops the
// count to zero and the handle is returned to the registry.
func (c *Component) BindScript(ctx ScriptContext, handle int) {
	if ctx == nil {
		panic("entity: BindScript with nil context")
	}
	c.script = ctx
	c.handle = handle
	c.Retain()
}

// Handle returns the scripting registry handle, or 0 when unbound.
func (c *Component) Handle() int { return c.handle }

// ReleaseScript drops the scripting side's strong reference: the
// registry handle is returned and the reference taken by BindScript is
// released. A no-op when no script is bound, so removal paths may call
// it unconditionally.
func (c *Component) ReleaseScript() {
	if c.script == nil || c.handle == 0 {
		return
	}
	c.script.Unref(c.handle)
	c.script = nil
	c.handle = 0
	c.Release()
}

// Retain adds a strong reference.
func (c *Component) Retain() {
	if c.refs <= 0 {
		panic("entity: Retain on destroyed component")
	}
	c.refs++
}

// Release drops a strong reference. At zero the script handle is
// released and the variant destroyed.
func (c *Component) Release() {
	if c.refs <= 0 {
		panic("entity: Release past zero on component")
	}
	c.refs--
	if c.refs > 0 {
		return
	}
	if c.script != nil && c.handle != 0 {
		c.script.Unref(c.handle)
		c.handle = 0
	}
	c.Data.Destroy()
}

// Refs returns the current strong-reference count.
func (c *Component) Refs() int { return int(c.refs) }
