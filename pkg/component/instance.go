package component

import (
	"github.com/loom-ui/loom/internal/errors"
	"github.com/loom-ui/loom/pkg/dom"
	"github.com/loom-ui/loom/pkg/reconcile"
	"github.com/loom-ui/loom/pkg/vdom"
)

// Lifecycle event types dispatched on a host node. Connect fires after
// the first render, update after every later one, and render after
// both; all three are deferred to the macro-task after the frame so
// listeners observe a fully painted tree. Disconnect fires
// synchronously during detach.
const (
	EventConnect    = "connect"
	EventUpdate     = "update"
	EventRender     = "render"
	EventDisconnect = "disconnect"
)

// Instance is the live state behind one host node of a component
// class: a shadow subtree with its own render root and binding table,
// the current props, and the connected flag.
type Instance struct {
	registry *Registry
	class    *class
	host     *dom.Node
	root     *reconcile.Root

	props     vdom.Props
	connected bool
	rendered  bool
}

func newInstance(r *Registry, cl *class, host *dom.Node) *Instance {
	shadow := host.Shadow()
	if shadow == nil {
		shadow = host.AttachShadow()
	}
	return &Instance{
		registry:  r,
		class:     cl,
		host:      host,
		root:      reconcile.NewRoot(host.Document(), shadow, r.resolver),
		props:     make(vdom.Props),
		connected: true,
	}
}

// Host returns the instance's host node.
func (i *Instance) Host() *dom.Node { return i.host }

// Connected reports whether the instance is still attached.
func (i *Instance) Connected() bool { return i.connected }

// Props returns the instance's current props.
func (i *Instance) Props() vdom.Props { return i.props }

// ComponentName identifies the instance in scheduler logs.
func (i *Instance) ComponentName() string { return i.class.name }

// seed initializes props from attribute and field values already
// present on the host. The reconciler writes host props before the
// node is inserted, so attach sees them here rather than through
// attribute-changed callbacks.
func (i *Instance) seed() {
	for name, value := range i.host.Attrs() {
		if spec, ok := i.class.attrSpec(name); ok {
			i.props[spec.Name] = decodeAttr(spec, value)
		}
	}
	for _, spec := range i.class.specs {
		if spec.Field == "" {
			continue
		}
		if v, ok := i.host.Field(spec.Field); ok {
			i.props[spec.Name] = v
		}
	}
}

// RenderFrame runs one render pass: evaluate the view with current
// props, reconcile into the shadow subtree, and defer the lifecycle
// events to the next macro-task.
func (i *Instance) RenderFrame() error {
	if !i.connected {
		return nil
	}

	if i.class.focus {
		if _, ok := i.host.Attr("tabindex"); !ok {
			i.host.SetAttr("tabindex", "0")
		}
	}

	v := i.class.view(i.props)
	if v != nil {
		if err := i.root.Render(v); err != nil {
			return err
		}
	} else if err := i.root.Reconciler().PatchChildren(i.shadow(), nil); err != nil {
		return err
	}

	first := !i.rendered
	i.rendered = true
	i.registry.sched.Defer(func() {
		if !i.connected {
			return
		}
		if first {
			i.host.Dispatch(&dom.Event{Type: EventConnect})
		} else {
			i.host.Dispatch(&dom.Event{Type: EventUpdate})
		}
		i.host.Dispatch(&dom.Event{Type: EventRender})
	})
	return nil
}

// SetProp writes a property by its view-facing name, requesting a
// render while connected.
func (i *Instance) SetProp(name string, v any) {
	i.set(name, v)
}

// SetField writes a property through its field spec. The value lands
// on the host node and the document's field-change notification routes
// it back into props, the same path the reconciler's prop writes take.
// Writable regardless of connection state.
func (i *Instance) SetField(field string, v any) {
	if _, ok := i.class.fieldSpec(field); !ok {
		return
	}
	if v == nil {
		i.host.DeleteField(field)
	} else {
		i.host.SetField(field, v)
	}
}

// Field reads a property through its field spec.
func (i *Instance) Field(field string) (any, bool) {
	spec, ok := i.class.fieldSpec(field)
	if !ok {
		return nil, false
	}
	v, ok := i.props[spec.Name]
	return v, ok
}

// setFromAttr applies an observed-attribute change: nil deletes the
// property, anything else goes through the spec's decoder.
func (i *Instance) setFromAttr(spec PropSpec, value *string) {
	if value == nil {
		i.set(spec.Name, nil)
		return
	}
	i.set(spec.Name, decodeAttr(spec, *value))
}

func (i *Instance) set(name string, v any) {
	if v == nil {
		delete(i.props, name)
	} else {
		i.props[name] = v
	}
	if i.connected {
		i.registry.sched.Mark(i)
	}
}

// detach transitions the instance to its terminal state: dispatch the
// disconnect event, cancel any pending render, release every binding
// in the shadow subtree, and verify the table drained completely.
func (i *Instance) detach() {
	if !i.connected {
		return
	}

	// The disconnect event fires while the instance still reports
	// connected; listeners observe the state being left.
	i.host.Dispatch(&dom.Event{Type: EventDisconnect})
	i.connected = false
	i.registry.sched.Forget(i)

	recon := i.root.Reconciler()
	for _, child := range i.shadow().Children() {
		recon.Release(child)
	}

	if leaked := recon.Bindings().Len(); leaked != 0 {
		err := errors.ErrBindingsLeaked.WithDetail(i.class.name)
		if i.registry.debug {
			panic(err)
		}
		i.registry.log.Error("bindings leaked on detach",
			"component", i.class.name,
			"remaining", leaked)
	}
}

func (i *Instance) shadow() *dom.Node { return i.host.Shadow() }

func decodeAttr(spec PropSpec, raw string) any {
	if spec.Decode != nil {
		return spec.Decode(raw)
	}
	return raw
}
