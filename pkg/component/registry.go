package component

import (
	"log/slog"
	"sync"

	"github.com/loom-ui/loom/internal/errors"
	"github.com/loom-ui/loom/pkg/dom"
	"github.com/loom-ui/loom/pkg/schedule"
	"github.com/loom-ui/loom/pkg/styles"
)

// class is the registered state behind one component name. The
// attribute and field lookup maps are built lazily and dropped
// whenever the class is re-defined.
type class struct {
	name  string
	view  ViewFunc
	focus bool
	specs []PropSpec

	byAttr  map[string]PropSpec
	byField map[string]PropSpec

	instances map[*Instance]struct{}
}

func (c *class) attrSpec(attr string) (PropSpec, bool) {
	if c.byAttr == nil {
		c.byAttr = make(map[string]PropSpec)
		for _, s := range c.specs {
			if s.Attr != "" {
				c.byAttr[s.Attr] = s
			}
		}
	}
	s, ok := c.byAttr[attr]
	return s, ok
}

func (c *class) fieldSpec(field string) (PropSpec, bool) {
	if c.byField == nil {
		c.byField = make(map[string]PropSpec)
		for _, s := range c.specs {
			if s.Field != "" {
				c.byField[s.Field] = s
			}
		}
	}
	s, ok := c.byField[field]
	return s, ok
}

func (c *class) invalidate() {
	c.byAttr = nil
	c.byField = nil
}

func (c *class) fieldNames() []string {
	var out []string
	for _, s := range c.specs {
		if s.Field != "" {
			out = append(out, s.Field)
		}
	}
	return out
}

// Registry maps component names to classes and drives instance
// lifecycle off the document's node events. Independent registries on
// independent documents coexist; none of the state here is global.
type Registry struct {
	doc      *dom.Document
	sched    *schedule.Scheduler
	log      *slog.Logger
	resolver *styles.Resolver
	debug    bool

	mu        sync.Mutex
	classes   map[string]*class
	instances map[*dom.Node]*Instance
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry and scheduler logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// WithResolver sets the stylesheet resolver handed to instance render
// roots.
func WithResolver(res *styles.Resolver) Option {
	return func(r *Registry) { r.resolver = res }
}

// WithDebug makes invariant violations panic instead of logging.
func WithDebug(debug bool) Option {
	return func(r *Registry) { r.debug = debug }
}

// NewRegistry creates a registry bound to doc, installing itself as
// the document's lifecycle observer.
func NewRegistry(doc *dom.Document, frames schedule.Frames, opts ...Option) *Registry {
	r := &Registry{
		doc:       doc,
		log:       slog.Default(),
		classes:   make(map[string]*class),
		instances: make(map[*dom.Node]*Instance),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.sched = schedule.New(frames, schedule.WithLogger(r.log))
	doc.SetLifecycle(r)
	return r
}

// Scheduler returns the registry's render scheduler.
func (r *Registry) Scheduler() *schedule.Scheduler { return r.sched }

// Define registers a component class. Re-defining a live name patches
// the existing class in place and re-renders every live instance, so
// view logic can be swapped without detaching.
func (r *Registry) Define(def Def) error {
	if def.Name == "" {
		return errors.ErrInvalidTag.WithDetail("(empty component name)")
	}
	if def.View == nil {
		return errors.ErrNoView.WithDetail(def.Name)
	}
	if err := validateSpecs(def.Name, def.Props); err != nil {
		return err
	}

	r.mu.Lock()
	existing, hot := r.classes[def.Name]
	if hot {
		existing.view = def.View
		existing.focus = def.Focus
		existing.specs = def.Props
		existing.invalidate()
		r.doc.InvalidateFields(def.Name)
		r.doc.RegisterFields(def.Name, existing.fieldNames()...)

		live := make([]*Instance, 0, len(existing.instances))
		for inst := range existing.instances {
			live = append(live, inst)
		}
		r.mu.Unlock()

		r.log.Info("component redefined", "name", def.Name, "live", len(live))
		for _, inst := range live {
			r.sched.Mark(inst)
		}
		return nil
	}

	cl := &class{
		name:      def.Name,
		view:      def.View,
		focus:     def.Focus,
		specs:     def.Props,
		instances: make(map[*Instance]struct{}),
	}
	r.classes[def.Name] = cl
	r.doc.RegisterFields(def.Name, cl.fieldNames()...)
	r.mu.Unlock()
	return nil
}

// Defined reports whether a class is registered under name.
func (r *Registry) Defined(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.classes[name]
	return ok
}

// InstanceFor returns the live instance attached to n, if any.
func (r *Registry) InstanceFor(n *dom.Node) (*Instance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[n]
	return inst, ok
}

// Live returns the number of live instances of the named class.
func (r *Registry) Live(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cl, ok := r.classes[name]
	if !ok {
		return 0
	}
	return len(cl.instances)
}

// NodeConnected attaches an instance when a node with a registered tag
// enters the rooted tree. A reconnect after detach builds fresh
// instance state; bindings never survive a detach cycle.
func (r *Registry) NodeConnected(n *dom.Node) {
	r.mu.Lock()
	cl, ok := r.classes[n.Tag()]
	if !ok {
		r.mu.Unlock()
		return
	}
	if _, dup := r.instances[n]; dup {
		r.mu.Unlock()
		return
	}
	inst := newInstance(r, cl, n)
	r.instances[n] = inst
	cl.instances[inst] = struct{}{}
	r.mu.Unlock()

	inst.seed()
	r.sched.Mark(inst)
}

// NodeDisconnected detaches the instance attached to n, if any. The
// disconnect event fires before the instance leaves the live set.
func (r *Registry) NodeDisconnected(n *dom.Node) {
	r.mu.Lock()
	inst, ok := r.instances[n]
	r.mu.Unlock()
	if !ok {
		return
	}

	inst.detach()

	r.mu.Lock()
	delete(r.instances, n)
	delete(inst.class.instances, inst)
	r.mu.Unlock()
}

// FieldChanged routes a native field write into the owning instance's
// props, without the attribute mapper. Field writes are accepted
// whether or not the instance is connected; only connected instances
// get a render out of it.
func (r *Registry) FieldChanged(n *dom.Node, name string, old, new any) {
	r.mu.Lock()
	inst, ok := r.instances[n]
	r.mu.Unlock()
	if !ok {
		return
	}
	spec, known := inst.class.fieldSpec(name)
	if !known {
		return
	}
	inst.set(spec.Name, new)
}

// AttributeChanged routes an observed-attribute change into the
// owning instance's props.
func (r *Registry) AttributeChanged(n *dom.Node, name string, old, new *string) {
	r.mu.Lock()
	inst, ok := r.instances[n]
	r.mu.Unlock()
	if !ok {
		return
	}
	spec, observed := inst.class.attrSpec(name)
	if !observed {
		return
	}
	inst.setFromAttr(spec, new)
}
