package reconcile

import (
	"sync"

	"github.com/google/uuid"

	"github.com/loom-ui/loom/pkg/dom"
	"github.com/loom-ui/loom/pkg/reactive"
)

// SetFunc writes a bound value into an output-node property through the
// property-setter policy.
type SetFunc func(n *dom.Node, key string, value any)

// binderRef is one (consumer node, property key) subscription.
type binderRef struct {
	node *dom.Node
	key  string
}

// bindingEntry tracks a single observable currently referenced by any
// live prop. The entry exclusively owns the subscription; nodes only
// ever hold the observable itself.
type bindingEntry struct {
	id      uuid.UUID
	current any
	binders map[binderRef]struct{}
	cancel  func()
}

// Bindings is the reactive binding table for one render root or
// component instance: at most one live subscription per distinct
// observable, however many consumers reference it.
type Bindings struct {
	mu      sync.Mutex
	entries map[reactive.Observable]*bindingEntry
	set     SetFunc
}

// NewBindings creates an empty binding table writing through set.
func NewBindings(set SetFunc) *Bindings {
	return &Bindings{
		entries: make(map[reactive.Observable]*bindingEntry),
		set:     set,
	}
}

// Bind subscribes (node, key) to the observable and writes its current
// value through the setter. The first binder for an observable creates
// the entry and the single subscription; later binders share it.
func (b *Bindings) Bind(n *dom.Node, key string, obs reactive.Observable) {
	ref := binderRef{node: n, key: key}

	b.mu.Lock()
	e, ok := b.entries[obs]
	if ok {
		e.binders[ref] = struct{}{}
		current := e.current
		b.mu.Unlock()
		b.set(n, key, current)
		return
	}

	e = &bindingEntry{
		id:      uuid.New(),
		current: obs.Read(),
		binders: map[binderRef]struct{}{ref: {}},
	}
	b.entries[obs] = e
	current := e.current
	b.mu.Unlock()

	// Subscribe outside the lock; the handler re-enters through fanOut.
	e.cancel = obs.Watch(func(v any) { b.fanOut(e, v) })
	b.set(n, key, current)
}

// Unbind removes (node, key) from the observable's binders. When the
// last binder goes, the subscription is cancelled and the entry
// deleted.
func (b *Bindings) Unbind(n *dom.Node, key string, obs reactive.Observable) {
	b.mu.Lock()
	e, ok := b.entries[obs]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(e.binders, binderRef{node: n, key: key})
	var cancel func()
	if len(e.binders) == 0 {
		delete(b.entries, obs)
		cancel = e.cancel
	}
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// ReleaseNode drops every binder that references the node, cancelling
// subscriptions that become binder-less. Used when a node is discarded
// during reconciliation.
func (b *Bindings) ReleaseNode(n *dom.Node) {
	b.mu.Lock()
	var cancels []func()
	for obs, e := range b.entries {
		for ref := range e.binders {
			if ref.node == n {
				delete(e.binders, ref)
			}
		}
		if len(e.binders) == 0 {
			delete(b.entries, obs)
			if e.cancel != nil {
				cancels = append(cancels, e.cancel)
			}
		}
	}
	b.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// Release cancels every remaining subscription. Used when an output
// subtree is discarded wholesale.
func (b *Bindings) Release() {
	b.mu.Lock()
	var cancels []func()
	for obs, e := range b.entries {
		delete(b.entries, obs)
		if e.cancel != nil {
			cancels = append(cancels, e.cancel)
		}
	}
	b.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// Len returns the number of live entries. Detach asserts this reaches
// zero.
func (b *Bindings) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Binders returns the number of binders for an observable; 0 when the
// observable has no entry.
func (b *Bindings) Binders(obs reactive.Observable) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.entries[obs]; ok {
		return len(e.binders)
	}
	return 0
}

// fanOut records a new observable value and re-invokes the setter for
// every current binder.
func (b *Bindings) fanOut(e *bindingEntry, v any) {
	b.mu.Lock()
	e.current = v
	refs := make([]binderRef, 0, len(e.binders))
	for ref := range e.binders {
		refs = append(refs, ref)
	}
	b.mu.Unlock()

	for _, ref := range refs {
		b.set(ref.node, ref.key, v)
	}
}
