package dom

// Handler is an event listener callback.
type Handler func(ev *Event)

// Event is a dispatched output-tree event.
type Event struct {
	// Type is the event name ("click", "connect", ...).
	Type string

	// Target is the node the event was dispatched on.
	Target *Node

	// CurrentTarget is the node whose listener is currently running.
	CurrentTarget *Node

	// Detail is the event payload.
	Detail any

	// Bubbles makes the event propagate to ancestors.
	Bubbles bool

	stopped bool
}

// StopPropagation prevents the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// ListenerToken identifies one listener attachment. Detaching with a
// stale token is a no-op, so detachment is idempotent.
type ListenerToken struct {
	node  *Node
	event string
	id    uint64
}

type listenerEntry struct {
	id   uint64
	fn   Handler
	once bool
}

// ListenerOption configures a listener attachment.
type ListenerOption func(*listenerEntry)

// Once detaches the listener after its first invocation.
func Once() ListenerOption {
	return func(e *listenerEntry) { e.once = true }
}

// AddListener attaches an event listener and returns its revocation
// token.
func (n *Node) AddListener(event string, fn Handler, opts ...ListenerOption) ListenerToken {
	entry := &listenerEntry{id: n.doc.nextID(), fn: fn}
	for _, opt := range opts {
		opt(entry)
	}
	if n.listeners == nil {
		n.listeners = make(map[string][]*listenerEntry)
	}
	n.listeners[event] = append(n.listeners[event], entry)
	return ListenerToken{node: n, event: event, id: entry.id}
}

// RemoveListener detaches the listener identified by the token.
func (n *Node) RemoveListener(tok ListenerToken) {
	if tok.node != n {
		return
	}
	entries := n.listeners[tok.event]
	for i, e := range entries {
		if e.id == tok.id {
			n.listeners[tok.event] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// Dispatch delivers the event to the node's listeners and, if the event
// bubbles, to its ancestors until stopped. Shadow roots re-target onto
// their host.
func (n *Node) Dispatch(ev *Event) {
	ev.Target = n
	for cur := n; cur != nil && !ev.stopped; {
		cur.invoke(ev)
		if !ev.Bubbles {
			return
		}
		if cur.parent != nil {
			cur = cur.parent
		} else {
			cur = cur.host
		}
	}
}

// invoke runs the node's listeners for the event type, honoring once
// semantics. Listeners are copied first so handlers may detach during
// dispatch.
func (n *Node) invoke(ev *Event) {
	entries := n.listeners[ev.Type]
	if len(entries) == 0 {
		return
	}
	run := make([]*listenerEntry, len(entries))
	copy(run, entries)

	ev.CurrentTarget = n
	for _, e := range run {
		if e.once {
			n.RemoveListener(ListenerToken{node: n, event: ev.Type, id: e.id})
		}
		e.fn(ev)
		if ev.stopped {
			return
		}
	}
}

// ListenerCount returns the number of listeners attached for an event
// type.
func (n *Node) ListenerCount(event string) int {
	return len(n.listeners[event])
}
