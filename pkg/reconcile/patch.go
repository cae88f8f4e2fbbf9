package reconcile

import (
	"fmt"
	"strings"

	"github.com/loom-ui/loom/pkg/dom"
	"github.com/loom-ui/loom/pkg/reactive"
	"github.com/loom-ui/loom/pkg/vdom"
)

// Listener is a prop-level event listener value carrying optional once
// semantics. A bare dom.Handler (or func(*dom.Event)) works too.
type Listener struct {
	Fn   dom.Handler
	Once bool
}

// patchProps applies a property diff to one live node: listeners are
// re-attached slot by slot, plain keys go through the property-setter
// policy (with observables routed into the binding table), style and
// aria sub-diffs are applied declaration by declaration, and the class
// key is written as a whole attribute.
func (r *Reconciler) patchProps(n *dom.Node, st *nodeState, d PropDiff) {
	for event, ch := range d.Listeners {
		r.patchListener(n, st, event, ch)
	}

	for key, ch := range d.Plain {
		switch key {
		case vdom.KeySelector, vdom.KeyKey, vdom.KeyTag, vdom.KeyCSS, vdom.KeyXMLNS:
			// Structural keys; never written to the node.
			continue
		case vdom.KeyClass:
			r.patchClass(n, ch.New)
			continue
		}

		newObs := reactive.AsObservable(ch.New)
		oldObs := reactive.AsObservable(ch.Old)

		if newObs != nil {
			r.bindings.Bind(n, key, newObs)
		} else {
			writeValue(n, key, ch.New)
		}
		if oldObs != nil && oldObs != newObs {
			r.bindings.Unbind(n, key, oldObs)
		}
	}

	for prop, ch := range d.Style {
		if ch.New == nil {
			n.RemoveStyle(prop)
		} else {
			n.SetStyle(prop, StyleValue(ch.New))
		}
	}

	for name, ch := range d.Aria {
		attr := "aria-" + name
		if ch.New == nil {
			n.RemoveAttr(attr)
		} else {
			n.SetAttr(attr, stringifyValue(ch.New))
		}
	}
}

// patchListener detaches the old handler for a slot (revoking its
// token) and attaches the new one.
func (r *Reconciler) patchListener(n *dom.Node, st *nodeState, event string, ch Change) {
	if tok, ok := st.tokens[event]; ok {
		n.RemoveListener(tok)
		delete(st.tokens, event)
	}
	if ch.New == nil {
		return
	}

	var opts []dom.ListenerOption
	var fn dom.Handler
	switch h := ch.New.(type) {
	case Listener:
		fn = h.Fn
		if h.Once {
			opts = append(opts, dom.Once())
		}
	case dom.Handler:
		fn = h
	case func(*dom.Event):
		fn = h
	default:
		return
	}
	if fn == nil {
		return
	}

	if st.tokens == nil {
		st.tokens = make(map[string]dom.ListenerToken)
	}
	st.tokens[event] = n.AddListener(event, fn, opts...)
}

// patchClass writes the class list as a whole attribute, flattening
// nested sequences and space-joining.
func (r *Reconciler) patchClass(n *dom.Node, v any) {
	if v == nil {
		n.RemoveAttr(vdom.KeyClass)
		return
	}
	n.SetAttr(vdom.KeyClass, strings.Join(flattenStrings(v), " "))
}

// writeValue is the property-setter policy: keys indexed as native
// fields for the node's tag are set as fields; everything else is a
// string-serialized attribute. Boolean true serializes to the
// empty-string marker and absence removes the attribute.
func writeValue(n *dom.Node, key string, v any) {
	if field, ok := n.Document().FieldFor(n.Tag(), key); ok {
		if v == nil {
			n.DeleteField(field)
		} else {
			n.SetField(field, v)
		}
		return
	}

	switch val := v.(type) {
	case nil:
		n.RemoveAttr(key)
	case bool:
		if val {
			n.SetAttr(key, "")
		} else {
			n.RemoveAttr(key)
		}
	default:
		n.SetAttr(key, stringifyValue(val))
	}
}

// StyleValue serializes a style declaration value: symbols become their
// name, ordered sequences are space-joined, grouped sequences are
// comma-joined, everything else is stringified.
func StyleValue(v any) string {
	switch val := v.(type) {
	case vdom.P:
		return string(val)
	case string:
		return val
	case [][]any:
		parts := make([]string, len(val))
		for i, group := range val {
			parts[i] = StyleValue([]any(group))
		}
		return strings.Join(parts, ", ")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = StyleValue(item)
		}
		return strings.Join(parts, " ")
	case []string:
		return strings.Join(val, " ")
	default:
		return fmt.Sprintf("%v", val)
	}
}

func stringifyValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case vdom.P:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// flattenStrings flattens a class-list value into its tokens.
func flattenStrings(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return strings.Fields(val)
	case []string:
		return val
	case []any:
		var out []string
		for _, item := range val {
			out = append(out, flattenStrings(item)...)
		}
		return out
	default:
		return []string{fmt.Sprintf("%v", val)}
	}
}
