package reconcile

import (
	"github.com/loom-ui/loom/pkg/dom"
	"github.com/loom-ui/loom/pkg/reactive"
	"github.com/loom-ui/loom/pkg/vdom"
)

// structKey matches old and new children across renders: the original
// tag selector plus the explicit key, or the text sentinel for leaves.
type structKey struct {
	selector string
	key      string
}

// nodeState is the framework-private state attached to every output
// node this engine produced, held in a side table keyed by node
// identity: the props snapshot the next patch diffs against, the
// transient kept mark for one reconciliation pass, and the live
// listener tokens.
type nodeState struct {
	lastProps vdom.Props
	kept      bool
	tokens    map[string]dom.ListenerToken
}

// Reconciler reconciles vnode children onto one output subtree. It owns
// the subtree's binding table and the side table of node state.
type Reconciler struct {
	doc      *dom.Document
	bindings *Bindings
	state    map[*dom.Node]*nodeState
}

// New creates a reconciler for the given document.
func New(doc *dom.Document) *Reconciler {
	r := &Reconciler{
		doc:   doc,
		state: make(map[*dom.Node]*nodeState),
	}
	r.bindings = NewBindings(writeValue)
	return r
}

// Bindings returns the reconciler's binding table.
func (r *Reconciler) Bindings() *Bindings { return r.bindings }

// Render reconciles a loose body (vnodes, leaf values, nested
// sequences, nils) into the parent's children.
func (r *Reconciler) Render(parent *dom.Node, body ...any) error {
	_, _, children := vdom.Normalize("", body...)
	return r.PatchChildren(parent, children)
}

// PatchChildren matches new child descriptions against the parent's
// existing children by structural key, reusing matches in place,
// creating what is missing and removing unmatched leftovers, with a
// single forward cursor preserving order.
func (r *Reconciler) PatchChildren(parent *dom.Node, children []*vdom.VNode) error {
	// Partition existing children into buckets by structural key,
	// preserving within-bucket order; text children separately.
	buckets := make(map[structKey][]*dom.Node)
	var textBucket []*dom.Node
	for _, c := range parent.Children() {
		if c.Type() == dom.TextNode {
			textBucket = append(textBucket, c)
			continue
		}
		buckets[r.keyOf(c)] = append(buckets[r.keyOf(c)], c)
	}

	cursor := parent.FirstChild()

	for _, v := range children {
		if v == nil {
			continue
		}

		if v.Kind == vdom.KindText {
			var node *dom.Node
			if len(textBucket) > 0 {
				node, textBucket = textBucket[0], textBucket[1:]
			} else {
				node = r.doc.CreateText(v.Text)
			}
			node.SetText(v.Text)
			cursor = r.place(parent, node, cursor)
			r.stateOf(node).kept = true
			continue
		}

		pv, err := vdom.Preprocess(v)
		if err != nil {
			return err
		}
		sk := structKey{selector: pv.Selector(), key: pv.Key()}

		var node *dom.Node
		if list := buckets[sk]; len(list) > 0 {
			// First-available match in prior order; keys are expected
			// to disambiguate reorderings.
			node, buckets[sk] = list[0], list[1:]
		} else {
			node = r.doc.CreateElementNS(r.namespaceFor(parent, pv), pv.Tag)
		}

		st := r.stateOf(node)
		r.patchProps(node, st, DiffProps(st.lastProps, pv.Props))
		st.lastProps = pv.Props

		if err := r.PatchChildren(node, pv.Children); err != nil {
			return err
		}

		cursor = r.place(parent, node, cursor)
		st.kept = true
	}

	// Anything not marked kept this pass is released and removed.
	for _, c := range parent.Children() {
		st := r.state[c]
		if st == nil || !st.kept {
			r.Release(c)
			parent.RemoveChild(c)
		}
	}
	for _, c := range parent.Children() {
		if st := r.state[c]; st != nil {
			st.kept = false
		}
	}

	return nil
}

// place positions node at the cursor: already there advances the
// cursor, otherwise the node is inserted immediately before it (or
// appended when the cursor is exhausted).
func (r *Reconciler) place(parent *dom.Node, node *dom.Node, cursor *dom.Node) *dom.Node {
	if node == cursor {
		return cursor.NextSibling()
	}
	parent.InsertBefore(node, cursor)
	return cursor
}

// Release tears down the bindings of a discarded subtree, descending
// through children and shadow subtrees, and drops its side-table state.
func (r *Reconciler) Release(n *dom.Node) {
	r.bindings.ReleaseNode(n)
	delete(r.state, n)
	for _, c := range n.Children() {
		r.Release(c)
	}
	if sh := n.Shadow(); sh != nil {
		for _, c := range sh.Children() {
			r.Release(c)
		}
	}
}

// keyOf derives the structural key of an existing live child from its
// props snapshot, falling back to the bare tag for nodes this engine
// did not produce.
func (r *Reconciler) keyOf(n *dom.Node) structKey {
	st := r.state[n]
	if st == nil || st.lastProps == nil {
		return structKey{selector: n.Tag()}
	}
	sel, _ := st.lastProps[vdom.KeySelector].(string)
	if sel == "" {
		sel = n.Tag()
	}
	return structKey{selector: sel, key: vdom.KeyString(st.lastProps[vdom.KeyKey])}
}

// namespaceFor picks the element namespace: explicit override, then a
// tag-implied default, then the parent's namespace, then XHTML.
func (r *Reconciler) namespaceFor(parent *dom.Node, v *vdom.VNode) string {
	if ns, ok := v.Props[vdom.KeyXMLNS].(string); ok && ns != "" {
		return ns
	}
	if v.Tag == "svg" {
		return dom.NamespaceSVG
	}
	if ns := parent.Namespace(); ns != "" {
		return ns
	}
	return dom.NamespaceXHTML
}

func (r *Reconciler) stateOf(n *dom.Node) *nodeState {
	st, ok := r.state[n]
	if !ok {
		st = &nodeState{}
		r.state[n] = st
	}
	return st
}

// LastProps returns the props snapshot most recently applied to a node,
// or nil for nodes this reconciler does not manage.
func (r *Reconciler) LastProps(n *dom.Node) vdom.Props {
	if st := r.state[n]; st != nil {
		return st.lastProps
	}
	return nil
}

// BindObservable routes a prop assignment through the binding table
// when the value is observable, and through the setter policy
// otherwise. Exposed for component accessors that write single props
// outside a full patch.
func (r *Reconciler) BindObservable(n *dom.Node, key string, v any) {
	if obs := reactive.AsObservable(v); obs != nil {
		r.bindings.Bind(n, key, obs)
		return
	}
	writeValue(n, key, v)
}
