// Package dom implements the live output tree that vnode trees are
// reconciled onto: an in-memory document of mutable element and text
// nodes with attributes, native fields, inline style, and revocable
// event listeners.
package dom

import "fmt"

// NodeType is the node type discriminator.
type NodeType uint8

const (
	ElementNode NodeType = iota
	TextNode
)

// Output namespaces.
const (
	NamespaceXHTML = "http://www.w3.org/1999/xhtml"
	NamespaceSVG   = "http://www.w3.org/2000/svg"
)

// Node is a live mutable node in the output tree.
type Node struct {
	id  uint64
	doc *Document
	typ NodeType

	parent   *Node
	children []*Node

	tag       string
	namespace string
	text      string

	attrs  map[string]string
	fields map[string]any
	style  map[string]string

	listeners map[string][]*listenerEntry

	// shadow is the node's shadow subtree, if attached. host points the
	// other way, from a shadow root back to its owner.
	shadow *Node
	host   *Node
}

// ID returns the document-unique node identifier.
func (n *Node) ID() uint64 { return n.id }

// Type returns the node type.
func (n *Node) Type() NodeType { return n.typ }

// Tag returns the element tag ("" for text nodes).
func (n *Node) Tag() string { return n.tag }

// Namespace returns the element namespace.
func (n *Node) Namespace() string { return n.namespace }

// Document returns the owning document.
func (n *Node) Document() *Document { return n.doc }

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of children without copying.
func (n *Node) ChildCount() int { return len(n.children) }

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// NextSibling returns the node following this one in its parent, or nil.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	for i, c := range n.parent.children {
		if c == n {
			if i+1 < len(n.parent.children) {
				return n.parent.children[i+1]
			}
			return nil
		}
	}
	return nil
}

// Text returns the node's text content (text nodes only).
func (n *Node) Text() string { return n.text }

// SetText updates a text node's content.
func (n *Node) SetText(text string) {
	if n.text == text {
		return
	}
	n.text = text
	n.doc.emit(Mutation{Op: MutSetText, Node: n.id, Value: text})
}

// AppendChild appends child as the last child of n.
func (n *Node) AppendChild(child *Node) {
	n.InsertBefore(child, nil)
}

// InsertBefore inserts child immediately before ref. A nil ref appends.
// If child already has a parent it is moved, not duplicated.
func (n *Node) InsertBefore(child, ref *Node) {
	if child == nil || child == ref {
		return
	}

	wasConnected := child.Connected()
	if child.parent != nil {
		child.parent.detachChild(child)
	}

	idx := len(n.children)
	if ref != nil {
		for i, c := range n.children {
			if c == ref {
				idx = i
				break
			}
		}
	}
	n.children = append(n.children, nil)
	copy(n.children[idx+1:], n.children[idx:])
	n.children[idx] = child
	child.parent = n

	var refID uint64
	if ref != nil {
		refID = ref.id
	}
	n.doc.emit(Mutation{Op: MutInsert, Node: child.id, Parent: n.id, Before: refID})

	if !wasConnected && child.Connected() {
		n.doc.notifyConnected(child)
	}
}

// RemoveChild removes child from n. Removing a node that is not a child
// is a no-op.
func (n *Node) RemoveChild(child *Node) {
	if child == nil || child.parent != n {
		return
	}
	wasConnected := child.Connected()
	n.detachChild(child)
	n.doc.emit(Mutation{Op: MutRemove, Node: child.id, Parent: n.id})
	if wasConnected {
		n.doc.notifyDisconnected(child)
	}
}

// detachChild unlinks child from n without emitting a mutation.
func (n *Node) detachChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Connected reports whether the node is rooted in its document, through
// shadow boundaries.
func (n *Node) Connected() bool {
	for cur := n; cur != nil; {
		if cur == n.doc.root {
			return true
		}
		if cur.parent != nil {
			cur = cur.parent
			continue
		}
		cur = cur.host
	}
	return false
}

// Attr returns an attribute value and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// Attrs returns a copy of the attribute map.
func (n *Node) Attrs() map[string]string {
	out := make(map[string]string, len(n.attrs))
	for k, v := range n.attrs {
		out[k] = v
	}
	return out
}

// SetAttr sets a string attribute and notifies the document lifecycle
// observer of the change.
func (n *Node) SetAttr(name, value string) {
	old, had := n.attrs[name]
	if had && old == value {
		return
	}
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[name] = value
	n.doc.emit(Mutation{Op: MutSetAttr, Node: n.id, Key: name, Value: value})

	var oldp *string
	if had {
		oldp = &old
	}
	n.doc.notifyAttr(n, name, oldp, &value)
}

// RemoveAttr removes an attribute. Removing an absent attribute is a
// no-op.
func (n *Node) RemoveAttr(name string) {
	old, had := n.attrs[name]
	if !had {
		return
	}
	delete(n.attrs, name)
	n.doc.emit(Mutation{Op: MutRemoveAttr, Node: n.id, Key: name})
	n.doc.notifyAttr(n, name, &old, nil)
}

// Field returns a native field value and whether it is set.
func (n *Node) Field(name string) (any, bool) {
	v, ok := n.fields[name]
	return v, ok
}

// Fields returns a copy of the native field values.
func (n *Node) Fields() map[string]any {
	out := make(map[string]any, len(n.fields))
	for k, v := range n.fields {
		out[k] = v
	}
	return out
}

// SetField sets a native field value.
func (n *Node) SetField(name string, value any) {
	if n.fields == nil {
		n.fields = make(map[string]any)
	}
	old := n.fields[name]
	n.fields[name] = value
	n.doc.emit(Mutation{Op: MutSetField, Node: n.id, Key: name, Value: stringify(value)})
	n.doc.notifyField(n, name, old, value)
}

// DeleteField removes a native field value.
func (n *Node) DeleteField(name string) {
	old, ok := n.fields[name]
	if !ok {
		return
	}
	delete(n.fields, name)
	n.doc.emit(Mutation{Op: MutSetField, Node: n.id, Key: name})
	n.doc.notifyField(n, name, old, nil)
}

// Style returns an inline style declaration.
func (n *Node) Style(prop string) (string, bool) {
	v, ok := n.style[prop]
	return v, ok
}

// StyleMap returns a copy of the inline style declarations.
func (n *Node) StyleMap() map[string]string {
	out := make(map[string]string, len(n.style))
	for k, v := range n.style {
		out[k] = v
	}
	return out
}

// SetStyle sets an individual inline style declaration.
func (n *Node) SetStyle(prop, value string) {
	if old, ok := n.style[prop]; ok && old == value {
		return
	}
	if n.style == nil {
		n.style = make(map[string]string)
	}
	n.style[prop] = value
	n.doc.emit(Mutation{Op: MutSetStyle, Node: n.id, Key: prop, Value: value})
}

// RemoveStyle removes an individual inline style declaration.
func (n *Node) RemoveStyle(prop string) {
	if _, ok := n.style[prop]; !ok {
		return
	}
	delete(n.style, prop)
	n.doc.emit(Mutation{Op: MutRemoveStyle, Node: n.id, Key: prop})
}

// Shadow returns the node's shadow subtree, or nil.
func (n *Node) Shadow() *Node { return n.shadow }

// Host returns the owning node when n is a shadow root, or nil.
func (n *Node) Host() *Node { return n.host }

// AttachShadow creates (or returns) the node's shadow subtree root.
func (n *Node) AttachShadow() *Node {
	if n.shadow == nil {
		n.shadow = &Node{
			id:  n.doc.nextID(),
			doc: n.doc,
			typ: ElementNode,
			tag: "#shadow-root",
		}
		n.shadow.host = n
	}
	return n.shadow
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}
