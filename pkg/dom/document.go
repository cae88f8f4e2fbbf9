package dom

// Lifecycle observes nodes entering and leaving the rooted tree and
// attribute and field changes. The component registry installs itself
// here so tag-addressable components attach and detach as the
// reconciler mutates the tree.
type Lifecycle interface {
	NodeConnected(n *Node)
	NodeDisconnected(n *Node)
	AttributeChanged(n *Node, name string, old, new *string)
	FieldChanged(n *Node, name string, old, new any)
}

// Document owns a rooted output tree and allocates its nodes.
type Document struct {
	root   *Node
	lastID uint64

	lifecycle Lifecycle
	onMut     func(Mutation)

	fields *fieldIndex
}

// NewDocument creates an empty document with a rooted container node.
func NewDocument() *Document {
	d := &Document{fields: newFieldIndex()}
	d.root = &Node{id: d.nextID(), doc: d, typ: ElementNode, tag: "#document"}
	return d
}

// Root returns the document's always-connected container node.
func (d *Document) Root() *Node { return d.root }

// SetLifecycle installs the lifecycle observer.
func (d *Document) SetLifecycle(l Lifecycle) { d.lifecycle = l }

// OnMutation installs a mutation sink; every structural and property
// change to the tree is reported to it in application order.
func (d *Document) OnMutation(fn func(Mutation)) { d.onMut = fn }

// CreateElement creates a detached element in the XHTML namespace.
func (d *Document) CreateElement(tag string) *Node {
	return d.CreateElementNS(NamespaceXHTML, tag)
}

// CreateElementNS creates a detached element in the given namespace.
func (d *Document) CreateElementNS(ns, tag string) *Node {
	n := &Node{id: d.nextID(), doc: d, typ: ElementNode, tag: tag, namespace: ns}
	d.emit(Mutation{Op: MutCreateElement, Node: n.id, Tag: tag, NS: ns})
	return n
}

// CreateText creates a detached text node.
func (d *Document) CreateText(text string) *Node {
	n := &Node{id: d.nextID(), doc: d, typ: TextNode, text: text}
	d.emit(Mutation{Op: MutCreateText, Node: n.id, Value: text})
	return n
}

func (d *Document) nextID() uint64 {
	d.lastID++
	return d.lastID
}

func (d *Document) emit(m Mutation) {
	if d.onMut != nil {
		d.onMut(m)
	}
}

// notifyConnected fires NodeConnected for an inserted subtree,
// depth-first, descending into shadow subtrees.
func (d *Document) notifyConnected(n *Node) {
	if d.lifecycle == nil {
		return
	}
	d.walk(n, d.lifecycle.NodeConnected)
}

// notifyDisconnected fires NodeDisconnected for a removed subtree.
func (d *Document) notifyDisconnected(n *Node) {
	if d.lifecycle == nil {
		return
	}
	d.walk(n, d.lifecycle.NodeDisconnected)
}

func (d *Document) walk(n *Node, fn func(*Node)) {
	if n.typ == ElementNode {
		fn(n)
	}
	for _, c := range n.children {
		d.walk(c, fn)
	}
	if n.shadow != nil {
		for _, c := range n.shadow.children {
			d.walk(c, fn)
		}
	}
}

func (d *Document) notifyAttr(n *Node, name string, old, new *string) {
	if d.lifecycle == nil || n.typ != ElementNode {
		return
	}
	d.lifecycle.AttributeChanged(n, name, old, new)
}

func (d *Document) notifyField(n *Node, name string, old, new any) {
	if d.lifecycle == nil || n.typ != ElementNode {
		return
	}
	d.lifecycle.FieldChanged(n, name, old, new)
}
