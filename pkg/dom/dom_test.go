package dom

import "testing"

func TestInsertAndOrder(t *testing.T) {
	d := NewDocument()
	parent := d.CreateElement("div")
	d.Root().AppendChild(parent)

	a := d.CreateElement("a")
	b := d.CreateElement("b")
	c := d.CreateElement("c")
	parent.AppendChild(a)
	parent.AppendChild(c)
	parent.InsertBefore(b, c)

	got := parent.Children()
	want := []string{"a", "b", "c"}
	for i, tag := range want {
		if got[i].Tag() != tag {
			t.Errorf("child[%d] = %q, want %q", i, got[i].Tag(), tag)
		}
	}
}

func TestInsertBeforeMovesExistingChild(t *testing.T) {
	d := NewDocument()
	parent := d.CreateElement("div")
	a := d.CreateElement("a")
	b := d.CreateElement("b")
	parent.AppendChild(a)
	parent.AppendChild(b)

	parent.InsertBefore(b, a)

	if parent.ChildCount() != 2 {
		t.Fatalf("ChildCount = %d, want 2 (move, not duplicate)", parent.ChildCount())
	}
	if parent.FirstChild() != b {
		t.Error("b should be first after move")
	}
}

func TestNextSibling(t *testing.T) {
	d := NewDocument()
	parent := d.CreateElement("div")
	a := d.CreateElement("a")
	b := d.CreateElement("b")
	parent.AppendChild(a)
	parent.AppendChild(b)

	if a.NextSibling() != b {
		t.Error("a.NextSibling() should be b")
	}
	if b.NextSibling() != nil {
		t.Error("b.NextSibling() should be nil")
	}
}

func TestConnected(t *testing.T) {
	d := NewDocument()
	n := d.CreateElement("div")

	if n.Connected() {
		t.Error("detached node should not be connected")
	}
	d.Root().AppendChild(n)
	if !n.Connected() {
		t.Error("rooted node should be connected")
	}

	shadow := n.AttachShadow()
	inner := d.CreateElement("span")
	shadow.AppendChild(inner)
	if !inner.Connected() {
		t.Error("shadow subtree of a connected host should be connected")
	}

	d.Root().RemoveChild(n)
	if inner.Connected() {
		t.Error("shadow subtree should disconnect with its host")
	}
}

func TestListenerDetachIsIdempotent(t *testing.T) {
	d := NewDocument()
	n := d.CreateElement("button")

	fired := 0
	tok := n.AddListener("click", func(*Event) { fired++ })
	n.RemoveListener(tok)
	n.RemoveListener(tok)

	n.Dispatch(&Event{Type: "click"})
	if fired != 0 {
		t.Errorf("fired = %d, want 0 after detach", fired)
	}
}

func TestListenerOnce(t *testing.T) {
	d := NewDocument()
	n := d.CreateElement("button")

	fired := 0
	n.AddListener("click", func(*Event) { fired++ }, Once())

	n.Dispatch(&Event{Type: "click"})
	n.Dispatch(&Event{Type: "click"})
	if fired != 1 {
		t.Errorf("fired = %d, want 1 for once listener", fired)
	}
}

func TestDispatchBubbles(t *testing.T) {
	d := NewDocument()
	parent := d.CreateElement("div")
	child := d.CreateElement("span")
	parent.AppendChild(child)

	var order []string
	child.AddListener("click", func(*Event) { order = append(order, "child") })
	parent.AddListener("click", func(*Event) { order = append(order, "parent") })

	child.Dispatch(&Event{Type: "click", Bubbles: true})

	if len(order) != 2 || order[0] != "child" || order[1] != "parent" {
		t.Errorf("order = %v, want [child parent]", order)
	}
}

func TestStopPropagation(t *testing.T) {
	d := NewDocument()
	parent := d.CreateElement("div")
	child := d.CreateElement("span")
	parent.AppendChild(child)

	parentFired := false
	child.AddListener("click", func(ev *Event) { ev.StopPropagation() })
	parent.AddListener("click", func(*Event) { parentFired = true })

	child.Dispatch(&Event{Type: "click", Bubbles: true})
	if parentFired {
		t.Error("parent listener should not fire after StopPropagation")
	}
}

func TestLifecycleConnectDisconnect(t *testing.T) {
	d := NewDocument()
	lc := &recordingLifecycle{}
	d.SetLifecycle(lc)

	parent := d.CreateElement("x-card")
	inner := d.CreateElement("span")
	parent.AppendChild(inner)

	// Still detached: nothing fires.
	if len(lc.connected) != 0 {
		t.Fatalf("connected = %v, want none before rooting", lc.connected)
	}

	d.Root().AppendChild(parent)
	if len(lc.connected) != 2 {
		t.Errorf("connected = %v, want subtree walk of 2 elements", lc.connected)
	}

	d.Root().RemoveChild(parent)
	if len(lc.disconnected) != 2 {
		t.Errorf("disconnected = %v, want 2", lc.disconnected)
	}
}

func TestLifecycleAttributeChanged(t *testing.T) {
	d := NewDocument()
	lc := &recordingLifecycle{}
	d.SetLifecycle(lc)

	n := d.CreateElement("x-card")
	n.SetAttr("title", "a")
	n.SetAttr("title", "a") // unchanged, no notification
	n.RemoveAttr("title")
	n.RemoveAttr("title") // absent, no notification

	if len(lc.attrs) != 2 {
		t.Fatalf("attr notifications = %d, want 2", len(lc.attrs))
	}
	if lc.attrs[0].old != nil || *lc.attrs[0].new != "a" {
		t.Errorf("first change = %+v, want nil -> a", lc.attrs[0])
	}
	if lc.attrs[1].new != nil || *lc.attrs[1].old != "a" {
		t.Errorf("second change = %+v, want a -> nil", lc.attrs[1])
	}
}

func TestMutationLog(t *testing.T) {
	d := NewDocument()
	var ops []MutOp
	d.OnMutation(func(m Mutation) { ops = append(ops, m.Op) })

	n := d.CreateElement("div")
	d.Root().AppendChild(n)
	n.SetAttr("id", "x")
	txt := d.CreateText("hi")
	n.AppendChild(txt)
	txt.SetText("bye")
	d.Root().RemoveChild(n)

	want := []MutOp{MutCreateElement, MutInsert, MutSetAttr, MutCreateText, MutInsert, MutSetText, MutRemove}
	if len(ops) != len(want) {
		t.Fatalf("ops = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("ops[%d] = %v, want %v", i, ops[i], want[i])
		}
	}
}

func TestFieldIndexTwoCaseConventions(t *testing.T) {
	d := NewDocument()

	for _, key := range []string{"tabIndex", "tab-index"} {
		if field, ok := d.FieldFor("div", key); !ok || field != "tabIndex" {
			t.Errorf("FieldFor(div, %q) = %q, %v; want tabIndex, true", key, field, ok)
		}
	}
	if _, ok := d.FieldFor("div", "value"); ok {
		t.Error("div should not index 'value'")
	}
	if field, ok := d.FieldFor("input", "value"); !ok || field != "value" {
		t.Errorf("FieldFor(input, value) = %q, %v; want value, true", field, ok)
	}
}

func TestFieldIndexRegistrationAndInvalidation(t *testing.T) {
	d := NewDocument()
	d.RegisterFields("x-counter", "count", "maxItems")

	if field, ok := d.FieldFor("x-counter", "max-items"); !ok || field != "maxItems" {
		t.Errorf("FieldFor(x-counter, max-items) = %q, %v; want maxItems, true", field, ok)
	}

	d.InvalidateFields("x-counter")
	if _, ok := d.FieldFor("x-counter", "count"); ok {
		t.Error("invalidated class fields should be gone")
	}
}

type attrChange struct {
	name     string
	old, new *string
}

func TestLifecycleFieldChanged(t *testing.T) {
	d := NewDocument()
	lc := &recordingLifecycle{}
	d.SetLifecycle(lc)

	n := d.CreateElement("input")
	n.SetField("value", "a")
	n.SetField("value", "b")
	n.DeleteField("value")
	n.DeleteField("value") // absent, no notification

	if len(lc.fields) != 3 {
		t.Fatalf("field notifications = %d, want 3", len(lc.fields))
	}
	if lc.fields[1].old != "a" || lc.fields[1].new != "b" {
		t.Errorf("second change = %+v, want a -> b", lc.fields[1])
	}
	if lc.fields[2].new != nil {
		t.Errorf("delete change = %+v, want nil new", lc.fields[2])
	}
}

type recordingLifecycle struct {
	connected    []*Node
	disconnected []*Node
	attrs        []attrChange
	fields       []fieldChange
}

func (r *recordingLifecycle) NodeConnected(n *Node)    { r.connected = append(r.connected, n) }
func (r *recordingLifecycle) NodeDisconnected(n *Node) { r.disconnected = append(r.disconnected, n) }
func (r *recordingLifecycle) AttributeChanged(n *Node, name string, old, new *string) {
	r.attrs = append(r.attrs, attrChange{name: name, old: old, new: new})
}

func (r *recordingLifecycle) FieldChanged(n *Node, name string, old, new any) {
	r.fields = append(r.fields, fieldChange{name: name, old: old, new: new})
}

type fieldChange struct {
	name     string
	old, new any
}
