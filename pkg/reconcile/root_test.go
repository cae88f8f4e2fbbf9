package reconcile

import (
	"strings"
	"testing"

	"github.com/loom-ui/loom/pkg/dom"
	"github.com/loom-ui/loom/pkg/styles"
	"github.com/loom-ui/loom/pkg/vdom"
)

func TestRootDefaultSheetAndDisplay(t *testing.T) {
	doc := dom.NewDocument()
	rt := NewRoot(doc, nil, nil)

	if err := rt.Render(vdom.El("root", vdom.Text("hi"))); err != nil {
		t.Fatal(err)
	}

	node := rt.Node()
	if node == nil || node.Tag() != "root" {
		t.Fatalf("root node = %v", node)
	}
	if v, _ := node.Style("display"); v != "block" {
		t.Errorf("display = %q, want block", v)
	}

	raw, ok := node.Field(AdoptedSheetsField)
	if !ok {
		t.Fatal("adopted sheets field not set")
	}
	sheets := raw.([]*styles.Sheet)
	if len(sheets) != 1 {
		t.Fatalf("sheets = %d, want 1", len(sheets))
	}
	if css := sheets[0].CSS(); !strings.Contains(css, "box-sizing") {
		t.Errorf("default sheet css = %q", css)
	}
}

func TestRootOverlayDisplayMode(t *testing.T) {
	doc := dom.NewDocument()
	rt := NewRoot(doc, nil, nil)

	if err := rt.Render(vdom.El("overlay")); err != nil {
		t.Fatal(err)
	}
	if v, _ := rt.Node().Style("display"); v != "fixed" {
		t.Errorf("display = %q, want fixed", v)
	}
}

func TestRootSheetsReappliedEveryRender(t *testing.T) {
	doc := dom.NewDocument()
	rt := NewRoot(doc, nil, styles.NewResolver())

	sheet := styles.NewSheet(".x { color: red }")
	view := func(label string) *vdom.VNode {
		return vdom.El("root", vdom.Props{vdom.KeyCSS: []any{sheet}}, vdom.Text(label))
	}

	if err := rt.Render(view("a")); err != nil {
		t.Fatal(err)
	}
	node := rt.Node()
	node.DeleteField(AdoptedSheetsField)

	// Sheet props did not change, so the prop diff is empty. The list
	// must come back anyway.
	if err := rt.Render(view("b")); err != nil {
		t.Fatal(err)
	}
	raw, ok := node.Field(AdoptedSheetsField)
	if !ok {
		t.Fatal("sheets not reapplied on second render")
	}
	sheets := raw.([]*styles.Sheet)
	if len(sheets) != 2 {
		t.Fatalf("sheets = %d, want default plus explicit", len(sheets))
	}
	if sheets[1] != sheet {
		t.Error("explicit sheet not carried through")
	}
}

func TestRootMountUnderExplicitNode(t *testing.T) {
	doc := dom.NewDocument()
	mount := doc.CreateElement("main")
	doc.Root().AppendChild(mount)

	rt := NewRoot(doc, mount, nil)
	if err := rt.Render(vdom.El("section")); err != nil {
		t.Fatal(err)
	}
	if rt.Node() == nil || rt.Node().Parent() != mount {
		t.Error("render should target the explicit mount node")
	}
}

func TestRootNonRootTagNoDefaultSheet(t *testing.T) {
	doc := dom.NewDocument()
	rt := NewRoot(doc, nil, nil)

	if err := rt.Render(vdom.El("div")); err != nil {
		t.Fatal(err)
	}
	if _, ok := rt.Node().Field(AdoptedSheetsField); ok {
		t.Error("plain tag should not adopt a default sheet")
	}
}

func TestSheetFieldClearedWhenListEmpties(t *testing.T) {
	doc := dom.NewDocument()
	rt := NewRoot(doc, nil, nil)
	sheet := styles.NewSheet("p { margin: 0 }")

	if err := rt.Render(vdom.El("div", vdom.Props{vdom.KeyCSS: []any{sheet}})); err != nil {
		t.Fatal(err)
	}
	if _, ok := rt.Node().Field(AdoptedSheetsField); !ok {
		t.Fatal("explicit sheet not adopted")
	}

	if err := rt.Render(vdom.El("div")); err != nil {
		t.Fatal(err)
	}
	if _, ok := rt.Node().Field(AdoptedSheetsField); ok {
		t.Error("sheet field should clear when the list empties")
	}
}
