package reconcile

import (
	"testing"

	"github.com/loom-ui/loom/pkg/dom"
	"github.com/loom-ui/loom/pkg/reactive"
	"github.com/loom-ui/loom/pkg/vdom"
)

func TestBindingSharing(t *testing.T) {
	_, parent, r := newTestParent(t)

	sig := reactive.NewSignal("v1")
	err := r.Render(parent,
		vdom.El("span", vdom.P("title"), sig),
		vdom.El("p", vdom.P("data-x"), sig),
	)
	if err != nil {
		t.Fatal(err)
	}

	// Two binders, one entry, one subscription.
	if got := r.Bindings().Len(); got != 1 {
		t.Fatalf("entries = %d, want 1 shared entry", got)
	}
	if got := r.Bindings().Binders(sig); got != 2 {
		t.Fatalf("binders = %d, want 2", got)
	}

	span, p := parent.Children()[0], parent.Children()[1]
	if v, _ := span.Attr("title"); v != "v1" {
		t.Errorf("span title = %q, want v1", v)
	}
	if v, _ := p.Attr("data-x"); v != "v1" {
		t.Errorf("p data-x = %q, want v1", v)
	}

	// Observable fires: both binders updated through the setter policy.
	sig.Set("v2")
	if v, _ := span.Attr("title"); v != "v2" {
		t.Errorf("span title = %q, want v2 after fire", v)
	}
	if v, _ := p.Attr("data-x"); v != "v2" {
		t.Errorf("p data-x = %q, want v2 after fire", v)
	}

	// Drop one binder: the subscription stays and the survivor still
	// updates.
	if err := r.Render(parent, vdom.El("span", vdom.P("title"), sig)); err != nil {
		t.Fatal(err)
	}
	if got := r.Bindings().Binders(sig); got != 1 {
		t.Fatalf("binders = %d, want 1 after dropping one consumer", got)
	}
	sig.Set("v3")
	if v, _ := span.Attr("title"); v != "v3" {
		t.Errorf("span title = %q, want v3", v)
	}

	// Drop the last binder: entry gone, subscription cancelled.
	if err := r.Render(parent, vdom.El("span")); err != nil {
		t.Fatal(err)
	}
	if got := r.Bindings().Len(); got != 0 {
		t.Errorf("entries = %d, want 0", got)
	}
	sig.Set("v4")
	if v, _ := span.Attr("title"); v == "v4" {
		t.Error("cancelled binding must not keep writing")
	}
}

func TestObservableSwapRebinds(t *testing.T) {
	_, parent, r := newTestParent(t)

	first := reactive.NewSignal("a")
	second := reactive.NewSignal("b")

	if err := r.Render(parent, vdom.El("span", vdom.P("title"), first)); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(parent, vdom.El("span", vdom.P("title"), second)); err != nil {
		t.Fatal(err)
	}

	span := parent.FirstChild()
	if v, _ := span.Attr("title"); v != "b" {
		t.Errorf("title = %q, want b", v)
	}
	if r.Bindings().Binders(first) != 0 {
		t.Error("old observable should be fully unbound")
	}

	first.Set("a2")
	if v, _ := span.Attr("title"); v != "b" {
		t.Errorf("title = %q, old observable must no longer write", v)
	}
	second.Set("b2")
	if v, _ := span.Attr("title"); v != "b2" {
		t.Errorf("title = %q, want b2", v)
	}
}

func TestObservableToPlainValue(t *testing.T) {
	_, parent, r := newTestParent(t)

	sig := reactive.NewSignal("obs")
	if err := r.Render(parent, vdom.El("span", vdom.P("title"), sig)); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(parent, vdom.El("span", vdom.P("title"), "plain")); err != nil {
		t.Fatal(err)
	}

	if v, _ := parent.FirstChild().Attr("title"); v != "plain" {
		t.Errorf("title = %q, want plain", v)
	}
	if r.Bindings().Len() != 0 {
		t.Error("binding should be removed when prop becomes plain")
	}
}

func TestReleaseCancelsEverything(t *testing.T) {
	doc := dom.NewDocument()
	n := doc.CreateElement("div")

	sig := reactive.NewSignal(1)
	b := NewBindings(writeValue)
	b.Bind(n, "a", sig)
	b.Bind(n, "b", sig)

	b.Release()
	if b.Len() != 0 {
		t.Errorf("entries = %d, want 0 after Release", b.Len())
	}

	sig.Set(2)
	if v, _ := n.Attr("a"); v == "2" {
		t.Error("released table must not keep writing")
	}
}

func TestBindWritesInitialValueThroughFieldPolicy(t *testing.T) {
	_, parent, r := newTestParent(t)

	sig := reactive.NewSignal("typed")
	if err := r.Render(parent, vdom.El("input", vdom.P("value"), sig)); err != nil {
		t.Fatal(err)
	}

	input := parent.FirstChild()
	// "value" is an indexed native field on input, not an attribute.
	if v, ok := input.Field("value"); !ok || v != "typed" {
		t.Errorf("field value = %v (%v), want typed", v, ok)
	}
	if _, ok := input.Attr("value"); ok {
		t.Error("indexed field must not also be written as attribute")
	}

	sig.Set("more")
	if v, _ := input.Field("value"); v != "more" {
		t.Errorf("field value = %v, want more after fire", v)
	}
}
