package events

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHarvestKeyboard(t *testing.T) {
	r := NewRegistry()

	got := r.Harvest(RawEvent{Type: "keydown", Key: "a", Code: "KeyA", Ctrl: true, Shift: true})
	want := KeyInfo{Key: "a", Code: "KeyA", Mods: []string{"ctrl", "shift"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("keyboard harvest mismatch (-want +got):\n%s", diff)
	}
}

func TestHarvestInputVariants(t *testing.T) {
	r := NewRegistry()
	files := []File{{Name: "a.txt", Size: 3, Type: "text/plain"}}

	tests := []struct {
		name string
		ev   RawEvent
		want any
	}{
		{"checkbox", RawEvent{Type: "change", TargetType: "checkbox", Checked: true}, true},
		{"radio", RawEvent{Type: "change", TargetType: "radio", Checked: false}, false},
		{"file", RawEvent{Type: "change", TargetType: "file", Files: files}, files},
		{"text", RawEvent{Type: "input", Value: "hello"}, "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Harvest(tt.ev)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("harvest mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHarvestDropYieldsFiles(t *testing.T) {
	r := NewRegistry()
	files := []File{{Name: "x.png", Size: 10, Type: "image/png"}}

	got := r.Harvest(RawEvent{Type: "drop", Files: files})
	if diff := cmp.Diff(files, got); diff != "" {
		t.Errorf("drop harvest mismatch (-want +got):\n%s", diff)
	}
}

func TestHarvestDefaultBranch(t *testing.T) {
	r := NewRegistry()
	got := r.Harvest(RawEvent{Type: "custom", Detail: map[string]any{"x": 1.0}})
	want := map[string]any{"x": 1.0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("default harvest mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterOverride(t *testing.T) {
	r := NewRegistry()
	r.Register("click", func(ev RawEvent) any { return "clicked" })

	if got := r.Harvest(RawEvent{Type: "click"}); got != "clicked" {
		t.Errorf("override = %v, want clicked", got)
	}
}
