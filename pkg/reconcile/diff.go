// Package reconcile updates a live output tree to match a new vnode
// tree with minimal structural mutation. It contains the property
// differ and patcher, the reactive binding table, and the keyed
// children reconciler.
package reconcile

import (
	"reflect"

	"github.com/loom-ui/loom/pkg/reactive"
	"github.com/loom-ui/loom/pkg/vdom"
)

// Change records one prop transition as an [old, new] pair. A missing
// key reads as nil on its side.
type Change struct {
	Old, New any
}

// PropDiff is a structural diff between two property maps. The three
// grouped keys (style, listener, aria maps) are diffed key-by-key
// within the group; a group field is nil when its inner diff is empty,
// so an unchanged listener map never triggers teardown and rebinding.
type PropDiff struct {
	Plain     map[string]Change
	Style     map[string]Change
	Listeners map[string]Change
	Aria      map[string]Change
}

// Empty reports whether the diff carries no changes at all.
func (d PropDiff) Empty() bool {
	return len(d.Plain) == 0 && len(d.Style) == 0 && len(d.Listeners) == 0 && len(d.Aria) == 0
}

// DiffProps computes the structural diff between two property maps.
// Every key present in either map whose value differs by equality is
// recorded.
func DiffProps(old, new vdom.Props) PropDiff {
	var d PropDiff

	record := func(key string, ch Change) {
		switch key {
		case vdom.KeyStyle:
			d.Style = diffGroup(ch)
		case vdom.KeyOn:
			d.Listeners = diffGroup(ch)
		case vdom.KeyAria:
			d.Aria = diffGroup(ch)
		default:
			if d.Plain == nil {
				d.Plain = make(map[string]Change)
			}
			d.Plain[key] = ch
		}
	}

	for key, oldVal := range old {
		newVal, ok := new[key]
		if !ok {
			record(key, Change{Old: oldVal, New: nil})
		} else if !valuesEqual(oldVal, newVal) || isGroupKey(key) {
			record(key, Change{Old: oldVal, New: newVal})
		}
	}
	for key, newVal := range new {
		if _, ok := old[key]; !ok {
			record(key, Change{Old: nil, New: newVal})
		}
	}

	return d
}

func isGroupKey(key string) bool {
	return key == vdom.KeyStyle || key == vdom.KeyOn || key == vdom.KeyAria
}

// diffGroup diffs a grouped sub-map entry by entry. The result is nil
// when nothing inside the group changed.
func diffGroup(ch Change) map[string]Change {
	old := groupMap(ch.Old)
	new := groupMap(ch.New)

	var out map[string]Change
	record := func(key string, c Change) {
		if out == nil {
			out = make(map[string]Change)
		}
		out[key] = c
	}

	for key, oldVal := range old {
		newVal, ok := new[key]
		if !ok {
			record(key, Change{Old: oldVal, New: nil})
		} else if !valuesEqual(oldVal, newVal) {
			record(key, Change{Old: oldVal, New: newVal})
		}
	}
	for key, newVal := range new {
		if _, ok := old[key]; !ok {
			record(key, Change{Old: nil, New: newVal})
		}
	}
	return out
}

// groupMap coerces a grouped prop value into a string-keyed map.
func groupMap(v any) map[string]any {
	switch m := v.(type) {
	case nil:
		return nil
	case map[string]any:
		return m
	case vdom.Props:
		return m
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out
	default:
		return nil
	}
}

// valuesEqual compares two prop values. Observables compare by
// identity; everything else by (deep) equality, with fast paths for the
// common scalar types.
func valuesEqual(a, b any) bool {
	if ao := reactive.AsObservable(a); ao != nil {
		return ao == reactive.AsObservable(b)
	}
	if reactive.IsObservable(b) {
		return false
	}

	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	}
	return reflect.DeepEqual(a, b)
}
