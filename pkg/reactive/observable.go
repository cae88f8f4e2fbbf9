// Package reactive provides observable value containers that the engine
// binds directly into output-tree properties.
//
// A prop value is classified exactly once at assignment time: either it
// is a plain value, or it satisfies Observable and is routed through the
// binding table. No other capability probing happens in the hot path.
package reactive

// Observable is a readable value that can notify watchers of changes.
type Observable interface {
	// Read returns the current value without subscribing.
	Read() any

	// Watch registers a change handler and returns a cancel function.
	// Cancel is idempotent.
	Watch(fn func(value any)) (cancel func())
}

// IsObservable reports whether a prop value is an observable handle.
func IsObservable(v any) bool {
	_, ok := v.(Observable)
	return ok
}

// AsObservable returns the observable handle for a prop value, or nil
// when the value is plain.
func AsObservable(v any) Observable {
	if o, ok := v.(Observable); ok {
		return o
	}
	return nil
}
