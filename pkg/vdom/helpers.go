package vdom

// If returns the node if condition is true, nil otherwise.
// Nil children are pruned during flattening, so this composes directly
// into a body.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// IfElse returns the first node if condition is true, the second otherwise.
func IfElse(condition bool, ifTrue, ifFalse *VNode) *VNode {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When is like If but with lazy evaluation. The function is only called
// if condition is true.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return nil
}

// Range maps a slice to vnodes. Nil results are dropped.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	result := make([]*VNode, 0, len(items))
	for i, item := range items {
		if node := fn(item, i); node != nil {
			result = append(result, node)
		}
	}
	return result
}

// Repeat creates n nodes using the given function.
func Repeat(n int, fn func(i int) *VNode) []*VNode {
	if n <= 0 {
		return nil
	}
	result := make([]*VNode, 0, n)
	for i := 0; i < n; i++ {
		if node := fn(i); node != nil {
			result = append(result, node)
		}
	}
	return result
}

// Keyed returns a copy of props with the explicit reconciliation key set.
func Keyed(key any, props Props) Props {
	out := props.clone()
	out[KeyKey] = key
	return out
}

// WithKey builds the minimal props map carrying only an explicit key.
func WithKey(key any) Props {
	return Props{KeyKey: key}
}
