package vdom

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/loom-ui/loom/internal/errors"
)

// tagPattern matches "segment", "segment#id", "segment.a.b" and
// "segment#id.a.b". Anything else is a structural error.
var tagPattern = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9_-]*)(?:#([a-zA-Z0-9_-]+))?((?:\.[a-zA-Z0-9_-]+)*)$`)

// PathSeparator splits a compound tag path into its segments.
// "ul>li" denotes an <li> nested inside a <ul>.
const PathSeparator = ">"

// Normalize parses the loose construction arguments into a canonical
// (tag, props, children) triple.
//
// If the first argument is a Props map, every remaining argument is body.
// Otherwise alternating P/value pairs are greedily consumed from the
// front as props until the first non-P argument; the rest (inclusive)
// is body. The body is flattened: nested sequences are spliced in place,
// nils dropped, leaf values turned into text nodes.
func Normalize(tag string, args ...any) (string, Props, []*VNode) {
	props := Props{}
	body := args

	if len(args) > 0 {
		if m, ok := args[0].(Props); ok {
			for k, v := range m {
				props[k] = v
			}
			body = args[1:]
		} else {
			for len(body) >= 2 {
				key, ok := body[0].(P)
				if !ok {
					break
				}
				props[string(key)] = body[1]
				body = body[2:]
			}
		}
	}

	return tag, props, materialize(Flatten(body))
}

// El builds a vnode from the loose tuple syntax. The tag may carry #id
// and .class shorthand and may be a compound path; both are resolved
// later by Preprocess.
func El(tag string, args ...any) *VNode {
	t, props, children := Normalize(tag, args...)
	return &VNode{Kind: KindElement, Tag: t, Props: props, Children: children}
}

// Flatten recursively expands nested sequences in place, drops nil
// elements and leaves everything else (including leaf values)
// untouched, preserving order.
func Flatten(body []any) []any {
	out := make([]any, 0, len(body))
	for _, item := range body {
		switch v := item.(type) {
		case nil:
			continue
		case []any:
			out = append(out, Flatten(v)...)
		case []*VNode:
			for _, n := range v {
				if n != nil {
					out = append(out, n)
				}
			}
		case *VNode:
			if v != nil {
				out = append(out, v)
			}
		default:
			out = append(out, item)
		}
	}
	return out
}

// materialize converts a flat body into child vnodes. Leaf values
// render as text.
func materialize(body []any) []*VNode {
	children := make([]*VNode, 0, len(body))
	for _, item := range body {
		switch v := item.(type) {
		case *VNode:
			children = append(children, v)
		case string:
			children = append(children, Text(v))
		default:
			children = append(children, Text(fmt.Sprintf("%v", v)))
		}
	}
	return children
}

// ExtractTagProps resolves a single tag's #id and .class shorthand into
// the props map. The returned props always carry the original tag under
// KeySelector, an id entry (nil when absent) and a class entry holding
// the tag-derived classes merged with any pre-existing class value,
// blanks removed, nil when the merge is empty.
//
// A tag failing the pattern is a fatal structural error carrying the
// offending tag.
func ExtractTagProps(tag string, props Props) (string, Props, error) {
	out := props.clone()
	out[KeySelector] = tag

	// Opaque tags skip shorthand extraction entirely.
	if opaque, _ := out[KeyTag].(bool); opaque {
		return tag, out, nil
	}

	m := tagPattern.FindStringSubmatch(tag)
	if m == nil {
		return "", nil, errors.ErrInvalidTag.WithDetail(tag)
	}

	resolved := m[1]
	if m[2] != "" {
		out[KeyID] = m[2]
	} else if _, ok := out[KeyID]; !ok {
		out[KeyID] = nil
	}

	var classes []string
	if m[3] != "" {
		classes = strings.Split(strings.TrimPrefix(m[3], "."), ".")
	}
	classes = append(classes, classList(out[KeyClass])...)
	merged := make([]string, 0, len(classes))
	for _, c := range classes {
		if strings.TrimSpace(c) != "" {
			merged = append(merged, c)
		}
	}
	if len(merged) == 0 {
		out[KeyClass] = nil
	} else {
		out[KeyClass] = merged
	}

	return resolved, out, nil
}

// classList coerces a pre-existing class prop value into a flat list.
// Strings split on whitespace; sequences are flattened recursively.
func classList(v any) []string {
	switch c := v.(type) {
	case nil:
		return nil
	case string:
		return strings.Fields(c)
	case []string:
		return c
	case []any:
		var out []string
		for _, item := range c {
			out = append(out, classList(item)...)
		}
		return out
	default:
		return []string{fmt.Sprintf("%v", c)}
	}
}

// Preprocess resolves a vnode into its canonical single-tag form.
//
// A single tag goes through ExtractTagProps. A compound path of two or
// more tags is expanded into nested single-child wrapper triples from
// innermost to outermost; an explicit key is propagated only to the
// outermost wrapper and stripped from inner ones. An empty path is a
// fatal structural error.
func Preprocess(v *VNode) (*VNode, error) {
	if v == nil || v.Kind == KindText {
		return v, nil
	}

	segments := splitPath(v.Tag)
	if len(segments) == 0 {
		return nil, errors.ErrEmptyTagPath.WithDetail(v.Tag)
	}

	if len(segments) == 1 {
		tag, props, err := ExtractTagProps(segments[0], v.Props)
		if err != nil {
			return nil, err
		}
		return &VNode{Kind: KindElement, Tag: tag, Props: props, Children: v.Children}, nil
	}

	key, hasKey := v.Props[KeyKey]

	inner := v.Props.clone()
	delete(inner, KeyKey)

	// Build from the innermost segment outward; only the innermost
	// carries the original props and children.
	node := &VNode{Kind: KindElement, Tag: segments[len(segments)-1], Props: inner, Children: v.Children}
	var err error
	if node, err = Preprocess(node); err != nil {
		return nil, err
	}

	for i := len(segments) - 2; i >= 0; i-- {
		wrapper := &VNode{Kind: KindElement, Tag: segments[i], Props: Props{}, Children: []*VNode{node}}
		if i == 0 && hasKey {
			wrapper.Props[KeyKey] = key
		}
		if wrapper, err = Preprocess(wrapper); err != nil {
			return nil, err
		}
		node = wrapper
	}

	return node, nil
}

// splitPath splits a compound tag path into trimmed non-empty segments.
func splitPath(tag string) []string {
	parts := strings.Split(tag, PathSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
