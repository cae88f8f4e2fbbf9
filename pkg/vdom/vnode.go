package vdom

import "fmt"

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement Kind = iota // <div>, <button>, etc.
	KindText                // Plain text leaf
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// Reserved prop keys. Framework-reserved keys are namespaced with the
// "loom:" prefix; keys that mirror output-tree attributes keep their
// attribute names.
const (
	// KeySelector holds the original tag the vnode was written with,
	// including its #id and .class shorthand. It is the first half of the
	// structural key used to match children across renders.
	KeySelector = "loom:selector"

	// KeyKey is the explicit reconciliation key.
	KeyKey = "loom:key"

	// KeyCSS references stylesheets adopted by a render root.
	KeyCSS = "loom:css"

	// KeyTag marks the tag as opaque: no #id/.class extraction is
	// performed and the tag is used verbatim.
	KeyTag = "loom:tag"

	// KeyID is the element identifier folded out of the tag shorthand.
	KeyID = "id"

	// KeyClass is the class list (tag-derived classes merged with any
	// explicit value).
	KeyClass = "class"

	// KeyStyle is the grouped style map, diffed declaration by declaration.
	KeyStyle = "style"

	// KeyOn is the grouped event-listener map, diffed slot by slot.
	KeyOn = "on"

	// KeyAria is the grouped accessibility-attribute map.
	KeyAria = "aria"

	// KeyXMLNS overrides the element namespace at creation time.
	KeyXMLNS = "xmlns"
)

// Props holds a vnode's properties.
type Props map[string]any

// P is a symbolic prop key. In the loose construction syntax, a leading
// run of alternating P/value pairs is consumed as props; the first
// non-P argument starts the body.
type P string

// VNode is one node of declarative output: a text leaf or a
// (tag, props, children) triple.
type VNode struct {
	Kind     Kind
	Tag      string // element tag; may be a compound path before Preprocess
	Props    Props
	Children []*VNode
	Text     string // for KindText
}

// Text creates a text leaf.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Text: content}
}

// Textf creates a formatted text leaf.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Key returns the vnode's explicit reconciliation key, or "" if none.
// Keys are stringified so any comparable value works as a key.
func (v *VNode) Key() string {
	if v == nil || v.Props == nil {
		return ""
	}
	return KeyString(v.Props[KeyKey])
}

// Selector returns the vnode's original tag selector, or the tag itself
// when the node has not been through ExtractTagProps yet.
func (v *VNode) Selector() string {
	if v == nil {
		return ""
	}
	if v.Props != nil {
		if s, ok := v.Props[KeySelector].(string); ok {
			return s
		}
	}
	return v.Tag
}

// KeyString stringifies an explicit key value. nil yields "".
func KeyString(key any) string {
	if key == nil {
		return ""
	}
	if s, ok := key.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", key)
}

// clone returns a shallow copy of the props map.
func (p Props) clone() Props {
	out := make(Props, len(p)+3)
	for k, v := range p {
		out[k] = v
	}
	return out
}
