// Package render serializes a live output tree to HTML. The server
// uses it to deliver the first paint before a patch stream takes over;
// component shadow subtrees serialize as declarative shadow DOM
// templates.
package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/loom-ui/loom/pkg/dom"
)

// Config configures the HTML renderer.
type Config struct {
	// Pretty enables indented output. Development only; it inflates
	// the payload.
	Pretty bool

	// Indent is the per-level indent string in pretty mode. Defaults
	// to two spaces.
	Indent string
}

// Renderer serializes output-tree nodes to HTML.
type Renderer struct {
	cfg Config
}

func NewRenderer(cfg Config) *Renderer {
	if cfg.Indent == "" {
		cfg.Indent = "  "
	}
	return &Renderer{cfg: cfg}
}

// WriteHTML serializes n with default configuration.
func WriteHTML(w io.Writer, n *dom.Node) error {
	return NewRenderer(Config{}).WriteNode(w, n)
}

// NodeToString serializes n to a string.
func (r *Renderer) NodeToString(n *dom.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.WriteNode(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteNode streams n to the writer.
func (r *Renderer) WriteNode(w io.Writer, n *dom.Node) error {
	return r.writeNode(w, n, 0)
}

func (r *Renderer) writeNode(w io.Writer, n *dom.Node, depth int) error {
	if n == nil {
		return nil
	}
	if n.Type() == dom.TextNode {
		_, err := io.WriteString(w, escapeHTML(n.Text()))
		return err
	}
	return r.writeElement(w, n, depth)
}

func (r *Renderer) writeElement(w io.Writer, n *dom.Node, depth int) error {
	tag := n.Tag()

	var sb strings.Builder
	if r.cfg.Pretty && depth > 0 {
		sb.WriteByte('\n')
		for i := 0; i < depth; i++ {
			sb.WriteString(r.cfg.Indent)
		}
	}
	sb.WriteByte('<')
	sb.WriteString(tag)
	writeAttrs(&sb, n)
	sb.WriteByte('>')
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}

	if isVoidElement(tag) {
		return nil
	}

	if shadow := n.Shadow(); shadow != nil && shadow.ChildCount() > 0 {
		if _, err := io.WriteString(w, `<template shadowrootmode="open">`); err != nil {
			return err
		}
		for _, c := range shadow.Children() {
			if err := r.writeNode(w, c, depth+1); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</template>"); err != nil {
			return err
		}
	}

	for _, c := range n.Children() {
		if err := r.writeNode(w, c, depth+1); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</"+tag+">")
	return err
}

// fields never reflected into serialized attributes.
var unreflectedFields = map[string]bool{
	"scrollTop":          true,
	"scrollLeft":         true,
	"adoptedStyleSheets": true,
}

// writeAttrs serializes attributes in sorted order, reflecting
// scalar native fields as attributes and folding inline style
// declarations into a style attribute.
func writeAttrs(sb *strings.Builder, n *dom.Node) {
	attrs := n.Attrs()

	for field, v := range n.Fields() {
		if unreflectedFields[field] {
			continue
		}
		name := dom.CamelToKebab(field)
		switch val := v.(type) {
		case string:
			attrs[name] = val
		case bool:
			if val {
				attrs[name] = ""
			}
		case int, int64, float64, uint, uint64:
			attrs[name] = fmt.Sprintf("%v", val)
		}
	}

	if style := n.StyleMap(); len(style) > 0 {
		props := make([]string, 0, len(style))
		for p := range style {
			props = append(props, p)
		}
		sort.Strings(props)
		var decl strings.Builder
		for i, p := range props {
			if i > 0 {
				decl.WriteString("; ")
			}
			decl.WriteString(p)
			decl.WriteString(": ")
			decl.WriteString(style[p])
		}
		attrs["style"] = decl.String()
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := attrs[name]
		sb.WriteByte(' ')
		sb.WriteString(name)
		if value == "" && isBooleanAttr(name) {
			continue
		}
		sb.WriteString(`="`)
		sb.WriteString(escapeAttr(value))
		sb.WriteByte('"')
	}
}
