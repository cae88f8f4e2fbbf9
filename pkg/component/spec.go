// Package component manages named, tag-addressable components layered
// on the reconciliation engine. A component class pairs a pure view
// function with a property specification; instances attach when a node
// with the class's tag enters the document, render into a shadow
// subtree on their own schedule, and tear their bindings down on
// detach.
package component

import (
	"fmt"

	"github.com/loom-ui/loom/internal/errors"
	"github.com/loom-ui/loom/pkg/dom"
	"github.com/loom-ui/loom/pkg/vdom"
)

// ViewFunc renders current props into a vnode tree. It must be pure:
// it may be re-invoked arbitrarily often and must not mutate instance
// state.
type ViewFunc func(props vdom.Props) *vdom.VNode

// Def declares a component class.
type Def struct {
	// Name is the tag the class attaches to.
	Name string

	// Props declares the class's properties and how each surfaces on
	// the host node.
	Props []PropSpec

	// View renders the instance's shadow subtree.
	View ViewFunc

	// Focus requests programmatic focusability: hosts without an
	// explicit tab stop get a neutral one.
	Focus bool
}

// PropSpec declares one component property. An attribute-backed spec
// observes the named attribute and mirrors it onto a native field; a
// field-only spec is writable programmatically but invisible to
// attribute changes.
type PropSpec struct {
	// Name is the property key as seen by the view.
	Name string

	// Attr is the observed attribute name, empty for field-only specs.
	Attr string

	// Field is the native field name mirrored on the host node, empty
	// for attribute-only specs.
	Field string

	// Decode maps a raw attribute string to the property value. Nil
	// keeps the raw string. Only valid on attribute-backed specs.
	Decode func(string) any
}

// Attr declares an attribute-backed property: the kebab-case attribute
// is observed and the camelCase field is mirrored.
func Attr(name string) PropSpec {
	return PropSpec{
		Name:  name,
		Attr:  dom.CamelToKebab(name),
		Field: dom.KebabToCamel(name),
	}
}

// Field declares a field-only property.
func Field(name string) PropSpec {
	return PropSpec{Name: name, Field: dom.KebabToCamel(name)}
}

// validateSpecs rejects malformed property specifications at
// registration time.
func validateSpecs(name string, specs []PropSpec) error {
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		switch {
		case spec.Name == "":
			return errors.ErrBadPropSpec.WithDetail(fmt.Sprintf("%s: spec with empty name", name))
		case spec.Attr == "" && spec.Field == "":
			return errors.ErrBadPropSpec.WithDetail(fmt.Sprintf("%s: %q has neither attribute nor field", name, spec.Name))
		case spec.Decode != nil && spec.Attr == "":
			return errors.ErrBadPropSpec.WithDetail(fmt.Sprintf("%s: %q has a decoder but no attribute", name, spec.Name))
		}
		if _, dup := seen[spec.Name]; dup {
			return errors.ErrBadPropSpec.WithDetail(fmt.Sprintf("%s: duplicate spec %q", name, spec.Name))
		}
		seen[spec.Name] = struct{}{}
	}
	return nil
}
