package reconcile

import (
	"github.com/loom-ui/loom/pkg/dom"
	"github.com/loom-ui/loom/pkg/styles"
	"github.com/loom-ui/loom/pkg/vdom"
)

// AdoptedSheetsField is the output-node field holding a render root's
// adopted stylesheet list.
const AdoptedSheetsField = "adoptedStyleSheets"

// Root is a top-level mount point. Root-level rendering recognizes the
// reserved root tags ("root", "overlay", "popup"), each implying a
// default stylesheet and display mode.
type Root struct {
	doc      *dom.Document
	mount    *dom.Node
	recon    *Reconciler
	resolver *styles.Resolver
}

// NewRoot creates a render root mounted under the given node. A nil
// mount uses the document root; a nil resolver disables stylesheet
// resolution beyond the built-in defaults.
func NewRoot(doc *dom.Document, mount *dom.Node, resolver *styles.Resolver) *Root {
	if mount == nil {
		mount = doc.Root()
	}
	return &Root{doc: doc, mount: mount, recon: New(doc), resolver: resolver}
}

// Reconciler returns the root's reconciler.
func (rt *Root) Reconciler() *Reconciler { return rt.recon }

// Node returns the root's current top-level element, or nil before the
// first render.
func (rt *Root) Node() *dom.Node { return rt.mount.FirstChild() }

// Render reconciles a vnode tree into the root. The adopted-stylesheet
// list (explicit loom:css refs merged with the root tag's implied
// default) is reapplied on every render, independently of the computed
// prop diff: which default applies depends on the root-tag variant,
// which is not otherwise diffed.
func (rt *Root) Render(v *vdom.VNode) error {
	if err := rt.recon.PatchChildren(rt.mount, []*vdom.VNode{v}); err != nil {
		return err
	}

	node := rt.mount.FirstChild()
	if node == nil || node.Type() != dom.ElementNode {
		return nil
	}
	rt.applySheets(node)
	return nil
}

func (rt *Root) applySheets(node *dom.Node) {
	var sheets []*styles.Sheet
	if def := styles.Default(node.Tag()); def != nil {
		sheets = append(sheets, def)
		node.SetStyle("display", styles.DisplayMode(node.Tag()))
	}

	props := rt.recon.LastProps(node)
	if refs, ok := props[vdom.KeyCSS]; ok {
		for _, ref := range cssRefs(refs) {
			sheets = append(sheets, rt.resolveSheet(ref))
		}
	}

	if len(sheets) > 0 {
		node.SetField(AdoptedSheetsField, sheets)
		return
	}
	// The sheet list can empty across renders when a non-root tag
	// drops its stylesheet prop; clear the field rather than leave
	// the previous list adopted.
	if _, ok := node.Field(AdoptedSheetsField); ok {
		node.DeleteField(AdoptedSheetsField)
	}
}

func (rt *Root) resolveSheet(ref any) *styles.Sheet {
	if s, ok := ref.(*styles.Sheet); ok {
		return s
	}
	if rt.resolver != nil {
		return rt.resolver.Resolve(ref)
	}
	return styles.NewSheet(StyleValue(ref))
}

// cssRefs normalizes the loom:css prop into a list of references.
func cssRefs(v any) []any {
	switch refs := v.(type) {
	case nil:
		return nil
	case []any:
		return refs
	case []*styles.Sheet:
		out := make([]any, len(refs))
		for i, s := range refs {
			out[i] = s
		}
		return out
	case []string:
		out := make([]any, len(refs))
		for i, s := range refs {
			out[i] = s
		}
		return out
	default:
		return []any{v}
	}
}
