package render

import (
	"io"

	"github.com/loom-ui/loom/pkg/dom"
)

// Page wraps a rendered tree in a complete HTML document.
type Page struct {
	// Title is the document title.
	Title string

	// Lang is the html element's lang attribute. Defaults to "en".
	Lang string

	// Head holds extra raw head markup (link and meta tags), written
	// verbatim.
	Head []string

	// Scripts are script sources appended before the body closes.
	Scripts []string
}

// WritePage serializes a full HTML document with root mounted in the
// body.
func (r *Renderer) WritePage(w io.Writer, page Page, root *dom.Node) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	if _, err := io.WriteString(w, "<!DOCTYPE html>\n<html lang=\""+escapeAttr(lang)+"\">\n<head>\n<meta charset=\"utf-8\">\n"); err != nil {
		return err
	}
	if page.Title != "" {
		if _, err := io.WriteString(w, "<title>"+escapeHTML(page.Title)+"</title>\n"); err != nil {
			return err
		}
	}
	for _, h := range page.Head {
		if _, err := io.WriteString(w, h+"\n"); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "</head>\n<body>\n"); err != nil {
		return err
	}

	if root != nil {
		for _, c := range root.Children() {
			if err := r.writeNode(w, c, 0); err != nil {
				return err
			}
		}
	}

	for _, src := range page.Scripts {
		if _, err := io.WriteString(w, "\n<script src=\""+escapeAttr(src)+"\"></script>"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n</body>\n</html>\n")
	return err
}
