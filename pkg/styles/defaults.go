package styles

import "sync"

// Default stylesheets implied by the reserved render-root tags. Each
// variant carries the base declarations its display mode expects.
var defaultCSS = map[string]string{
	"root": `:host { display: block; box-sizing: border-box; margin: 0; }
* { box-sizing: inherit; }`,
	"overlay": `:host { display: block; position: fixed; inset: 0; }
* { box-sizing: border-box; }`,
	"popup": `:host { display: block; position: absolute; }
* { box-sizing: border-box; }`,
}

var (
	defaultsMu sync.Mutex
	defaults   = make(map[string]*Sheet)
)

// Default returns the shared default sheet for a reserved root tag, or
// nil when the tag has none.
func Default(variant string) *Sheet {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()

	if s, ok := defaults[variant]; ok {
		return s
	}
	css, ok := defaultCSS[variant]
	if !ok {
		return nil
	}
	s := NewSheet(css)
	defaults[variant] = s
	return s
}

// IsRootTag reports whether a tag is one of the reserved root tags.
func IsRootTag(tag string) bool {
	_, ok := defaultCSS[tag]
	return ok
}

// DisplayMode returns the display mode implied by a reserved root tag.
func DisplayMode(tag string) string {
	switch tag {
	case "overlay":
		return "fixed"
	case "popup":
		return "absolute"
	default:
		return "block"
	}
}
