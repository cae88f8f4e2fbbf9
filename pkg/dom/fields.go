package dom

import (
	"strings"
	"sync"
)

// builtinFields lists the settable native fields per element tag. Keys
// not in a tag's index fall back to string attributes.
var builtinFields = map[string][]string{
	"input":    {"value", "checked", "disabled", "readOnly", "type"},
	"textarea": {"value", "disabled", "readOnly"},
	"select":   {"value", "disabled", "multiple"},
	"option":   {"value", "selected", "disabled"},
	"button":   {"disabled"},
	"a":        {"href"},
	"img":      {"src"},
	"details":  {"open"},
	"dialog":   {"open"},
}

// sharedFields are settable on every element.
var sharedFields = []string{"tabIndex", "scrollTop", "scrollLeft"}

// fieldIndex lazily maps prop key names, in both kebab- and camel-case
// spellings, to the canonical native field per tag. Component classes
// extend it with their declared fields; re-registration invalidates the
// cached entry.
type fieldIndex struct {
	mu     sync.Mutex
	byTag  map[string]map[string]string
	extras map[string][]string
}

func newFieldIndex() *fieldIndex {
	return &fieldIndex{
		byTag:  make(map[string]map[string]string),
		extras: make(map[string][]string),
	}
}

// FieldFor resolves a prop key to the canonical native field for a tag.
// The second return reports whether the key maps to a field at all.
func (d *Document) FieldFor(tag, key string) (string, bool) {
	return d.fields.resolve(tag, key)
}

// RegisterFields declares additional settable fields for a tag
// (component classes declare their accessor fields here). The cached
// index for the tag is rebuilt on next lookup.
func (d *Document) RegisterFields(tag string, fields ...string) {
	d.fields.mu.Lock()
	defer d.fields.mu.Unlock()
	d.fields.extras[tag] = append(d.fields.extras[tag], fields...)
	delete(d.fields.byTag, tag)
}

// InvalidateFields drops a tag's declared extra fields and its cached
// index.
func (d *Document) InvalidateFields(tag string) {
	d.fields.mu.Lock()
	defer d.fields.mu.Unlock()
	delete(d.fields.extras, tag)
	delete(d.fields.byTag, tag)
}

func (f *fieldIndex) resolve(tag, key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx, ok := f.byTag[tag]
	if !ok {
		idx = f.build(tag)
		f.byTag[tag] = idx
	}
	field, ok := idx[key]
	return field, ok
}

func (f *fieldIndex) build(tag string) map[string]string {
	idx := make(map[string]string)
	add := func(field string) {
		idx[field] = field
		idx[CamelToKebab(field)] = field
	}
	for _, field := range sharedFields {
		add(field)
	}
	for _, field := range builtinFields[tag] {
		add(field)
	}
	for _, field := range f.extras[tag] {
		add(field)
	}
	return idx
}

// CamelToKebab converts "tabIndex" to "tab-index".
func CamelToKebab(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			sb.WriteByte('-')
			sb.WriteRune(r - 'A' + 'a')
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// KebabToCamel converts "max-items" to "maxItems".
func KebabToCamel(s string) string {
	parts := strings.Split(s, "-")
	if len(parts) == 1 {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	sb.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(p[:1]))
		sb.WriteString(p[1:])
	}
	return sb.String()
}
