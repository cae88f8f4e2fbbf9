// Package codec translates between raw attribute strings and domain
// values. Codecs are registered per component namespace and resolved
// by longest-matching prefix, so a codec for "app.forms" covers
// "app.forms.picker" unless a more specific one is registered. Lookup
// is cached per namespace; lives outside the reconciliation hot path.
package codec

import (
	"fmt"
	"strings"
	"sync"
)

// Codec is a paired attribute reader and writer.
type Codec struct {
	// Read parses a raw attribute string into a domain value.
	Read func(raw string) (any, error)

	// Write serializes a domain value into an attribute string.
	Write func(v any) (string, error)
}

// Default is the identity codec: reads yield the raw string, writes
// stringify.
var Default = Codec{
	Read:  func(raw string) (any, error) { return raw, nil },
	Write: func(v any) (string, error) { return fmt.Sprintf("%v", v), nil },
}

// Table resolves codecs by namespace.
type Table struct {
	mu       sync.RWMutex
	byPrefix map[string]Codec
	cache    map[string]Codec
	fallback Codec
}

func NewTable() *Table {
	return &Table{
		byPrefix: make(map[string]Codec),
		cache:    make(map[string]Codec),
		fallback: Default,
	}
}

// Register installs a codec for a namespace prefix, dropping the
// resolution cache.
func (t *Table) Register(prefix string, c Codec) {
	t.mu.Lock()
	t.byPrefix[prefix] = c
	t.cache = make(map[string]Codec)
	t.mu.Unlock()
}

// SetDefault replaces the fallback codec.
func (t *Table) SetDefault(c Codec) {
	t.mu.Lock()
	t.fallback = c
	t.cache = make(map[string]Codec)
	t.mu.Unlock()
}

// Resolve returns the codec for a namespace: the registered codec with
// the longest prefix covering it, or the fallback.
func (t *Table) Resolve(namespace string) Codec {
	t.mu.RLock()
	if c, ok := t.cache[namespace]; ok {
		t.mu.RUnlock()
		return c
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.cache[namespace]; ok {
		return c
	}

	best := t.fallback
	bestLen := -1
	for prefix, c := range t.byPrefix {
		if covers(prefix, namespace) && len(prefix) > bestLen {
			best = c
			bestLen = len(prefix)
		}
	}
	t.cache[namespace] = best
	return best
}

// covers reports whether prefix covers namespace: equal, or a
// dot-separated ancestor.
func covers(prefix, namespace string) bool {
	if prefix == namespace {
		return true
	}
	return strings.HasPrefix(namespace, prefix+".")
}
