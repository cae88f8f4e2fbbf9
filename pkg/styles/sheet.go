// Package styles resolves CSS references into reusable sheet objects.
//
// A reference may be an inline sheet object, a raw CSS string, a file
// path, an http(s) URL, or an s3:// URL. Resolution returns a *Sheet
// handle synchronously; remote and file-backed sheets populate
// asynchronously. File-backed sheets hot-reload on change.
package styles

import "sync"

// Sheet is a reusable stylesheet handle. The handle is valid as soon as
// Resolve returns; its content arrives asynchronously.
type Sheet struct {
	mu     sync.RWMutex
	source string
	css    string
	err    error

	readyOnce sync.Once
	ready     chan struct{}
}

// NewSheet creates an inline sheet that is immediately populated.
func NewSheet(css string) *Sheet {
	s := newPending("inline")
	s.populate(css, nil)
	return s
}

func newPending(source string) *Sheet {
	return &Sheet{source: source, ready: make(chan struct{})}
}

// Source describes where the sheet came from.
func (s *Sheet) Source() string { return s.source }

// CSS returns the current sheet content ("" until populated).
func (s *Sheet) CSS() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.css
}

// Err returns the most recent population error, if any.
func (s *Sheet) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Ready is closed once the sheet has been populated (or failed) for the
// first time.
func (s *Sheet) Ready() <-chan struct{} { return s.ready }

// populate installs new content. Subsequent calls overwrite, which is
// how hot reload delivers updates through a stable handle.
func (s *Sheet) populate(css string, err error) {
	s.mu.Lock()
	if err != nil {
		s.err = err
	} else {
		s.css = css
		s.err = nil
	}
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
}
