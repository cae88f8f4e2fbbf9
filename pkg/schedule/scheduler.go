package schedule

import (
	"log/slog"
	"runtime/debug"
	"sync"
)

// Renderable is anything the scheduler can re-render, typically a
// component instance.
type Renderable interface {
	// ComponentName identifies the renderable in logs.
	ComponentName() string
	// RenderFrame performs one render pass.
	RenderFrame() error
}

// Scheduler coalesces dirty renderables into frames. Marks made while
// a frame is pending join that frame; marks made while a frame is
// draining are picked up by the same drain loop, so one frame settles
// all dirtiness reachable from it.
type Scheduler struct {
	frames Frames
	log    *slog.Logger

	mu    sync.Mutex
	dirty map[Renderable]struct{}
	order []Renderable
	// skip cancels batch members forgotten after the batch snapshot
	// was taken.
	skip     map[Renderable]struct{}
	pending  bool
	flushing bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used by the render error boundary.
func WithLogger(log *slog.Logger) Option {
	return func(s *Scheduler) {
		if log != nil {
			s.log = log
		}
	}
}

func New(frames Frames, opts ...Option) *Scheduler {
	s := &Scheduler{
		frames: frames,
		log:    slog.Default(),
		dirty:  make(map[Renderable]struct{}),
		skip:   make(map[Renderable]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mark adds r to the dirty set and requests a frame if none is
// pending. Marking an already dirty renderable is a no-op.
func (s *Scheduler) Mark(r Renderable) {
	s.mu.Lock()
	if _, ok := s.dirty[r]; !ok {
		s.dirty[r] = struct{}{}
		s.order = append(s.order, r)
	}
	delete(s.skip, r)
	if s.pending || s.flushing {
		s.mu.Unlock()
		return
	}
	s.pending = true
	s.mu.Unlock()
	s.frames.RequestFrame(s.Flush)
}

// Forget removes r from the dirty set. A forgotten renderable is not
// rendered by a pending frame or by the batch currently draining.
func (s *Scheduler) Forget(r Renderable) {
	s.mu.Lock()
	delete(s.dirty, r)
	if s.flushing {
		s.skip[r] = struct{}{}
	}
	s.mu.Unlock()
}

// Defer queues fn on the frame source's macro-task queue, to run after
// the current frame's render work.
func (s *Scheduler) Defer(fn func()) {
	s.frames.QueueTask(fn)
}

// Flush drains the dirty set: snapshot, clear, render each entry in
// insertion order, and repeat until a snapshot comes back empty.
// Renders marked dirty by the drain itself are settled in the same
// call.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	if s.flushing {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.flushing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.flushing = false
		s.skip = make(map[Renderable]struct{})
		s.mu.Unlock()
	}()

	for {
		s.mu.Lock()
		if len(s.order) == 0 {
			s.mu.Unlock()
			return
		}
		batch := s.order
		snap := s.dirty
		s.order = nil
		s.dirty = make(map[Renderable]struct{})
		s.mu.Unlock()

		for _, r := range batch {
			// order can hold entries Forget already removed from the
			// dirty set; only members still dirty at snapshot time run.
			if _, want := snap[r]; !want {
				continue
			}
			delete(snap, r)
			s.mu.Lock()
			_, skipped := s.skip[r]
			s.mu.Unlock()
			if skipped {
				continue
			}
			s.render(r)
		}
	}
}

// render invokes one render pass inside the error boundary. A panic or
// error in one renderable is logged and leaves the rest of the batch
// untouched.
func (s *Scheduler) render(r Renderable) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("render panic",
				"component", r.ComponentName(),
				"panic", rec,
				"stack", string(debug.Stack()))
		}
	}()
	if err := r.RenderFrame(); err != nil {
		s.log.Error("render failed",
			"component", r.ComponentName(),
			"error", err)
	}
}

// Pending reports whether a frame has been requested but not yet run.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// DirtyCount returns the number of renderables waiting for a frame.
func (s *Scheduler) DirtyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dirty)
}
