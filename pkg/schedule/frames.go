// Package schedule batches re-renders into frames. Dirty renderables
// accumulate in an insertion-ordered set; at most one frame is pending
// at a time, and a frame drains the set cooperatively until no new
// dirtiness appears. The frame source is injected so tests and
// server-driven sessions can step frames by hand.
package schedule

import (
	"sync"
	"time"
)

// Frames is a frame source. RequestFrame schedules fn to run on the
// next frame; QueueTask schedules fn to run after the current frame's
// render work (a macro-task slot, used for lifecycle events).
type Frames interface {
	RequestFrame(fn func())
	QueueTask(fn func())
}

// ManualFrames is a frame source stepped explicitly. Nothing runs
// until Step or RunTasks is called, which makes render timing fully
// deterministic for tests and for sessions that pump frames from an
// event loop.
type ManualFrames struct {
	mu     sync.Mutex
	frames []func()
	tasks  []func()
}

func NewManualFrames() *ManualFrames { return &ManualFrames{} }

func (f *ManualFrames) RequestFrame(fn func()) {
	f.mu.Lock()
	f.frames = append(f.frames, fn)
	f.mu.Unlock()
}

func (f *ManualFrames) QueueTask(fn func()) {
	f.mu.Lock()
	f.tasks = append(f.tasks, fn)
	f.mu.Unlock()
}

// Step runs one pending frame callback. It reports whether a callback
// was pending.
func (f *ManualFrames) Step() bool {
	f.mu.Lock()
	if len(f.frames) == 0 {
		f.mu.Unlock()
		return false
	}
	fn := f.frames[0]
	f.frames = f.frames[1:]
	f.mu.Unlock()
	fn()
	return true
}

// RunTasks runs every queued macro-task, including tasks queued while
// running, and returns how many ran.
func (f *ManualFrames) RunTasks() int {
	ran := 0
	for {
		f.mu.Lock()
		if len(f.tasks) == 0 {
			f.mu.Unlock()
			return ran
		}
		fn := f.tasks[0]
		f.tasks = f.tasks[1:]
		f.mu.Unlock()
		fn()
		ran++
	}
}

// PendingFrames returns the number of frame callbacks waiting for Step.
func (f *ManualFrames) PendingFrames() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

// TickerFrames drives frames from real time on a single goroutine.
// Each tick runs the pending frame callbacks, then the macro-tasks
// they queued.
type TickerFrames struct {
	mu     sync.Mutex
	frames []func()
	tasks  []func()

	done chan struct{}
	once sync.Once
}

// DefaultInterval approximates a 60Hz frame budget.
const DefaultInterval = 16 * time.Millisecond

func NewTickerFrames(interval time.Duration) *TickerFrames {
	if interval <= 0 {
		interval = DefaultInterval
	}
	f := &TickerFrames{done: make(chan struct{})}
	go f.loop(interval)
	return f
}

func (f *TickerFrames) RequestFrame(fn func()) {
	f.mu.Lock()
	f.frames = append(f.frames, fn)
	f.mu.Unlock()
}

func (f *TickerFrames) QueueTask(fn func()) {
	f.mu.Lock()
	f.tasks = append(f.tasks, fn)
	f.mu.Unlock()
}

// Stop halts the tick loop. Callbacks already running finish; pending
// ones are dropped.
func (f *TickerFrames) Stop() {
	f.once.Do(func() { close(f.done) })
}

func (f *TickerFrames) loop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-f.done:
			return
		case <-ticker.C:
			f.tick()
		}
	}
}

func (f *TickerFrames) tick() {
	f.mu.Lock()
	frames := f.frames
	f.frames = nil
	f.mu.Unlock()
	for _, fn := range frames {
		fn()
	}

	f.mu.Lock()
	tasks := f.tasks
	f.tasks = nil
	f.mu.Unlock()
	for _, fn := range tasks {
		fn()
	}
}
