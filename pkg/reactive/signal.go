package reactive

import (
	"reflect"
	"sync"
)

// Signal is a mutex-guarded reactive value container.
type Signal[T any] struct {
	mu    sync.RWMutex
	value T

	watchMu sync.Mutex
	nextID  uint64
	watches map[uint64]func(any)

	// equal is the equality function used to decide whether a write
	// changed the value. If nil, defaultEquals is used.
	equal func(T, T) bool
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{value: initial}
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the value and notifies watchers if it changed.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.notify(value)
	}
}

// Update atomically reads and updates the value.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	newValue := fn(s.value)
	changed := !s.equals(s.value, newValue)
	if changed {
		s.value = newValue
	}
	s.mu.Unlock()

	if changed {
		s.notify(newValue)
	}
}

// WithEquals configures a custom equality function and returns the signal.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// Read implements Observable.
func (s *Signal[T]) Read() any {
	return s.Get()
}

// Watch implements Observable. The handler receives the new value on
// every change until the returned cancel function is called.
func (s *Signal[T]) Watch(fn func(any)) (cancel func()) {
	s.watchMu.Lock()
	if s.watches == nil {
		s.watches = make(map[uint64]func(any))
	}
	id := s.nextID
	s.nextID++
	s.watches[id] = fn
	s.watchMu.Unlock()

	return func() {
		s.watchMu.Lock()
		delete(s.watches, id)
		s.watchMu.Unlock()
	}
}

// notify fans a new value out to watchers. Watchers are copied before
// notification so handlers may cancel or add watches without deadlock.
func (s *Signal[T]) notify(value T) {
	s.watchMu.Lock()
	fns := make([]func(any), 0, len(s.watches))
	for _, fn := range s.watches {
		fns = append(fns, fn)
	}
	s.watchMu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals uses == for the common comparable types and falls back
// to reflect.DeepEqual for everything else.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int64:
		return av == any(b).(int64)
	case uint64:
		return av == any(b).(uint64)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	case nil:
		return any(b) == nil
	default:
		return reflect.DeepEqual(a, b)
	}
}
