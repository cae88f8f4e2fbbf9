package reactive

import "testing"

func TestSignalGetSet(t *testing.T) {
	s := NewSignal(1)

	if got := s.Get(); got != 1 {
		t.Errorf("Get() = %d, want 1", got)
	}

	s.Set(2)
	if got := s.Get(); got != 2 {
		t.Errorf("Get() = %d, want 2", got)
	}
}

func TestSignalWatchNotifies(t *testing.T) {
	s := NewSignal("a")

	var seen []any
	cancel := s.Watch(func(v any) { seen = append(seen, v) })
	defer cancel()

	s.Set("b")
	s.Set("c")

	if len(seen) != 2 || seen[0] != "b" || seen[1] != "c" {
		t.Errorf("seen = %v, want [b c]", seen)
	}
}

func TestSignalUnchangedSetDoesNotNotify(t *testing.T) {
	s := NewSignal(5)

	fired := 0
	cancel := s.Watch(func(any) { fired++ })
	defer cancel()

	s.Set(5)
	if fired != 0 {
		t.Errorf("fired = %d, want 0 for unchanged value", fired)
	}
}

func TestSignalCancelIsIdempotent(t *testing.T) {
	s := NewSignal(0)

	fired := 0
	cancel := s.Watch(func(any) { fired++ })
	cancel()
	cancel()

	s.Set(1)
	if fired != 0 {
		t.Errorf("fired = %d, want 0 after cancel", fired)
	}
}

func TestSignalUpdate(t *testing.T) {
	s := NewSignal(10)
	s.Update(func(v int) int { return v + 5 })

	if got := s.Get(); got != 15 {
		t.Errorf("Get() = %d, want 15", got)
	}
}

func TestSignalCustomEquality(t *testing.T) {
	// Equality on absolute value: -3 and 3 count as equal.
	s := NewSignal(3).WithEquals(func(a, b int) bool {
		if a < 0 {
			a = -a
		}
		if b < 0 {
			b = -b
		}
		return a == b
	})

	fired := 0
	cancel := s.Watch(func(any) { fired++ })
	defer cancel()

	s.Set(-3)
	if fired != 0 {
		t.Errorf("fired = %d, want 0 under custom equality", fired)
	}
}

func TestSignalSatisfiesObservable(t *testing.T) {
	s := NewSignal("x")

	if !IsObservable(s) {
		t.Fatal("Signal should satisfy Observable")
	}
	if got := AsObservable(s).Read(); got != "x" {
		t.Errorf("Read() = %v, want x", got)
	}
	if AsObservable("plain") != nil {
		t.Error("plain value should not be observable")
	}
}
