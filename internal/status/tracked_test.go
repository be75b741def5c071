package status

import (
	"math/rand"
	"sync"
	"testing"
)

func TestTracked(t *testing.T) {
	t.Run("new value is clean", func(t *testing.T) {
		v := NewTracked(3)
		if v.HasChanged() {
			t.Error("new tracked value should not report a change")
		}
		if v.Get() != 3 {
			t.Errorf("expected 3, got %d", v.Get())
		}
	})

	t.Run("differing set marks dirty", func(t *testing.T) {
		v := NewTracked("a")
		v.Set("b")
		if !v.HasChanged() {
			t.Error("expected change after differing set")
		}
		if v.Get() != "b" {
			t.Errorf("expected b, got %s", v.Get())
		}
	})

	t.Run("repeated set keeps dirty state", func(t *testing.T) {
		v := NewTracked(1)
		v.Set(1)
		v.Set(1)
		if v.HasChanged() {
			t.Error("setting the same value should not mark dirty")
		}

		v.Set(2)
		v.Set(2)
		if !v.HasChanged() {
			t.Error("second identical set should not clear dirty")
		}
	})

	t.Run("returning to baseline clears change", func(t *testing.T) {
		v := NewTracked(1)
		v.Set(2)
		v.Set(1)
		if v.HasChanged() {
			t.Error("value equal to baseline should not report a change")
		}
	})

	t.Run("reset is idempotent", func(t *testing.T) {
		v := NewTracked(1)
		v.Set(5)
		v.Reset()
		v.Reset()
		if v.HasChanged() {
			t.Error("expected clean after reset")
		}
		if v.Get() != 5 {
			t.Errorf("reset should not touch value, got %d", v.Get())
		}
		v.Set(1)
		if !v.HasChanged() {
			t.Error("reset should move the baseline")
		}
	})
}

// TestTrackedRandomSequences checks that the dirty bit always equals value != baseline.
func TestTrackedRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := range 200 {
		v := NewTracked(0)
		baseline := 0
		for step := range 50 {
			switch rng.Intn(3) {
			case 0, 1:
				v.Set(rng.Intn(4))
			case 2:
				v.Reset()
				baseline = v.Get()
			}
			if got, want := v.HasChanged(), v.Get() != baseline; got != want {
				t.Fatalf("run %d step %d: HasChanged() = %v, want %v", run, step, got, want)
			}
		}
	}
}

func TestTrackedConcurrentAccess(t *testing.T) {
	v := NewTracked(0)
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 1000 {
			v.Set(i)
			if i%10 == 0 {
				v.Reset()
			}
		}
	}()
	go func() {
		defer wg.Done()
		for range 1000 {
			_ = v.Get()
			_ = v.HasChanged()
		}
	}()
	wg.Wait()

	if v.Get() != 999 {
		t.Errorf("expected final value 999, got %d", v.Get())
	}
}
