package status

import "sync"

// Tracked is a value cell that remembers whether it moved away from its last acknowledged value.
//
// HasChanged reports true iff the current value differs from the value held at the last
// Reset (or at construction). Setting a value back to that baseline clears the change.
type Tracked[T comparable] struct {
	mu       sync.RWMutex
	value    T
	baseline T
}

// NewTracked returns a clean cell holding initial.
func NewTracked[T comparable](initial T) *Tracked[T] {
	return &Tracked[T]{value: initial, baseline: initial}
}

// Get returns the current value.
func (t *Tracked[T]) Get() T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value
}

// Set replaces the value. Setting the current value is a no-op.
func (t *Tracked[T]) Set(v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v == t.value {
		return
	}
	t.value = v
}

// Reset makes the current value the new baseline.
func (t *Tracked[T]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.baseline = t.value
}

func (t *Tracked[T]) HasChanged() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value != t.baseline
}
