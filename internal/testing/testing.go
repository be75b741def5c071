// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/mprisd/internal/bridge"
	"github.com/desertthunder/mprisd/internal/models"
	"github.com/desertthunder/mprisd/internal/status"
)

// MockService is a scriptable media source.
//
// CurrentSession returns Err when set, otherwise the current Session. Commands are
// recorded in order as strings such as "play" or "volume 40".
type MockService struct {
	mu       sync.Mutex
	Session  *models.Session
	Err      error
	Calls    int
	Commands []string
}

func NewMockService(s *models.Session) *MockService {
	return &MockService{Session: s}
}

func (m *MockService) CurrentSession(ctx context.Context) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Session == nil {
		return nil, nil
	}
	s := *m.Session
	return &s, nil
}

// SetSession swaps the session returned by later queries.
func (m *MockService) SetSession(s *models.Session, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Session = s
	m.Err = err
}

// History returns a copy of the recorded commands.
func (m *MockService) History() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Commands...)
}

func (m *MockService) record(format string, args ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands = append(m.Commands, fmt.Sprintf(format, args...))
	return nil
}

func (m *MockService) Play(ctx context.Context) error     { return m.record("play") }
func (m *MockService) Pause(ctx context.Context) error    { return m.record("pause") }
func (m *MockService) Toggle(ctx context.Context) error   { return m.record("toggle") }
func (m *MockService) Next(ctx context.Context) error     { return m.record("next") }
func (m *MockService) Previous(ctx context.Context) error { return m.record("previous") }

func (m *MockService) SetVolume(ctx context.Context, percent int) error {
	return m.record("volume %d", percent)
}

func (m *MockService) SetShuffle(ctx context.Context, on bool) error {
	return m.record("shuffle %t", on)
}

func (m *MockService) SetRepeat(ctx context.Context, on bool) error {
	return m.record("repeat %t", on)
}

func (m *MockService) Seek(ctx context.Context, position float64) error {
	return m.record("seek %.1f", position)
}

func (m *MockService) Name() string { return "mock" }

// Emit is one recorded call to [RecordingSink.EmitChanged].
type Emit struct {
	Groups   []bridge.Group
	Snapshot status.Snapshot
}

// RecordingSink is a [bridge.Sink] that keeps every emit and optionally fails.
type RecordingSink struct {
	mu     sync.Mutex
	emits  []Emit
	Err    error
	Notify chan Emit
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{Notify: make(chan Emit, 64)}
}

func (r *RecordingSink) EmitChanged(ctx context.Context, groups []bridge.Group, snap status.Snapshot) error {
	e := Emit{Groups: append([]bridge.Group(nil), groups...), Snapshot: snap}

	r.mu.Lock()
	r.emits = append(r.emits, e)
	err := r.Err
	r.mu.Unlock()

	select {
	case r.Notify <- e:
	default:
	}
	return err
}

// Emits returns a copy of every recorded emit.
func (r *RecordingSink) Emits() []Emit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Emit(nil), r.emits...)
}

// MockRecorder stores plays in memory.
type MockRecorder struct {
	mu    sync.Mutex
	Plays []*models.Play
	Err   error
}

func (m *MockRecorder) Record(ctx context.Context, p *models.Play) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Plays = append(m.Plays, p)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// RoundTripFunc adapts a function to an [http.RoundTripper].
type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
