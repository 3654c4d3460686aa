// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
)

// FailingStorage is a progress.Storage whose every call fails with Err.
type FailingStorage struct {
	Err error
}

func (f *FailingStorage) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, f.Err
}

func (f *FailingStorage) Set(ctx context.Context, key, value string) error { return f.Err }

func (f *FailingStorage) Delete(ctx context.Context, key string) error { return f.Err }

func (f *FailingStorage) Keys(ctx context.Context, prefix string) ([]string, error) {
	return nil, f.Err
}

// MockMedia is a test double for player.Media. Position only changes through Seek or SetPosition.
type MockMedia struct {
	mu       sync.Mutex
	LoadErr  error
	PlayErr  error
	SeekErr  error
	Loaded   []string
	position float64
	duration float64
	volume   int
	playing  bool
}

func (m *MockMedia) Load(src string, duration float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return m.LoadErr
	}
	m.Loaded = append(m.Loaded, src)
	m.duration = duration
	m.position = 0
	m.playing = false
	return nil
}

func (m *MockMedia) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PlayErr != nil {
		return m.PlayErr
	}
	m.playing = true
	return nil
}

func (m *MockMedia) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
}

func (m *MockMedia) Seek(seconds float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SeekErr != nil {
		return m.SeekErr
	}
	m.position = seconds
	return nil
}

func (m *MockMedia) SetVolume(volume int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = volume
}

func (m *MockMedia) Volume() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *MockMedia) Position() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *MockMedia) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *MockMedia) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// SetPosition simulates playback reaching seconds.
func (m *MockMedia) SetPosition(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = seconds
}

// LastLoaded returns the most recently loaded source, or "".
func (m *MockMedia) LastLoaded() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Loaded) == 0 {
		return ""
	}
	return m.Loaded[len(m.Loaded)-1]
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, written: written, target: target}
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
