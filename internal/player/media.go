package player

import (
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/zhixue/internal/shared"
)

// Media is a single playable source with transport controls.
type Media interface {
	Load(src string, duration float64) error
	Play() error
	Pause()
	Seek(seconds float64) error
	SetVolume(volume int)
	Volume() int
	Position() float64
	Duration() float64
	Playing() bool
}

// ClockMedia simulates a video element whose position follows the wall clock while playing.
type ClockMedia struct {
	mu       sync.Mutex
	now      func() time.Time
	src      string
	duration float64
	base     float64   // position at anchor
	anchor   time.Time // when playback last started or seeked
	playing  bool
	volume   int
}

// NewClockMedia creates a ClockMedia. A nil now uses [time.Now].
func NewClockMedia(now func() time.Time) *ClockMedia {
	if now == nil {
		now = time.Now
	}
	return &ClockMedia{now: now, volume: 100}
}

func (m *ClockMedia) Load(src string, duration float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if src == "" {
		return fmt.Errorf("%w: empty source", shared.ErrMedia)
	}
	if duration < 0 {
		return fmt.Errorf("%w: negative duration for %s", shared.ErrMedia, src)
	}
	m.src = src
	m.duration = duration
	m.base = 0
	m.playing = false
	return nil
}

func (m *ClockMedia) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.src == "" {
		return fmt.Errorf("%w: no source loaded", shared.ErrMedia)
	}
	if m.playing {
		return nil
	}
	m.anchor = m.now()
	m.playing = true
	return nil
}

func (m *ClockMedia) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.base = m.positionLocked()
	m.playing = false
}

func (m *ClockMedia) Seek(seconds float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.src == "" {
		return fmt.Errorf("%w: no source loaded", shared.ErrMedia)
	}
	m.base = min(max(seconds, 0), m.duration)
	m.anchor = m.now()
	return nil
}

func (m *ClockMedia) SetVolume(volume int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = clampVolume(volume)
}

func (m *ClockMedia) Volume() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *ClockMedia) Position() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.positionLocked()
}

func (m *ClockMedia) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *ClockMedia) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Source returns the loaded source URL.
func (m *ClockMedia) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.src
}

func (m *ClockMedia) positionLocked() float64 {
	if !m.playing {
		return m.base
	}
	return min(m.base+m.now().Sub(m.anchor).Seconds(), m.duration)
}

func clampVolume(v int) int {
	return min(max(v, 0), 100)
}
