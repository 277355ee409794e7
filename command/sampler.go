package command

import (
	"sync"
	"time"
)

const (
	DefaultHoldWindow = 150 * time.Millisecond

	// DefaultLatchWindow exceeds the usual terminal auto-repeat delay
	// (250-600ms) between the first press of a held key and its repeats.
	DefaultLatchWindow = 700 * time.Millisecond
)

// Sampler converts key presses into the event held at a given instant.
// Terminals deliver a held key as repeated presses, so a key counts as held
// for HoldWindow after its most recent press.
//
// Toggles are edge-triggered in the Model and would fire again if the key
// were released between the first press and the start of auto-repeat, so
// they stay held for LatchWindow instead.
type Sampler struct {
	HoldWindow  time.Duration
	LatchWindow time.Duration

	mu      sync.Mutex
	last    Event
	pressed time.Time
}

func NewSampler(holdWindow time.Duration) *Sampler {
	if holdWindow <= 0 {
		holdWindow = DefaultHoldWindow
	}
	return &Sampler{
		HoldWindow:  holdWindow,
		LatchWindow: DefaultLatchWindow,
	}
}

// Press records a key press. Safe to call from the input goroutine while
// the tick loop samples.
func (s *Sampler) Press(ev Event, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = ev
	s.pressed = at
}

func (s *Sampler) Sample(now time.Time) Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == None || now.Sub(s.pressed) > s.window(s.last) {
		return None
	}
	return s.last
}

func (s *Sampler) window(ev Event) time.Duration {
	if ev == ToggleHeadlights && s.LatchWindow > s.HoldWindow {
		return s.LatchWindow
	}
	return s.HoldWindow
}
