// internal/playback/simulator.go

// Package playback simulates a slideshow timeline driven by per-scene durations.
package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// TickInterval is the redraw cadence hosts should poll at
const TickInterval = 50 * time.Millisecond

// ErrExportUnavailable is returned by Download when no export hook is installed
var ErrExportUnavailable = errors.New("video export requires a server-side encoding step")

// State of the play-head
type State int

const (
	Idle State = iota
	Playing
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent view of the simulator
type Snapshot struct {
	State      State
	SceneIndex int
	Progress   float64 // percent of the current scene, [0,100]
	SceneCount int
	Elapsed    time.Duration
	Total      time.Duration
}

// HasScene reports whether there is a current scene
func (s Snapshot) HasScene() bool {
	return s.SceneCount > 0
}

// Option configures a Simulator
type Option func(*Simulator)

// WithClock injects the time source
func WithClock(c Clock) Option {
	return func(s *Simulator) { s.clock = c }
}

// OnRestart installs a hook invoked after every Restart
func OnRestart(fn func()) Option {
	return func(s *Simulator) { s.onRestart = fn }
}

// OnDownload installs the export hook
func OnDownload(fn func() error) Option {
	return func(s *Simulator) { s.onDownload = fn }
}

// Simulator advances a virtual play-head across scenes. Safe for concurrent use.
type Simulator struct {
	mu        sync.Mutex
	clock     Clock
	durations []time.Duration

	state    State
	index    int
	progress float64

	// anchors of the running scene, valid while Playing
	startTime     time.Time
	startProgress float64

	onRestart  func()
	onDownload func() error
}

// NewSimulator creates an idle simulator over durations given in seconds
func NewSimulator(durations []float64, opts ...Option) *Simulator {
	s := &Simulator{clock: SystemClock{}}
	for _, opt := range opts {
		opt(s)
	}
	s.durations = toDurations(durations)
	return s
}

func toDurations(secs []float64) []time.Duration {
	out := make([]time.Duration, len(secs))
	for i, sec := range secs {
		if sec < 0 {
			sec = 0
		}
		out[i] = time.Duration(sec * float64(time.Second))
	}
	return out
}

// Play starts or resumes. From Finished it rewinds to the first scene first.
// No-op without scenes or while already playing.
func (s *Simulator) Play() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.durations) == 0 || s.state == Playing {
		return s.snapshotLocked()
	}
	if s.state == Finished {
		s.index, s.progress = 0, 0
	}
	s.state = Playing
	s.startTime = s.clock.Now()
	s.startProgress = s.progress
	return s.snapshotLocked()
}

// Pause freezes the current progress
func (s *Simulator) Pause() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Playing {
		s.advanceLocked(s.clock.Now())
		if s.state == Playing {
			s.state = Idle
		}
	}
	return s.snapshotLocked()
}

// Toggle pauses while playing and plays otherwise
func (s *Simulator) Toggle() Snapshot {
	s.mu.Lock()
	playing := s.state == Playing
	s.mu.Unlock()

	if playing {
		return s.Pause()
	}
	return s.Play()
}

// Restart rewinds to the first scene, stopped
func (s *Simulator) Restart() Snapshot {
	s.mu.Lock()
	s.state = Idle
	s.index, s.progress = 0, 0
	s.startProgress = 0
	snap := s.snapshotLocked()
	hook := s.onRestart
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return snap
}

// Download hands off to the export hook
func (s *Simulator) Download() error {
	s.mu.Lock()
	hook := s.onDownload
	s.mu.Unlock()

	if hook == nil {
		return ErrExportUnavailable
	}
	return hook()
}

// Tick recomputes the play-head from the clock
func (s *Simulator) Tick() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Playing {
		s.advanceLocked(s.clock.Now())
	}
	return s.snapshotLocked()
}

// Snapshot returns the state without advancing
func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Remaining is the time left in the current scene as of the last tick
func (s *Simulator) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.durations) == 0 || s.state == Finished {
		return 0
	}
	return scale(s.durations[s.index], 1-s.progress/100)
}

// SetDurations swaps the scene durations. A running scene keeps its progress
// percent and its timer is re-anchored at now; the index is clamped to the new
// scene count, restarting that scene from 0 when clamped.
func (s *Simulator) SetDurations(secs []float64) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if s.state == Playing {
		s.advanceLocked(now)
	}

	s.durations = toDurations(secs)
	switch {
	case len(s.durations) == 0:
		s.state = Idle
		s.index, s.progress = 0, 0
	case s.index >= len(s.durations):
		s.index = len(s.durations) - 1
		if s.state != Finished {
			s.progress = 0
		}
	}

	if s.state == Playing {
		s.startTime = now
		s.startProgress = s.progress
	}
	return s.snapshotLocked()
}

// Run ticks every TickInterval until ctx is done or playback stops
func (s *Simulator) Run(ctx context.Context, onTick func(Snapshot)) error {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			snap := s.Tick()
			if onTick != nil {
				onTick(snap)
			}
			if snap.State != Playing {
				return nil
			}
		}
	}
}

// advanceLocked moves the play-head to now. Overshoot past a boundary carries
// into the next scene, so one call may cross several scenes.
func (s *Simulator) advanceLocked(now time.Time) {
	for {
		dur := s.durations[s.index]
		remaining := scale(dur, 1-s.startProgress/100)
		elapsed := now.Sub(s.startTime)

		if elapsed < remaining {
			p := s.startProgress + float64(elapsed)/float64(dur)*100
			if p > 100 {
				p = 100
			}
			s.progress = p
			return
		}

		if s.index >= len(s.durations)-1 {
			s.state = Finished
			s.progress = 100
			return
		}

		s.startTime = s.startTime.Add(remaining)
		s.index++
		s.progress = 0
		s.startProgress = 0
	}
}

func (s *Simulator) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:      s.state,
		SceneIndex: s.index,
		Progress:   s.progress,
		SceneCount: len(s.durations),
	}
	for i, d := range s.durations {
		snap.Total += d
		if i < s.index {
			snap.Elapsed += d
		}
	}
	if len(s.durations) > 0 {
		snap.Elapsed += scale(s.durations[s.index], s.progress/100)
	}
	return snap
}

func scale(d time.Duration, f float64) time.Duration {
	return time.Duration(float64(d) * f)
}

// FormatTime renders seconds as m:ss, truncating fractions
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatDuration is FormatTime for a time.Duration
func FormatDuration(d time.Duration) string {
	return FormatTime(d.Seconds())
}
