package playback

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleDurations = []float64{4.5, 3.5, 5.0, 4.0}

func newTestSimulator(opts ...Option) (*Simulator, *ManualClock) {
	clock := NewManualClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	return NewSimulator(sampleDurations, append([]Option{WithClock(clock)}, opts...)...), clock
}

func TestAdvancesToNextSceneAtBoundary(t *testing.T) {
	sim, clock := newTestSimulator()
	sim.Play()

	clock.Advance(4500 * time.Millisecond)
	snap := sim.Tick()

	assert.Equal(t, Playing, snap.State)
	assert.Equal(t, 1, snap.SceneIndex)
	assert.Equal(t, 0.0, snap.Progress)
}

func TestReachesFinishedAfterTotalDuration(t *testing.T) {
	sim, clock := newTestSimulator()
	sim.Play()

	for i := 0; i < 340; i++ {
		clock.Advance(TickInterval)
		sim.Tick()
	}
	snap := sim.Snapshot()

	assert.Equal(t, Finished, snap.State)
	assert.Equal(t, 3, snap.SceneIndex)
	assert.Equal(t, 100.0, snap.Progress)
	assert.Equal(t, 17*time.Second, snap.Total)
	assert.Equal(t, 17*time.Second, snap.Elapsed)
}

func TestSingleTickCrossesSeveralScenes(t *testing.T) {
	sim, clock := newTestSimulator()
	sim.Play()

	clock.Advance(9 * time.Second) // 4.5 + 3.5 + 1.0 into scene 2
	snap := sim.Tick()

	assert.Equal(t, 2, snap.SceneIndex)
	assert.InDelta(t, 20.0, snap.Progress, 1e-9)
	assert.Equal(t, 9*time.Second, snap.Elapsed)

	clock.Advance(time.Hour)
	assert.Equal(t, Finished, sim.Tick().State)
}

func TestProgressWithinScene(t *testing.T) {
	sim, clock := newTestSimulator()
	sim.Play()

	clock.Advance(1125 * time.Millisecond)
	snap := sim.Tick()
	assert.Equal(t, 0, snap.SceneIndex)
	assert.InDelta(t, 25.0, snap.Progress, 1e-9)
}

func TestPauseResumePreservesElapsed(t *testing.T) {
	sim, clock := newTestSimulator()
	sim.Play()

	clock.Advance(2250 * time.Millisecond)
	snap := sim.Pause()
	require.Equal(t, Idle, snap.State)
	assert.Equal(t, 50.0, snap.Progress)
	assert.Equal(t, 2250*time.Millisecond, sim.Remaining())
	elapsedAtPause := snap.Elapsed

	// time passing while paused changes nothing
	clock.Advance(10 * time.Second)
	assert.Equal(t, elapsedAtPause, sim.Tick().Elapsed)

	sim.Play()
	clock.Advance(2249 * time.Millisecond)
	snap = sim.Tick()
	assert.Equal(t, 0, snap.SceneIndex)

	clock.Advance(time.Millisecond)
	snap = sim.Tick()
	assert.Equal(t, 1, snap.SceneIndex)
	assert.Equal(t, 0.0, snap.Progress)
	assert.Equal(t, 4500*time.Millisecond, snap.Elapsed)
}

func TestPlayFromFinishedRewinds(t *testing.T) {
	sim, clock := newTestSimulator()
	sim.Play()
	clock.Advance(20 * time.Second)
	require.Equal(t, Finished, sim.Tick().State)

	snap := sim.Play()
	assert.Equal(t, Playing, snap.State)
	assert.Equal(t, 0, snap.SceneIndex)
	assert.Equal(t, 0.0, snap.Progress)
}

func TestRestartFromAnyState(t *testing.T) {
	restarts := 0
	sim, clock := newTestSimulator(OnRestart(func() { restarts++ }))

	sim.Play()
	clock.Advance(6 * time.Second)
	sim.Tick()

	snap := sim.Restart()
	assert.Equal(t, Idle, snap.State)
	assert.Equal(t, 0, snap.SceneIndex)
	assert.Equal(t, 0.0, snap.Progress)
	assert.Equal(t, 1, restarts)

	// timer is discarded
	clock.Advance(3 * time.Second)
	assert.Equal(t, time.Duration(0), sim.Tick().Elapsed)

	sim.Restart()
	assert.Equal(t, 2, restarts)
}

func TestToggle(t *testing.T) {
	sim, clock := newTestSimulator()
	assert.Equal(t, Playing, sim.Toggle().State)
	clock.Advance(time.Second)
	assert.Equal(t, Idle, sim.Toggle().State)
	assert.Equal(t, Playing, sim.Toggle().State)
}

func TestZeroScenes(t *testing.T) {
	sim := NewSimulator(nil, WithClock(NewManualClock(time.Now())))
	snap := sim.Play()

	assert.Equal(t, Idle, snap.State)
	assert.False(t, snap.HasScene())
	assert.Equal(t, time.Duration(0), snap.Total)
	assert.Equal(t, time.Duration(0), sim.Remaining())
}

func TestZeroDurationSceneIsSkipped(t *testing.T) {
	clock := NewManualClock(time.Now())
	sim := NewSimulator([]float64{0, 2}, WithClock(clock))
	sim.Play()

	clock.Advance(500 * time.Millisecond)
	snap := sim.Tick()
	assert.Equal(t, 1, snap.SceneIndex)
	assert.InDelta(t, 25.0, snap.Progress, 1e-9)
}

func TestDownload(t *testing.T) {
	sim, _ := newTestSimulator()
	assert.ErrorIs(t, sim.Download(), ErrExportUnavailable)

	called := false
	sim, _ = newTestSimulator(OnDownload(func() error { called = true; return nil }))
	assert.NoError(t, sim.Download())
	assert.True(t, called)
}

func TestSetDurationsWhilePlayingReanchors(t *testing.T) {
	sim, clock := newTestSimulator()
	sim.Play()
	clock.Advance(2250 * time.Millisecond) // 50% of scene 0

	snap := sim.SetDurations([]float64{10, 3.5, 5, 4})
	assert.Equal(t, Playing, snap.State)
	assert.Equal(t, 50.0, snap.Progress)
	assert.Equal(t, 5*time.Second, sim.Remaining())

	clock.Advance(5 * time.Second)
	snap = sim.Tick()
	assert.Equal(t, 1, snap.SceneIndex)
	assert.Equal(t, 22500*time.Millisecond, snap.Total)
}

func TestSetDurationsClampsIndex(t *testing.T) {
	sim, clock := newTestSimulator()
	sim.Play()
	clock.Advance(14 * time.Second) // inside scene 3
	require.Equal(t, 3, sim.Tick().SceneIndex)

	snap := sim.SetDurations([]float64{4.5, 3.5})
	assert.Equal(t, 1, snap.SceneIndex)
	assert.Equal(t, 0.0, snap.Progress)

	snap = sim.SetDurations(nil)
	assert.Equal(t, Idle, snap.State)
	assert.False(t, snap.HasScene())
}

func TestRunStopsWhenFinished(t *testing.T) {
	sim := NewSimulator([]float64{0.1})
	sim.Play()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ticks := 0
	err := sim.Run(ctx, func(Snapshot) { ticks++ })
	require.NoError(t, err)
	assert.Equal(t, Finished, sim.Snapshot().State)
	assert.GreaterOrEqual(t, ticks, 1)
}

func TestRunStopsOnContext(t *testing.T) {
	sim := NewSimulator([]float64{60})
	sim.Play()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, sim.Run(ctx, nil), context.DeadlineExceeded)
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "1:15", FormatTime(75))
	assert.Equal(t, "0:09", FormatTime(9))
	assert.Equal(t, "0:09", FormatTime(9.99))
	assert.Equal(t, "0:00", FormatTime(-3))
	assert.Equal(t, "0:17", FormatDuration(17*time.Second))
	assert.Equal(t, "10:00", FormatTime(600))
}
