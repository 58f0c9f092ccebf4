package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepsCatalog(t *testing.T) {
	require.Len(t, Steps, 5)
	info, ok := Info(StepImages)
	require.True(t, ok)
	assert.Equal(t, "Customize scenes", info.Description)
	_, ok = Info(Step(9))
	assert.False(t, ok)
}

func TestAdvanceAndBackStopAtEdges(t *testing.T) {
	w := New()
	assert.False(t, w.Back())
	for i := 0; i < 4; i++ {
		assert.True(t, w.Advance())
	}
	assert.Equal(t, StepVideo, w.Current())
	assert.False(t, w.Advance())
	assert.True(t, w.Back())
	assert.Equal(t, StepAudio, w.Current())
}

func TestGoToOnlyBackwards(t *testing.T) {
	w := New()
	w.Advance()
	w.Advance() // images

	assert.Error(t, w.GoTo(StepAudio))
	assert.Equal(t, StepImages, w.Current())

	require.NoError(t, w.GoTo(StepTopic))
	assert.Equal(t, StepTopic, w.Current())
	assert.Error(t, w.GoTo(StepScript))
	assert.Error(t, w.GoTo(Step(0)))
}

func TestStateOf(t *testing.T) {
	w := New()
	w.Advance()
	w.Advance()

	assert.Equal(t, Completed, w.StateOf(StepTopic))
	assert.Equal(t, Completed, w.StateOf(StepScript))
	assert.Equal(t, Current, w.StateOf(StepImages))
	assert.Equal(t, Upcoming, w.StateOf(StepVideo))
	assert.Equal(t, "upcoming", w.StateOf(StepAudio).String())
}
