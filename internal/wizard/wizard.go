// internal/wizard/wizard.go
package wizard

import "fmt"

// Step identifies one page of the guided flow, numbered from 1
type Step int

const (
	StepTopic Step = iota + 1
	StepScript
	StepImages
	StepAudio
	StepVideo
)

// StepInfo describes a step for display
type StepInfo struct {
	ID          Step
	Title       string
	Description string
}

// Steps lists the flow in order
var Steps = []StepInfo{
	{ID: StepTopic, Title: "Topic", Description: "Enter idea"},
	{ID: StepScript, Title: "Script", Description: "Review & edit"},
	{ID: StepImages, Title: "Images", Description: "Customize scenes"},
	{ID: StepAudio, Title: "Audio", Description: "Voice & music"},
	{ID: StepVideo, Title: "Video", Description: "Preview & export"},
}

// StepState is how a step renders relative to the current one
type StepState int

const (
	Upcoming StepState = iota
	Current
	Completed
)

func (s StepState) String() string {
	switch s {
	case Completed:
		return "completed"
	case Current:
		return "current"
	default:
		return "upcoming"
	}
}

// Info returns the display data of step
func Info(step Step) (StepInfo, bool) {
	for _, info := range Steps {
		if info.ID == step {
			return info, true
		}
	}
	return StepInfo{}, false
}

// Wizard tracks the current step. Steps ahead of the current one are never
// reachable directly; only Advance moves forward.
type Wizard struct {
	current Step
}

// New starts at the topic step
func New() *Wizard {
	return &Wizard{current: StepTopic}
}

// Current returns the active step
func (w *Wizard) Current() Step {
	return w.current
}

// Advance moves one step forward; false on the last step
func (w *Wizard) Advance() bool {
	if w.current >= StepVideo {
		return false
	}
	w.current++
	return true
}

// Back moves one step backward; false on the first step
func (w *Wizard) Back() bool {
	if w.current <= StepTopic {
		return false
	}
	w.current--
	return true
}

// CanGoTo reports whether step is clickable from here
func (w *Wizard) CanGoTo(step Step) bool {
	return step >= StepTopic && step <= w.current
}

// GoTo jumps to a completed step or stays on the current one
func (w *Wizard) GoTo(step Step) error {
	if !w.CanGoTo(step) {
		return fmt.Errorf("step %d is not reachable from step %d", step, w.current)
	}
	w.current = step
	return nil
}

// StateOf classifies step relative to the current one
func (w *Wizard) StateOf(step Step) StepState {
	switch {
	case step < w.current:
		return Completed
	case step == w.current:
		return Current
	default:
		return Upcoming
	}
}
