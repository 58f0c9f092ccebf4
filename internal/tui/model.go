// internal/tui/model.go

// Package tui hosts the storyboard wizard in a terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Corphon/ReelBoard/internal/client"
	"github.com/Corphon/ReelBoard/internal/models"
	"github.com/Corphon/ReelBoard/internal/playback"
	"github.com/Corphon/ReelBoard/internal/services"
	"github.com/Corphon/ReelBoard/internal/wizard"
)

const (
	topicCharLimit = 500
	volumeStep     = 1
	maxVolume      = 100

	noticeSceneRegen = "Scene regeneration is coming soon"
	noticeVoiceRegen = "Voiceover regeneration is coming soon"
)

// API is the subset of the REST client the wizard drives
type API interface {
	GenerateScript(ctx context.Context, topic string) (*models.Project, error)
	GenerateImages(ctx context.Context, projectID string, scenes []client.SceneText) (*models.Project, error)
	RegenerateImage(ctx context.Context, projectID string, sceneID int) (*models.Project, error)
	UpdateDuration(ctx context.Context, projectID string, sceneID int, duration float64) (*models.Project, error)
	UpdateScript(ctx context.Context, projectID string, scenes []models.SceneInput) (*models.Project, error)
	GetProject(ctx context.Context, projectID string) (*models.Project, error)
	MusicTracks(ctx context.Context) ([]models.MusicTrack, error)
}

// Options configures the wizard model
type Options struct {
	// ProjectID opens an existing project instead of starting at the topic step
	ProjectID string
	// Clock drives playback; defaults to the system clock
	Clock playback.Clock
}

// messages

type operation string

const (
	opOpen       operation = "open"
	opScript     operation = "script"
	opScriptSave operation = "script_saved"
	opImages     operation = "images"
	opRegenerate operation = "regenerate"
	opDuration   operation = "duration"
)

type projectMsg struct {
	op      operation
	project *models.Project
}

type errMsg struct {
	op  operation
	err error
}

type tracksMsg struct {
	tracks []models.MusicTrack
	err    error
}

type tickMsg time.Time

type pendingDuration struct {
	sceneID  int
	previous float64
}

type audioField int

const (
	fieldVoice audioField = iota
	fieldMusic
	fieldTrack
)

// Model is the bubbletea model of the wizard
type Model struct {
	api   API
	ctx   context.Context
	opts  Options
	clock playback.Clock

	wiz     *wizard.Wizard
	project *models.Project

	topic   textinput.Model
	editor  textinput.Model
	editing bool
	cursor  int

	tracks      []models.MusicTrack
	trackCursor int
	audioFocus  audioField
	voiceVolume float64
	musicVolume float64

	sim     *playback.Simulator
	snap    playback.Snapshot
	ticking bool
	bar     progress.Model

	busy      string
	status    string
	statusErr bool
	width     int

	// 等待服务器确认的时长修改，失败时回滚
	pending *pendingDuration
}

// New creates the wizard model
func New(ctx context.Context, api API, opts Options) *Model {
	topic := textinput.New()
	topic.Placeholder = "e.g. 5 tips for better morning routines"
	topic.CharLimit = topicCharLimit
	topic.Width = 60
	topic.Focus()

	editor := textinput.New()
	editor.CharLimit = topicCharLimit
	editor.Width = 70

	clock := opts.Clock
	if clock == nil {
		clock = playback.SystemClock{}
	}

	return &Model{
		api:         api,
		ctx:         ctx,
		opts:        opts,
		clock:       clock,
		wiz:         wizard.New(),
		topic:       topic,
		editor:      editor,
		tracks:      models.MusicCatalog(),
		voiceVolume: models.DefaultVoiceVolume,
		musicVolume: models.DefaultMusicVolume,
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
	}
}

// Step is the active wizard step
func (m *Model) Step() wizard.Step {
	return m.wiz.Current()
}

// Project is the project being edited, nil before a script exists
func (m *Model) Project() *models.Project {
	return m.project
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.loadTracks()}
	if m.opts.ProjectID != "" {
		m.busy = "Opening project..."
		cmds = append(cmds, m.call(opOpen, func(ctx context.Context) (*models.Project, error) {
			return m.api.GetProject(ctx, m.opts.ProjectID)
		}))
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 10; w > 20 {
			m.bar.Width = w
		}
		return m, nil

	case projectMsg:
		m.busy = ""
		return m, m.applyProject(msg)

	case errMsg:
		m.busy = ""
		if msg.op == opDuration {
			m.revertDuration()
		}
		m.setError(msg.err)
		return m, nil

	case tracksMsg:
		if msg.err == nil && len(msg.tracks) > 0 {
			m.tracks = msg.tracks
			m.syncTrackCursor()
		}
		return m, nil

	case tickMsg:
		return m, m.onTick()

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, m.handleKey(msg)
	}

	return m, m.forwardToInput(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.busy != "" {
		return nil
	}

	// 文本输入时不处理全局快捷键
	typing := m.wiz.Current() == wizard.StepTopic || m.editing
	if !typing {
		switch msg.String() {
		case "q":
			return tea.Quit
		case "shift+tab", "esc":
			m.leaveStep()
			m.wiz.Back()
			m.enterStep()
			return nil
		case "1", "2", "3", "4", "5":
			step := wizard.Step(msg.Runes[0] - '0')
			if m.wiz.CanGoTo(step) && step != m.wiz.Current() {
				m.leaveStep()
				m.wiz.GoTo(step)
				m.enterStep()
			}
			return nil
		}
	}

	switch m.wiz.Current() {
	case wizard.StepTopic:
		return m.updateTopic(msg)
	case wizard.StepScript:
		return m.updateScript(msg)
	case wizard.StepImages:
		return m.updateImages(msg)
	case wizard.StepAudio:
		return m.updateAudio(msg)
	case wizard.StepVideo:
		return m.updateVideo(msg)
	}
	return nil
}

func (m *Model) forwardToInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.editing:
		m.editor, cmd = m.editor.Update(msg)
	case m.wiz.Current() == wizard.StepTopic:
		m.topic, cmd = m.topic.Update(msg)
	}
	return cmd
}

// ─────────────────────────────────────────────────────────
// server calls
// ─────────────────────────────────────────────────────────

func (m *Model) call(op operation, fn func(ctx context.Context) (*models.Project, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		project, err := fn(ctx)
		if err != nil {
			return errMsg{op: op, err: err}
		}
		return projectMsg{op: op, project: project}
	}
}

func (m *Model) loadTracks() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		tracks, err := m.api.MusicTracks(ctx)
		return tracksMsg{tracks: tracks, err: err}
	}
}

func (m *Model) applyProject(msg projectMsg) tea.Cmd {
	if msg.project == nil {
		return nil
	}
	m.project = msg.project
	m.clearStatus()

	switch msg.op {
	case opOpen:
		m.loadAudio()
		target := wizard.StepScript
		if hasImages(m.project) {
			target = wizard.StepImages
		}
		for m.wiz.Current() < target {
			m.wiz.Advance()
		}
		m.enterStep()
	case opScript:
		m.loadAudio()
		m.cursor = 0
		m.wiz.Advance()
		m.enterStep()
	case opImages:
		m.cursor = 0
		m.wiz.Advance()
		m.enterStep()
	case opScriptSave:
		m.setNotice("Script saved")
	case opDuration, opRegenerate:
		if msg.op == opDuration {
			m.pending = nil
		}
		if m.sim != nil {
			m.sim.SetDurations(models.Durations(m.project.Scenes))
		}
	}
	return nil
}

func (m *Model) loadAudio() {
	m.voiceVolume = m.project.VoiceVolume
	m.musicVolume = m.project.MusicVolume
	m.syncTrackCursor()
}

func (m *Model) syncTrackCursor() {
	id := models.DefaultMusicTrackID
	if m.project != nil && m.project.MusicTrackID != "" {
		id = m.project.MusicTrackID
	}
	for i, t := range m.tracks {
		if t.ID == id {
			m.trackCursor = i
			return
		}
	}
	m.trackCursor = 0
}

func hasImages(p *models.Project) bool {
	for _, sc := range p.Scenes {
		if sc.ImageURL != "" {
			return true
		}
	}
	return false
}

// ─────────────────────────────────────────────────────────
// step transitions
// ─────────────────────────────────────────────────────────

func (m *Model) leaveStep() {
	if m.wiz.Current() == wizard.StepVideo && m.sim != nil {
		m.snap = m.sim.Pause()
	}
	m.editing = false
	m.editor.Blur()
}

func (m *Model) enterStep() {
	switch m.wiz.Current() {
	case wizard.StepTopic:
		m.topic.Focus()
	case wizard.StepVideo:
		m.topic.Blur()
		durations := models.Durations(m.project.Scenes)
		if m.sim == nil {
			m.sim = playback.NewSimulator(durations, playback.WithClock(m.clock))
			m.snap = m.sim.Snapshot()
		} else {
			m.snap = m.sim.SetDurations(durations)
		}
	default:
		m.topic.Blur()
	}
	if m.project != nil && m.cursor >= len(m.project.Scenes) {
		m.cursor = 0
	}
}

// ─────────────────────────────────────────────────────────
// Step 1: topic
// ─────────────────────────────────────────────────────────

func (m *Model) updateTopic(msg tea.KeyMsg) tea.Cmd {
	if msg.Type != tea.KeyEnter {
		var cmd tea.Cmd
		m.topic, cmd = m.topic.Update(msg)
		return cmd
	}

	topic := strings.TrimSpace(m.topic.Value())
	if utf8.RuneCountInString(topic) < services.MinTopicLength {
		m.setError(fmt.Errorf("topic must be at least %d characters", services.MinTopicLength))
		return nil
	}

	m.busy = "Generating script..."
	m.sim = nil
	return m.call(opScript, func(ctx context.Context) (*models.Project, error) {
		return m.api.GenerateScript(ctx, topic)
	})
}

// ─────────────────────────────────────────────────────────
// Step 2: script
// ─────────────────────────────────────────────────────────

func (m *Model) updateScript(msg tea.KeyMsg) tea.Cmd {
	if m.editing {
		switch msg.Type {
		case tea.KeyEsc:
			m.editing = false
			m.editor.Blur()
			return nil
		case tea.KeyEnter:
			m.editing = false
			m.editor.Blur()
			return m.saveScene(m.cursor, strings.TrimSpace(m.editor.Value()))
		}
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "e":
		if sc, ok := m.selectedScene(); ok {
			m.editing = true
			m.editor.SetValue(sc.Text)
			m.editor.CursorEnd()
			return m.editor.Focus()
		}
	case "g":
		m.setNotice(noticeSceneRegen)
	case "enter":
		return m.generateImages()
	}
	return nil
}

func (m *Model) saveScene(index int, text string) tea.Cmd {
	if m.project == nil || text == "" {
		return nil
	}
	scenes := models.ScenesAsInput(m.project.Scenes)
	scenes[index].Text = text

	id := m.project.ID
	m.busy = "Saving script..."
	return m.call(opScriptSave, func(ctx context.Context) (*models.Project, error) {
		return m.api.UpdateScript(ctx, id, scenes)
	})
}

func (m *Model) generateImages() tea.Cmd {
	if m.project == nil || len(m.project.Scenes) == 0 {
		return nil
	}
	scenes := make([]client.SceneText, len(m.project.Scenes))
	for i, sc := range m.project.Scenes {
		scenes[i] = client.SceneText{ID: sc.ID, Text: sc.Text}
	}

	id := m.project.ID
	m.busy = "Generating images..."
	return m.call(opImages, func(ctx context.Context) (*models.Project, error) {
		return m.api.GenerateImages(ctx, id, scenes)
	})
}

// ─────────────────────────────────────────────────────────
// Step 3: images
// ─────────────────────────────────────────────────────────

func (m *Model) updateImages(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "r":
		sc, ok := m.selectedScene()
		if !ok {
			return nil
		}
		id := m.project.ID
		m.busy = fmt.Sprintf("Regenerating image for scene %d...", sc.ID)
		return m.call(opRegenerate, func(ctx context.Context) (*models.Project, error) {
			return m.api.RegenerateImage(ctx, id, sc.ID)
		})
	case "+", "=", "right", "l":
		return m.nudgeDuration(models.SceneDurationStep)
	case "-", "_", "left", "h":
		return m.nudgeDuration(-models.SceneDurationStep)
	case "enter":
		m.wiz.Advance()
		m.enterStep()
	}
	return nil
}

func (m *Model) nudgeDuration(delta float64) tea.Cmd {
	sc, ok := m.selectedScene()
	if !ok {
		return nil
	}
	next := models.ClampDuration(sc.Duration + delta)
	if next == sc.Duration {
		return nil
	}

	// 本地先更新，服务器返回后以服务器为准；等待期间忽略按键
	m.project.Scenes[m.cursor].Duration = next
	m.pending = &pendingDuration{sceneID: sc.ID, previous: sc.Duration}
	m.busy = "Updating duration..."
	id := m.project.ID
	return m.call(opDuration, func(ctx context.Context) (*models.Project, error) {
		return m.api.UpdateDuration(ctx, id, sc.ID, next)
	})
}

func (m *Model) revertDuration() {
	if m.pending == nil || m.project == nil {
		return
	}
	for i := range m.project.Scenes {
		if m.project.Scenes[i].ID == m.pending.sceneID {
			m.project.Scenes[i].Duration = m.pending.previous
		}
	}
	m.pending = nil
}

// ─────────────────────────────────────────────────────────
// Step 4: audio
// ─────────────────────────────────────────────────────────

func (m *Model) updateAudio(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.audioFocus > fieldVoice {
			m.audioFocus--
		}
	case "down", "j":
		if m.audioFocus < fieldTrack {
			m.audioFocus++
		}
	case "left", "h", "-":
		m.adjustAudio(-1)
	case "right", "l", "+", "=":
		m.adjustAudio(1)
	case "v":
		m.setNotice(noticeVoiceRegen)
	case "enter":
		if m.project != nil && len(m.tracks) > 0 {
			m.project.MusicTrackID = m.tracks[m.trackCursor].ID
			m.project.VoiceVolume = m.voiceVolume
			m.project.MusicVolume = m.musicVolume
		}
		m.wiz.Advance()
		m.enterStep()
	}
	return nil
}

func (m *Model) adjustAudio(dir int) {
	switch m.audioFocus {
	case fieldVoice:
		m.voiceVolume = clampVolume(m.voiceVolume + float64(dir*volumeStep))
	case fieldMusic:
		m.musicVolume = clampVolume(m.musicVolume + float64(dir*volumeStep))
	case fieldTrack:
		if n := len(m.tracks); n > 0 {
			m.trackCursor = (m.trackCursor + dir + n) % n
		}
	}
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > maxVolume {
		return maxVolume
	}
	return v
}

// ─────────────────────────────────────────────────────────
// Step 5: video
// ─────────────────────────────────────────────────────────

func (m *Model) updateVideo(msg tea.KeyMsg) tea.Cmd {
	if m.sim == nil {
		return nil
	}
	switch msg.String() {
	case " ", "p":
		m.snap = m.sim.Toggle()
		return m.startTicking()
	case "r":
		m.snap = m.sim.Restart()
		m.clearStatus()
	case "d":
		if err := m.sim.Download(); err != nil {
			m.setNotice(capitalize(err.Error()))
		}
	}
	return nil
}

func (m *Model) startTicking() tea.Cmd {
	if m.ticking || m.snap.State != playback.Playing {
		return nil
	}
	m.ticking = true
	return tick()
}

func (m *Model) onTick() tea.Cmd {
	if m.sim == nil {
		m.ticking = false
		return nil
	}
	m.snap = m.sim.Tick()
	if m.snap.State != playback.Playing || m.wiz.Current() != wizard.StepVideo {
		m.ticking = false
		return nil
	}
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(playback.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ─────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────

func (m *Model) selectedScene() (models.Scene, bool) {
	if m.project == nil || m.cursor < 0 || m.cursor >= len(m.project.Scenes) {
		return models.Scene{}, false
	}
	return m.project.Scenes[m.cursor], true
}

func (m *Model) moveCursor(delta int) {
	if m.project == nil || len(m.project.Scenes) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.project.Scenes) {
		m.cursor = len(m.project.Scenes) - 1
	}
}

func (m *Model) setError(err error) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		m.status = apiErr.Message
	} else {
		m.status = err.Error()
	}
	m.statusErr = true
}

func (m *Model) setNotice(text string) {
	m.status = text
	m.statusErr = false
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func wordCount(scenes []models.Scene) int {
	n := 0
	for _, sc := range scenes {
		n += len(strings.Fields(sc.Text))
	}
	return n
}
