// internal/tui/view.go
package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/Corphon/ReelBoard/internal/models"
	"github.com/Corphon/ReelBoard/internal/playback"
	"github.com/Corphon/ReelBoard/internal/services"
	"github.com/Corphon/ReelBoard/internal/wizard"
)

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🎬 ReelBoard"))
	b.WriteString("\n")
	b.WriteString(m.renderStepper())
	b.WriteString("\n\n")

	switch m.wiz.Current() {
	case wizard.StepTopic:
		b.WriteString(m.viewTopic())
	case wizard.StepScript:
		b.WriteString(m.viewScript())
	case wizard.StepImages:
		b.WriteString(m.viewImages())
	case wizard.StepAudio:
		b.WriteString(m.viewAudio())
	case wizard.StepVideo:
		b.WriteString(m.viewVideo())
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m *Model) renderStepper() string {
	parts := make([]string, 0, len(wizard.Steps))
	for _, info := range wizard.Steps {
		label := fmt.Sprintf("%d %s", info.ID, info.Title)
		switch m.wiz.StateOf(info.ID) {
		case wizard.Completed:
			parts = append(parts, stepCompletedStyle.Render("✓ "+label))
		case wizard.Current:
			parts = append(parts, stepCurrentStyle.Render(label))
		default:
			parts = append(parts, stepUpcomingStyle.Render(label))
		}
	}
	line := strings.Join(parts, mutedStyle.Render("  ›  "))

	if info, ok := wizard.Info(m.wiz.Current()); ok {
		line += "\n" + mutedStyle.Render(info.Description)
	}
	return line
}

func (m *Model) renderStatus() string {
	switch {
	case m.busy != "":
		return busyStyle.Render("⏳ " + m.busy)
	case m.status == "":
		return ""
	case m.statusErr:
		return errorStyle.Render("❌ " + m.status)
	default:
		return noticeStyle.Render("ℹ " + m.status)
	}
}

func (m *Model) renderHelp() string {
	var keys [][2]string
	switch m.wiz.Current() {
	case wizard.StepTopic:
		keys = [][2]string{{"enter", "generate script"}}
	case wizard.StepScript:
		if m.editing {
			keys = [][2]string{{"enter", "save"}, {"esc", "cancel"}}
		} else {
			keys = [][2]string{{"↑/↓", "select"}, {"e", "edit"}, {"g", "regenerate scene"}, {"enter", "generate images"}}
		}
	case wizard.StepImages:
		keys = [][2]string{{"↑/↓", "select"}, {"r", "new image"}, {"+/-", "duration"}, {"enter", "continue"}}
	case wizard.StepAudio:
		keys = [][2]string{{"↑/↓", "field"}, {"←/→", "adjust"}, {"v", "regenerate voiceover"}, {"enter", "continue"}}
	case wizard.StepVideo:
		keys = [][2]string{{"space", "play/pause"}, {"r", "restart"}, {"d", "download"}}
	}
	if m.wiz.Current() != wizard.StepTopic && !m.editing {
		keys = append(keys, [2]string{"esc", "back"}, [2]string{"q", "quit"})
	} else {
		keys = append(keys, [2]string{"ctrl+c", "quit"})
	}

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = keyStyle.Render(k[0]) + " " + mutedStyle.Render(k[1])
	}
	return strings.Join(parts, mutedStyle.Render(" · "))
}

func (m *Model) viewTopic() string {
	var b strings.Builder
	b.WriteString("What should your video be about?\n\n")
	b.WriteString(m.topic.View())
	b.WriteString("\n")

	count := utf8.RuneCountInString(strings.TrimSpace(m.topic.Value()))
	counter := fmt.Sprintf("%d/%d characters", count, topicCharLimit)
	if count < services.MinTopicLength {
		counter += fmt.Sprintf(" (minimum %d)", services.MinTopicLength)
		b.WriteString(mutedStyle.Render(counter))
	} else {
		b.WriteString(stepCompletedStyle.Render(counter))
	}
	return b.String()
}

func (m *Model) viewScript() string {
	if m.project == nil {
		return mutedStyle.Render("No script yet")
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Topic: %s\n", m.project.Topic))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d scenes · %d words", len(m.project.Scenes), wordCount(m.project.Scenes))))
	b.WriteString("\n\n")

	for i, sc := range m.project.Scenes {
		marker := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			marker = "▸ "
			style = selectedStyle
		}
		if i == m.cursor && m.editing {
			b.WriteString(fmt.Sprintf("%sScene %d: %s\n", marker, sc.ID, m.editor.View()))
			continue
		}
		b.WriteString(style.Render(fmt.Sprintf("%sScene %d: %s", marker, sc.ID, sc.Text)))
		b.WriteString("\n")
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) viewImages() string {
	if m.project == nil {
		return ""
	}

	var b strings.Builder
	for i, sc := range m.project.Scenes {
		marker := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			marker = "▸ "
			style = selectedStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%sScene %d  [%4.1fs]  %s", marker, sc.ID, sc.Duration, sc.Text)))
		b.WriteString("\n")
		image := sc.ImageURL
		if image == "" {
			image = "(no image)"
		}
		b.WriteString(mutedStyle.Render("    " + image))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Total duration: %s", playback.FormatTime(models.TotalDuration(m.project.Scenes))))
	return panelStyle.Render(b.String())
}

func (m *Model) viewAudio() string {
	var b strings.Builder

	row := func(field audioField, label, value string) {
		marker := "  "
		style := lipgloss.NewStyle()
		if m.audioFocus == field {
			marker = "▸ "
			style = selectedStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%-14s %s", marker, label, value)))
		b.WriteString("\n")
	}

	b.WriteString("Voiceover\n")
	b.WriteString(mutedStyle.Render("  AI narration of the script"))
	b.WriteString("\n")
	row(fieldVoice, "Voice volume", volumeBar(m.voiceVolume))
	b.WriteString("\nBackground music\n")
	row(fieldMusic, "Music volume", volumeBar(m.musicVolume))

	track := "none"
	if len(m.tracks) > 0 {
		t := m.tracks[m.trackCursor]
		track = fmt.Sprintf("‹ %s (%s) ›", t.Name, t.Category)
	}
	row(fieldTrack, "Track", track)

	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func volumeBar(v float64) string {
	const width = 20
	filled := int(v / maxVolume * width)
	return fmt.Sprintf("%s%s %3.0f%%", strings.Repeat("█", filled), strings.Repeat("░", width-filled), v)
}

func (m *Model) viewVideo() string {
	if m.project == nil || m.sim == nil {
		return ""
	}

	var b strings.Builder
	snap := m.snap
	if !snap.HasScene() {
		b.WriteString(mutedStyle.Render("No scenes to preview"))
		return panelStyle.Render(b.String())
	}

	sc := m.project.Scenes[min(snap.SceneIndex, len(m.project.Scenes)-1)]
	state := "⏸ paused"
	switch snap.State {
	case playback.Playing:
		state = "▶ playing"
	case playback.Finished:
		state = "■ finished"
	}

	b.WriteString(fmt.Sprintf("Scene %d of %d  %s\n", snap.SceneIndex+1, snap.SceneCount, mutedStyle.Render(state)))
	b.WriteString(selectedStyle.Render(sc.Text))
	b.WriteString("\n")
	if sc.ImageURL != "" {
		b.WriteString(mutedStyle.Render(sc.ImageURL))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(snap.Progress / 100))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s / %s", playback.FormatDuration(snap.Elapsed), playback.FormatDuration(snap.Total)))

	if m.project.MusicTrackID != "" {
		if t, ok := models.FindMusicTrack(m.project.MusicTrackID); ok {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("   ♪ %s · voice %.0f%% · music %.0f%%", t.Name, m.project.VoiceVolume, m.project.MusicVolume)))
		}
	}
	return panelStyle.Render(b.String())
}
