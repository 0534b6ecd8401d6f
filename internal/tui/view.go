package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/davrk/sharpen/internal/session"
	"github.com/davrk/sharpen/internal/stats"
)

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.ctrl.State().Phase {
	case session.PhaseInstructions:
		body = m.viewInstructions()
	case session.PhaseResults:
		body = m.viewResults()
	default:
		body = m.viewTrial()
	}
	content := body + "\n\n" + m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) viewInstructions() string {
	cfg := m.driver.Config()
	var b strings.Builder
	b.WriteString(titleStyle.Render(cfg.Name) + "\n")
	b.WriteString(mutedStyle.Render(cfg.Description) + "\n\n")
	for _, line := range m.driver.Instructions() {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d practice trials, then %d scored trials.",
		cfg.PracticeTrialCount, cfg.TrialCount)))
	return b.String()
}

func (m *Model) viewTrial() string {
	state := m.ctrl.State()
	switch m.step {
	case stepFrames:
		return stimulusStyle.Render(m.trial.Frames[m.frameIdx].View)
	case stepQuestion:
		return m.viewQuestion()
	default:
		var b strings.Builder
		switch state.Feedback {
		case session.FeedbackCorrect:
			b.WriteString(correctStyle.Render("✓ correct"))
		case session.FeedbackWrong:
			b.WriteString(wrongStyle.Render("✗ wrong"))
		default:
			b.WriteString(mutedStyle.Render("get ready..."))
		}
		if m.levelNote != "" {
			b.WriteString("\n" + accentStyle.Render(m.levelNote))
		}
		return b.String()
	}
}

func (m *Model) viewQuestion() string {
	q := m.trial.Questions[m.questionIdx]
	var b strings.Builder
	b.WriteString(accentStyle.Render(q.Prompt) + "\n")
	if q.View != "" {
		b.WriteString("\n" + q.View + "\n")
	}
	b.WriteString("\n")
	parts := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		parts = append(parts, fmt.Sprintf("[%s] %s", opt.Key, opt.Label))
	}
	b.WriteString(mutedStyle.Render(strings.Join(parts, "   ")))
	if q.PicksRequired() > 1 {
		b.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("picked %d of %d: %s",
			len(m.picks), q.PicksRequired(), strings.Join(m.picks, " "))))
	}
	return b.String()
}

func (m *Model) viewResults() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Session complete") + "\n\n")
	if m.result != nil {
		r := *m.result
		b.WriteString(fmt.Sprintf("Accuracy       %d%%\n", r.Accuracy))
		b.WriteString(fmt.Sprintf("Avg reaction   %s\n", stats.FormatMs(r.AverageReactionMs)))
		b.WriteString(fmt.Sprintf("Best reaction  %s\n", stats.FormatMs(r.BestReactionMs)))
		b.WriteString(fmt.Sprintf("Final level    %d  (peak %d)\n", r.FinalLevel, m.peak))
		b.WriteString(fmt.Sprintf("Duration       %dm %02ds\n", r.DurationSeconds/60, r.DurationSeconds%60))
	}
	if m.recorder.err == nil && m.recorder.data.Games != nil {
		if gs, ok := m.recorder.data.Games[m.driver.ID()]; ok {
			b.WriteString(fmt.Sprintf("\nSessions played  %d   Best score  %d\n",
				gs.SessionsCompleted, gs.BestScore))
		}
	}
	if m.syncState != "" {
		b.WriteString("\n" + mutedStyle.Render(m.syncState))
	}
	b.WriteString("\n" + mutedStyle.Render("r restart · q quit"))
	return b.String()
}

func (m *Model) renderFooter() string {
	state := m.ctrl.State()
	cfg := m.driver.Config()
	var segments []string
	switch state.Phase {
	case session.PhaseInstructions:
		segments = append(segments, "enter start · s skip practice · q quit")
	case session.PhasePractice:
		segments = append(segments,
			fmt.Sprintf("practice %d/%d", min(state.TrialIndex+1, cfg.PracticeTrialCount), cfg.PracticeTrialCount))
	case session.PhasePlaying:
		segments = append(segments,
			fmt.Sprintf("trial %d/%d", min(state.TrialIndex+1, cfg.TrialCount), cfg.TrialCount))
	}
	if state.Phase == session.PhasePractice || state.Phase == session.PhasePlaying {
		segments = append(segments, fmt.Sprintf("level %d", m.diff.Level))
	}
	return footerStyle.Render(strings.Join(segments, "  ·  "))
}
