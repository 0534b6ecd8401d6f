// Package tui provides the Bubble Tea gameplay interface.
package tui

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/davrk/sharpen/internal/difficulty"
	"github.com/davrk/sharpen/internal/games"
	"github.com/davrk/sharpen/internal/model"
	"github.com/davrk/sharpen/internal/progress"
	"github.com/davrk/sharpen/internal/session"
)

type step int

const (
	stepIdle step = iota
	stepFrames
	stepQuestion
)

// Inter-trial pauses. The longer one leaves feedback on screen.
const (
	trialDelay    = 400 * time.Millisecond
	feedbackDelay = 800 * time.Millisecond
)

// trialStartMsg and frameMsg carry the sequence counter active when they
// were scheduled. A restart or an early answer bumps the counter, so
// stale timers arrive, fail the seq check, and do nothing.
type trialStartMsg struct{ seq int }

type frameMsg struct {
	seq int
	idx int
}

type syncDoneMsg struct{ err error }

// Pusher uploads local progress after a completed session.
type Pusher interface {
	PushOnly(ctx context.Context) error
}

// Model implements the Bubble Tea gameplay UI for one game.
type Model struct {
	driver games.Driver
	ctrl   *session.Controller
	diff   model.DifficultyState
	peak   int
	rnd    *rand.Rand

	recorder *progressRecorder
	pusher   Pusher

	width  int
	height int

	step        step
	seq         int
	trial       games.Trial
	frameIdx    int
	questionIdx int
	answers     []string
	picks       []string

	levelNote    string
	result       *model.SessionResult
	syncState    string
	skipPractice bool
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#16C79A"))
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	stimulusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Option configures a Model.
type Option func(*Model)

// WithStartLevel begins the session at a replayed difficulty level.
func WithStartLevel(level int) Option {
	return func(m *Model) { m.diff = difficulty.ForLevel(level) }
}

// WithSkipPractice starts scored play directly, without practice trials.
func WithSkipPractice(skip bool) Option {
	return func(m *Model) { m.skipPractice = skip }
}

// WithPusher uploads progress after the session completes.
func WithPusher(p Pusher) Option {
	return func(m *Model) { m.pusher = p }
}

// WithRandom injects the trial generator's randomness source.
func WithRandom(rnd *rand.Rand) Option {
	return func(m *Model) { m.rnd = rnd }
}

// NewModel constructs a gameplay model for one game backed by the
// progress store.
func NewModel(driver games.Driver, store *progress.Store, opts ...Option) *Model {
	m := &Model{
		driver: driver,
		diff:   difficulty.Default(),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	m.recorder = &progressRecorder{store: store}
	m.ctrl = session.New(driver.Config(),
		session.WithRecorder(m.recorder),
		session.WithEvents(m.handleEvent),
	)
	for _, opt := range opts {
		opt(m)
	}
	m.peak = m.diff.Level
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case trialStartMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		return m, m.startTrial()
	case frameMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		return m, m.advanceFrame(msg.idx)
	case syncDoneMsg:
		if msg.err != nil {
			m.syncState = "sync failed"
		} else {
			m.syncState = "synced"
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	key := msg.String()

	switch m.ctrl.State().Phase {
	case session.PhaseInstructions:
		switch key {
		case "enter":
			if m.skipPractice {
				m.ctrl.SkipToPlay()
			} else {
				m.ctrl.StartPractice()
			}
			return m, m.scheduleNextTrial()
		case "s":
			m.ctrl.SkipToPlay()
			return m, m.scheduleNextTrial()
		case "q", "esc":
			return m, tea.Quit
		}
	case session.PhasePractice, session.PhasePlaying:
		if key == "q" || key == "esc" {
			return m, tea.Quit
		}
		if m.step == stepQuestion {
			return m, m.handleAnswer(key)
		}
	case session.PhaseResults:
		switch key {
		case "r":
			m.restart()
			return m, nil
		case "q", "esc", "enter":
			return m, tea.Quit
		}
	}
	return m, nil
}

// scheduleNextTrial starts the inter-trial pause, longer when feedback
// from the previous trial is on screen.
func (m *Model) scheduleNextTrial() tea.Cmd {
	m.step = stepIdle
	delay := trialDelay
	if m.ctrl.State().Feedback != session.FeedbackNone {
		delay = feedbackDelay
	}
	seq := m.seq
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return trialStartMsg{seq: seq}
	})
}

// startTrial generates a fresh trial at the current difficulty and plays
// its first frame.
func (m *Model) startTrial() tea.Cmd {
	m.trial = m.driver.NewTrial(m.diff, m.rnd)
	m.ctrl.BeginTrial()
	m.step = stepFrames
	m.frameIdx = 0
	m.levelNote = ""
	seq := m.seq
	return tea.Tick(m.trial.Frames[0].Duration, func(time.Time) tea.Msg {
		return frameMsg{seq: seq, idx: 1}
	})
}

func (m *Model) advanceFrame(idx int) tea.Cmd {
	if idx < len(m.trial.Frames) {
		m.frameIdx = idx
		seq := m.seq
		return tea.Tick(m.trial.Frames[idx].Duration, func(time.Time) tea.Msg {
			return frameMsg{seq: seq, idx: idx + 1}
		})
	}
	m.ctrl.ShowResponse()
	m.step = stepQuestion
	m.questionIdx = 0
	m.answers = nil
	m.picks = nil
	return nil
}

func (m *Model) handleAnswer(key string) tea.Cmd {
	q := m.trial.Questions[m.questionIdx]
	opt, ok := q.OptionByKey(key)
	if !ok {
		return nil
	}
	for _, picked := range m.picks {
		if picked == opt.Key {
			return nil
		}
	}
	m.picks = append(m.picks, opt.Key)
	if len(m.picks) < q.PicksRequired() {
		return nil
	}
	m.answers = append(m.answers, m.picks...)
	m.picks = nil
	m.questionIdx++
	if m.questionIdx < len(m.trial.Questions) {
		return nil
	}
	return m.resolveTrial()
}

// resolveTrial scores the collected answers. The difficulty handed to the
// controller is the state the trial was played at, not the post-update
// one.
func (m *Model) resolveTrial() tea.Cmd {
	correct := m.trial.Evaluate(m.answers)
	snapshot := m.diff
	if correct {
		m.diff = difficulty.OnCorrect(m.diff)
	} else {
		m.diff = difficulty.OnWrong(m.diff)
	}
	if m.diff.Level > m.peak {
		m.peak = m.diff.Level
	}
	m.seq++
	m.ctrl.RecordTrial(correct, snapshot)

	if m.ctrl.State().Phase == session.PhaseResults {
		return m.finishSession()
	}
	return m.scheduleNextTrial()
}

func (m *Model) handleEvent(e session.Event) {
	switch e := e.(type) {
	case session.LevelChanged:
		if e.To > e.From {
			m.levelNote = fmt.Sprintf("Level up! Now level %d", e.To)
		} else {
			m.levelNote = fmt.Sprintf("Back to level %d", e.To)
		}
	case session.SessionComplete:
		result := e.Result
		m.result = &result
	}
}

func (m *Model) finishSession() tea.Cmd {
	if m.recorder.err != nil {
		logErrf("failed to save session: %v\n", m.recorder.err)
	}
	if m.pusher == nil {
		return nil
	}
	m.syncState = "syncing"
	pusher := m.pusher
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		return syncDoneMsg{err: pusher.PushOnly(ctx)}
	}
}

func (m *Model) restart() {
	m.ctrl.Restart()
	m.diff = difficulty.Default()
	m.peak = m.diff.Level
	m.seq++
	m.step = stepIdle
	m.trial = games.Trial{}
	m.answers = nil
	m.picks = nil
	m.levelNote = ""
	m.result = nil
	m.syncState = ""
}

// progressRecorder commits the finished session into the progress store
// and keeps the outcome for the results screen.
type progressRecorder struct {
	store *progress.Store
	data  model.UserData
	err   error
}

func (r *progressRecorder) RecordSession(result model.SessionResult) {
	if r.store == nil {
		return
	}
	r.data, r.err = r.store.RecordSession(context.Background(), result)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
