// Package session implements the per-game trial and session state machine.
package session

import (
	"time"

	"github.com/davrk/sharpen/internal/model"
	"github.com/davrk/sharpen/internal/stats"
)

// Phase is the controller's state machine position.
type Phase int

// Session phases. Practice always advances to Playing; Playing advances to
// Results; Results returns to Instructions only via Restart.
const (
	PhaseInstructions Phase = iota
	PhasePractice
	PhasePlaying
	PhaseResults
)

func (p Phase) String() string {
	switch p {
	case PhaseInstructions:
		return "instructions"
	case PhasePractice:
		return "practice"
	case PhasePlaying:
		return "playing"
	case PhaseResults:
		return "results"
	default:
		return "unknown"
	}
}

// Feedback is the transient per-trial feedback marker.
type Feedback int

// Feedback values.
const (
	FeedbackNone Feedback = iota
	FeedbackCorrect
	FeedbackWrong
)

// State is the session-level mutable container owned by the controller.
type State struct {
	Phase            Phase
	TrialIndex       int
	Trials           []model.TrialResult
	IsPractice       bool
	ShowingStimulus  bool
	AwaitingResponse bool
	Feedback         Feedback
}

// Event is emitted by the controller on trial and phase boundaries. Listeners
// run synchronously inside the emitting call and must not block.
type Event interface{ sessionEvent() }

// TrialScored fires once per RecordTrial call.
type TrialScored struct {
	Correct        bool
	ReactionTimeMs int
}

// LevelChanged fires when the recorded difficulty level differs from the
// previous trial's.
type LevelChanged struct {
	From int
	To   int
}

// PhaseChanged fires on every phase transition.
type PhaseChanged struct {
	From Phase
	To   Phase
}

// SessionComplete fires when the scored trial quota is met, after the result
// has been handed to the recorder.
type SessionComplete struct {
	Result model.SessionResult
}

func (TrialScored) sessionEvent()     {}
func (LevelChanged) sessionEvent()    {}
func (PhaseChanged) sessionEvent()    {}
func (SessionComplete) sessionEvent() {}

// Recorder commits a completed session result.
type Recorder interface {
	RecordSession(result model.SessionResult)
}

// Controller drives the instructions/practice/playing/results lifecycle and
// measures per-trial reaction time. It is not safe for concurrent use; every
// call is expected to come from a single event loop.
type Controller struct {
	cfg      model.GameConfig
	state    State
	recorder Recorder
	emit     func(Event)
	now      func() time.Time

	sessionStart time.Time
	trialStart   time.Time
	prevLevel    int
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock injects a time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithRecorder sets the sink for completed session results.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithEvents sets the event listener.
func WithEvents(emit func(Event)) Option {
	return func(c *Controller) { c.emit = emit }
}

// New constructs a Controller in the Instructions phase.
func New(cfg model.GameConfig, opts ...Option) *Controller {
	c := &Controller{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the session state. The trial slice is shared;
// callers must not mutate it.
func (c *Controller) State() State {
	return c.state
}

// Config returns the game configuration driving the trial quotas.
func (c *Controller) Config() model.GameConfig {
	return c.cfg
}

// StartPractice begins a practice block. Practice trials are never recorded.
func (c *Controller) StartPractice() {
	c.startSession(PhasePractice, true)
}

// StartPlaying begins a scored session.
func (c *Controller) StartPlaying() {
	c.startSession(PhasePlaying, false)
}

// SkipToPlay bypasses practice.
func (c *Controller) SkipToPlay() {
	c.StartPlaying()
}

func (c *Controller) startSession(phase Phase, practice bool) {
	from := c.state.Phase
	c.sessionStart = c.now()
	c.state = State{
		Phase:      phase,
		IsPractice: practice,
	}
	c.emitEvent(PhaseChanged{From: from, To: phase})
}

// BeginTrial marks the trial-start instant and enters the stimulus-display
// sub-state. Reaction time is measured from here.
func (c *Controller) BeginTrial() {
	c.trialStart = c.now()
	c.state.ShowingStimulus = true
	c.state.AwaitingResponse = false
	c.state.Feedback = FeedbackNone
}

// ShowResponse hides the stimulus and opens the response window. Every game
// driver uses this boundary to enable input; any intermediate staging between
// stimulus and response belongs to the driver.
func (c *Controller) ShowResponse() {
	c.state.ShowingStimulus = false
	c.state.AwaitingResponse = true
}

// RecordTrial scores the current trial and advances the state machine.
// The difficulty snapshot is the state the trial was played at. Calling it
// outside the practice or playing phases is a caller bug and is ignored.
func (c *Controller) RecordTrial(correct bool, snapshot model.DifficultyState) {
	if c.state.Phase != PhasePractice && c.state.Phase != PhasePlaying {
		return
	}

	now := c.now()
	reaction := int(now.Sub(c.trialStart).Milliseconds())
	if reaction < 0 {
		reaction = 0
	}
	result := model.TrialResult{
		Correct:        correct,
		ReactionTimeMs: reaction,
		Difficulty:     snapshot,
		Timestamp:      now.UnixMilli(),
	}

	c.emitEvent(TrialScored{Correct: correct, ReactionTimeMs: reaction})
	// prevLevel 0 means no trial has been recorded yet; the first trial
	// seeds it silently so sessions started above level 1 do not announce
	// a phantom level-up.
	if c.prevLevel != 0 && snapshot.Level != c.prevLevel {
		c.emitEvent(LevelChanged{From: c.prevLevel, To: snapshot.Level})
	}
	c.prevLevel = snapshot.Level

	if !c.state.IsPractice {
		c.state.Trials = append(c.state.Trials, result)
	}

	feedback := FeedbackWrong
	if correct {
		feedback = FeedbackCorrect
	}
	c.state.Feedback = feedback
	c.state.ShowingStimulus = false
	c.state.AwaitingResponse = false

	quota := c.cfg.TrialCount
	if c.state.IsPractice {
		quota = c.cfg.PracticeTrialCount
	}
	next := c.state.TrialIndex + 1

	switch {
	case next >= quota && c.state.IsPractice:
		c.state.Phase = PhasePlaying
		c.state.TrialIndex = 0
		c.state.Trials = nil
		c.state.IsPractice = false
		c.emitEvent(PhaseChanged{From: PhasePractice, To: PhasePlaying})
	case next >= quota:
		c.state.TrialIndex = next
		duration := int(now.Sub(c.sessionStart).Round(time.Second).Seconds())
		summary := stats.Summarize(c.cfg.ID, c.state.Trials, duration, now)
		if c.recorder != nil {
			c.recorder.RecordSession(summary)
		}
		c.state.Phase = PhaseResults
		c.emitEvent(PhaseChanged{From: PhasePlaying, To: PhaseResults})
		c.emitEvent(SessionComplete{Result: summary})
	default:
		c.state.TrialIndex = next
	}
}

// Restart clears all trial state and returns to Instructions.
func (c *Controller) Restart() {
	from := c.state.Phase
	c.state = State{Phase: PhaseInstructions}
	c.prevLevel = 0
	c.emitEvent(PhaseChanged{From: from, To: PhaseInstructions})
}

func (c *Controller) emitEvent(e Event) {
	if c.emit != nil {
		c.emit(e)
	}
}
