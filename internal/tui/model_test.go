package tui

import (
	"context"
	"math/rand"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/davrk/sharpen/internal/games"
	"github.com/davrk/sharpen/internal/model"
	"github.com/davrk/sharpen/internal/progress"
	"github.com/davrk/sharpen/internal/session"
)

type stubDriver struct {
	cfg model.GameConfig
}

func (d *stubDriver) ID() model.GameID         { return model.GameFlashMatch }
func (d *stubDriver) Config() model.GameConfig { return d.cfg }
func (d *stubDriver) Instructions() []string   { return []string{"answer with a"} }

func (d *stubDriver) NewTrial(diff model.DifficultyState, rnd *rand.Rand) games.Trial {
	return games.Trial{
		Frames: []games.Frame{{View: "stimulus", Duration: 10 * time.Millisecond}},
		Questions: []games.Question{{
			Prompt:  "which one?",
			Options: []games.Option{{Key: "a", Label: "a"}, {Key: "b", Label: "b"}},
		}},
		Evaluate: func(answers []string) bool {
			return len(answers) == 1 && answers[0] == "a"
		},
	}
}

type memoryBackend struct {
	data     model.UserData
	ok       bool
	appended int
}

func (b *memoryBackend) Load(ctx context.Context) (model.UserData, bool, error) {
	return b.data, b.ok, nil
}

func (b *memoryBackend) Save(ctx context.Context, data model.UserData) error {
	b.data, b.ok = data, true
	return nil
}

func (b *memoryBackend) AppendSession(ctx context.Context, result model.SessionResult) error {
	b.appended++
	return nil
}

func newTestModel(cfg model.GameConfig) (*Model, *memoryBackend) {
	backend := &memoryBackend{}
	store := progress.NewStore(backend)
	m := NewModel(&stubDriver{cfg: cfg}, store, WithRandom(rand.New(rand.NewSource(1))))
	return m, backend
}

func keyMsg(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// playTrial walks one trial end to end: scheduled start, stimulus frame,
// then the given answer.
func playTrial(t *testing.T, m *Model, answer string) {
	t.Helper()
	m.Update(trialStartMsg{seq: m.seq})
	if m.step != stepFrames {
		t.Fatalf("expected stimulus frames, got step %d", m.step)
	}
	m.Update(frameMsg{seq: m.seq, idx: 1})
	if m.step != stepQuestion {
		t.Fatalf("expected question step, got step %d", m.step)
	}
	m.Update(keyMsg(answer))
}

func testConfig() model.GameConfig {
	return model.GameConfig{
		ID:                 model.GameFlashMatch,
		Name:               "Flash Match",
		TrialCount:         2,
		PracticeTrialCount: 1,
	}
}

func TestEnterStartsPractice(t *testing.T) {
	m, _ := newTestModel(testConfig())
	_, cmd := m.Update(keyMsg("enter"))
	if m.ctrl.State().Phase != session.PhasePractice {
		t.Fatalf("expected practice phase, got %v", m.ctrl.State().Phase)
	}
	if cmd == nil {
		t.Fatal("expected a scheduled trial start")
	}
}

func TestSkipPractice(t *testing.T) {
	m, _ := newTestModel(testConfig())
	m.Update(keyMsg("s"))
	if m.ctrl.State().Phase != session.PhasePlaying {
		t.Fatalf("expected playing phase, got %v", m.ctrl.State().Phase)
	}
}

func TestStaleTimersAreDropped(t *testing.T) {
	m, _ := newTestModel(testConfig())
	m.Update(keyMsg("enter"))

	// A timer scheduled before a restart must not fire into the new run.
	stale := trialStartMsg{seq: m.seq - 1}
	m.Update(stale)
	if m.step != stepIdle {
		t.Fatalf("stale trial start changed state to %d", m.step)
	}

	m.Update(trialStartMsg{seq: m.seq})
	m.Update(frameMsg{seq: m.seq - 1, idx: 1})
	if m.step != stepFrames {
		t.Fatalf("stale frame advance changed state to %d", m.step)
	}
}

func TestCorrectAnswerRaisesStreak(t *testing.T) {
	m, _ := newTestModel(testConfig())
	m.Update(keyMsg("enter"))
	playTrial(t, m, "a")

	if m.ctrl.State().Feedback != session.FeedbackCorrect {
		t.Fatal("expected correct feedback")
	}
	if m.diff.ConsecutiveCorrect != 1 {
		t.Fatalf("expected streak 1, got %d", m.diff.ConsecutiveCorrect)
	}
	if m.step != stepIdle {
		t.Fatalf("expected idle between trials, got step %d", m.step)
	}
}

func TestUnboundKeysIgnoredDuringQuestion(t *testing.T) {
	m, _ := newTestModel(testConfig())
	m.Update(keyMsg("enter"))
	m.Update(trialStartMsg{seq: m.seq})
	m.Update(frameMsg{seq: m.seq, idx: 1})

	m.Update(keyMsg("z"))
	if m.step != stepQuestion {
		t.Fatal("unbound key should not resolve the question")
	}
}

func TestFullSessionReachesResults(t *testing.T) {
	m, backend := newTestModel(testConfig())
	m.Update(keyMsg("enter"))

	playTrial(t, m, "a") // practice
	if m.ctrl.State().Phase != session.PhasePlaying {
		t.Fatalf("expected playing after practice quota, got %v", m.ctrl.State().Phase)
	}
	playTrial(t, m, "a")
	playTrial(t, m, "b")

	if m.ctrl.State().Phase != session.PhaseResults {
		t.Fatalf("expected results, got %v", m.ctrl.State().Phase)
	}
	if m.result == nil {
		t.Fatal("expected a session result")
	}
	if m.result.Accuracy != 50 {
		t.Fatalf("expected 50%% accuracy, got %d", m.result.Accuracy)
	}
	if !backend.ok {
		t.Fatal("expected progress saved to the backend")
	}
	if backend.appended != 1 {
		t.Fatalf("expected 1 audit row, got %d", backend.appended)
	}
	if gs := backend.data.Games[model.GameFlashMatch]; gs.SessionsCompleted != 1 {
		t.Fatalf("expected 1 completed session, got %d", gs.SessionsCompleted)
	}
}

func TestRestartClearsRun(t *testing.T) {
	m, _ := newTestModel(testConfig())
	m.Update(keyMsg("enter"))
	playTrial(t, m, "a")
	playTrial(t, m, "a")
	playTrial(t, m, "a")

	oldSeq := m.seq
	m.Update(keyMsg("r"))
	if m.ctrl.State().Phase != session.PhaseInstructions {
		t.Fatalf("expected instructions after restart, got %v", m.ctrl.State().Phase)
	}
	if m.seq == oldSeq {
		t.Fatal("restart should invalidate pending timers")
	}
	if m.result != nil {
		t.Fatal("restart should clear the previous result")
	}
	if m.diff.Level != 1 {
		t.Fatalf("restart should reset difficulty, got level %d", m.diff.Level)
	}
}

func TestStartLevelOption(t *testing.T) {
	backend := &memoryBackend{}
	store := progress.NewStore(backend)
	m := NewModel(&stubDriver{cfg: testConfig()}, store, WithStartLevel(5))
	if m.diff.Level != 5 {
		t.Fatalf("expected start level 5, got %d", m.diff.Level)
	}
	if m.peak != 5 {
		t.Fatalf("expected peak seeded at 5, got %d", m.peak)
	}
}

func TestMultiPickQuestion(t *testing.T) {
	backend := &memoryBackend{}
	store := progress.NewStore(backend)
	driver := &multiDriver{cfg: testConfig()}
	m := NewModel(driver, store)
	m.Update(keyMsg("enter"))
	m.Update(trialStartMsg{seq: m.seq})
	m.Update(frameMsg{seq: m.seq, idx: 1})

	m.Update(keyMsg("a"))
	if m.step != stepQuestion {
		t.Fatal("first pick should not resolve a two-pick question")
	}
	// Repeating a pick is ignored.
	m.Update(keyMsg("a"))
	if m.step != stepQuestion {
		t.Fatal("duplicate pick should not resolve the question")
	}
	m.Update(keyMsg("b"))
	if m.ctrl.State().Feedback != session.FeedbackCorrect {
		t.Fatal("expected both picks judged together")
	}
}

type multiDriver struct {
	cfg model.GameConfig
}

func (d *multiDriver) ID() model.GameID         { return model.GameDividedFocus }
func (d *multiDriver) Config() model.GameConfig { return d.cfg }
func (d *multiDriver) Instructions() []string   { return []string{"pick a and b"} }

func (d *multiDriver) NewTrial(diff model.DifficultyState, rnd *rand.Rand) games.Trial {
	return games.Trial{
		Frames: []games.Frame{{View: "stimulus", Duration: 10 * time.Millisecond}},
		Questions: []games.Question{{
			Prompt:  "pick two",
			Options: []games.Option{{Key: "a"}, {Key: "b"}, {Key: "c"}},
			Picks:   2,
		}},
		Evaluate: func(answers []string) bool {
			if len(answers) != 2 {
				return false
			}
			ok := map[string]bool{"a": true, "b": true}
			return ok[answers[0]] && ok[answers[1]] && answers[0] != answers[1]
		},
	}
}
