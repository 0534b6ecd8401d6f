package stats

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"golang.org/x/term"

	"github.com/davrk/sharpen/internal/model"
)

func trial(correct bool, reactionMs, level int) model.TrialResult {
	return model.TrialResult{
		Correct:        correct,
		ReactionTimeMs: reactionMs,
		Difficulty:     model.DifficultyState{Level: level},
	}
}

func TestSummarizeMixedSession(t *testing.T) {
	trials := []model.TrialResult{
		trial(true, 300, 1),
		trial(true, 400, 1),
		trial(false, 0, 2),
		trial(true, 500, 2),
		trial(true, 350, 3),
	}
	// 4 of 5 correct, wrong trial's zero reaction excluded anyway.
	got := Summarize(model.GamePatternSurge, trials, 90, time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	if got.Accuracy != 80 {
		t.Fatalf("expected accuracy 80, got %d", got.Accuracy)
	}
	if got.AverageReactionMs != 388 {
		t.Fatalf("expected average reaction 388, got %d", got.AverageReactionMs)
	}
	if got.BestReactionMs != 300 {
		t.Fatalf("expected best reaction 300, got %d", got.BestReactionMs)
	}
	if got.FinalLevel != 3 {
		t.Fatalf("expected final level 3, got %d", got.FinalLevel)
	}
	if got.Date != "2026-03-14" {
		t.Fatalf("unexpected date %q", got.Date)
	}
	if got.DurationSeconds != 90 {
		t.Fatalf("unexpected duration %d", got.DurationSeconds)
	}
}

func TestSummarizeThreeOfFive(t *testing.T) {
	trials := []model.TrialResult{
		trial(true, 300, 1),
		trial(true, 400, 1),
		trial(false, 0, 1),
		trial(false, 500, 1),
		trial(true, 350, 1),
	}
	got := Summarize(model.GameFlashMatch, trials, 60, time.Now())
	if got.Accuracy != 60 {
		t.Fatalf("expected accuracy 60, got %d", got.Accuracy)
	}
	if got.AverageReactionMs != 350 {
		t.Fatalf("expected average reaction 350, got %d", got.AverageReactionMs)
	}
	if got.BestReactionMs != 300 {
		t.Fatalf("expected best reaction 300, got %d", got.BestReactionMs)
	}
}

func TestSummarizeEmptyTrials(t *testing.T) {
	got := Summarize(model.GameFlashMatch, nil, 0, time.Now())
	if got.Accuracy != 0 || got.AverageReactionMs != 0 || got.BestReactionMs != 0 {
		t.Fatalf("expected zero stats for empty session: %+v", got)
	}
	if got.FinalLevel != 1 {
		t.Fatalf("expected final level 1 for empty session, got %d", got.FinalLevel)
	}
}

func TestSummarizeNoTimedResponses(t *testing.T) {
	trials := []model.TrialResult{
		trial(true, 0, 1),
		trial(true, 0, 1),
	}
	got := Summarize(model.GameDividedFocus, trials, 30, time.Now())
	if got.Accuracy != 100 {
		t.Fatalf("expected accuracy 100, got %d", got.Accuracy)
	}
	if got.AverageReactionMs != 0 || got.BestReactionMs != 0 {
		t.Fatalf("expected zero reaction stats without timed responses: %+v", got)
	}
}

func TestFormatMs(t *testing.T) {
	cases := []struct {
		ms   int
		want string
	}{
		{350, "350ms"},
		{999, "999ms"},
		{1000, "1.0s"},
		{1550, "1.6s"},
	}
	for _, tc := range cases {
		if got := FormatMs(tc.ms); got != tc.want {
			t.Fatalf("FormatMs(%d) = %q, want %q", tc.ms, got, tc.want)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{45, "45m"},
		{60, "1h"},
		{75, "1h 15m"},
		{120, "2h"},
	}
	for _, tc := range cases {
		if got := FormatMinutes(tc.minutes); got != tc.want {
			t.Fatalf("FormatMinutes(%d) = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}

func TestMovingAverage(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		window int
		want   []float64
	}{
		{"empty", nil, 3, []float64{}},
		{"window one copies", []float64{4, 8}, 1, []float64{4, 8}},
		{"rolling", []float64{100, 50, 0, 100}, 2, []float64{100, 75, 25, 50}},
		{"expands before window fills", []float64{30, 60, 90}, 3, []float64{30, 45, 60}},
	}
	for _, tc := range cases {
		got := MovingAverage(tc.values, tc.window)
		if len(got) != len(tc.values) {
			t.Fatalf("%s: length %d, want %d", tc.name, len(got), len(tc.values))
		}
		if len(tc.values) > 0 && !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestGameTableSparklineSmoothed(t *testing.T) {
	data := model.DefaultUserData("2026-01-01")
	history := []int{0, 100, 0, 100, 0, 100}
	gs := data.Games[model.GameFlashMatch]
	gs.AccuracyHistory = history
	data.Games[model.GameFlashMatch] = gs

	var buf strings.Builder
	if err := RenderGameTable(&buf, data); err != nil {
		t.Fatalf("RenderGameTable: %v", err)
	}
	out := buf.String()

	raw := Sparkline(intsToFloats(history))
	smoothed := Sparkline(MovingAverage(intsToFloats(history), sparkWindow))
	if raw == smoothed {
		t.Fatalf("test history should smooth to a different sparkline")
	}
	if !strings.Contains(out, smoothed) {
		t.Fatalf("expected smoothed sparkline %q in output:\n%s", smoothed, out)
	}
	if strings.Contains(out, raw) {
		t.Fatalf("raw sparkline %q should not appear in output:\n%s", raw, out)
	}
}

func TestTerminalWidthFallback(t *testing.T) {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		t.Skip("stdout is a terminal")
	}
	if got := TerminalWidth(66); got != 66 {
		t.Fatalf("TerminalWidth(66) = %d, want fallback", got)
	}
}

func TestBoosterLinesInitialProgress(t *testing.T) {
	data := model.DefaultUserData("2026-01-01")
	gs := data.Games[model.GameFlashMatch]
	gs.SessionsCompleted = 4
	data.Games[model.GameFlashMatch] = gs

	lines := BoosterLines(data, "2026-02-01")
	if len(lines) != 1 {
		t.Fatalf("expected one reminder line, got %v", lines)
	}
	if lines[0] != "Initial training: 6 more sessions to complete the block (4/10)." {
		t.Fatalf("unexpected line: %q", lines[0])
	}
}

func TestBoosterLinesDueDates(t *testing.T) {
	data := model.DefaultUserData("2025-01-01")
	data.BoosterStatus = model.BoosterStatus{
		InitialComplete: true,
		Booster1DueDate: "2025-12-01",
		Booster2DueDate: "2027-12-01",
	}

	if lines := BoosterLines(data, "2025-11-30"); lines != nil {
		t.Fatalf("expected no reminder before due date, got %v", lines)
	}
	if lines := BoosterLines(data, "2025-12-01"); len(lines) != 1 {
		t.Fatalf("expected booster 1 reminder on due date, got %v", lines)
	}

	// Booster 2 stays hidden until booster 1 is done.
	if lines := BoosterLines(data, "2027-12-15"); len(lines) != 1 {
		t.Fatalf("expected booster 1 reminder to take precedence, got %v", lines)
	}
	data.BoosterStatus.Booster1Complete = true
	lines := BoosterLines(data, "2027-12-15")
	if len(lines) != 1 {
		t.Fatalf("expected booster 2 reminder, got %v", lines)
	}
}
