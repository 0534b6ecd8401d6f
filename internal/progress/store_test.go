package progress

import (
	"context"
	"testing"
	"time"

	"github.com/davrk/sharpen/internal/model"
)

type memoryBackend struct {
	data     model.UserData
	hasData  bool
	sessions []model.SessionResult
}

func (b *memoryBackend) Load(_ context.Context) (model.UserData, bool, error) {
	return b.data, b.hasData, nil
}

func (b *memoryBackend) Save(_ context.Context, data model.UserData) error {
	b.data = data
	b.hasData = true
	return nil
}

func (b *memoryBackend) AppendSession(_ context.Context, result model.SessionResult) error {
	b.sessions = append(b.sessions, result)
	return nil
}

func fixedClock(date string) func() time.Time {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func sessionFor(id model.GameID, accuracy, avgReaction, finalLevel, trials, durationSeconds int) model.SessionResult {
	trialList := make([]model.TrialResult, trials)
	for i := range trialList {
		trialList[i] = model.TrialResult{Correct: true, Difficulty: model.DifficultyState{Level: finalLevel}}
	}
	return model.SessionResult{
		GameID:            id,
		Trials:            trialList,
		Accuracy:          accuracy,
		AverageReactionMs: avgReaction,
		FinalLevel:        finalLevel,
		DurationSeconds:   durationSeconds,
	}
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	store := NewStore(&memoryBackend{}, WithClock(fixedClock("2026-03-14")))
	data, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if data.FirstUseDate != "2026-03-14" {
		t.Fatalf("expected first use date set to today, got %q", data.FirstUseDate)
	}
	if len(data.Games) != len(model.GameIDs) {
		t.Fatalf("expected %d game entries, got %d", len(model.GameIDs), len(data.Games))
	}
	for _, id := range model.GameIDs {
		if data.Games[id].HighestLevel != 1 {
			t.Fatalf("expected defaulted stats for %s", id)
		}
	}
}

func TestLoadForwardFillsMissingGames(t *testing.T) {
	backend := &memoryBackend{
		hasData: true,
		data: model.UserData{
			FirstUseDate: "2026-01-01",
			Games: map[model.GameID]model.GameStats{
				model.GameFlashMatch: {SessionsCompleted: 3, HighestLevel: 4},
			},
		},
	}
	store := NewStore(backend, WithClock(fixedClock("2026-03-14")))
	data, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(data.Games) != len(model.GameIDs) {
		t.Fatalf("expected forward-filled games map, got %d entries", len(data.Games))
	}
	if data.Games[model.GameFlashMatch].SessionsCompleted != 3 {
		t.Fatalf("existing entry must be preserved")
	}
}

func TestRecordSessionUpdatesGameStats(t *testing.T) {
	backend := &memoryBackend{}
	store := NewStore(backend, WithClock(fixedClock("2026-03-14")))

	data, err := store.RecordSession(context.Background(), sessionFor(model.GameFlashMatch, 85, 420, 5, 20, 180))
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	gs := data.Games[model.GameFlashMatch]
	if gs.SessionsCompleted != 1 {
		t.Fatalf("expected 1 session, got %d", gs.SessionsCompleted)
	}
	if gs.TotalTrials != 20 {
		t.Fatalf("expected 20 trials, got %d", gs.TotalTrials)
	}
	if gs.HighestLevel != 5 {
		t.Fatalf("expected highest level 5, got %d", gs.HighestLevel)
	}
	if gs.BestScore != 580 {
		t.Fatalf("expected best score 580, got %d", gs.BestScore)
	}
	if len(gs.RecentScores) != 1 || gs.RecentScores[0] != 580 {
		t.Fatalf("unexpected recent scores %v", gs.RecentScores)
	}
	if len(gs.AccuracyHistory) != 1 || gs.AccuracyHistory[0] != 85 {
		t.Fatalf("unexpected accuracy history %v", gs.AccuracyHistory)
	}
	if data.TotalTrainingMinutes != 3 {
		t.Fatalf("expected 3 training minutes, got %d", data.TotalTrainingMinutes)
	}
	if data.LastPlayDate != "2026-03-14" {
		t.Fatalf("expected last play date today, got %q", data.LastPlayDate)
	}
	if data.DailyStreak != 1 {
		t.Fatalf("expected streak 1 on first play, got %d", data.DailyStreak)
	}
	if len(backend.sessions) != 1 {
		t.Fatalf("expected session appended to audit log")
	}
}

func TestRecordSessionHistoriesBounded(t *testing.T) {
	backend := &memoryBackend{}
	store := NewStore(backend, WithClock(fixedClock("2026-03-14")))
	for i := 0; i < historyLimit+5; i++ {
		if _, err := store.RecordSession(context.Background(), sessionFor(model.GamePatternSurge, 80, 400+i, 3, 5, 60)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	gs := backend.data.Games[model.GamePatternSurge]
	if len(gs.RecentScores) != historyLimit {
		t.Fatalf("expected %d recent scores, got %d", historyLimit, len(gs.RecentScores))
	}
	if len(gs.AccuracyHistory) != historyLimit {
		t.Fatalf("expected %d accuracy entries, got %d", historyLimit, len(gs.AccuracyHistory))
	}
	// The newest entry survives trimming.
	if gs.RecentScores[historyLimit-1] != 1000-(400+historyLimit+4) {
		t.Fatalf("unexpected newest score %d", gs.RecentScores[historyLimit-1])
	}
}

func TestMonotonicFields(t *testing.T) {
	backend := &memoryBackend{}
	store := NewStore(backend, WithClock(fixedClock("2026-03-14")))
	if _, err := store.RecordSession(context.Background(), sessionFor(model.GameFlashMatch, 90, 300, 8, 20, 120)); err != nil {
		t.Fatalf("record: %v", err)
	}
	data, err := store.RecordSession(context.Background(), sessionFor(model.GameFlashMatch, 50, 900, 2, 20, 120))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	gs := data.Games[model.GameFlashMatch]
	if gs.HighestLevel != 8 {
		t.Fatalf("highest level must never decrease, got %d", gs.HighestLevel)
	}
	if gs.BestScore != 700 {
		t.Fatalf("best score must never decrease, got %d", gs.BestScore)
	}
	if gs.TotalTrials != 40 {
		t.Fatalf("expected 40 total trials, got %d", gs.TotalTrials)
	}
}

func TestStreakTransitions(t *testing.T) {
	cases := []struct {
		name         string
		lastPlayDate string
		streak       int
		want         int
	}{
		{"first play", "", 0, 1},
		{"consecutive day", "2026-03-13", 4, 5},
		{"same day", "2026-03-14", 4, 4},
		{"two day gap", "2026-03-12", 4, 1},
		{"long gap", "2026-01-01", 9, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := model.DefaultUserData("2026-01-01")
			data.LastPlayDate = tc.lastPlayDate
			data.DailyStreak = tc.streak
			backend := &memoryBackend{data: data, hasData: true}
			store := NewStore(backend, WithClock(fixedClock("2026-03-14")))
			got, err := store.RecordSession(context.Background(), sessionFor(model.GameDividedFocus, 80, 500, 2, 10, 60))
			if err != nil {
				t.Fatalf("record: %v", err)
			}
			if got.DailyStreak != tc.want {
				t.Fatalf("expected streak %d, got %d", tc.want, got.DailyStreak)
			}
		})
	}
}

func TestBoosterDueDatesSetOnceAtThreshold(t *testing.T) {
	data := model.DefaultUserData("2025-01-01")
	gs := data.Games[model.GameFlashMatch]
	gs.SessionsCompleted = 9
	data.Games[model.GameFlashMatch] = gs
	backend := &memoryBackend{data: data, hasData: true}
	store := NewStore(backend, WithClock(fixedClock("2026-03-14")))

	got, err := store.RecordSession(context.Background(), sessionFor(model.GamePatternSurge, 80, 500, 2, 10, 60))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !got.BoosterStatus.InitialComplete {
		t.Fatalf("expected initial training complete at 10 sessions")
	}
	if got.BoosterStatus.InitialSessionCount != 10 {
		t.Fatalf("expected session count 10, got %d", got.BoosterStatus.InitialSessionCount)
	}
	if got.BoosterStatus.Booster1DueDate != "2025-12-01" {
		t.Fatalf("expected booster 1 due 2025-12-01, got %q", got.BoosterStatus.Booster1DueDate)
	}
	if got.BoosterStatus.Booster2DueDate != "2027-12-01" {
		t.Fatalf("expected booster 2 due 2027-12-01, got %q", got.BoosterStatus.Booster2DueDate)
	}

	// Due dates never move once set.
	for i := 0; i < 5; i++ {
		got, err = store.RecordSession(context.Background(), sessionFor(model.GameFlashMatch, 80, 500, 2, 10, 60))
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if got.BoosterStatus.Booster1DueDate != "2025-12-01" || got.BoosterStatus.Booster2DueDate != "2027-12-01" {
		t.Fatalf("booster due dates must remain fixed: %+v", got.BoosterStatus)
	}
	if got.BoosterStatus.InitialSessionCount != 15 {
		t.Fatalf("expected session count 15, got %d", got.BoosterStatus.InitialSessionCount)
	}
}

func TestBrainSpeedScore(t *testing.T) {
	data := model.DefaultUserData("2026-01-01")
	flash := data.Games[model.GameFlashMatch]
	flash.RecentScores = []int{600, 700}
	data.Games[model.GameFlashMatch] = flash
	surge := data.Games[model.GamePatternSurge]
	surge.RecentScores = []int{500}
	data.Games[model.GamePatternSurge] = surge

	// (650 + 500) / 2 = 575 -> 58.
	if got := BrainSpeedScore(data); got != 58 {
		t.Fatalf("expected brain speed 58, got %d", got)
	}
}

func TestBrainSpeedScoreClampsAndEmpty(t *testing.T) {
	data := model.DefaultUserData("2026-01-01")
	if got := BrainSpeedScore(data); got != 0 {
		t.Fatalf("expected 0 with no scores, got %d", got)
	}
	gs := data.Games[model.GameFlashMatch]
	gs.RecentScores = []int{5000}
	data.Games[model.GameFlashMatch] = gs
	if got := BrainSpeedScore(data); got != 100 {
		t.Fatalf("expected clamp to 100, got %d", got)
	}
	gs.RecentScores = []int{-900}
	data.Games[model.GameFlashMatch] = gs
	if got := BrainSpeedScore(data); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
}

func TestWeeklySessionCount(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	data := model.DefaultUserData("2026-01-01")
	if got := WeeklySessionCount(data, now); got != 0 {
		t.Fatalf("expected 0 before any play, got %d", got)
	}
	gs := data.Games[model.GameFlashMatch]
	gs.SessionsCompleted = 12
	data.Games[model.GameFlashMatch] = gs
	data.LastPlayDate = "2026-03-10"
	if got := WeeklySessionCount(data, now); got != 7 {
		t.Fatalf("expected cap at 7, got %d", got)
	}
	data.LastPlayDate = "2026-03-01"
	if got := WeeklySessionCount(data, now); got != 0 {
		t.Fatalf("expected 0 after a week of inactivity, got %d", got)
	}
}
