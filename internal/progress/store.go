// Package progress owns the persisted user aggregate: per-game history,
// streaks, training minutes, and the booster schedule.
package progress

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/davrk/sharpen/internal/model"
	"github.com/davrk/sharpen/internal/stats"
)

// Bounded history length for recent scores and accuracy.
const historyLimit = 20

// Sessions required to complete the initial training block.
const initialSessionTarget = 10

// Backend stores the serialized user aggregate and the session audit log.
// Load reports ok=false for missing or malformed data; the store then falls
// back to a defaulted aggregate, never an error.
type Backend interface {
	Load(ctx context.Context) (model.UserData, bool, error)
	Save(ctx context.Context, data model.UserData) error
	AppendSession(ctx context.Context, result model.SessionResult) error
}

// Store is the single authoritative mutator of UserData.
type Store struct {
	backend Backend
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock injects a time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore wraps a backend.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{backend: backend, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the current aggregate, substituting a defaulted instance for
// missing or corrupt data and forward-filling any game added since the data
// was written.
func (s *Store) Load(ctx context.Context) (model.UserData, error) {
	data, ok, err := s.backend.Load(ctx)
	if err != nil {
		return model.UserData{}, fmt.Errorf("failed to load user data: %w", err)
	}
	if !ok {
		return model.DefaultUserData(s.today()), nil
	}
	return normalize(data, s.today()), nil
}

// RecordSession commits one completed scored session: game stats, streak,
// training minutes, and the booster schedule, then persists the snapshot.
func (s *Store) RecordSession(ctx context.Context, result model.SessionResult) (model.UserData, error) {
	data, err := s.Load(ctx)
	if err != nil {
		return model.UserData{}, err
	}

	gs := data.Games[result.GameID]
	gs.SessionsCompleted++
	gs.TotalTrials += len(result.Trials)
	gs.HighestLevel = max(gs.HighestLevel, result.FinalLevel)

	// Score is the inverse of average reaction time; very slow averages go
	// negative and are deliberately not clamped.
	score := 1000 - result.AverageReactionMs
	gs.BestScore = max(gs.BestScore, score)
	gs.RecentScores = appendBounded(gs.RecentScores, score)
	gs.AccuracyHistory = appendBounded(gs.AccuracyHistory, result.Accuracy)
	data.Games[result.GameID] = gs

	today := s.today()
	switch {
	case data.LastPlayDate == "":
		data.DailyStreak = 1
	case data.LastPlayDate != today:
		if daysBetween(data.LastPlayDate, today) == 1 {
			data.DailyStreak++
		} else {
			data.DailyStreak = 1
		}
	}
	data.LastPlayDate = today
	data.TotalTrainingMinutes += int(math.Round(float64(result.DurationSeconds) / 60))

	total := TotalSessions(data)
	if total >= initialSessionTarget && !data.BoosterStatus.InitialComplete {
		data.BoosterStatus.InitialComplete = true
		if first, err := time.Parse(stats.DateLayout, data.FirstUseDate); err == nil {
			data.BoosterStatus.Booster1DueDate = first.AddDate(0, 11, 0).Format(stats.DateLayout)
			data.BoosterStatus.Booster2DueDate = first.AddDate(0, 35, 0).Format(stats.DateLayout)
		}
	}
	data.BoosterStatus.InitialSessionCount = total

	if err := s.backend.AppendSession(ctx, result); err != nil {
		return model.UserData{}, fmt.Errorf("failed to append session: %w", err)
	}
	if err := s.backend.Save(ctx, data); err != nil {
		return model.UserData{}, fmt.Errorf("failed to save user data: %w", err)
	}
	return data, nil
}

// Replace persists an externally produced aggregate (the sync merge result)
// as the new canonical snapshot.
func (s *Store) Replace(ctx context.Context, data model.UserData) (model.UserData, error) {
	data = normalize(data, s.today())
	if err := s.backend.Save(ctx, data); err != nil {
		return model.UserData{}, fmt.Errorf("failed to save user data: %w", err)
	}
	return data, nil
}

func (s *Store) today() string {
	return s.now().Format(stats.DateLayout)
}

// BrainSpeedScore maps the cross-game recent-score average to a 0-100
// headline metric. Games never played are excluded, not treated as zero.
func BrainSpeedScore(data model.UserData) int {
	var sum float64
	var count int
	for _, gs := range data.Games {
		if len(gs.RecentScores) == 0 {
			continue
		}
		total := 0
		for _, score := range gs.RecentScores {
			total += score
		}
		sum += float64(total) / float64(len(gs.RecentScores))
		count++
	}
	if count == 0 {
		return 0
	}
	avg := sum / float64(count)
	score := int(math.Round(avg / 10))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// TotalSessions sums completed sessions across all games.
func TotalSessions(data model.UserData) int {
	total := 0
	for _, gs := range data.Games {
		total += gs.SessionsCompleted
	}
	return total
}

// WeeklySessionCount approximates this week's session count from the last
// play date. Per-day granularity is not tracked, so the total is capped at
// one session per day of the week.
func WeeklySessionCount(data model.UserData, now time.Time) int {
	if data.LastPlayDate == "" {
		return 0
	}
	if daysBetween(data.LastPlayDate, now.Format(stats.DateLayout)) > 7 {
		return 0
	}
	return min(TotalSessions(data), 7)
}

func appendBounded(history []int, value int) []int {
	out := append(append([]int(nil), history...), value)
	if len(out) > historyLimit {
		out = out[len(out)-historyLimit:]
	}
	return out
}

func daysBetween(from, to string) int {
	fromDate, err := time.Parse(stats.DateLayout, from)
	if err != nil {
		return 0
	}
	toDate, err := time.Parse(stats.DateLayout, to)
	if err != nil {
		return 0
	}
	return int(toDate.Sub(fromDate).Hours() / 24)
}

// normalize forward-fills the games mapping so every known game id is
// present, supporting additive schema evolution.
func normalize(data model.UserData, today string) model.UserData {
	if data.Games == nil {
		data.Games = make(map[model.GameID]model.GameStats, len(model.GameIDs))
	}
	for _, id := range model.GameIDs {
		if _, ok := data.Games[id]; !ok {
			data.Games[id] = model.DefaultGameStats()
		}
	}
	if data.FirstUseDate == "" {
		data.FirstUseDate = today
	}
	return data
}
