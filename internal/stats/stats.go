// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"time"

	"github.com/davrk/sharpen/internal/model"
)

// DateLayout is the ISO date format used across persisted data.
const DateLayout = "2006-01-02"

// Summarize reduces a finished scored trial sequence into a SessionResult.
// Reaction-time statistics are computed only over correct trials with a
// positive reaction time; games without a timed response stage record zero
// and are excluded.
func Summarize(gameID model.GameID, trials []model.TrialResult, durationSeconds int, now time.Time) model.SessionResult {
	correctCount := 0
	var reactionTimes []int
	for _, trial := range trials {
		if !trial.Correct {
			continue
		}
		correctCount++
		if trial.ReactionTimeMs > 0 {
			reactionTimes = append(reactionTimes, trial.ReactionTimeMs)
		}
	}

	accuracy := 0
	if len(trials) > 0 {
		accuracy = int(math.Round(float64(correctCount) / float64(len(trials)) * 100))
	}

	averageReaction := 0
	bestReaction := 0
	if len(reactionTimes) > 0 {
		sum := 0
		bestReaction = reactionTimes[0]
		for _, rt := range reactionTimes {
			sum += rt
			if rt < bestReaction {
				bestReaction = rt
			}
		}
		averageReaction = int(math.Round(float64(sum) / float64(len(reactionTimes))))
	}

	// Final level reflects where the controller left off, not the session peak.
	finalLevel := 1
	if len(trials) > 0 {
		finalLevel = trials[len(trials)-1].Difficulty.Level
	}

	return model.SessionResult{
		GameID:            gameID,
		Date:              now.Format(DateLayout),
		Trials:            trials,
		Accuracy:          accuracy,
		AverageReactionMs: averageReaction,
		BestReactionMs:    bestReaction,
		FinalLevel:        finalLevel,
		DurationSeconds:   durationSeconds,
	}
}
