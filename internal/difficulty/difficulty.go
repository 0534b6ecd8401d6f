// Package difficulty implements the adaptive difficulty engine.
//
// The engine is a pair of pure transition functions over
// model.DifficultyState: three correct answers in a row promote one level,
// two wrong answers in a row demote one level. All parameter updates are hard
// clamps; there is no failure condition because every input is internally
// generated state.
package difficulty

import (
	"math"

	"github.com/davrk/sharpen/internal/model"
)

// Parameter bounds.
const (
	MinLevel         = 1
	MaxLevel         = 20
	MinDisplayTimeMs = 16
	MaxDisplayTimeMs = 500
	MaxDistractors   = 8
)

// Promotion and demotion run-length thresholds. Demotion triggers sooner than
// promotion so the controller recovers toward comfort faster than it tightens.
const (
	promoteStreak = 3
	demoteStreak  = 2
)

// Default returns the level-1 starting state.
func Default() model.DifficultyState {
	return model.DifficultyState{
		Level:           1,
		DisplayTimeMs:   500,
		DistractorCount: 0,
		TargetDistance:  0.3,
		SimilarityLevel: 0,
	}
}

// OnCorrect registers a correct answer. The third consecutive correct answer
// performs a level-up: exposure time shrinks by 13%, target eccentricity and
// distractor similarity step up by 0.05, and the distractor count grows by one
// on even levels only.
func OnCorrect(s model.DifficultyState) model.DifficultyState {
	streak := s.ConsecutiveCorrect + 1
	if streak < promoteStreak {
		s.ConsecutiveCorrect = streak
		s.ConsecutiveWrong = 0
		return s
	}

	level := min(s.Level+1, MaxLevel)
	extraDistractor := 0
	if level%2 == 0 {
		extraDistractor = 1
	}
	return model.DifficultyState{
		Level:           level,
		DisplayTimeMs:   max(MinDisplayTimeMs, int(math.Round(float64(s.DisplayTimeMs)*0.87))),
		DistractorCount: min(MaxDistractors, s.DistractorCount+extraDistractor),
		TargetDistance:  math.Min(1, s.TargetDistance+0.05),
		SimilarityLevel: math.Min(1, s.SimilarityLevel+0.05),
	}
}

// OnWrong registers a wrong answer. The second consecutive wrong answer
// performs a level-down, relaxing every parameter.
func OnWrong(s model.DifficultyState) model.DifficultyState {
	streak := s.ConsecutiveWrong + 1
	if streak < demoteStreak {
		s.ConsecutiveWrong = streak
		s.ConsecutiveCorrect = 0
		return s
	}

	return model.DifficultyState{
		Level:           max(s.Level-1, MinLevel),
		DisplayTimeMs:   min(MaxDisplayTimeMs, int(math.Round(float64(s.DisplayTimeMs)*1.2))),
		DistractorCount: max(0, s.DistractorCount-1),
		TargetDistance:  math.Max(0.2, s.TargetDistance-0.05),
		SimilarityLevel: math.Max(0, s.SimilarityLevel-0.05),
	}
}

// ForLevel reconstructs the state for a given starting level by replaying
// synthetic level-ups from the default state. The per-level formulas branch on
// level parity, so replay is used instead of a closed form: each step forces
// the counter to the promotion edge and applies exactly one level-up,
// producing the same state organic play would reach.
func ForLevel(level int) model.DifficultyState {
	s := Default()
	for i := MinLevel; i < level; i++ {
		s.ConsecutiveCorrect = promoteStreak - 1
		s = OnCorrect(s)
	}
	return s
}
