// Package games implements the five training exercises. Each driver turns
// a difficulty state into a self-contained trial: timed display frames
// followed by one or more questions.
package games

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/davrk/sharpen/internal/model"
)

// Frame is one timed screen of a trial's stimulus phase.
type Frame struct {
	View     string
	Duration time.Duration
}

// Option is one selectable answer, bound to a key press.
type Option struct {
	Key   string
	Label string
}

// Question is one response stage. View, when set, is a board rendered
// alongside the prompt (e.g. the face-down card grid). Picks is the number
// of selections required; zero means one.
type Question struct {
	Prompt  string
	View    string
	Options []Option
	Picks   int
}

// Trial is a fully generated round: frames play in order, then questions
// are asked in order, then Evaluate judges the collected answers.
type Trial struct {
	Frames    []Frame
	Questions []Question
	Evaluate  func(answers []string) bool
}

// Driver generates trials for one game.
type Driver interface {
	ID() model.GameID
	Config() model.GameConfig
	Instructions() []string
	NewTrial(d model.DifficultyState, rnd *rand.Rand) Trial
}

// ForID returns the driver for a game.
func ForID(id model.GameID) (Driver, error) {
	for _, d := range All() {
		if d.ID() == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("unknown game %q", id)
}

// All returns the drivers in dashboard order.
func All() []Driver {
	return []Driver{
		&DoubleDecision{},
		&PeripheralPulse{},
		&FlashMatch{},
		&PatternSurge{},
		&DividedFocus{},
	}
}

func (q Question) picks() int {
	if q.Picks < 1 {
		return 1
	}
	return q.Picks
}

// PicksRequired reports how many selections the question needs.
func (q Question) PicksRequired() int { return q.picks() }

// OptionByKey finds the option bound to a key, if any.
func (q Question) OptionByKey(key string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.Key == key {
			return opt, true
		}
	}
	return Option{}, false
}

// displayDuration converts a difficulty display time to a frame duration.
func displayDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
