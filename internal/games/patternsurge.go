package games

import (
	"math/rand"
	"time"

	"github.com/davrk/sharpen/internal/model"
)

// PatternSurge shows a target symbol, plays a rapid sequence of symbols,
// and asks whether the target appeared in the stream.
type PatternSurge struct{}

var psSymbols = []string{
	"◆", "▲", "●", "■", "★", "⬡", "◇", "△", "○", "□", "⭐", "✦", "❖", "⬟", "♦", "♠",
}

// Floor for per-item display so long sequences stay perceivable even at
// the shortest adaptive display times.
const psMinItemMs = 80

func (g *PatternSurge) ID() model.GameID { return model.GamePatternSurge }

func (g *PatternSurge) Config() model.GameConfig {
	return model.GameConfigs[model.GamePatternSurge]
}

func (g *PatternSurge) Instructions() []string {
	return []string{
		"A target symbol is shown first. Then a rapid sequence of symbols",
		"flashes one at a time.",
		"",
		"When the sequence ends, answer whether the target appeared in",
		"it: y for yes, n for no.",
		"",
		"Sequences grow from 3 to 12 symbols and speed up as you improve.",
	}
}

// psSequenceLength follows the level ladder: 3, 5, 8, then creeping
// toward 12.
func psSequenceLength(level int) int {
	switch {
	case level <= 2:
		return 3
	case level <= 4:
		return 5
	case level <= 7:
		return 8
	default:
		return min(12, 8+(level-7)/2)
	}
}

func (g *PatternSurge) NewTrial(d model.DifficultyState, rnd *rand.Rand) Trial {
	seqLen := psSequenceLength(d.Level)
	targetPresent := rnd.Float64() < 0.6
	// Targets come from the first eight, more distinct, symbols.
	target := psSymbols[rnd.Intn(8)]

	nonTarget := make([]string, 0, len(psSymbols)-1)
	for _, s := range psSymbols {
		if s != target {
			nonTarget = append(nonTarget, s)
		}
	}
	sequence := make([]string, seqLen)
	for i := range sequence {
		sequence[i] = nonTarget[rnd.Intn(len(nonTarget))]
	}
	if targetPresent {
		sequence[rnd.Intn(seqLen)] = target
	}

	itemMs := d.DisplayTimeMs
	if itemMs < psMinItemMs {
		itemMs = psMinItemMs
	}

	frames := make([]Frame, 0, seqLen+1)
	frames = append(frames, Frame{
		View:     "TARGET\n\n   " + target + "\n\nremember this symbol",
		Duration: time.Second,
	})
	for _, s := range sequence {
		frames = append(frames, Frame{View: "\n\n   " + s + "\n\n", Duration: displayDuration(itemMs)})
	}

	return Trial{
		Frames: frames,
		Questions: []Question{{
			Prompt: "Did the target  " + target + "  appear in the sequence?",
			Options: []Option{
				{Key: "y", Label: "yes, I saw it"},
				{Key: "n", Label: "no, not there"},
			},
		}},
		Evaluate: func(answers []string) bool {
			if len(answers) != 1 {
				return false
			}
			return (answers[0] == "y") == targetPresent
		},
	}
}
