package games

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/davrk/sharpen/internal/model"
)

// FlashMatch reveals a grid of symbol cards for a moment, flips them face
// down, and asks which card held the target symbol.
type FlashMatch struct{}

var fmSymbols = []string{
	"♠", "♥", "♦", "♣", "★", "◆", "▲", "●", "■", "⬟", "☀", "♪", "⚡", "✿", "❖", "⬡",
	"◇", "△", "○", "□", "⭐", "♫", "⚙", "✦", "❤",
}

var fmCardKeys = []string{
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
	"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y",
}

func (g *FlashMatch) ID() model.GameID { return model.GameFlashMatch }

func (g *FlashMatch) Config() model.GameConfig {
	return model.GameConfigs[model.GameFlashMatch]
}

func (g *FlashMatch) Instructions() []string {
	return []string{
		"A grid of cards flashes face up, each showing a different symbol.",
		"When the cards flip face down, a target symbol is revealed.",
		"",
		"Answer with the letter of the card that showed the target.",
		"",
		"The grid grows from 3x3 to 5x5 and the flash shortens as you",
		"improve.",
	}
}

// fmGridSize follows the level ladder: 3x3 through level 3, 4x4 through
// level 7, then 5x5.
func fmGridSize(level int) int {
	switch {
	case level <= 3:
		return 3
	case level <= 7:
		return 4
	default:
		return 5
	}
}

func (g *FlashMatch) NewTrial(d model.DifficultyState, rnd *rand.Rand) Trial {
	size := fmGridSize(d.Level)
	total := size * size

	cards := append([]string(nil), fmSymbols...)
	rnd.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	cards = cards[:total]
	targetIndex := rnd.Intn(total)

	// Grid scanning needs slightly longer than a single glyph flash.
	show := displayDuration(d.DisplayTimeMs) + 200*time.Millisecond

	want := fmCardKeys[targetIndex]
	return Trial{
		Frames: []Frame{{View: fmBoard(cards, size, -1), Duration: show}},
		Questions: []Question{{
			Prompt:  fmt.Sprintf("Which card showed  %s ?", cards[targetIndex]),
			View:    fmBoard(nil, size, total),
			Options: fmOptions(total),
		}},
		Evaluate: func(answers []string) bool {
			return len(answers) == 1 && answers[0] == want
		},
	}
}

// fmBoard renders the card grid. With cards nil it renders the face-down
// board labeled with answer keys for the first labeled cells.
func fmBoard(cards []string, size, labeled int) string {
	var b strings.Builder
	for row := 0; row < size; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < size; col++ {
			idx := row*size + col
			if col > 0 {
				b.WriteString("  ")
			}
			switch {
			case cards != nil:
				b.WriteString("[" + cards[idx] + "]")
			case idx < labeled:
				b.WriteString("[" + fmCardKeys[idx] + "]")
			default:
				b.WriteString("[?]")
			}
		}
	}
	return b.String()
}

func fmOptions(total int) []Option {
	opts := make([]Option, total)
	for i := range opts {
		opts[i] = Option{Key: fmCardKeys[i], Label: "card " + fmCardKeys[i]}
	}
	return opts
}
