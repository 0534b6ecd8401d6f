package games

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/davrk/sharpen/internal/model"
)

// DoubleDecision flashes a vehicle glyph at screen center with a star
// somewhere on a ring of eight slots, then asks for both: which vehicle,
// and where the star was. At level 1 only the center question is asked.
type DoubleDecision struct{}

var ddVehicles = []struct {
	Name  string
	Glyph string
}{
	{"car", "▣"},
	{"truck", "⬒"},
	{"bus", "▤"},
	{"van", "◧"},
}

var ddDistractors = []string{"◆", "●", "▲", "■", "✦", "✧", "⬟", "⬠"}

const ddTarget = "★"
const ddSlots = 8

func (g *DoubleDecision) ID() model.GameID { return model.GameDoubleDecision }

func (g *DoubleDecision) Config() model.GameConfig {
	return model.GameConfigs[model.GameDoubleDecision]
}

func (g *DoubleDecision) Instructions() []string {
	return []string{
		"Two reference vehicles are shown. A brief flash displays one of",
		"them at screen center and a star (★) somewhere on the outer ring.",
		"",
		"After the flash, answer two questions: which vehicle was shown,",
		"and which ring position held the star. At level 1 there is no",
		"star, only the center vehicle.",
		"",
		"Display time adapts to your performance.",
	}
}

func (g *DoubleDecision) NewTrial(d model.DifficultyState, rnd *rand.Rand) Trial {
	// Two reference vehicles, one of which appears at center.
	pair := pickSlots([]int{0, 1, 2, 3}, 2, rnd)
	correctCenter := rnd.Intn(2)

	targetSlot := rnd.Intn(ddSlots)
	available := make([]int, 0, ddSlots-1)
	for i := 0; i < ddSlots; i++ {
		if i != targetSlot {
			available = append(available, i)
		}
	}
	distractors := pickSlots(available, d.DistractorCount, rnd)

	withStar := d.Level > 1
	radius := ringRadius(d.TargetDistance)

	stim := newCanvas(4*radius+9, 2*radius+3)
	cx, cy := stim.width/2, stim.height/2
	stim.drawCentered(cx, cy, ddVehicles[pair[correctCenter]].Glyph)
	if withStar {
		x, y := radialSlot(targetSlot, ddSlots, cx, cy, radius)
		stim.drawCentered(x, y, ddTarget)
		for _, slot := range distractors {
			x, y := radialSlot(slot, ddSlots, cx, cy, radius)
			stim.drawCentered(x, y, ddDistractors[slot%len(ddDistractors)])
		}
	}

	centerQ := Question{
		Prompt: "Which vehicle was shown at the center?",
		Options: []Option{
			{Key: "1", Label: fmt.Sprintf("%s %s", ddVehicles[pair[0]].Glyph, ddVehicles[pair[0]].Name)},
			{Key: "2", Label: fmt.Sprintf("%s %s", ddVehicles[pair[1]].Glyph, ddVehicles[pair[1]].Name)},
		},
	}

	questions := []Question{centerQ}
	if withStar {
		questions = append(questions, Question{
			Prompt:  "Where did the star appear?",
			View:    ringBoard(radius),
			Options: slotOptions(ddSlots),
		})
	}

	wantCenter := strconv.Itoa(correctCenter + 1)
	wantSlot := strconv.Itoa(targetSlot + 1)
	return Trial{
		Frames:    []Frame{{View: stim.String(), Duration: displayDuration(d.DisplayTimeMs)}},
		Questions: questions,
		Evaluate: func(answers []string) bool {
			if len(answers) < 1 || answers[0] != wantCenter {
				return false
			}
			if !withStar {
				return true
			}
			return len(answers) == 2 && answers[1] == wantSlot
		},
	}
}

// ringRadius maps the normalized target distance onto canvas rows.
func ringRadius(distance float64) int {
	r := 3 + int(distance*6)
	if r > 8 {
		r = 8
	}
	return r
}

// ringBoard renders the numbered ring used for position answers.
func ringBoard(radius int) string {
	c := newCanvas(4*radius+9, 2*radius+3)
	cx, cy := c.width/2, c.height/2
	c.drawCentered(cx, cy, "+")
	for slot := 0; slot < ddSlots; slot++ {
		x, y := radialSlot(slot, ddSlots, cx, cy, radius)
		c.drawCentered(x, y, strconv.Itoa(slot+1))
	}
	return c.String()
}

func slotOptions(count int) []Option {
	opts := make([]Option, count)
	for i := range opts {
		key := strconv.Itoa(i + 1)
		opts[i] = Option{Key: key, Label: "position " + key}
	}
	return opts
}
