package games

import (
	"math/rand"
	"strconv"

	"github.com/davrk/sharpen/internal/model"
)

// PeripheralPulse flashes a bright dot on one of eight ring slots, with
// dim distractor dots at higher levels, then asks where the bright dot
// appeared.
type PeripheralPulse struct{}

const (
	ppSlots      = 8
	ppTargetDot  = "●"
	ppDistractor = "·"
)

func (g *PeripheralPulse) ID() model.GameID { return model.GamePeripheralPulse }

func (g *PeripheralPulse) Config() model.GameConfig {
	return model.GameConfigs[model.GamePeripheralPulse]
}

func (g *PeripheralPulse) Instructions() []string {
	return []string{
		"Keep your eyes on the center crosshair. A bright dot (●) flashes",
		"briefly on one of eight ring positions; dim dots may flash",
		"elsewhere to distract you.",
		"",
		"After the flash, answer with the position of the bright dot.",
		"",
		"The ring widens and the flash shortens as you improve. This",
		"trains your useful field of view.",
	}
}

func (g *PeripheralPulse) NewTrial(d model.DifficultyState, rnd *rand.Rand) Trial {
	targetSlot := rnd.Intn(ppSlots)
	available := make([]int, 0, ppSlots-1)
	for i := 0; i < ppSlots; i++ {
		if i != targetSlot {
			available = append(available, i)
		}
	}
	distractors := pickSlots(available, d.DistractorCount, rnd)

	radius := ringRadius(d.TargetDistance)
	stim := newCanvas(4*radius+9, 2*radius+3)
	cx, cy := stim.width/2, stim.height/2
	stim.drawCentered(cx, cy, "+")
	x, y := radialSlot(targetSlot, ppSlots, cx, cy, radius)
	stim.drawCentered(x, y, ppTargetDot)
	for _, slot := range distractors {
		x, y := radialSlot(slot, ppSlots, cx, cy, radius)
		stim.drawCentered(x, y, ppDistractor)
	}

	want := strconv.Itoa(targetSlot + 1)
	return Trial{
		Frames: []Frame{{View: stim.String(), Duration: displayDuration(d.DisplayTimeMs)}},
		Questions: []Question{{
			Prompt:  "Where did the bright dot flash?",
			View:    ringBoard(radius),
			Options: slotOptions(ppSlots),
		}},
		Evaluate: func(answers []string) bool {
			return len(answers) == 1 && answers[0] == want
		},
	}
}
