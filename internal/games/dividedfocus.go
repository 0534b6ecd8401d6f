package games

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/davrk/sharpen/internal/model"
)

// DividedFocus highlights a few target balls, lets all balls wander the
// arena as identical dots, and asks for the original targets when they
// stop. A lightning bolt blinks at the arena center during tracking to
// split attention; the bolt is cosmetic and never affects scoring.
type DividedFocus struct{}

const (
	dfArenaW = 56
	dfArenaH = 16
	dfTickMs = 150
	dfTarget = "◉"
	dfBall   = "●"
)

type dfBallState struct {
	x, y   float64
	vx, vy float64
	target bool
}

func (g *DividedFocus) ID() model.GameID { return model.GameDividedFocus }

func (g *DividedFocus) Config() model.GameConfig {
	return model.GameConfigs[model.GameDividedFocus]
}

func (g *DividedFocus) Instructions() []string {
	return []string{
		"Several balls drift around the arena. A few are highlighted as",
		"targets at the start, then every ball looks the same.",
		"",
		"Track the targets while they move. When the balls stop, each is",
		"labeled with a letter; answer with the letters of the original",
		"targets, one at a time.",
		"",
		"More balls, more targets, and faster movement at higher levels.",
	}
}

// Level ladders for ball population and target count, and the drift
// speed in cells per tick.
func dfTotalBalls(level int) int {
	switch {
	case level <= 2:
		return 6
	case level <= 5:
		return 8
	case level <= 8:
		return 12
	default:
		return 16
	}
}

func dfTargetCount(level int) int {
	switch {
	case level <= 3:
		return 2
	case level <= 6:
		return 3
	case level <= 9:
		return 4
	default:
		return 5
	}
}

func dfSpeed(level int) float64 {
	return 0.5 + float64(level)*0.1
}

func (g *DividedFocus) NewTrial(d model.DifficultyState, rnd *rand.Rand) Trial {
	total := dfTotalBalls(d.Level)
	targets := dfTargetCount(d.Level)

	targetIdx := make(map[int]bool, targets)
	for _, i := range pickSlots(seq(total), targets, rnd) {
		targetIdx[i] = true
	}

	balls := make([]dfBallState, total)
	for i := range balls {
		angle := rnd.Float64() * 2 * math.Pi
		speed := dfSpeed(d.Level)
		balls[i] = dfBallState{
			x:      4 + rnd.Float64()*float64(dfArenaW-8),
			y:      2 + rnd.Float64()*float64(dfArenaH-4),
			vx:     math.Cos(angle) * speed * 2,
			vy:     math.Sin(angle) * speed,
			target: targetIdx[i],
		}
	}

	frames := []Frame{{View: dfRender(balls, true, false), Duration: 2 * time.Second}}

	trackMs := 5000 + d.Level*500
	ticks := trackMs / dfTickMs
	promptIntervalMs := 3000 - d.Level*150
	if promptIntervalMs < 1500 {
		promptIntervalMs = 1500
	}
	for t := 1; t <= ticks; t++ {
		for i := range balls {
			dfStep(&balls[i])
		}
		// The bolt shows for roughly a second out of every interval.
		elapsed := t * dfTickMs
		bolt := elapsed%promptIntervalMs < 1000
		frames = append(frames, Frame{
			View:     dfRender(balls, false, bolt),
			Duration: dfTickMs * time.Millisecond,
		})
	}

	wantKeys := make(map[string]bool, targets)
	for i, b := range balls {
		if b.target {
			wantKeys[fmCardKeys[i]] = true
		}
	}
	opts := make([]Option, total)
	for i := range opts {
		opts[i] = Option{Key: fmCardKeys[i], Label: "ball " + fmCardKeys[i]}
	}

	return Trial{
		Frames: frames,
		Questions: []Question{{
			Prompt:  fmt.Sprintf("Select the %d original targets", targets),
			View:    dfRenderLabeled(balls),
			Options: opts,
			Picks:   targets,
		}},
		Evaluate: func(answers []string) bool {
			if len(answers) != targets {
				return false
			}
			seen := make(map[string]bool, len(answers))
			for _, a := range answers {
				if seen[a] || !wantKeys[a] {
					return false
				}
				seen[a] = true
			}
			return true
		},
	}
}

func dfStep(b *dfBallState) {
	b.x += b.vx
	b.y += b.vy
	if b.x < 1 || b.x > dfArenaW-2 {
		b.vx = -b.vx
	}
	if b.y < 1 || b.y > dfArenaH-2 {
		b.vy = -b.vy
	}
	b.x = math.Max(1, math.Min(dfArenaW-2, b.x))
	b.y = math.Max(1, math.Min(dfArenaH-2, b.y))
}

func dfRender(balls []dfBallState, highlight, bolt bool) string {
	c := newCanvas(dfArenaW, dfArenaH)
	if bolt {
		c.drawCentered(dfArenaW/2, dfArenaH/2, "⚡")
	}
	for _, b := range balls {
		glyph := dfBall
		if highlight && b.target {
			glyph = dfTarget
		}
		c.draw(int(b.x), int(b.y), glyph)
	}
	return c.String()
}

func dfRenderLabeled(balls []dfBallState) string {
	c := newCanvas(dfArenaW, dfArenaH)
	for i, b := range balls {
		c.draw(int(b.x), int(b.y), fmCardKeys[i])
	}
	return c.String()
}

func seq(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
