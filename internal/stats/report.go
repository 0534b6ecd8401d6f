// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"

	"github.com/davrk/sharpen/internal/model"
)

// RenderDashboard prints the headline metrics block.
func RenderDashboard(w io.Writer, data model.UserData, brainSpeed, weeklySessions int) error {
	if _, err := fmt.Fprintln(w, "Dashboard"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Brain speed score: %d/100\n", brainSpeed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Daily streak: %d\n", data.DailyStreak); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Training time: %s\n", FormatMinutes(data.TotalTrainingMinutes)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sessions this week: %d\n", weeklySessions); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// sparkWindow smooths accuracy sparklines so a single off session does not
// dominate the trend.
const sparkWindow = 3

// RenderGameTable prints the per-game summary table with an accuracy
// sparkline per game.
func RenderGameTable(w io.Writer, data model.UserData) error {
	headers := []string{"Game", "Sessions", "Best", "Level", "Trials", "Accuracy"}
	rows := make([][]string, 0, len(model.GameIDs))
	for _, id := range model.GameIDs {
		cfg := model.GameConfigs[id]
		gs := data.Games[id]
		spark := Sparkline(MovingAverage(intsToFloats(gs.AccuracyHistory), sparkWindow))
		if spark == "" {
			spark = "-"
		}
		rows = append(rows, []string{
			cfg.Name,
			fmt.Sprintf("%d", gs.SessionsCompleted),
			fmt.Sprintf("%d", gs.BestScore),
			fmt.Sprintf("%d", gs.HighestLevel),
			fmt.Sprintf("%d", gs.TotalTrials),
			spark,
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// BoosterLines returns reminder lines for the training schedule: initial
// block progress first, then due boosters. Booster 2 only surfaces after
// booster 1 is done. Returns nil when nothing is actionable.
func BoosterLines(data model.UserData, today string) []string {
	status := data.BoosterStatus
	if !status.InitialComplete {
		total := 0
		for _, gs := range data.Games {
			total += gs.SessionsCompleted
		}
		remaining := 10 - total
		if remaining > 0 {
			plural := "s"
			if remaining == 1 {
				plural = ""
			}
			return []string{fmt.Sprintf("Initial training: %d more session%s to complete the block (%d/10).", remaining, plural, total)}
		}
		return nil
	}
	if status.Booster1DueDate != "" && !status.Booster1Complete && today >= status.Booster1DueDate {
		return []string{"Booster session due: it has been ~11 months since you started. Complete a booster block to maintain your gains."}
	}
	if status.Booster2DueDate != "" && !status.Booster2Complete && status.Booster1Complete && today >= status.Booster2DueDate {
		return []string{"Second booster due: it has been ~35 months since you started. Time for another booster block."}
	}
	return nil
}

func intsToFloats(values []int) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
