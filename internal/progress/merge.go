package progress

import "github.com/davrk/sharpen/internal/model"

// Merge reconciles two independently evolved UserData snapshots with a
// monotonic-max policy so progress is never silently lost. There is no shared
// causal history between the inputs: scalar counters take the max, the first
// use date takes the earlier value, the last play date the later, and bounded
// history arrays take whichever side is longer (ties favor local). Booster
// status is taken wholesale from the side with the larger initial session
// count, again favoring local on ties. Lexicographic comparison is valid for
// the date fields because ISO dates sort chronologically.
func Merge(local, remote model.UserData) model.UserData {
	out := model.UserData{
		FirstUseDate:         earlierDate(local.FirstUseDate, remote.FirstUseDate),
		LastPlayDate:         laterDate(local.LastPlayDate, remote.LastPlayDate),
		TotalTrainingMinutes: max(local.TotalTrainingMinutes, remote.TotalTrainingMinutes),
		DailyStreak:          max(local.DailyStreak, remote.DailyStreak),
		Games:                make(map[model.GameID]model.GameStats),
		BoosterStatus:        local.BoosterStatus,
	}

	for id, gs := range local.Games {
		out.Games[id] = gs
	}
	for id, remoteStats := range remote.Games {
		localStats, ok := out.Games[id]
		if !ok {
			out.Games[id] = remoteStats
			continue
		}
		out.Games[id] = mergeGameStats(localStats, remoteStats)
	}

	if remote.BoosterStatus.InitialSessionCount > local.BoosterStatus.InitialSessionCount {
		out.BoosterStatus = remote.BoosterStatus
	}

	return out
}

func mergeGameStats(local, remote model.GameStats) model.GameStats {
	return model.GameStats{
		SessionsCompleted: max(local.SessionsCompleted, remote.SessionsCompleted),
		BestScore:         max(local.BestScore, remote.BestScore),
		HighestLevel:      max(local.HighestLevel, remote.HighestLevel),
		TotalTrials:       max(local.TotalTrials, remote.TotalTrials),
		RecentScores:      longerHistory(local.RecentScores, remote.RecentScores),
		AccuracyHistory:   longerHistory(local.AccuracyHistory, remote.AccuracyHistory),
	}
}

// longerHistory keeps the more complete of the two bounded arrays. This is a
// deliberate approximation, not a union merge: entries unique to the shorter
// side are lost, which is an accepted tradeoff.
func longerHistory(local, remote []int) []int {
	if len(remote) > len(local) {
		return append([]int(nil), remote...)
	}
	return append([]int(nil), local...)
}

func earlierDate(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if b < a {
		return b
	}
	return a
}

func laterDate(a, b string) string {
	if b > a {
		return b
	}
	return a
}
