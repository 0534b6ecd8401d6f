// Package model defines shared data structures.
package model

// GameID identifies one of the five training games.
type GameID string

// Known game identifiers.
const (
	GameDoubleDecision  GameID = "double-decision"
	GamePeripheralPulse GameID = "peripheral-pulse"
	GameFlashMatch      GameID = "flash-match"
	GamePatternSurge    GameID = "pattern-surge"
	GameDividedFocus    GameID = "divided-focus"
)

// GameIDs lists every known game in display order.
var GameIDs = []GameID{
	GameDoubleDecision,
	GamePeripheralPulse,
	GameFlashMatch,
	GamePatternSurge,
	GameDividedFocus,
}

// GameConfig describes a game's identity and trial quotas.
type GameConfig struct {
	ID                 GameID
	Name               string
	Description        string
	TrialCount         int
	PracticeTrialCount int
}

// GameConfigs maps each game to its fixed configuration.
var GameConfigs = map[GameID]GameConfig{
	GameDoubleDecision: {
		ID:                 GameDoubleDecision,
		Name:               "Double Decision",
		Description:        "Identify center objects and peripheral targets under time pressure",
		TrialCount:         25,
		PracticeTrialCount: 4,
	},
	GamePeripheralPulse: {
		ID:                 GamePeripheralPulse,
		Name:               "Peripheral Pulse",
		Description:        "Expand your useful field of view by tracking peripheral flashes",
		TrialCount:         25,
		PracticeTrialCount: 4,
	},
	GameFlashMatch: {
		ID:                 GameFlashMatch,
		Name:               "Flash Match",
		Description:        "Memorize briefly-shown card grids and find the matching card",
		TrialCount:         20,
		PracticeTrialCount: 3,
	},
	GamePatternSurge: {
		ID:                 GamePatternSurge,
		Name:               "Pattern Surge",
		Description:        "Spot target symbols in rapid-fire sequences",
		TrialCount:         25,
		PracticeTrialCount: 4,
	},
	GameDividedFocus: {
		ID:                 GameDividedFocus,
		Name:               "Divided Focus",
		Description:        "Track moving targets while responding to center-screen prompts",
		TrialCount:         15,
		PracticeTrialCount: 3,
	},
}

// DifficultyState holds the five correlated task-hardness parameters plus the
// run-length counters that trigger level changes. Values are adjusted only by
// the difficulty package; each transition produces a new value.
type DifficultyState struct {
	Level              int     `json:"level"`
	DisplayTimeMs      int     `json:"displayTimeMs"`
	DistractorCount    int     `json:"distractorCount"`
	TargetDistance     float64 `json:"targetDistance"`
	SimilarityLevel    float64 `json:"similarityLevel"`
	ConsecutiveCorrect int     `json:"consecutiveCorrect"`
	ConsecutiveWrong   int     `json:"consecutiveWrong"`
}

// TrialResult captures one completed stimulus-response unit. Difficulty is the
// state the trial was played at, recorded before any post-trial adjustment.
type TrialResult struct {
	Correct        bool            `json:"correct"`
	ReactionTimeMs int             `json:"reactionTimeMs"`
	Difficulty     DifficultyState `json:"difficulty"`
	Timestamp      int64           `json:"timestamp"`
}

// SessionResult summarizes one completed scored session.
type SessionResult struct {
	GameID            GameID        `json:"gameId"`
	Date              string        `json:"date"`
	Trials            []TrialResult `json:"trials"`
	Accuracy          int           `json:"accuracy"`
	AverageReactionMs int           `json:"averageReactionMs"`
	BestReactionMs    int           `json:"bestReactionMs"`
	FinalLevel        int           `json:"finalLevel"`
	DurationSeconds   int           `json:"durationSeconds"`
}

// GameStats accumulates per-game history across sessions.
type GameStats struct {
	SessionsCompleted int   `json:"sessionsCompleted"`
	BestScore         int   `json:"bestScore"`
	RecentScores      []int `json:"recentScores"`
	HighestLevel      int   `json:"highestLevel"`
	TotalTrials       int   `json:"totalTrials"`
	AccuracyHistory   []int `json:"accuracyHistory"`
}

// BoosterStatus tracks the initial-training threshold and the two scheduled
// booster blocks. Due dates are set once and never recomputed.
type BoosterStatus struct {
	InitialComplete     bool   `json:"initialComplete"`
	InitialSessionCount int    `json:"initialSessionCount"`
	Booster1Complete    bool   `json:"booster1Complete"`
	Booster2Complete    bool   `json:"booster2Complete"`
	Booster1DueDate     string `json:"booster1DueDate,omitempty"`
	Booster2DueDate     string `json:"booster2DueDate,omitempty"`
}

// UserData is the root persisted aggregate. Dates are ISO YYYY-MM-DD strings.
type UserData struct {
	FirstUseDate         string               `json:"firstUseDate"`
	TotalTrainingMinutes int                  `json:"totalTrainingMinutes"`
	DailyStreak          int                  `json:"dailyStreak"`
	LastPlayDate         string               `json:"lastPlayDate"`
	Games                map[GameID]GameStats `json:"games"`
	BoosterStatus        BoosterStatus        `json:"boosterStatus"`
}

// DefaultGameStats returns a zeroed per-game record for a never-played game.
func DefaultGameStats() GameStats {
	return GameStats{HighestLevel: 1}
}

// DefaultUserData returns a fresh aggregate with every known game present.
func DefaultUserData(firstUseDate string) UserData {
	games := make(map[GameID]GameStats, len(GameIDs))
	for _, id := range GameIDs {
		games[id] = DefaultGameStats()
	}
	return UserData{
		FirstUseDate: firstUseDate,
		Games:        games,
	}
}

// SessionRecord is one row of the local session audit log.
type SessionRecord struct {
	UID               string
	GameID            GameID
	Date              string
	Accuracy          int
	AverageReactionMs int
	BestReactionMs    int
	FinalLevel        int
	DurationSeconds   int
	TrialCount        int
}
