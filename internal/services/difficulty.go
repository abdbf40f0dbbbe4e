package services

import "github.com/mockview/backend/internal/models"

const (
	escalateThreshold   = 80
	deescalateThreshold = 50

	// NeutralScore stands in for the average when a session has no scored
	// answers yet, so the first adjustment input is a no-op band value.
	NeutralScore = 50
)

// NextDifficulty is the difficulty controller: a pure mapping from the
// current level and rolling average score to the next level. It moves at
// most one step per call and never leaves {easy, medium, hard}.
func NextDifficulty(current models.Difficulty, avgScore float64) models.Difficulty {
	if avgScore >= escalateThreshold {
		switch current {
		case models.DifficultyEasy:
			return models.DifficultyMedium
		case models.DifficultyMedium:
			return models.DifficultyHard
		}
	}
	if avgScore <= deescalateThreshold {
		switch current {
		case models.DifficultyHard:
			return models.DifficultyMedium
		case models.DifficultyMedium:
			return models.DifficultyEasy
		}
	}
	return current
}

// AverageScore averages per-turn scores, defaulting to NeutralScore for an
// empty history.
func AverageScore(scores []float64) float64 {
	if len(scores) == 0 {
		return NeutralScore
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}
