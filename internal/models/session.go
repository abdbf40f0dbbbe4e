package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// difficultyAliases maps the looser labels clients send to the canonical
// three levels.
var difficultyAliases = map[string]Difficulty{
	"beginner":     DifficultyEasy,
	"easy":         DifficultyEasy,
	"medium":       DifficultyMedium,
	"intermediate": DifficultyMedium,
	"advanced":     DifficultyHard,
	"hard":         DifficultyHard,
	"expert":       DifficultyHard,
}

// ParseDifficulty normalizes a client-supplied difficulty label.
func ParseDifficulty(s string) (Difficulty, bool) {
	d, ok := difficultyAliases[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}

type InterviewType string

const (
	InterviewTechnical  InterviewType = "technical"
	InterviewBehavioral InterviewType = "behavioral"
	InterviewMixed      InterviewType = "mixed"
)

func ParseInterviewType(s string) (InterviewType, bool) {
	switch InterviewType(strings.ToLower(strings.TrimSpace(s))) {
	case InterviewTechnical:
		return InterviewTechnical, true
	case InterviewBehavioral:
		return InterviewBehavioral, true
	case InterviewMixed:
		return InterviewMixed, true
	default:
		return "", false
	}
}

// InterviewSession is the durable session record. CurrentDifficulty only
// moves through the difficulty controller, one level per turn. EndedAt is
// set exactly once, at completion, and gates report visibility.
type InterviewSession struct {
	ID     string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"column:user_id;type:uuid;index" json:"user_id"`

	Role              string        `gorm:"column:role;type:text" json:"role"`
	InterviewType     InterviewType `gorm:"column:interview_type;type:text" json:"interview_type"`
	InitialDifficulty Difficulty    `gorm:"column:initial_difficulty;type:text" json:"initial_difficulty"`
	CurrentDifficulty Difficulty    `gorm:"column:current_difficulty;type:text" json:"current_difficulty"`

	QuestionCount int `gorm:"column:question_count" json:"question_count"`
	MaxQuestions  int `gorm:"column:max_questions" json:"max_questions"`

	OverallScore         float64        `gorm:"column:overall_score;type:decimal(5,2)" json:"overall_score"`
	TotalDurationMinutes int            `gorm:"column:total_duration_minutes" json:"total_duration_minutes"`
	Report               datatypes.JSON `gorm:"column:report;type:jsonb" json:"report,omitempty"`

	StartedAt time.Time  `gorm:"column:started_at;type:timestamptz" json:"started_at"`
	EndedAt   *time.Time `gorm:"column:ended_at;type:timestamptz" json:"ended_at,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
	Status    string     `gorm:"column:status;type:text;default:active;index" json:"-"`
}

func (InterviewSession) TableName() string { return "interview_sessions" }

func (s *InterviewSession) Ended() bool { return s.EndedAt != nil }
