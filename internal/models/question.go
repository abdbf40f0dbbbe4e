package models

import "time"

// Question is immutable once created. QuestionNumber is 1-based and dense
// within its session.
type Question struct {
	ID        string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID string `gorm:"column:session_id;type:uuid;index" json:"session_id"`

	QuestionText   string     `gorm:"column:question_text;type:text" json:"question_text"`
	Difficulty     Difficulty `gorm:"column:difficulty;type:text" json:"difficulty"`
	QuestionNumber int        `gorm:"column:question_number" json:"question_number"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	Status    string    `gorm:"column:status;type:text;default:active;index" json:"-"`
}

func (Question) TableName() string { return "questions" }
