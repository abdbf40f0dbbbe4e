package models

import "time"

// Answer holds the oracle's evaluation of one question. SessionID is
// denormalized from the question for per-session queries. At most one answer
// per session carries IsFollowupTriggered.
type Answer struct {
	ID         string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	QuestionID string `gorm:"column:question_id;type:uuid;index" json:"question_id"`
	SessionID  string `gorm:"column:session_id;type:uuid;index" json:"session_id"`

	AnswerText string  `gorm:"column:answer_text;type:text" json:"answer_text"`
	Score      float64 `gorm:"column:score;type:decimal(5,2)" json:"score"`
	Feedback   string  `gorm:"column:feedback;type:text" json:"feedback"`

	IsFollowupTriggered bool `gorm:"column:is_followup_triggered" json:"is_followup_triggered"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	Status    string    `gorm:"column:status;type:text;default:active;index" json:"-"`
}

func (Answer) TableName() string { return "answers" }
