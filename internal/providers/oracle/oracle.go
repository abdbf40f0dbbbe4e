package oracle

import (
	"context"

	"github.com/mockview/backend/internal/models"
)

// QAPair is one completed turn, passed back to the oracle as context.
type QAPair struct {
	Question   string
	Answer     string
	Score      float64
	Difficulty models.Difficulty
}

// EvalInput carries the full turn context for EvaluateAnswer. AvgScore is
// the average over prior turns only (50 when there are none). When FinalTurn
// is set the oracle must not produce a next question.
type EvalInput struct {
	Question      string
	Answer        string
	Difficulty    models.Difficulty
	Role          string
	InterviewType models.InterviewType
	PriorTurns    []QAPair
	AvgScore      float64
	FinalTurn     bool
}

// Evaluation is the structured payload EvaluateAnswer must yield.
// NextQuestion is present iff the evaluated turn was not the final one.
type Evaluation struct {
	Score        float64 `json:"score"`
	Feedback     string  `json:"feedback"`
	NextQuestion string  `json:"nextQuestion,omitempty"`
}

type ReportInput struct {
	Role              string
	InitialDifficulty models.Difficulty
	OverallScore      float64
	Turns             []QAPair
}

// Provider is the content oracle: it generates questions, evaluates answers,
// and writes reports. Implementations are stateless apart from connection
// handles, never mutate session state, and surface failures as AppErrors
// carrying one of the oracle codes (AUTH_FAILURE, RATE_LIMITED,
// MODEL_UNAVAILABLE, MALFORMED_RESPONSE, TRANSIENT_UNAVAILABLE). Nothing is
// retried internally.
type Provider interface {
	GenerateOpeningQuestion(ctx context.Context, role string, difficulty models.Difficulty) (string, error)
	EvaluateAnswer(ctx context.Context, in EvalInput) (*Evaluation, error)
	GenerateReport(ctx context.Context, in ReportInput) (*models.Report, error)
	Close() error
}
