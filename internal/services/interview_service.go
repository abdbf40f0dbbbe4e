package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/mockview/backend/internal/models"
	"github.com/mockview/backend/internal/providers/oracle"
	pgrepo "github.com/mockview/backend/internal/repositories/postgres"
	"github.com/mockview/backend/internal/utils"
)

type StartInput struct {
	UserID        string
	Role          string
	Difficulty    string
	InterviewType string
	MaxQuestions  int
}

type StartResult struct {
	SessionID      string               `json:"sessionId"`
	QuestionID     string               `json:"questionId"`
	Question       string               `json:"question"`
	QuestionNumber int                  `json:"questionNumber"`
	MaxQuestions   int                  `json:"maxQuestions"`
	Difficulty     models.Difficulty    `json:"difficulty"`
	InterviewType  models.InterviewType `json:"interviewType"`
}

type NextQuestion struct {
	QuestionID     string            `json:"questionId"`
	Question       string            `json:"question"`
	QuestionNumber int               `json:"questionNumber"`
	MaxQuestions   int               `json:"maxQuestions"`
	Difficulty     models.Difficulty `json:"difficulty"`
}

type TurnResult struct {
	Completed    bool           `json:"completed"`
	Score        float64        `json:"score"`
	Feedback     string         `json:"feedback"`
	NextQuestion *NextQuestion  `json:"nextQuestion,omitempty"`
	Report       *models.Report `json:"report,omitempty"`
}

type SessionReport struct {
	SessionID     string            `json:"sessionId"`
	Role          string            `json:"role"`
	Difficulty    models.Difficulty `json:"difficulty"`
	QuestionCount int               `json:"questionCount"`
	OverallScore  float64           `json:"overallScore"`
	StartedAt     time.Time         `json:"startedAt"`
	EndedAt       *time.Time        `json:"endedAt"`
	Report        json.RawMessage   `json:"report"`
}

type HistoryItem struct {
	SessionID     string               `json:"sessionId"`
	Role          string               `json:"role"`
	Difficulty    models.Difficulty    `json:"difficulty"`
	InterviewType models.InterviewType `json:"interviewType"`
	QuestionCount int                  `json:"questionCount"`
	OverallScore  float64              `json:"overallScore"`
	StartedAt     time.Time            `json:"startedAt"`
	EndedAt       *time.Time           `json:"endedAt"`
}

// QAItem is one row of the session transcript; answer fields are nil for a
// trailing unanswered question.
type QAItem struct {
	QuestionID     string            `json:"questionId"`
	QuestionNumber int               `json:"questionNumber"`
	QuestionText   string            `json:"questionText"`
	Difficulty     models.Difficulty `json:"difficulty"`
	AnswerText     *string           `json:"answerText,omitempty"`
	Score          *float64          `json:"score,omitempty"`
	Feedback       *string           `json:"feedback,omitempty"`
}

// InterviewService is the turn engine: the transport-agnostic state machine
// both the REST handlers and the live choreographer drive.
type InterviewService interface {
	Start(ctx context.Context, in StartInput) (*StartResult, error)
	SubmitAnswer(ctx context.Context, sessionID, questionID, answerText string) (*TurnResult, error)
	GetReport(ctx context.Context, sessionID, userID string) (*SessionReport, error)
	GetHistory(ctx context.Context, userID string) ([]HistoryItem, error)
	GetSessionQA(ctx context.Context, sessionID, userID string) ([]QAItem, error)
}

type interviewService struct {
	sessions  pgrepo.SessionRepository
	questions pgrepo.QuestionRepository
	answers   pgrepo.AnswerRepository
	oracle    oracle.Provider
	reports   ReportService
	log       *logrus.Logger

	// turnLocks serializes SubmitAnswer per session id. Distinct sessions
	// never contend.
	turnLocks sync.Map
}

func NewInterviewService(
	sessions pgrepo.SessionRepository,
	questions pgrepo.QuestionRepository,
	answers pgrepo.AnswerRepository,
	o oracle.Provider,
	reports ReportService,
	log *logrus.Logger,
) InterviewService {
	return &interviewService{
		sessions:  sessions,
		questions: questions,
		answers:   answers,
		oracle:    o,
		reports:   reports,
		log:       log,
	}
}

const defaultMaxQuestions = 5

func (s *interviewService) Start(ctx context.Context, in StartInput) (*StartResult, error) {
	const op = "InterviewService.Start"

	if in.UserID == "" || in.Role == "" {
		return nil, utils.E(utils.CodeValidation, op, "user id and role are required", nil)
	}
	difficulty, ok := models.ParseDifficulty(in.Difficulty)
	if !ok {
		return nil, utils.E(utils.CodeValidation, op,
			"invalid difficulty; accepted: beginner, easy, medium, intermediate, advanced, hard, expert", nil)
	}
	typ := in.InterviewType
	if typ == "" {
		typ = string(models.InterviewTechnical)
	}
	interviewType, ok := models.ParseInterviewType(typ)
	if !ok {
		return nil, utils.E(utils.CodeValidation, op,
			"invalid interview type; accepted: technical, behavioral, mixed", nil)
	}
	maxQuestions := in.MaxQuestions
	if maxQuestions <= 0 {
		maxQuestions = defaultMaxQuestions
	}

	// Oracle first: creation is all-or-nothing, so nothing is inserted
	// until the opening question exists.
	questionText, err := s.oracle.GenerateOpeningQuestion(ctx, in.Role, difficulty)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess := &models.InterviewSession{
		ID:                uuid.NewString(),
		UserID:            in.UserID,
		Role:              in.Role,
		InterviewType:     interviewType,
		InitialDifficulty: difficulty,
		CurrentDifficulty: difficulty,
		MaxQuestions:      maxQuestions,
		StartedAt:         now,
		CreatedAt:         now,
		Status:            models.StatusActive,
	}
	q := &models.Question{
		ID:             uuid.NewString(),
		SessionID:      sess.ID,
		QuestionText:   questionText,
		Difficulty:     difficulty,
		QuestionNumber: 1,
		CreatedAt:      now,
		Status:         models.StatusActive,
	}

	if err := s.sessions.CreateWithFirstQuestion(ctx, sess, q); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}

	s.log.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"user_id":    in.UserID,
		"difficulty": difficulty,
	}).Info("interview started")

	return &StartResult{
		SessionID:      sess.ID,
		QuestionID:     q.ID,
		Question:       questionText,
		QuestionNumber: 1,
		MaxQuestions:   maxQuestions,
		Difficulty:     difficulty,
		InterviewType:  interviewType,
	}, nil
}

func (s *interviewService) SubmitAnswer(ctx context.Context, sessionID, questionID, answerText string) (*TurnResult, error) {
	const op = "InterviewService.SubmitAnswer"

	if sessionID == "" || questionID == "" || answerText == "" {
		return nil, utils.E(utils.CodeValidation, op, "session id, question id, and answer are required", nil)
	}

	lock := s.lockFor(sessionID)
	if !lock.TryLock() {
		return nil, utils.E(utils.CodeTurnInProgress, op, "another answer is being processed for this session", nil)
	}
	defer lock.Unlock()

	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load session", err)
	}
	if sess.Ended() {
		return nil, utils.E(utils.CodeAlreadyEnded, op, "interview session has ended", nil)
	}

	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "question not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load question", err)
	}
	if question.SessionID != sessionID {
		return nil, utils.E(utils.CodeNotFound, op, "question not found", nil)
	}

	priorTurns, err := s.priorTurns(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load prior turns", err)
	}
	hasFollowup, err := s.answers.HasFollowup(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to check follow-up flag", err)
	}

	priorScores := make([]float64, len(priorTurns))
	for i, t := range priorTurns {
		priorScores[i] = t.Score
	}
	avgBefore := AverageScore(priorScores)
	isFinalTurn := sess.QuestionCount >= sess.MaxQuestions

	// The oracle call is the only fallible step allowed before any write.
	// Its errors propagate verbatim and leave the turn fully retryable.
	ev, err := s.oracle.EvaluateAnswer(ctx, oracle.EvalInput{
		Question:      question.QuestionText,
		Answer:        answerText,
		Difficulty:    question.Difficulty,
		Role:          sess.Role,
		InterviewType: sess.InterviewType,
		PriorTurns:    priorTurns,
		AvgScore:      avgBefore,
		FinalTurn:     isFinalTurn,
	})
	if err != nil {
		return nil, err
	}

	followupTriggered := !hasFollowup && ev.Score < 70

	now := time.Now().UTC()
	answer := &models.Answer{
		ID:                  uuid.NewString(),
		QuestionID:          questionID,
		SessionID:           sessionID,
		AnswerText:          answerText,
		Score:               ev.Score,
		Feedback:            ev.Feedback,
		IsFollowupTriggered: followupTriggered,
		CreatedAt:           now,
		Status:              models.StatusActive,
	}
	if err := s.answers.Create(ctx, answer); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist answer", err)
	}

	priorCount := float64(len(priorTurns))
	newOverall := math.Round((avgBefore*priorCount+ev.Score)/(priorCount+1)*100) / 100
	nextDifficulty := NextDifficulty(sess.CurrentDifficulty, newOverall)

	if err := s.sessions.UpdateProgress(ctx, sessionID, nextDifficulty, newOverall); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update session progress", err)
	}

	currentTurn := oracle.QAPair{
		Question:   question.QuestionText,
		Answer:     answerText,
		Score:      ev.Score,
		Difficulty: question.Difficulty,
	}

	if isFinalTurn {
		return s.completeSession(ctx, sess, ev, newOverall, append(priorTurns, currentTurn))
	}

	nextNumber := sess.QuestionCount + 1
	nextQ := &models.Question{
		ID:             uuid.NewString(),
		SessionID:      sessionID,
		QuestionText:   ev.NextQuestion,
		Difficulty:     nextDifficulty,
		QuestionNumber: nextNumber,
		CreatedAt:      now,
		Status:         models.StatusActive,
	}
	if err := s.questions.Create(ctx, nextQ); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist next question", err)
	}
	if err := s.sessions.SetQuestionCount(ctx, sessionID, nextNumber); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to advance question count", err)
	}

	return &TurnResult{
		Completed: false,
		Score:     ev.Score,
		Feedback:  ev.Feedback,
		NextQuestion: &NextQuestion{
			QuestionID:     nextQ.ID,
			Question:       nextQ.QuestionText,
			QuestionNumber: nextNumber,
			MaxQuestions:   sess.MaxQuestions,
			Difficulty:     nextDifficulty,
		},
	}, nil
}

func (s *interviewService) completeSession(ctx context.Context, sess *models.InterviewSession, ev *oracle.Evaluation, overall float64, turns []oracle.QAPair) (*TurnResult, error) {
	const op = "InterviewService.SubmitAnswer"

	endedAt := time.Now().UTC()
	finished := *sess
	finished.OverallScore = overall
	finished.EndedAt = &endedAt

	report, err := s.reports.Finalize(ctx, &finished, turns)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(report)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to encode report", err)
	}
	if err := s.sessions.Complete(ctx, sess.ID, endedAt, datatypes.JSON(raw), report.SessionDurationMinutes); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to complete session", err)
	}

	s.log.WithFields(logrus.Fields{
		"session_id":    sess.ID,
		"overall_score": overall,
	}).Info("interview completed")

	return &TurnResult{
		Completed: true,
		Score:     ev.Score,
		Feedback:  ev.Feedback,
		Report:    report,
	}, nil
}

// priorTurns assembles completed turns in question order.
func (s *interviewService) priorTurns(ctx context.Context, sessionID string) ([]oracle.QAPair, error) {
	questions, err := s.questions.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	answers, err := s.answers.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	byQuestion := make(map[string]*models.Answer, len(answers))
	for i := range answers {
		byQuestion[answers[i].QuestionID] = &answers[i]
	}

	var turns []oracle.QAPair
	for _, q := range questions {
		a, ok := byQuestion[q.ID]
		if !ok {
			continue
		}
		turns = append(turns, oracle.QAPair{
			Question:   q.QuestionText,
			Answer:     a.AnswerText,
			Score:      a.Score,
			Difficulty: q.Difficulty,
		})
	}
	return turns, nil
}

func (s *interviewService) GetReport(ctx context.Context, sessionID, userID string) (*SessionReport, error) {
	const op = "InterviewService.GetReport"

	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load session", err)
	}
	if sess.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "session belongs to another user", nil)
	}
	if !sess.Ended() {
		return nil, utils.E(utils.CodeNotCompleted, op, "interview not completed yet", nil)
	}

	return &SessionReport{
		SessionID:     sess.ID,
		Role:          sess.Role,
		Difficulty:    sess.InitialDifficulty,
		QuestionCount: sess.QuestionCount,
		OverallScore:  sess.OverallScore,
		StartedAt:     sess.StartedAt,
		EndedAt:       sess.EndedAt,
		Report:        json.RawMessage(sess.Report),
	}, nil
}

func (s *interviewService) GetHistory(ctx context.Context, userID string) ([]HistoryItem, error) {
	const op = "InterviewService.GetHistory"

	if userID == "" {
		return nil, utils.E(utils.CodeValidation, op, "user id is required", nil)
	}

	sessions, err := s.sessions.ListCompletedByUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list sessions", err)
	}

	out := make([]HistoryItem, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, HistoryItem{
			SessionID:     sess.ID,
			Role:          sess.Role,
			Difficulty:    sess.InitialDifficulty,
			InterviewType: sess.InterviewType,
			QuestionCount: sess.QuestionCount,
			OverallScore:  sess.OverallScore,
			StartedAt:     sess.StartedAt,
			EndedAt:       sess.EndedAt,
		})
	}
	return out, nil
}

func (s *interviewService) GetSessionQA(ctx context.Context, sessionID, userID string) ([]QAItem, error) {
	const op = "InterviewService.GetSessionQA"

	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load session", err)
	}
	if sess.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "session belongs to another user", nil)
	}

	questions, err := s.questions.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list questions", err)
	}
	answers, err := s.answers.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list answers", err)
	}

	byQuestion := make(map[string]*models.Answer, len(answers))
	for i := range answers {
		byQuestion[answers[i].QuestionID] = &answers[i]
	}

	// Left-join shape: a trailing unanswered question keeps nil answer
	// fields.
	out := make([]QAItem, 0, len(questions))
	for _, q := range questions {
		item := QAItem{
			QuestionID:     q.ID,
			QuestionNumber: q.QuestionNumber,
			QuestionText:   q.QuestionText,
			Difficulty:     q.Difficulty,
		}
		if a, ok := byQuestion[q.ID]; ok {
			item.AnswerText = &a.AnswerText
			item.Score = &a.Score
			item.Feedback = &a.Feedback
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *interviewService) lockFor(sessionID string) *sync.Mutex {
	v, _ := s.turnLocks.LoadOrStore(sessionID, &sync.Mutex{})
	return v.(*sync.Mutex)
}
