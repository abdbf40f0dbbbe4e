package live

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mockview/backend/internal/models"
	"github.com/mockview/backend/internal/providers/stt"
	mongorepo "github.com/mockview/backend/internal/repositories/mongo"
	"github.com/mockview/backend/internal/services"
	"github.com/mockview/backend/internal/utils"
)

// Conn is the outbound half of a live duplex connection. Emit on a closed
// connection returns an error; the choreographer treats that as a no-op.
type Conn interface {
	Emit(event string, payload any) error
}

const (
	EventAvatarSpeak       = "avatar-speak"
	EventAvatarListening   = "avatar-listening"
	EventAvatarThinking    = "avatar-thinking"
	EventTranscriptUpdate  = "transcript-update"
	EventInterviewComplete = "interview-complete"
	EventError             = "error"
)

type SpeakMetadata struct {
	QuestionNumber int `json:"questionNumber"`
	MaxQuestions   int `json:"maxQuestions"`
}

type SpeakPayload struct {
	Audio    string             `json:"audio"`
	Text     string             `json:"text"`
	Visemes  []Viseme           `json:"visemes"`
	Emotion  string             `json:"emotion"`
	Face     map[string]float64 `json:"face"`
	Metadata *SpeakMetadata     `json:"metadata,omitempty"`
}

type TranscriptPayload struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}

type CompletePayload struct {
	Report *models.Report `json:"report"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type StartRequest struct {
	UserID        string `json:"userId"`
	Role          string `json:"role"`
	Difficulty    string `json:"difficulty"`
	InterviewType string `json:"interviewType"`
	MaxQuestions  int    `json:"maxQuestions"`
}

// Delays are the fixed pauses between choreography steps. Tests shrink them
// to zero.
type Delays struct {
	Greeting     time.Duration // greeting shown before the opening question
	PostFeedback time.Duration // feedback spoken before the next step
	Closing      time.Duration // feedback before the closing statement
	Complete     time.Duration // closing statement before the report
}

func DefaultDelays() Delays {
	return Delays{
		Greeting:     5 * time.Second,
		PostFeedback: 3 * time.Second,
		Closing:      3 * time.Second,
		Complete:     5 * time.Second,
	}
}

// Choreographer sequences avatar state and message emissions around turn
// engine calls for the live transport. It owns the connection registry and
// every ConnectionSession in it. Engine errors become a single error event;
// the connection is never closed from here.
type Choreographer struct {
	engine   services.InterviewService
	stt      stt.Provider                  // nil: capture finalizes to the placeholder transcript
	archive  mongorepo.LiveEventRepository // nil: archiving disabled
	log      *logrus.Logger
	registry *Registry
	delays   Delays
}

func NewChoreographer(engine services.InterviewService, transcriber stt.Provider, archive mongorepo.LiveEventRepository, log *logrus.Logger, delays Delays) *Choreographer {
	return &Choreographer{
		engine:   engine,
		stt:      transcriber,
		archive:  archive,
		log:      log,
		registry: NewRegistry(),
		delays:   delays,
	}
}

func (c *Choreographer) Registry() *Registry { return c.registry }

// StartInterview creates the session through the turn engine, binds the
// connection, greets, and schedules the opening question.
func (c *Choreographer) StartInterview(ctx context.Context, connID string, conn Conn, req StartRequest) {
	res, err := c.engine.Start(ctx, services.StartInput{
		UserID:        req.UserID,
		Role:          req.Role,
		Difficulty:    req.Difficulty,
		InterviewType: req.InterviewType,
		MaxQuestions:  req.MaxQuestions,
	})
	if err != nil {
		c.emitError(conn, connID, "", err)
		return
	}

	cs := &ConnectionSession{
		SessionID:      res.SessionID,
		UserID:         req.UserID,
		QuestionID:     res.QuestionID,
		QuestionText:   res.Question,
		QuestionNumber: res.QuestionNumber,
		MaxQuestions:   res.MaxQuestions,
	}
	c.registry.Bind(connID, cs)

	greeting := fmt.Sprintf(
		"Hello! I'm your AI interviewer for this %s level %s interview. Let's begin with the first question.",
		res.Difficulty, req.Role)
	c.speak(conn, connID, cs, greeting, "friendly", nil)

	cs.schedule(c.delays.Greeting, func() {
		_, text, number := cs.CurrentQuestion()
		c.speak(conn, connID, cs, text, "professional", &SpeakMetadata{
			QuestionNumber: number,
			MaxQuestions:   cs.MaxQuestions,
		})
		c.emit(conn, EventAvatarListening, nil)
	})
}

// AppendAudio accumulates an inbound voice chunk into the capture buffer.
func (c *Choreographer) AppendAudio(connID string, chunk []byte) {
	cs, ok := c.registry.Get(connID)
	if !ok {
		return
	}
	cs.AppendAudio(chunk)
}

// StopSpeaking finalizes the capture into a transcript and runs the turn.
func (c *Choreographer) StopSpeaking(ctx context.Context, connID string, conn Conn) {
	cs, ok := c.registry.Get(connID)
	if !ok {
		return
	}

	transcript := c.finalizeTranscript(ctx, cs.TakeCapture())
	c.emit(conn, EventTranscriptUpdate, TranscriptPayload{Text: transcript, IsFinal: true})
	c.archiveEvent(cs, connID, EventTranscriptUpdate, transcript, 0, "")
	c.emit(conn, EventAvatarThinking, nil)

	questionID, _, _ := cs.CurrentQuestion()
	result, err := c.engine.SubmitAnswer(ctx, cs.SessionID, questionID, transcript)
	if err != nil {
		// The engine made no partial writes; the binding keeps pointing at
		// the same unanswered question so the client may retry.
		c.emitError(conn, connID, cs.SessionID, err)
		return
	}

	feedback := FeedbackText(result.Score, result.Feedback)
	c.speak(conn, connID, cs, feedback, feedbackEmotion(result.Score), nil)

	if result.Completed {
		report := result.Report
		cs.schedule(c.delays.Closing, func() {
			c.sendClosing(conn, connID, cs, report)
		})
		return
	}

	next := result.NextQuestion
	cs.schedule(c.delays.PostFeedback, func() {
		cs.BindQuestion(next.QuestionID, next.Question, next.QuestionNumber)
		c.speak(conn, connID, cs, next.Question, "professional", &SpeakMetadata{
			QuestionNumber: next.QuestionNumber,
			MaxQuestions:   next.MaxQuestions,
		})
		c.emit(conn, EventAvatarListening, nil)
	})
}

// EndInterview discards the connection binding. The durable session is left
// untouched; only a completed final turn marks it ended.
func (c *Choreographer) EndInterview(connID string) {
	c.registry.Remove(connID)
}

// Disconnect releases everything tied to the connection.
func (c *Choreographer) Disconnect(connID string) {
	c.registry.Remove(connID)
}

func (c *Choreographer) sendClosing(conn Conn, connID string, cs *ConnectionSession, report *models.Report) {
	closing := fmt.Sprintf(
		"Great work! You've completed the interview. Your overall score is %.0f out of 100. Let me show you the detailed results.",
		report.OverallScore)
	c.speak(conn, connID, cs, closing, "friendly", nil)

	cs.schedule(c.delays.Complete, func() {
		c.emit(conn, EventInterviewComplete, CompletePayload{Report: report})
		c.archiveEvent(cs, connID, EventInterviewComplete, "", 0, "")
	})
}

const placeholderTranscript = "Sample transcribed answer"

func (c *Choreographer) finalizeTranscript(ctx context.Context, audio []byte) string {
	if c.stt == nil || len(audio) == 0 {
		return placeholderTranscript
	}
	text, _, err := c.stt.Transcribe(ctx, audio, "en-US")
	if err != nil || text == "" {
		if err != nil {
			c.log.WithError(err).Warn("transcription failed; using placeholder")
		}
		return placeholderTranscript
	}
	return text
}

func (c *Choreographer) speak(conn Conn, connID string, cs *ConnectionSession, text, emotion string, md *SpeakMetadata) {
	c.emit(conn, EventAvatarSpeak, SpeakPayload{
		Audio:    SpeechAudio(text),
		Text:     text,
		Visemes:  GenerateVisemes(text),
		Emotion:  emotion,
		Face:     EmotionParameters(emotion),
		Metadata: md,
	})
	qn := 0
	if md != nil {
		qn = md.QuestionNumber
	}
	c.archiveEvent(cs, connID, EventAvatarSpeak, text, qn, emotion)
}

// emit writes to the connection, swallowing errors: a closed connection
// makes every pending emission a no-op.
func (c *Choreographer) emit(conn Conn, event string, payload any) {
	if err := conn.Emit(event, payload); err != nil {
		c.log.WithError(err).WithField("event", event).Debug("emit dropped")
	}
}

func (c *Choreographer) emitError(conn Conn, connID, sessionID string, err error) {
	c.log.WithError(err).WithFields(logrus.Fields{
		"conn_id":    connID,
		"session_id": sessionID,
	}).Warn("live turn failed")

	msg := "Failed to process answer"
	var ae *utils.AppError
	if errors.As(err, &ae) && ae.Message != "" {
		msg = ae.Message
	}
	c.emit(conn, EventError, ErrorPayload{Message: msg})
}

const archiveTTL = 24 * time.Hour

// archiveEvent records an emission in the live-event archive, best effort.
func (c *Choreographer) archiveEvent(cs *ConnectionSession, connID, event, text string, questionNumber int, emotion string) {
	if c.archive == nil {
		return
	}
	doc := &models.LiveEvent{
		SessionID:      cs.SessionID,
		ConnID:         connID,
		Event:          event,
		Text:           text,
		QuestionNumber: questionNumber,
		Emotion:        emotion,
		Timestamp:      time.Now().UTC(),
		ExpiresAt:      time.Now().UTC().Add(archiveTTL),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.archive.Insert(ctx, doc); err != nil {
			c.log.WithError(err).Debug("live event archive insert failed")
		}
	}()
}
