package live

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mockview/backend/internal/models"
	"github.com/mockview/backend/internal/services"
	"github.com/mockview/backend/internal/utils"
)

type recEvent struct {
	Event   string
	Payload any
}

// recConn records emissions. Scheduled choreography emits from timer
// goroutines, so access is synchronized and assertions poll via waitFor.
type recConn struct {
	mu     sync.Mutex
	events []recEvent
}

func (c *recConn) Emit(event string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, recEvent{Event: event, Payload: payload})
	return nil
}

func (c *recConn) snapshot() []recEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]recEvent, len(c.events))
	copy(out, c.events)
	return out
}

func (c *recConn) waitFor(t *testing.T, n int) []recEvent {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if evs := c.snapshot(); len(evs) >= n {
			return evs
		}
		time.Sleep(5 * time.Millisecond)
	}
	evs := c.snapshot()
	t.Fatalf("timed out waiting for %d events, got %d: %+v", n, len(evs), evs)
	return nil
}

type submitCall struct {
	SessionID  string
	QuestionID string
	Answer     string
}

type fakeEngine struct {
	mu       sync.Mutex
	startRes *services.StartResult
	startErr error
	turnRes  *services.TurnResult
	turnErr  error
	submits  []submitCall
}

func (f *fakeEngine) Start(context.Context, services.StartInput) (*services.StartResult, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.startRes, nil
}

func (f *fakeEngine) SubmitAnswer(_ context.Context, sessionID, questionID, answerText string) (*services.TurnResult, error) {
	f.mu.Lock()
	f.submits = append(f.submits, submitCall{SessionID: sessionID, QuestionID: questionID, Answer: answerText})
	f.mu.Unlock()
	if f.turnErr != nil {
		return nil, f.turnErr
	}
	return f.turnRes, nil
}

func (f *fakeEngine) GetReport(context.Context, string, string) (*services.SessionReport, error) {
	return nil, nil
}

func (f *fakeEngine) GetHistory(context.Context, string) ([]services.HistoryItem, error) {
	return nil, nil
}

func (f *fakeEngine) GetSessionQA(context.Context, string, string) ([]services.QAItem, error) {
	return nil, nil
}

func (f *fakeEngine) lastSubmit(t *testing.T) submitCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.submits) == 0 {
		t.Fatal("engine received no submit")
	}
	return f.submits[len(f.submits)-1]
}

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func startedChoreo(t *testing.T, engine *fakeEngine, delays Delays) (*Choreographer, *recConn) {
	t.Helper()
	if engine.startRes == nil {
		engine.startRes = &services.StartResult{
			SessionID:      "s1",
			QuestionID:     "q1",
			Question:       "What is a goroutine?",
			QuestionNumber: 1,
			MaxQuestions:   3,
			Difficulty:     models.DifficultyMedium,
		}
	}
	c := NewChoreographer(engine, nil, nil, quietLog(), delays)
	conn := &recConn{}
	c.StartInterview(context.Background(), "conn1", conn, StartRequest{
		UserID:     "u1",
		Role:       "Backend Engineer",
		Difficulty: "medium",
	})
	return c, conn
}

func speakPayload(t *testing.T, ev recEvent) SpeakPayload {
	t.Helper()
	if ev.Event != EventAvatarSpeak {
		t.Fatalf("event = %s, want %s", ev.Event, EventAvatarSpeak)
	}
	p, ok := ev.Payload.(SpeakPayload)
	if !ok {
		t.Fatalf("payload type %T", ev.Payload)
	}
	return p
}

func TestStartInterviewChoreography(t *testing.T) {
	engine := &fakeEngine{}
	c, conn := startedChoreo(t, engine, Delays{})

	evs := conn.waitFor(t, 3)

	greeting := speakPayload(t, evs[0])
	if greeting.Emotion != "friendly" || !strings.Contains(greeting.Text, "Backend Engineer") {
		t.Fatalf("greeting = %+v", greeting)
	}
	if !strings.Contains(greeting.Text, "medium") {
		t.Fatalf("greeting must announce the difficulty: %q", greeting.Text)
	}
	if len(greeting.Visemes) == 0 || greeting.Audio == "" {
		t.Fatalf("greeting missing speech artifacts: %+v", greeting)
	}
	if greeting.Face["smile"] != 0.6 {
		t.Fatalf("greeting face params = %+v, want friendly preset", greeting.Face)
	}

	question := speakPayload(t, evs[1])
	if question.Text != "What is a goroutine?" || question.Emotion != "professional" {
		t.Fatalf("question = %+v", question)
	}
	if question.Metadata == nil || question.Metadata.QuestionNumber != 1 || question.Metadata.MaxQuestions != 3 {
		t.Fatalf("question metadata = %+v", question.Metadata)
	}

	if evs[2].Event != EventAvatarListening {
		t.Fatalf("event 3 = %s, want %s", evs[2].Event, EventAvatarListening)
	}

	cs, ok := c.Registry().Get("conn1")
	if !ok || cs.SessionID != "s1" {
		t.Fatalf("connection not bound: %v %v", cs, ok)
	}
	id, _, _ := cs.CurrentQuestion()
	if id != "q1" {
		t.Fatalf("bound question = %s, want q1", id)
	}
}

func TestStartInterviewEngineError(t *testing.T) {
	engine := &fakeEngine{
		startErr: utils.E(utils.CodeValidation, "InterviewService.Start", "user id and role are required", nil),
	}
	c := NewChoreographer(engine, nil, nil, quietLog(), Delays{})
	conn := &recConn{}
	c.StartInterview(context.Background(), "conn1", conn, StartRequest{})

	evs := conn.snapshot()
	if len(evs) != 1 || evs[0].Event != EventError {
		t.Fatalf("events = %+v, want a single error", evs)
	}
	if p := evs[0].Payload.(ErrorPayload); p.Message != "user id and role are required" {
		t.Fatalf("error message = %q", p.Message)
	}
	if c.Registry().Len() != 0 {
		t.Fatal("failed start must not bind the connection")
	}
}

func TestStopSpeakingAdvancesToNextQuestion(t *testing.T) {
	engine := &fakeEngine{
		turnRes: &services.TurnResult{
			Score:    85,
			Feedback: "clear explanation",
			NextQuestion: &services.NextQuestion{
				QuestionID:     "q2",
				Question:       "Explain channel deadlocks.",
				QuestionNumber: 2,
				MaxQuestions:   3,
				Difficulty:     models.DifficultyHard,
			},
		},
	}
	c, conn := startedChoreo(t, engine, Delays{})
	conn.waitFor(t, 3)

	c.StopSpeaking(context.Background(), "conn1", conn)
	evs := conn.waitFor(t, 8)

	if evs[3].Event != EventTranscriptUpdate {
		t.Fatalf("event 4 = %s, want %s", evs[3].Event, EventTranscriptUpdate)
	}
	tp := evs[3].Payload.(TranscriptPayload)
	if !tp.IsFinal || tp.Text != "Sample transcribed answer" {
		t.Fatalf("transcript = %+v", tp)
	}
	if evs[4].Event != EventAvatarThinking {
		t.Fatalf("event 5 = %s, want %s", evs[4].Event, EventAvatarThinking)
	}

	feedback := speakPayload(t, evs[5])
	if !strings.HasPrefix(feedback.Text, "Excellent answer!") || feedback.Emotion != "positive" {
		t.Fatalf("feedback = %+v", feedback)
	}

	next := speakPayload(t, evs[6])
	if next.Text != "Explain channel deadlocks." || next.Metadata == nil || next.Metadata.QuestionNumber != 2 {
		t.Fatalf("next question = %+v", next)
	}
	if evs[7].Event != EventAvatarListening {
		t.Fatalf("event 8 = %s, want %s", evs[7].Event, EventAvatarListening)
	}

	call := engine.lastSubmit(t)
	if call.SessionID != "s1" || call.QuestionID != "q1" || call.Answer != "Sample transcribed answer" {
		t.Fatalf("submit = %+v", call)
	}

	cs, _ := c.Registry().Get("conn1")
	id, _, number := cs.CurrentQuestion()
	if id != "q2" || number != 2 {
		t.Fatalf("binding after turn = %s #%d, want q2 #2", id, number)
	}
}

func TestStopSpeakingEngineErrorKeepsBinding(t *testing.T) {
	engine := &fakeEngine{
		turnErr: utils.E(utils.CodeTransientUnavailable, "InterviewService.SubmitAnswer", "oracle temporarily unavailable", nil),
	}
	c, conn := startedChoreo(t, engine, Delays{})
	conn.waitFor(t, 3)

	c.StopSpeaking(context.Background(), "conn1", conn)
	evs := conn.waitFor(t, 6)

	if evs[5].Event != EventError {
		t.Fatalf("event 6 = %s, want %s", evs[5].Event, EventError)
	}
	if p := evs[5].Payload.(ErrorPayload); p.Message != "oracle temporarily unavailable" {
		t.Fatalf("error message = %q", p.Message)
	}

	// The turn made no writes; the same question stays bound for a retry.
	cs, ok := c.Registry().Get("conn1")
	if !ok {
		t.Fatal("failed turn must not unbind the connection")
	}
	id, _, _ := cs.CurrentQuestion()
	if id != "q1" {
		t.Fatalf("binding after failed turn = %s, want q1", id)
	}
}

func TestStopSpeakingCompletion(t *testing.T) {
	report := &models.Report{OverallScore: 78, Strengths: []string{"depth"}}
	engine := &fakeEngine{
		turnRes: &services.TurnResult{
			Completed: true,
			Score:     65,
			Feedback:  "decent finish",
			Report:    report,
		},
	}
	c, conn := startedChoreo(t, engine, Delays{})
	conn.waitFor(t, 3)

	c.StopSpeaking(context.Background(), "conn1", conn)
	evs := conn.waitFor(t, 8)

	feedback := speakPayload(t, evs[5])
	if !strings.HasPrefix(feedback.Text, "Good attempt.") || feedback.Emotion != "encouraging" {
		t.Fatalf("feedback = %+v", feedback)
	}

	closing := speakPayload(t, evs[6])
	if closing.Emotion != "friendly" || !strings.Contains(closing.Text, "78 out of 100") {
		t.Fatalf("closing = %+v", closing)
	}

	if evs[7].Event != EventInterviewComplete {
		t.Fatalf("event 8 = %s, want %s", evs[7].Event, EventInterviewComplete)
	}
	if p := evs[7].Payload.(CompletePayload); p.Report != report {
		t.Fatalf("complete payload = %+v", p)
	}
}

func TestDisconnectCancelsScheduledEmissions(t *testing.T) {
	engine := &fakeEngine{}
	c, conn := startedChoreo(t, engine, Delays{Greeting: 50 * time.Millisecond})

	// Only the greeting is out; the question emission is still pending.
	evs := conn.waitFor(t, 1)
	if len(evs) != 1 {
		t.Fatalf("events before disconnect = %d, want 1", len(evs))
	}

	c.AppendAudio("conn1", []byte("chunk"))
	c.Disconnect("conn1")

	if c.Registry().Len() != 0 {
		t.Fatal("disconnect must remove the binding")
	}

	time.Sleep(120 * time.Millisecond)
	if got := len(conn.snapshot()); got != 1 {
		t.Fatalf("released timers still emitted: %d events", got)
	}

	// Inputs for a gone connection are dropped.
	c.AppendAudio("conn1", []byte("late"))
	c.StopSpeaking(context.Background(), "conn1", conn)
	engine.mu.Lock()
	n := len(engine.submits)
	engine.mu.Unlock()
	if n != 0 {
		t.Fatal("stop-speaking on a gone connection must not reach the engine")
	}
}

func TestEndInterviewLeavesSessionRunning(t *testing.T) {
	engine := &fakeEngine{}
	c, conn := startedChoreo(t, engine, Delays{})
	conn.waitFor(t, 3)

	c.EndInterview("conn1")
	if c.Registry().Len() != 0 {
		t.Fatal("end-interview must drop the binding")
	}
	// No completion or error is emitted; the durable session is untouched.
	if got := conn.snapshot(); len(got) != 3 {
		t.Fatalf("end-interview emitted extra events: %+v", got[3:])
	}
}
