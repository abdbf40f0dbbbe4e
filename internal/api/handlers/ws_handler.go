package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/mockview/backend/internal/live"
)

// WSHandler is the real-time transport adapter: one goroutine per
// connection reading client events and handing them to the choreographer.
type WSHandler struct {
	choreo   *live.Choreographer
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(choreo *live.Choreographer, log *logrus.Logger) *WSHandler {
	return &WSHandler{
		choreo: choreo,
		log:    log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsClientMsg struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type startInterviewMsg struct {
	Role          string `json:"role"`
	Difficulty    string `json:"difficulty"`
	InterviewType string `json:"interviewType"`
	MaxQuestions  int    `json:"maxQuestions"`
}

type voiceDataMsg struct {
	Chunk string `json:"chunk"` // base64 audio
}

type wsServerMsg struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// wsConn serializes writes; emissions come from both the reader goroutine
// and fired choreography timers.
type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) Emit(event string, payload any) error {
	b, err := json.Marshal(wsServerMsg{Event: event, Data: payload})
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (h *WSHandler) InterviewWS(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote the response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	connID := uuid.NewString()
	defer h.choreo.Disconnect(connID)

	log := h.log.WithFields(logrus.Fields{"conn_id": connID, "user_id": userID})
	log.Info("live connection opened")
	defer log.Info("live connection closed")

	ctx := c.Request.Context()
	for {
		_, data, rerr := conn.ReadMessage()
		if rerr != nil {
			return
		}

		var msg wsClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = wc.Emit(live.EventError, live.ErrorPayload{Message: "invalid json"})
			continue
		}

		switch msg.Type {
		case "start-interview":
			var start startInterviewMsg
			if err := json.Unmarshal(msg.Data, &start); err != nil {
				_ = wc.Emit(live.EventError, live.ErrorPayload{Message: "invalid start-interview payload"})
				continue
			}
			h.choreo.StartInterview(ctx, connID, wc, live.StartRequest{
				UserID:        userID,
				Role:          start.Role,
				Difficulty:    start.Difficulty,
				InterviewType: start.InterviewType,
				MaxQuestions:  start.MaxQuestions,
			})

		case "voice-data":
			var voice voiceDataMsg
			if err := json.Unmarshal(msg.Data, &voice); err != nil {
				_ = wc.Emit(live.EventError, live.ErrorPayload{Message: "invalid voice-data payload"})
				continue
			}
			chunk, err := base64.StdEncoding.DecodeString(voice.Chunk)
			if err != nil {
				_ = wc.Emit(live.EventError, live.ErrorPayload{Message: "invalid audio chunk"})
				continue
			}
			h.choreo.AppendAudio(connID, chunk)

		case "stop-speaking":
			h.choreo.StopSpeaking(ctx, connID, wc)

		case "end-interview":
			h.choreo.EndInterview(connID)
			return

		default:
			_ = wc.Emit(live.EventError, live.ErrorPayload{Message: "unknown message type"})
		}
	}
}
