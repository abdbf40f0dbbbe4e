package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mockview/backend/internal/models"
	mongorepo "github.com/mockview/backend/internal/repositories/mongo"
	"github.com/mockview/backend/internal/services"
	"github.com/mockview/backend/internal/utils"
)

// LiveEventsHandler serves the archived live-channel event trail for a
// session. With archiving disabled the endpoint degrades to an empty list.
type LiveEventsHandler struct {
	svc     services.InterviewService
	archive mongorepo.LiveEventRepository
}

func NewLiveEventsHandler(svc services.InterviewService, archive mongorepo.LiveEventRepository) *LiveEventsHandler {
	return &LiveEventsHandler{svc: svc, archive: archive}
}

func (h *LiveEventsHandler) SessionEvents(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	sessionID := c.Param("session_id")

	// Ownership gate; the transcript call also covers NOT_FOUND.
	if _, err := h.svc.GetSessionQA(c.Request.Context(), sessionID, userID); err != nil {
		writeError(c, err)
		return
	}

	if h.archive == nil {
		c.JSON(http.StatusOK, gin.H{"events": []models.LiveEvent{}})
		return
	}

	events, err := h.archive.ListBySession(c.Request.Context(), sessionID, 0)
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, "LiveEventsHandler.SessionEvents", "failed to list live events", err))
		return
	}
	if events == nil {
		events = []models.LiveEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
