package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mockview/backend/internal/services"
	"github.com/mockview/backend/internal/utils"
)

// InterviewHandler is the synchronous transport adapter over the turn
// engine. Turn calls run in the request's own goroutine.
type InterviewHandler struct {
	svc services.InterviewService
}

func NewInterviewHandler(svc services.InterviewService) *InterviewHandler {
	return &InterviewHandler{svc: svc}
}

type StartInterviewRequest struct {
	Role          string `json:"role" binding:"required"`
	Difficulty    string `json:"difficulty" binding:"required"`
	InterviewType string `json:"interviewType"`
	MaxQuestions  int    `json:"maxQuestions"`
}

func (h *InterviewHandler) Start(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req StartInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeValidation, "InterviewHandler.Start", "role and difficulty are required", err))
		return
	}

	res, err := h.svc.Start(c.Request.Context(), services.StartInput{
		UserID:        userID,
		Role:          req.Role,
		Difficulty:    req.Difficulty,
		InterviewType: req.InterviewType,
		MaxQuestions:  req.MaxQuestions,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

type SubmitAnswerRequest struct {
	SessionID  string `json:"sessionId" binding:"required"`
	QuestionID string `json:"questionId" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

func (h *InterviewHandler) Answer(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeValidation, "InterviewHandler.Answer", "session id, question id, and answer are required", err))
		return
	}

	res, err := h.svc.SubmitAnswer(c.Request.Context(), req.SessionID, req.QuestionID, req.Answer)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *InterviewHandler) Report(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	res, err := h.svc.GetReport(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *InterviewHandler) History(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	res, err := h.svc.GetHistory(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": res})
}

func (h *InterviewHandler) SessionQA(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	res, err := h.svc.GetSessionQA(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"qa": res})
}
