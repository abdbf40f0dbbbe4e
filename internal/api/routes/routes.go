package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/mockview/backend/internal/api/handlers"
	"github.com/mockview/backend/internal/api/middleware"
)

type Deps struct {
	Auth       *handlers.AuthHandler
	Interview  *handlers.InterviewHandler
	LiveEvents *handlers.LiveEventsHandler
	WS         *handlers.WSHandler
	JWTSecret  string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.POST("/api/auth/register", d.Auth.Register)
	r.POST("/api/auth/login", d.Auth.Login)

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth(d.JWTSecret))

	auth.POST("/api/interview/start", d.Interview.Start)
	auth.POST("/api/interview/answer", d.Interview.Answer)
	auth.GET("/api/interview/report/:session_id", d.Interview.Report)
	auth.GET("/api/interview/history", d.Interview.History)
	auth.GET("/api/interview/session/:session_id/qa", d.Interview.SessionQA)
	auth.GET("/api/interview/session/:session_id/events", d.LiveEvents.SessionEvents)

	// Real-time duplex channel
	auth.GET("/ws/interview", d.WS.InterviewWS)
}
