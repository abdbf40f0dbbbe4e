package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mockview/backend/config"
	"github.com/mockview/backend/internal/api/handlers"
	"github.com/mockview/backend/internal/api/middleware"
	"github.com/mockview/backend/internal/api/routes"
	"github.com/mockview/backend/internal/cache"
	"github.com/mockview/backend/internal/live"
	"github.com/mockview/backend/internal/logger"
	"github.com/mockview/backend/internal/providers/oracle"
	"github.com/mockview/backend/internal/providers/stt"
	mongorepo "github.com/mockview/backend/internal/repositories/mongo"
	pgrepo "github.com/mockview/backend/internal/repositories/postgres"
	"github.com/mockview/backend/internal/services"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()
	ctx := context.Background()

	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Fatal("postgres init failed")
	}
	if err := config.MigratePostgres(); err != nil {
		log.WithError(err).Fatal("postgres migration failed")
	}

	var constCache cache.Cache
	if err := config.InitRedis(); err != nil {
		log.WithError(err).Warn("redis unavailable; constant cache disabled")
	} else {
		constCache = cache.NewRedisCache(config.RedisClient)
	}

	var liveArchive mongorepo.LiveEventRepository
	if err := config.InitMongo(); err != nil {
		log.WithError(err).Warn("mongo unavailable; live event archive disabled")
	} else {
		if err := config.EnsureMongoIndexes(); err != nil {
			log.WithError(err).Warn("mongo index setup failed")
		}
		liveArchive = mongorepo.NewLiveEventRepo(config.MongoDatabase())
	}

	db := config.PostgresDB
	sessionRepo := pgrepo.NewSessionRepo(db)
	questionRepo := pgrepo.NewQuestionRepo(db)
	answerRepo := pgrepo.NewAnswerRepo(db)
	userRepo := pgrepo.NewUserRepo(db)
	constantRepo := pgrepo.NewConstantRepo(db)

	constants := services.NewConstantService(constantRepo, constCache, 5*time.Minute)

	jwtSecret := os.Getenv("JWT_SECRET")
	if v, err := constants.Get(ctx, "JWT_SECRET"); err == nil {
		jwtSecret = v
	}
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not configured")
	}

	gemini, err := oracle.NewGemini(ctx,
		os.Getenv("VERTEX_PROJECT_ID"),
		os.Getenv("VERTEX_LOCATION"),
		os.Getenv("VERTEX_MODEL"),
	)
	if err != nil {
		log.WithError(err).Fatal("vertex ai init failed")
	}
	defer gemini.Close()

	var transcriber stt.Provider
	if speech, err := stt.NewGoogleSpeech(ctx); err != nil {
		log.WithError(err).Warn("google speech unavailable; live transcripts use placeholder text")
	} else {
		transcriber = speech
		defer speech.Close()
	}

	reportSvc := services.NewReportService(gemini)
	interviewSvc := services.NewInterviewService(sessionRepo, questionRepo, answerRepo, gemini, reportSvc, log)
	authSvc := services.NewAuthService(userRepo, jwtSecret, 24*time.Hour)
	choreo := live.NewChoreographer(interviewSvc, transcriber, liveArchive, log, live.DefaultDelays())

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Auth:       handlers.NewAuthHandler(authSvc),
		Interview:  handlers.NewInterviewHandler(interviewSvc),
		LiveEvents: handlers.NewLiveEventsHandler(interviewSvc, liveArchive),
		WS:         handlers.NewWSHandler(choreo, log),
		JWTSecret:  jwtSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("server starting")
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
