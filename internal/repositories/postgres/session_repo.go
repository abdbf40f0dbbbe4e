package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mockview/backend/internal/models"
	"github.com/mockview/backend/internal/utils"
)

type SessionRepository interface {
	// CreateWithFirstQuestion inserts the session and its opening question
	// atomically; neither row survives a failure.
	CreateWithFirstQuestion(ctx context.Context, s *models.InterviewSession, q *models.Question) error
	GetByID(ctx context.Context, id string) (*models.InterviewSession, error)
	// UpdateProgress persists the post-turn difficulty and running score.
	UpdateProgress(ctx context.Context, id string, difficulty models.Difficulty, overallScore float64) error
	SetQuestionCount(ctx context.Context, id string, count int) error
	// Complete stamps ended_at and stores the final report. It refuses to
	// touch a session that already ended.
	Complete(ctx context.Context, id string, endedAt time.Time, report datatypes.JSON, durationMinutes int) error
	ListCompletedByUser(ctx context.Context, userID string) ([]models.InterviewSession, error)
}

type sessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) CreateWithFirstQuestion(ctx context.Context, s *models.InterviewSession, q *models.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		if err := tx.Create(q).Error; err != nil {
			return err
		}
		return tx.Model(&models.InterviewSession{}).
			Where("id = ?", s.ID).
			Update("question_count", 1).Error
	})
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*models.InterviewSession, error) {
	var s models.InterviewSession
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.StatusActive).
		Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) UpdateProgress(ctx context.Context, id string, difficulty models.Difficulty, overallScore float64) error {
	return r.db.WithContext(ctx).Model(&models.InterviewSession{}).
		Where("id = ? AND status = ?", id, models.StatusActive).
		Updates(map[string]any{
			"current_difficulty": difficulty,
			"overall_score":      overallScore,
		}).Error
}

func (r *sessionRepo) SetQuestionCount(ctx context.Context, id string, count int) error {
	return r.db.WithContext(ctx).Model(&models.InterviewSession{}).
		Where("id = ? AND status = ?", id, models.StatusActive).
		Update("question_count", count).Error
}

func (r *sessionRepo) Complete(ctx context.Context, id string, endedAt time.Time, report datatypes.JSON, durationMinutes int) error {
	return r.db.WithContext(ctx).Model(&models.InterviewSession{}).
		Where("id = ? AND status = ? AND ended_at IS NULL", id, models.StatusActive).
		Updates(map[string]any{
			"ended_at":               endedAt.UTC(),
			"report":                 report,
			"total_duration_minutes": durationMinutes,
		}).Error
}

func (r *sessionRepo) ListCompletedByUser(ctx context.Context, userID string) ([]models.InterviewSession, error) {
	var rows []models.InterviewSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND question_count > 0 AND ended_at IS NOT NULL",
			userID, models.StatusActive).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
