package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/mockview/backend/internal/models"
)

type AnswerRepository interface {
	Create(ctx context.Context, a *models.Answer) error
	// ListBySession returns answers in turn order (oldest first).
	ListBySession(ctx context.Context, sessionID string) ([]models.Answer, error)
	HasFollowup(ctx context.Context, sessionID string) (bool, error)
}

type answerRepo struct {
	db *gorm.DB
}

func NewAnswerRepo(db *gorm.DB) AnswerRepository {
	return &answerRepo{db: db}
}

func (r *answerRepo) Create(ctx context.Context, a *models.Answer) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *answerRepo) ListBySession(ctx context.Context, sessionID string) ([]models.Answer, error) {
	var rows []models.Answer
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND status = ?", sessionID, models.StatusActive).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *answerRepo) HasFollowup(ctx context.Context, sessionID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Answer{}).
		Where("session_id = ? AND is_followup_triggered = TRUE AND status = ?",
			sessionID, models.StatusActive).
		Count(&n).Error
	return n > 0, err
}
