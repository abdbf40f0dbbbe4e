package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mockview/backend/internal/models"
	"github.com/mockview/backend/internal/utils"
)

type QuestionRepository interface {
	Create(ctx context.Context, q *models.Question) error
	GetByID(ctx context.Context, id string) (*models.Question, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.Question, error)
}

type questionRepo struct {
	db *gorm.DB
}

func NewQuestionRepo(db *gorm.DB) QuestionRepository {
	return &questionRepo{db: db}
}

func (r *questionRepo) Create(ctx context.Context, q *models.Question) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *questionRepo) GetByID(ctx context.Context, id string) (*models.Question, error) {
	var q models.Question
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.StatusActive).
		Take(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questionRepo) ListBySession(ctx context.Context, sessionID string) ([]models.Question, error) {
	var rows []models.Question
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND status = ?", sessionID, models.StatusActive).
		Order("question_number ASC").
		Find(&rows).Error
	return rows, err
}
