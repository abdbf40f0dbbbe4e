package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mockview/backend/internal/models"
	"github.com/mockview/backend/internal/utils"
)

type ConstantRepository interface {
	GetByKey(ctx context.Context, key string) (*models.MasterConstant, error)
}

type constantRepo struct {
	db *gorm.DB
}

func NewConstantRepo(db *gorm.DB) ConstantRepository {
	return &constantRepo{db: db}
}

func (r *constantRepo) GetByKey(ctx context.Context, key string) (*models.MasterConstant, error) {
	var c models.MasterConstant
	err := r.db.WithContext(ctx).
		Where("constant_key = ? AND status = ?", key, models.StatusActive).
		Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
