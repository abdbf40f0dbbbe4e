package services

import (
	"context"
	"errors"
	"time"

	"github.com/mockview/backend/internal/cache"
	pgrepo "github.com/mockview/backend/internal/repositories/postgres"
	"github.com/mockview/backend/internal/utils"
)

// ConstantService resolves operational constants (AI keys, token secrets)
// from the master_constants table through a shared cache, so rotations take
// effect without a restart once the TTL lapses.
type ConstantService interface {
	Get(ctx context.Context, key string) (string, error)
	Refresh(ctx context.Context, key string) (string, error)
}

type constantService struct {
	constants pgrepo.ConstantRepository
	cache     cache.Cache
	ttl       time.Duration
}

func NewConstantService(constants pgrepo.ConstantRepository, c cache.Cache, ttl time.Duration) ConstantService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &constantService{constants: constants, cache: c, ttl: ttl}
}

func cacheKey(key string) string { return "constant:" + key }

func (s *constantService) Get(ctx context.Context, key string) (string, error) {
	const op = "ConstantService.Get"

	if key == "" {
		return "", utils.E(utils.CodeValidation, op, "constant key is required", nil)
	}

	if s.cache != nil {
		var cached string
		if hit, err := s.cache.GetJSON(ctx, cacheKey(key), &cached); err == nil && hit {
			return cached, nil
		}
	}

	row, err := s.constants.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return "", utils.E(utils.CodeNotFound, op, "configuration constant not found: "+key, err)
		}
		return "", utils.E(utils.CodeInternal, op, "failed to load constant", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, cacheKey(key), row.ConstantValue, s.ttl)
	}
	return row.ConstantValue, nil
}

func (s *constantService) Refresh(ctx context.Context, key string) (string, error) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, cacheKey(key))
	}
	return s.Get(ctx, key)
}
