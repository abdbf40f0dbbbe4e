package services_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/mockview/backend/internal/models"
	"github.com/mockview/backend/internal/services"
	"github.com/mockview/backend/internal/utils"
)

type memConstantRepo struct {
	mu    sync.Mutex
	rows  map[string]string
	reads int
}

func (r *memConstantRepo) GetByKey(_ context.Context, key string) (*models.MasterConstant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	v, ok := r.rows[key]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &models.MasterConstant{ConstantKey: key, ConstantValue: v, Status: models.StatusActive}, nil
}

// memCache is a TTL-less map cache with the same JSON round-trip as the redis
// implementation.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *memCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func TestConstantGetCaches(t *testing.T) {
	ctx := context.Background()
	repo := &memConstantRepo{rows: map[string]string{"JWT_SECRET": "v1"}}
	svc := services.NewConstantService(repo, newMemCache(), time.Minute)

	for i := 0; i < 3; i++ {
		v, err := svc.Get(ctx, "JWT_SECRET")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if v != "v1" {
			t.Fatalf("value = %q, want v1", v)
		}
	}
	if repo.reads != 1 {
		t.Fatalf("db reads = %d, want 1 (subsequent hits served from cache)", repo.reads)
	}
}

func TestConstantRefreshBypassesCache(t *testing.T) {
	ctx := context.Background()
	repo := &memConstantRepo{rows: map[string]string{"JWT_SECRET": "v1"}}
	svc := services.NewConstantService(repo, newMemCache(), time.Minute)

	if _, err := svc.Get(ctx, "JWT_SECRET"); err != nil {
		t.Fatalf("Get: %v", err)
	}

	repo.mu.Lock()
	repo.rows["JWT_SECRET"] = "v2"
	repo.mu.Unlock()

	// A plain Get still sees the cached value; Refresh drops it first.
	if v, _ := svc.Get(ctx, "JWT_SECRET"); v != "v1" {
		t.Fatalf("cached value = %q, want v1", v)
	}
	v, err := svc.Refresh(ctx, "JWT_SECRET")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if v != "v2" {
		t.Fatalf("refreshed value = %q, want v2", v)
	}
}

func TestConstantGetWithoutCache(t *testing.T) {
	ctx := context.Background()
	repo := &memConstantRepo{rows: map[string]string{"JWT_SECRET": "v1"}}
	svc := services.NewConstantService(repo, nil, 0)

	v, err := svc.Get(ctx, "JWT_SECRET")
	if err != nil || v != "v1" {
		t.Fatalf("Get without cache = %q, %v", v, err)
	}

	_, err = svc.Get(ctx, "MISSING")
	if !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("missing key error = %v, want NOT_FOUND", err)
	}

	_, err = svc.Get(ctx, "")
	if !utils.IsCode(err, utils.CodeValidation) {
		t.Fatalf("empty key error = %v, want VALIDATION_ERROR", err)
	}
}
