package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mockview/backend/internal/models"
)

type LiveEventRepository interface {
	Insert(ctx context.Context, e *models.LiveEvent) error
	ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.LiveEvent, error)
}

type liveEventRepo struct {
	col *mongo.Collection
}

func NewLiveEventRepo(db *mongo.Database) LiveEventRepository {
	return &liveEventRepo{col: db.Collection("live_events")}
}

func (r *liveEventRepo) Insert(ctx context.Context, e *models.LiveEvent) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, e)
	return err
}

func (r *liveEventRepo) ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.LiveEvent, error) {
	if limit <= 0 {
		limit = 500
	}

	cur, err := r.col.Find(ctx,
		bson.M{"session_id": sessionID},
		options.Find().
			SetSort(bson.D{{Key: "timestamp", Value: 1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.LiveEvent
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
