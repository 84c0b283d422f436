package repository

import (
	"context"
	"fmt"
	"time"

	"microbus/pkg/config"
	"microbus/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AccessLogRepository stores successful login records. Only the most
// recent entries are kept; Prune trims the rest after each insert.
type AccessLogRepository interface {
	Insert(ctx context.Context, entry *model.AccessLog) error
	Recent(ctx context.Context, limit int) ([]*model.AccessLog, error)
	Prune(ctx context.Context, keep int) error
}

type mongoAccessLogRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewAccessLogRepository(cfg *config.Config) AccessLogRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAccessLogRepository{
		cfg:        cfg,
		collection: db.Collection("Access_logs"),
	}
}

func (r *mongoAccessLogRepository) Insert(ctx context.Context, entry *model.AccessLog) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	entry.LoggedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to insert access log: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAccessLogRepository) Recent(ctx context.Context, limit int) ([]*model.AccessLog, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "logged_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find access logs: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*model.AccessLog
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode access logs: %w", err)
	}

	return entries, nil
}

// Prune deletes everything older than the newest keep entries.
func (r *mongoAccessLogRepository) Prune(ctx context.Context, keep int) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "logged_at", Value: -1}}).
		SetSkip(int64(keep)).
		SetProjection(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("failed to find stale access logs: %w", err)
	}
	defer cursor.Close(ctx)

	var stale []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &stale); err != nil {
		return fmt.Errorf("failed to decode stale access logs: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}

	ids := make([]primitive.ObjectID, 0, len(stale))
	for _, s := range stale {
		ids = append(ids, s.ID)
	}

	_, err = r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return fmt.Errorf("failed to prune access logs: %w", err)
	}

	return nil
}
