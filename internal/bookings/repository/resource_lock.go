package repository

import (
	"context"
	"time"

	"microbus/pkg/config"
	"microbus/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ResourceLockRepository provides advisory locks built on unique _id
// inserts. A second Acquire for the same resource fails with a duplicate
// key error until the holder releases it. A holder that crashes never
// calls Release, so contenders reclaim locks past their expires_at via
// ReclaimExpired before giving up.
type ResourceLockRepository interface {
	Acquire(ctx context.Context, lock *model.ResourceLock) (*model.ResourceLock, error)
	Release(ctx context.Context, lockID string) error
	ReclaimExpired(ctx context.Context, lockID string, now time.Time) (bool, error)
}

type mongoResourceLockRepository struct {
	collection *mongo.Collection
}

func NewResourceLockRepository(cfg *config.Config) ResourceLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoResourceLockRepository{
		collection: db.Collection("Resource_locks"),
	}
}

func (r *mongoResourceLockRepository) Acquire(ctx context.Context, lock *model.ResourceLock) (*model.ResourceLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}

	return lock, nil
}

func (r *mongoResourceLockRepository) Release(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}

// ReclaimExpired deletes the lock only if its expires_at has passed. The
// filter makes the delete conditional, so a live holder's lock is never
// removed. Returns true when a stale lock was actually reclaimed.
func (r *mongoResourceLockRepository) ReclaimExpired(ctx context.Context, lockID string, now time.Time) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":        lockID,
		"expires_at": bson.M{"$lt": now},
	})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}
