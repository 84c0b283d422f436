package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	fleeterrors "microbus/internal/fleet/errors"
	"microbus/pkg/config"
	"microbus/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const IssuesCollection = "Issues"

// IssueStatusUpdate carries the fields an admin changes on an issue.
// ResolvedAt and ResolvedBy are only written when the status moves to
// resolved.
type IssueStatusUpdate struct {
	Status          string
	ResolutionNotes string
	ResolvedAt      *time.Time
	ResolvedBy      string
}

type IssueRepository interface {
	Create(ctx context.Context, issue *model.Issue) error
	FindByID(ctx context.Context, id string) (*model.Issue, error)
	FindAll(ctx context.Context) ([]*model.Issue, error)
	UpdateStatus(ctx context.Context, id string, update IssueStatusUpdate) error
	Delete(ctx context.Context, id string) error
}

type mongoIssueRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoIssueRepository(cfg *config.Config) IssueRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoIssueRepository{
		cfg:        cfg,
		collection: db.Collection(IssuesCollection),
	}
}

func (r *mongoIssueRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoIssueRepository) Create(ctx context.Context, issue *model.Issue) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	issue.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, issue)
	if err != nil {
		return fmt.Errorf("failed to create issue: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		issue.ID = oid.Hex()
	}
	return nil
}

func (r *mongoIssueRepository) FindByID(ctx context.Context, id string) (*model.Issue, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", fleeterrors.ErrInvalidID, id)
	}

	var issue model.Issue
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&issue)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fleeterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find issue: %w", err)
	}

	return &issue, nil
}

// FindAll returns issues newest first, matching the admin dashboard order.
func (r *mongoIssueRepository) FindAll(ctx context.Context) ([]*model.Issue, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find issues: %w", err)
	}
	defer cursor.Close(ctx)

	var issues []*model.Issue
	if err = cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("failed to decode issues: %w", err)
	}

	return issues, nil
}

func (r *mongoIssueRepository) UpdateStatus(ctx context.Context, id string, update IssueStatusUpdate) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", fleeterrors.ErrInvalidID, id)
	}

	set := bson.M{
		"status":           update.Status,
		"resolution_notes": update.ResolutionNotes,
	}
	if update.ResolvedAt != nil {
		set["resolved_at"] = update.ResolvedAt
		set["resolved_by"] = update.ResolvedBy
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update issue: %w", err)
	}
	if result.MatchedCount == 0 {
		return fleeterrors.ErrNotFound
	}

	return nil
}

func (r *mongoIssueRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", fleeterrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete issue: %w", err)
	}
	if result.DeletedCount == 0 {
		return fleeterrors.ErrNotFound
	}

	return nil
}
