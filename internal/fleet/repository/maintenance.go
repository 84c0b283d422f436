package repository

import (
	"context"
	"fmt"
	"time"

	"microbus/pkg/config"
	"microbus/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const MaintenanceCollection = "Maintenance"

// MaintenanceRepository stores one document per tracked vehicle paper,
// keyed by its canonical type. Upsert replaces whatever expiry was there.
type MaintenanceRepository interface {
	FindAll(ctx context.Context) ([]*model.MaintenanceDocument, error)
	Upsert(ctx context.Context, doc *model.MaintenanceDocument) error
}

type mongoMaintenanceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoMaintenanceRepository(cfg *config.Config) MaintenanceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoMaintenanceRepository{
		cfg:        cfg,
		collection: db.Collection(MaintenanceCollection),
	}
}

// FindAll returns all tracked documents, earliest expiry first.
func (r *mongoMaintenanceRepository) FindAll(ctx context.Context) ([]*model.MaintenanceDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "expiry_date", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find maintenance documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*model.MaintenanceDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode maintenance documents: %w", err)
	}

	return docs, nil
}

func (r *mongoMaintenanceRepository) Upsert(ctx context.Context, doc *model.MaintenanceDocument) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	doc.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.Type}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert maintenance document: %w", err)
	}

	return nil
}
