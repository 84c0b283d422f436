package repository

import (
	"context"
	"errors"
	"fmt"

	bookingserrors "microbus/internal/bookings/errors"
	"microbus/pkg/config"
	"microbus/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserDirectory is the bookings service's read-only view of the Users
// collection. It resolves the authenticated phone to an account and finds
// admins to notify about new bookings.
type UserDirectory interface {
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
	FindAdmins(ctx context.Context) ([]*model.User, error)
}

type mongoUserDirectory struct {
	collection *mongo.Collection
}

func NewUserDirectory(cfg *config.Config) UserDirectory {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUserDirectory{
		collection: db.Collection("Users"),
	}
}

func (r *mongoUserDirectory) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"phone": phone}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by phone: %w", err)
	}

	return &user, nil
}

func (r *mongoUserDirectory) FindAdmins(ctx context.Context) ([]*model.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"role": model.RoleAdmin})
	if err != nil {
		return nil, fmt.Errorf("failed to find admins: %w", err)
	}
	defer cursor.Close(ctx)

	var admins []*model.User
	if err = cursor.All(ctx, &admins); err != nil {
		return nil, fmt.Errorf("failed to decode admins: %w", err)
	}

	return admins, nil
}
