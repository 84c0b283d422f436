package model

import "time"

// ResourceLock is an advisory lock serializing booking admission for a shared
// resource. The lock ID doubles as the document _id, so a second insert for
// the same resource fails with a duplicate key error.
type ResourceLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
