package model

import "time"

// AccessLog records one successful PIN login. Only the most recent entries
// are retained; the user agent is stored raw, without device parsing.
type AccessLog struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Name      string    `json:"name" bson:"name"`
	Phone     string    `json:"phone" bson:"phone"`
	UserAgent string    `json:"user_agent" bson:"user_agent"`
	LoggedAt  time.Time `json:"logged_at" bson:"logged_at"`
}
