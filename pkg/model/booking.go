package model

import "time"

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Booking is a reservation of the shared minibus for a closed date interval.
// EndDate may equal StartDate (single-day booking). Confirmed bookings must
// never share an instant; cancelled ones are kept for history and ignored by
// the overlap check.
type Booking struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Name      string    `json:"name" bson:"name"`
	Phone     string    `json:"phone" bson:"phone" validate:"required"`
	StartDate time.Time `json:"start_date" bson:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" bson:"end_date" validate:"required"`
	Purpose   string    `json:"purpose,omitempty" bson:"purpose,omitempty" validate:"max=500"`
	Status    string    `json:"status" bson:"status" validate:"required,oneof=confirmed cancelled"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Overlaps reports whether two closed intervals share at least one instant.
// Boundary touch counts: a booking ending at T conflicts with one starting at T.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return !start1.After(end2) && !start2.After(end1)
}
