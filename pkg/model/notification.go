package model

import "time"

// Event types carried in the Kafka event-type header.
const (
	EventBookingCreated     = "booking.created"
	EventBookingCancelled   = "booking.cancelled"
	EventPinIssued          = "pin.issued"
	EventUserWelcome        = "user.welcome"
	EventIssueReported      = "issue.reported"
	EventIssueStatusChanged = "issue.status_changed"
)

// BookingEvent is published on booking.created and booking.cancelled. The
// notifier renders the owner SMS and the admin email from it. Delivery is
// fire-and-forget from the publisher's point of view: a failed send never
// fails the request that triggered it.
type BookingEvent struct {
	BookingID   string    `json:"booking_id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Purpose     string    `json:"purpose,omitempty"`
	AdminEmails []string  `json:"admin_emails,omitempty"`
}

// PinEvent is published on pin.issued and carries the code to deliver.
type PinEvent struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
	PIN   string `json:"pin"`
}

// WelcomeEvent is published on user.welcome when an admin adds an account.
type WelcomeEvent struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// IssueEvent is published on issue.reported. Admins get an SMS each and one
// batch email; the notifier renders both from this payload.
type IssueEvent struct {
	IssueID       string   `json:"issue_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Severity      string   `json:"severity"`
	Location      string   `json:"location"`
	ReporterName  string   `json:"reporter_name"`
	ReporterPhone string   `json:"reporter_phone"`
	AdminPhones   []string `json:"admin_phones,omitempty"`
	AdminEmails   []string `json:"admin_emails,omitempty"`
}

// IssueStatusEvent is published on issue.status_changed and tells the
// reporter what happened to their issue.
type IssueStatusEvent struct {
	Title           string `json:"title"`
	Status          string `json:"status"`
	ResolutionNotes string `json:"resolution_notes,omitempty"`
	ReporterPhone   string `json:"reporter_phone"`
}
