package model

import "time"

const (
	SeverityMinor  = "minor"
	SeverityMedium = "medium"
	SeverityUrgent = "urgent"
)

const (
	IssueStatusReported   = "reported"
	IssueStatusInProgress = "in_progress"
	IssueStatusResolved   = "resolved"
)

// Issue is a reported problem with the minibus. Anyone with an account can
// report one; only admins change its status or remove it. ReporterName and
// ReporterPhone are filled from the Users collection when listing, never
// stored on the document.
type Issue struct {
	ID              string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ReportedBy      string     `json:"reported_by" bson:"reported_by"`
	ReporterName    string     `json:"reporter_name,omitempty" bson:"-"`
	ReporterPhone   string     `json:"reporter_phone,omitempty" bson:"-"`
	Title           string     `json:"title" bson:"title" validate:"required,max=200"`
	Description     string     `json:"description" bson:"description" validate:"required,max=2000"`
	Severity        string     `json:"severity" bson:"severity" validate:"required,oneof=minor medium urgent"`
	Location        string     `json:"location" bson:"location" validate:"required,max=200"`
	Status          string     `json:"status" bson:"status" validate:"required,oneof=reported in_progress resolved"`
	ResolutionNotes string     `json:"resolution_notes,omitempty" bson:"resolution_notes,omitempty" validate:"max=2000"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
	ResolvedBy      string     `json:"resolved_by,omitempty" bson:"resolved_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at"`
}
