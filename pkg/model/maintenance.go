package model

import "time"

// Canonical vehicle document types. User-facing synonyms (RCA, rovinieta)
// are folded into these before storage.
const (
	DocumentInsurance = "insurance"
	DocumentITP       = "itp"
	DocumentVignette  = "vignette"
)

// MaintenanceDocument tracks one vehicle document and when it expires.
// The type doubles as the _id, so writing a document for an existing type
// is an upsert by nature.
type MaintenanceDocument struct {
	Type       string    `json:"type" bson:"_id"`
	Label      string    `json:"label,omitempty" bson:"-"`
	ExpiryDate time.Time `json:"expiry_date" bson:"expiry_date"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
	UpdatedBy  string    `json:"-" bson:"updated_by,omitempty"`
}

// DocumentLabel returns the Romanian display name for a document type.
func DocumentLabel(docType string) string {
	switch docType {
	case DocumentInsurance:
		return "RCA"
	case DocumentITP:
		return "ITP"
	case DocumentVignette:
		return "Rovigneta"
	default:
		return docType
	}
}
