package models

import (
	"time"

	"github.com/google/uuid"
)

// Report classification statuses assigned by the owner. A nil status means
// the report has not been classified yet.
const (
	StatusRed    = "red"    // unviable
	StatusYellow = "yellow" // needs adjustments
	StatusGreen  = "green"  // approved; drives calendar and deadline notifications
)

// ValidStatus reports whether s is one of the three classification values.
func ValidStatus(s string) bool {
	return s == StatusRed || s == StatusYellow || s == StatusGreen
}

// Report is one stored AI analysis of a procurement document bundle.
// Content is immutable after creation except for the viability section the
// cross-check step appends.
type Report struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	UserID    uuid.UUID `db:"user_id"    json:"user_id"`
	Title     string    `db:"title"      json:"title"`
	Content   string    `db:"content"    json:"content"`
	Status    *string   `db:"status"     json:"status,omitempty"`
	Note      string    `db:"note"       json:"note"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
