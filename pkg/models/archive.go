package models

import (
	"time"

	"github.com/google/uuid"
)

// ArchiveSections is the fixed taxonomy for a company's compliance archive.
// Section -> allowed document types.
var ArchiveSections = map[string][]string{
	"1. Juridical Qualification": {"Articles of Incorporation", "Company Registration", "Partner Documents"},
	"2. Fiscal Qualification":    {"Federal", "State", "Municipal", "FGTS", "Labor"},
	"3. Technical Qualification": {"Operational Certificates", "Professional Certificates", "Council Registration - Professionals", "Council Registration - Company"},
	"4. Financial Qualification": {"Balance Sheet", "Financial Ratios", "Bankruptcy Clearance"},
}

// ValidArchiveSlot reports whether the section/docType pair is part of the
// fixed archive taxonomy.
func ValidArchiveSlot(section, docType string) bool {
	types, ok := ArchiveSections[section]
	if !ok {
		return false
	}
	for _, t := range types {
		if t == docType {
			return true
		}
	}
	return false
}

// ArchiveDocument is one compliance PDF in a user's company archive. These are
// the documents the cross-check compares against a bid's requirements.
type ArchiveDocument struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	UserID    uuid.UUID `db:"user_id"    json:"user_id"`
	Section   string    `db:"section"    json:"section"`
	DocType   string    `db:"doc_type"   json:"doc_type"`
	Filename  string    `db:"filename"   json:"filename"`
	Content   []byte    `db:"content"    json:"-"`
	Size      int64     `db:"size"       json:"size"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
