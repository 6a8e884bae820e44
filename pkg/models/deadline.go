package models

// DeadlineEntry is a (report, urgency) pair produced by the deadline scanner.
// Entries are only constructed when BusinessDaysLeft is in [0, 2]; they are
// computed fresh on every scan and never persisted.
type DeadlineEntry struct {
	Organization     string
	Object           string
	Date             string // DD/MM/YYYY as it appears in the report title
	BusinessDaysLeft int
	Time             string // HH:MM session time, best effort
	Platform         string
}
