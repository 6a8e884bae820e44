package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/urbanosolucoes/licitahub/internal/bizdays"
	"github.com/urbanosolucoes/licitahub/internal/extract"
	"github.com/urbanosolucoes/licitahub/internal/store"
	"github.com/urbanosolucoes/licitahub/pkg/models"
)

// Urgency window in business days. A report qualifies for the digest when its
// key date is this close or closer (and not past).
const (
	minDaysLeft = 0
	maxDaysLeft = 2
)

// Scanner walks every owner's approved reports and dispatches a digest of the
// ones whose key date is 0-2 business days out. One malformed report or one
// unreachable owner never aborts the batch; only a failure to enumerate the
// owners themselves is fatal.
type Scanner struct {
	store      store.Store
	dispatcher *Dispatcher
	loc        *time.Location
	now        func() time.Time
}

func NewScanner(st store.Store, dispatcher *Dispatcher, loc *time.Location) *Scanner {
	if loc == nil {
		loc = time.UTC
	}
	return &Scanner{
		store:      st,
		dispatcher: dispatcher,
		loc:        loc,
		now:        time.Now,
	}
}

// Run executes one scan-and-dispatch pass over all owners. It returns one log
// line per processed owner (the batch job's observable output) and an error
// only when the owner list itself cannot be fetched.
func (s *Scanner) Run(ctx context.Context) ([]string, error) {
	today := s.now().In(s.loc)

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var logs []string
	for _, u := range users {
		if u.Email == "" {
			continue
		}

		reports, err := s.store.ListReportsByStatus(ctx, u.ID, models.StatusGreen)
		if err != nil {
			slog.Warn("skipping owner, report fetch failed", "user", u.Username, "error", err)
			continue
		}
		greens := len(reports)

		var entries []models.DeadlineEntry
		for _, r := range reports {
			entry, ok := s.entryFromReport(r, today)
			if !ok {
				continue
			}
			entries = append(entries, entry)
		}

		if len(entries) == 0 {
			if greens > 0 {
				line := fmt.Sprintf("ℹ️ %s: %d green analyzed, none due (0-2 business days)", u.Username, greens)
				slog.Info(line)
				logs = append(logs, line)
			}
			continue
		}

		// Most urgent first.
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].BusinessDaysLeft < entries[j].BusinessDaysLeft
		})

		var line string
		if err := s.dispatcher.Dispatch(ctx, u, entries); err != nil {
			line = fmt.Sprintf("❌ %s: %v", u.Username, err)
		} else {
			line = fmt.Sprintf("✅ %s: %d urgent editais (of %d green)", u.Username, len(entries), greens)
		}
		slog.Info(line)
		logs = append(logs, line)
	}

	return logs, nil
}

// entryFromReport turns one approved report into a deadline entry. ok is false
// when the report's title carries no usable date or the date is outside the
// urgency window; both mean "not urgent", never an error.
func (s *Scanner) entryFromReport(r *models.Report, today time.Time) (models.DeadlineEntry, bool) {
	eventDate, dateStr, ok := extract.DateFromTitle(r.Title)
	if !ok {
		return models.DeadlineEntry{}, false
	}

	daysLeft := bizdays.Between(today, eventDate)
	if daysLeft < minDaysLeft || daysLeft > maxDaysLeft {
		return models.DeadlineEntry{}, false
	}

	org, object := splitTitle(r.Title)
	fields := extract.ExtractFields(r.Content)

	return models.DeadlineEntry{
		Organization:     org,
		Object:           object,
		Date:             dateStr,
		BusinessDaysLeft: daysLeft,
		Time:             fields.Time,
		Platform:         fields.Platform,
	}, true
}

// splitTitle recovers organization and object from a persisted title. Two
// shapes occur: "Edital <org> | <date>" and the richer
// "<query-date> | Edital | <org> | <object> | <session-date>"; anything else
// degrades to the truncated title plus a placeholder.
func splitTitle(title string) (org, object string) {
	parts := strings.Split(title, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch {
	case len(parts) >= 4 && isTitlePrefix(parts[1]):
		return parts[2], parts[3]
	case len(parts) > 1:
		return stripTitlePrefix(parts[0]), parts[1]
	default:
		t := title
		if len(t) > 30 {
			t = t[:30]
		}
		return t, "See Details"
	}
}

func isTitlePrefix(s string) bool {
	return s == "Edital" || s == "Report"
}

func stripTitlePrefix(s string) string {
	s = strings.ReplaceAll(s, "Edital", "")
	s = strings.ReplaceAll(s, "Report", "")
	return strings.TrimSpace(s)
}
