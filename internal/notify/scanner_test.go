package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urbanosolucoes/licitahub/internal/store"
	"github.com/urbanosolucoes/licitahub/pkg/models"
)

// 2026-09-07 is a Monday.
var testToday = time.Date(2026, time.September, 7, 10, 0, 0, 0, time.UTC)

type fakeStore struct {
	store.Store
	users      []*models.User
	usersErr   error
	reports    map[uuid.UUID][]*models.Report
	reportsErr map[uuid.UUID]error
}

func (f *fakeStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	return f.users, f.usersErr
}

func (f *fakeStore) ListReportsByStatus(ctx context.Context, userID uuid.UUID, status string) ([]*models.Report, error) {
	if err := f.reportsErr[userID]; err != nil {
		return nil, err
	}
	return f.reports[userID], nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func newTestScanner(st *fakeStore, mailer *fakeMailer) *Scanner {
	s := NewScanner(st, NewDispatcher(mailer, "https://app.example.com"), time.UTC)
	s.now = func() time.Time { return testToday }
	return s
}

func greenReport(userID uuid.UUID, title string) *models.Report {
	status := models.StatusGreen
	return &models.Report{
		ID:     uuid.New(),
		UserID: userID,
		Title:  title,
		Status: &status,
	}
}

func testUser(username, email string) *models.User {
	return &models.User{
		ID:       uuid.New(),
		Username: username,
		Name:     "Owner " + username,
		Email:    email,
		Plan:     models.Plan30,
	}
}

// --- Urgency window ---

func TestScannerRun_OnlyDatesWithinTwoBusinessDays(t *testing.T) {
	u := testUser("maria", "maria@example.com")
	st := &fakeStore{
		users: []*models.User{u},
		reports: map[uuid.UUID][]*models.Report{
			u.ID: {
				greenReport(u.ID, "Edital Org A | 08/09/2026"), // tomorrow, 1 business day
				greenReport(u.ID, "Edital Org B | 07/09/2026"), // today
				greenReport(u.ID, "Edital Org C | 14/09/2026"), // next Monday, 5 business days
			},
		},
	}
	mailer := &fakeMailer{}

	logs, err := newTestScanner(st, mailer).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "maria@example.com", mailer.sent[0].to)
	assert.Equal(t, "📅 Bid Digest: 2 opportunities closing soon", mailer.sent[0].subject)

	body := mailer.sent[0].body
	assert.Contains(t, body, "Org A")
	assert.Contains(t, body, "Org B")
	assert.NotContains(t, body, "Org C")

	// Most urgent first: Org B is due today.
	assert.Less(t, strings.Index(body, "Org B"), strings.Index(body, "Org A"))

	require.Len(t, logs, 1)
	assert.Equal(t, "✅ maria: 2 urgent editais (of 3 green)", logs[0])
}

func TestScannerRun_DatelessTitleSkipped(t *testing.T) {
	u := testUser("joao", "joao@example.com")
	st := &fakeStore{
		users: []*models.User{u},
		reports: map[uuid.UUID][]*models.Report{
			u.ID: {greenReport(u.ID, "Edital Undefined Organization | Date Pending")},
		},
	}
	mailer := &fakeMailer{}

	logs, err := newTestScanner(st, mailer).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, mailer.sent)
	require.Len(t, logs, 1)
	assert.Equal(t, "ℹ️ joao: 1 green analyzed, none due (0-2 business days)", logs[0])
}

func TestScannerRun_PastDateCountsAsDueToday(t *testing.T) {
	// A date already behind us computes as zero business days left, which is
	// inside the window. The digest still nags until the owner archives it.
	u := testUser("ana", "ana@example.com")
	st := &fakeStore{
		users: []*models.User{u},
		reports: map[uuid.UUID][]*models.Report{
			u.ID: {greenReport(u.ID, "Edital Org Past | 04/09/2026")}, // the previous Friday
		},
	}
	mailer := &fakeMailer{}

	logs, err := newTestScanner(st, mailer).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	require.Len(t, logs, 1)
	assert.Equal(t, "✅ ana: 1 urgent editais (of 1 green)", logs[0])
}

// --- Owner isolation ---

func TestScannerRun_NoGreensNoLogLine(t *testing.T) {
	u := testUser("quiet", "quiet@example.com")
	st := &fakeStore{users: []*models.User{u}, reports: map[uuid.UUID][]*models.Report{}}
	mailer := &fakeMailer{}

	logs, err := newTestScanner(st, mailer).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, logs)
	assert.Empty(t, mailer.sent)
}

func TestScannerRun_SkipsUserWithoutEmail(t *testing.T) {
	u := testUser("noemail", "")
	st := &fakeStore{
		users: []*models.User{u},
		reports: map[uuid.UUID][]*models.Report{
			u.ID: {greenReport(u.ID, "Edital Org B | 07/09/2026")},
		},
	}
	mailer := &fakeMailer{}

	logs, err := newTestScanner(st, mailer).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, logs)
	assert.Empty(t, mailer.sent)
}

func TestScannerRun_ReportFetchFailureDoesNotAbortBatch(t *testing.T) {
	broken := testUser("broken", "broken@example.com")
	healthy := testUser("healthy", "healthy@example.com")
	st := &fakeStore{
		users: []*models.User{broken, healthy},
		reports: map[uuid.UUID][]*models.Report{
			healthy.ID: {greenReport(healthy.ID, "Edital Org B | 07/09/2026")},
		},
		reportsErr: map[uuid.UUID]error{broken.ID: errors.New("connection reset")},
	}
	mailer := &fakeMailer{}

	logs, err := newTestScanner(st, mailer).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "healthy@example.com", mailer.sent[0].to)
	require.Len(t, logs, 1)
	assert.Equal(t, "✅ healthy: 1 urgent editais (of 1 green)", logs[0])
}

func TestScannerRun_MailFailureIsReportedPerOwner(t *testing.T) {
	u := testUser("carlos", "carlos@example.com")
	st := &fakeStore{
		users: []*models.User{u},
		reports: map[uuid.UUID][]*models.Report{
			u.ID: {greenReport(u.ID, "Edital Org B | 07/09/2026")},
		},
	}
	mailer := &fakeMailer{err: errors.New("smtp refused")}

	logs, err := newTestScanner(st, mailer).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, logs, 1)
	assert.True(t, strings.HasPrefix(logs[0], "❌ carlos: "), "got %q", logs[0])
	assert.Contains(t, logs[0], "smtp refused")
}

func TestScannerRun_UserListFailureIsFatal(t *testing.T) {
	st := &fakeStore{usersErr: errors.New("db down")}

	_, err := newTestScanner(st, &fakeMailer{}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list users")
}

// --- Title splitting ---

func TestSplitTitle_StandardShape(t *testing.T) {
	org, object := splitTitle("Edital ACME Corp | 25/12/2025")
	assert.Equal(t, "ACME Corp", org)
	assert.Equal(t, "25/12/2025", object)
}

func TestSplitTitle_RichShape(t *testing.T) {
	org, object := splitTitle("06/09/2026 | Edital | ACME Corp | School meals | 25/12/2025")
	assert.Equal(t, "ACME Corp", org)
	assert.Equal(t, "School meals", object)
}

func TestSplitTitle_UnstructuredFallsBack(t *testing.T) {
	org, object := splitTitle("a completely unstructured title that keeps going")
	assert.Equal(t, "a completely unstructured titl", org)
	assert.Equal(t, "See Details", object)
}
