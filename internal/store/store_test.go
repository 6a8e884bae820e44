package store_test

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/urbanosolucoes/licitahub/internal/store"
	"github.com/urbanosolucoes/licitahub/pkg/models"
)

// migrationsDir returns the absolute path to the migrations directory.
func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// setupTestDB spins up a Postgres container, runs migrations, and returns a pool + cleanup.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("licitahub_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Run migrations
	err = store.RunMigrations(connStr, migrationsDir())
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return pool
}

func newUser(username string) *models.User {
	now := time.Now().UTC()
	return &models.User{
		ID:           uuid.New(),
		Username:     username,
		Name:         "Test User",
		Email:        username + "@example.com",
		PasswordHash: "$2a$10$fakefakefakefakefakefak",
		Role:         models.RoleUser,
		Plan:         models.PlanFree,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// createUser inserts a fresh user and returns it.
func createUser(t *testing.T, s store.Store, username string) *models.User {
	t.Helper()
	u := newUser(username)
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func newReport(userID uuid.UUID, title string) *models.Report {
	now := time.Now().UTC()
	return &models.Report{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Content:   "## Audit\n\n1. Contracting Body: ACME\n",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// --- Users ---

func TestSeededAdmin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	admin, err := s.GetUserByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, models.PlanUnlimited, admin.Plan)
	assert.Equal(t, 0, admin.CreditsUsed)
}

func TestUser_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	u := createUser(t, s, "maria")

	byID, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "maria", byID.Username)
	assert.Equal(t, models.PlanFree, byID.Plan)

	byName, err := s.GetUserByUsername(ctx, "maria")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byEmail, err := s.GetUserByEmail(ctx, "maria@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
}

func TestUser_GetNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	_, err := s.GetUserByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUser_DuplicateUsername(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	createUser(t, s, "maria")
	dupe := newUser("maria")
	err := s.CreateUser(context.Background(), dupe)
	assert.ErrorIs(t, err, store.ErrDuplicateKey)
}

func TestUser_List(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	createUser(t, s, "maria")
	createUser(t, s, "carlos")

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	// Seeded admin plus the two created above.
	assert.Len(t, users, 3)
}

func TestUser_UpdateSessionToken(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	u := createUser(t, s, "maria")
	require.NoError(t, s.UpdateSessionToken(ctx, u.ID, "tok-123"))

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", got.SessionToken)

	err = s.UpdateSessionToken(ctx, uuid.New(), "tok-456")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUser_UpdatePasswordHash(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	u := createUser(t, s, "maria")
	require.NoError(t, s.UpdatePasswordHash(ctx, u.ID, "new-hash"))

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
}

func TestUser_UpdatePlan(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	u := createUser(t, s, "maria")
	require.NoError(t, s.UpdateUserPlan(ctx, u.ID, models.Plan30))

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Plan30, got.Plan)

	err = s.UpdateUserPlan(ctx, uuid.New(), models.Plan30)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// --- Credits ---

func TestConsumeCredit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	u := createUser(t, s, "maria")

	// Free plan allows 5 analyses.
	limit := models.PlanLimit(models.PlanFree)
	for i := 0; i < limit; i++ {
		require.NoError(t, s.ConsumeCredit(ctx, u.ID, limit))
	}

	err := s.ConsumeCredit(ctx, u.ID, limit)
	assert.ErrorIs(t, err, store.ErrNoCredits)

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, limit, got.CreditsUsed)
}

func TestRefundCredit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	u := createUser(t, s, "maria")
	require.NoError(t, s.ConsumeCredit(ctx, u.ID, 5))
	require.NoError(t, s.RefundCredit(ctx, u.ID))

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CreditsUsed)

	// Refunding at zero must not go negative.
	require.NoError(t, s.RefundCredit(ctx, u.ID))
	got, err = s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CreditsUsed)
}

func TestSetCreditsUsed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	u := createUser(t, s, "maria")
	require.NoError(t, s.SetCreditsUsed(ctx, u.ID, 4))

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.CreditsUsed)
}

// --- Reports ---

func TestReport_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	u := createUser(t, s, "maria")
	r := newReport(u.ID, "Edital ACME | 25/12/2026")
	require.NoError(t, s.CreateReport(ctx, r))

	got, err := s.GetReport(ctx, r.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Title, got.Title)
	assert.Equal(t, r.Content, got.Content)
	assert.Nil(t, got.Status)
}

func TestReport_GetScopedToOwner(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	owner := createUser(t, s, "maria")
	intruder := createUser(t, s, "carlos")

	r := newReport(owner.ID, "Edital ACME | 25/12/2026")
	require.NoError(t, s.CreateReport(ctx, r))

	_, err := s.GetReport(ctx, r.ID, intruder.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReport_ListByStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	u := createUser(t, s, "maria")

	green := newReport(u.ID, "Edital A | 01/10/2026")
	require.NoError(t, s.CreateReport(ctx, green))
	red := newReport(u.ID, "Edital B | 02/10/2026")
	require.NoError(t, s.CreateReport(ctx, red))

	g := models.StatusGreen
	require.NoError(t, s.UpdateReportStatus(ctx, green.ID, u.ID, &g, ""))
	r := models.StatusRed
	require.NoError(t, s.UpdateReportStatus(ctx, red.ID, u.ID, &r, "too risky"))

	greens, err := s.ListReportsByStatus(ctx, u.ID, models.StatusGreen)
	require.NoError(t, err)
	require.Len(t, greens, 1)
	assert.Equal(t, green.ID, greens[0].ID)

	all, err := s.ListReports(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReport_UpdateStatusClear(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	u := createUser(t, s, "maria")
	r := newReport(u.ID, "Edital ACME | 25/12/2026")
	require.NoError(t, s.CreateReport(ctx, r))

	g := models.StatusGreen
	require.NoError(t, s.UpdateReportStatus(ctx, r.ID, u.ID, &g, "promising"))

	got, err := s.GetReport(ctx, r.ID, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Status)
	assert.Equal(t, models.StatusGreen, *got.Status)
	assert.Equal(t, "promising", got.Note)

	// nil status pushes the report back to unclassified.
	require.NoError(t, s.UpdateReportStatus(ctx, r.ID, u.ID, nil, ""))
	got, err = s.GetReport(ctx, r.ID, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Status)
}

func TestReport_AppendContent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	u := createUser(t, s, "maria")
	r := newReport(u.ID, "Edital ACME | 25/12/2026")
	require.NoError(t, s.CreateReport(ctx, r))

	section := "\n\n---\n\n## Viability\n\nAll certificates present.\n"
	require.NoError(t, s.AppendReportContent(ctx, r.ID, u.ID, section))

	got, err := s.GetReport(ctx, r.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Content+section, got.Content)
}

func TestReport_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	u := createUser(t, s, "maria")
	r := newReport(u.ID, "Edital ACME | 25/12/2026")
	require.NoError(t, s.CreateReport(ctx, r))

	require.NoError(t, s.DeleteReport(ctx, r.ID, u.ID))
	_, err := s.GetReport(ctx, r.ID, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.DeleteReport(ctx, r.ID, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// --- Archive documents ---

func newArchiveDoc(userID uuid.UUID, section, docType, filename string) *models.ArchiveDocument {
	return &models.ArchiveDocument{
		ID:        uuid.New(),
		UserID:    userID,
		Section:   section,
		DocType:   docType,
		Filename:  filename,
		Content:   []byte("%PDF-1.4 fake"),
		Size:      13,
		CreatedAt: time.Now().UTC(),
	}
}

func TestArchive_CreateAndList(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	u := createUser(t, s, "maria")

	fgts := newArchiveDoc(u.ID, "2. Fiscal Qualification", "FGTS", "fgts.pdf")
	require.NoError(t, s.CreateArchiveDocument(ctx, fgts))
	balance := newArchiveDoc(u.ID, "4. Financial Qualification", "Balance Sheet", "balance.pdf")
	require.NoError(t, s.CreateArchiveDocument(ctx, balance))

	// Filtered listing, metadata only.
	docs, err := s.ListArchiveDocuments(ctx, u.ID, "2. Fiscal Qualification", "FGTS")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "fgts.pdf", docs[0].Filename)
	assert.Nil(t, docs[0].Content)
	assert.Equal(t, int64(13), docs[0].Size)

	// Empty filters list everything.
	docs, err = s.ListArchiveDocuments(ctx, u.ID, "", "")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestArchive_ListAllCarriesContent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	u := createUser(t, s, "maria")
	doc := newArchiveDoc(u.ID, "2. Fiscal Qualification", "Federal", "federal.pdf")
	require.NoError(t, s.CreateArchiveDocument(ctx, doc))

	docs, err := s.ListAllArchiveDocuments(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, []byte("%PDF-1.4 fake"), docs[0].Content)
}

func TestArchive_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	owner := createUser(t, s, "maria")
	intruder := createUser(t, s, "carlos")

	doc := newArchiveDoc(owner.ID, "2. Fiscal Qualification", "Labor", "labor.pdf")
	require.NoError(t, s.CreateArchiveDocument(ctx, doc))

	err := s.DeleteArchiveDocument(ctx, doc.ID, intruder.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteArchiveDocument(ctx, doc.ID, owner.ID))

	docs, err := s.ListAllArchiveDocuments(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)
}
