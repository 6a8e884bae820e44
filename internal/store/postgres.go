package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urbanosolucoes/licitahub/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Users ---

const userColumns = `id, username, name, email, password_hash, role, plan, credits_used, session_token, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.Plan, &u.CreditsUsed, &u.SessionToken, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, name, email, password_hash, role, plan, credits_used, session_token, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		user.ID, user.Username, user.Name, user.Email, user.PasswordHash, user.Role,
		user.Plan, user.CreditsUsed, user.SessionToken, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 ORDER BY created_at LIMIT 1`, email))
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) UpdateSessionToken(ctx context.Context, id uuid.UUID, token string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET session_token = $2, updated_at = NOW() WHERE id = $1`, id, token)
	if err != nil {
		return fmt.Errorf("update session token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateUserPlan(ctx context.Context, id uuid.UUID, plan string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET plan = $2, updated_at = NOW() WHERE id = $1`, id, plan)
	if err != nil {
		return fmt.Errorf("update user plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SetCreditsUsed(ctx context.Context, id uuid.UUID, credits int) error {
	if credits < 0 {
		credits = 0
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET credits_used = $2, updated_at = NOW() WHERE id = $1`, id, credits)
	if err != nil {
		return fmt.Errorf("set credits used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeCredit atomically takes one analysis credit, failing with
// ErrNoCredits when the user is already at the plan limit.
func (s *PostgresStore) ConsumeCredit(ctx context.Context, id uuid.UUID, limit int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET credits_used = credits_used + 1, updated_at = NOW()
		 WHERE id = $1 AND credits_used < $2`, id, limit)
	if err != nil {
		return fmt.Errorf("consume credit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoCredits
	}
	return nil
}

func (s *PostgresStore) RefundCredit(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET credits_used = GREATEST(credits_used - 1, 0), updated_at = NOW()
		 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("refund credit: %w", err)
	}
	return nil
}

// --- Reports ---

const reportColumns = `id, user_id, title, content, status, note, created_at, updated_at`

func scanReport(row pgx.Row) (*models.Report, error) {
	var r models.Report
	err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.Content, &r.Status, &r.Note,
		&r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan report: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) CreateReport(ctx context.Context, report *models.Report) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO reports (id, user_id, title, content, status, note, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		report.ID, report.UserID, report.Title, report.Content, report.Status, report.Note,
		report.CreatedAt, report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetReport(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Report, error) {
	return scanReport(s.pool.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = $1 AND user_id = $2`, id, userID))
}

func (s *PostgresStore) ListReports(ctx context.Context, userID uuid.UUID) ([]*models.Report, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()
	return collectReports(rows)
}

func (s *PostgresStore) ListReportsByStatus(ctx context.Context, userID uuid.UUID, status string) ([]*models.Report, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC`,
		userID, status)
	if err != nil {
		return nil, fmt.Errorf("list reports by status: %w", err)
	}
	defer rows.Close()
	return collectReports(rows)
}

func collectReports(rows pgx.Rows) ([]*models.Report, error) {
	var reports []*models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *PostgresStore) UpdateReportStatus(ctx context.Context, id uuid.UUID, userID uuid.UUID, status *string, note string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE reports SET status = $3, note = $4, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2`, id, userID, status, note)
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendReportContent concatenates section onto the stored report body. This
// is the only mutation the content column ever sees after creation.
func (s *PostgresStore) AppendReportContent(ctx context.Context, id uuid.UUID, userID uuid.UUID, section string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE reports SET content = content || $3, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2`, id, userID, section)
	if err != nil {
		return fmt.Errorf("append report content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteReport(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM reports WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Archive documents ---

func (s *PostgresStore) CreateArchiveDocument(ctx context.Context, doc *models.ArchiveDocument) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO archive_documents (id, user_id, section, doc_type, filename, content, size, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		doc.ID, doc.UserID, doc.Section, doc.DocType, doc.Filename, doc.Content, doc.Size, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("create archive document: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListArchiveDocuments(ctx context.Context, userID uuid.UUID, section, docType string) ([]*models.ArchiveDocument, error) {
	// Listing omits content; bytes are only loaded for the cross-check.
	// Empty section or docType means no filter on that column.
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, section, doc_type, filename, size, created_at
		 FROM archive_documents
		 WHERE user_id = $1 AND ($2 = '' OR section = $2) AND ($3 = '' OR doc_type = $3)
		 ORDER BY section, doc_type, created_at`, userID, section, docType)
	if err != nil {
		return nil, fmt.Errorf("list archive documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.ArchiveDocument
	for rows.Next() {
		var d models.ArchiveDocument
		if err := rows.Scan(&d.ID, &d.UserID, &d.Section, &d.DocType, &d.Filename, &d.Size, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan archive document: %w", err)
		}
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) ListAllArchiveDocuments(ctx context.Context, userID uuid.UUID) ([]*models.ArchiveDocument, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, section, doc_type, filename, content, size, created_at
		 FROM archive_documents WHERE user_id = $1 ORDER BY section, doc_type, created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list all archive documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.ArchiveDocument
	for rows.Next() {
		var d models.ArchiveDocument
		if err := rows.Scan(&d.ID, &d.UserID, &d.Section, &d.DocType, &d.Filename, &d.Content, &d.Size, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan archive document: %w", err)
		}
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) DeleteArchiveDocument(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM archive_documents WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete archive document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
