package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/urbanosolucoes/licitahub/pkg/models"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateKey = errors.New("duplicate key violation")
	ErrNoCredits    = errors.New("analysis quota exhausted")
)

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateSessionToken(ctx context.Context, id uuid.UUID, token string) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	UpdateUserPlan(ctx context.Context, id uuid.UUID, plan string) error
	SetCreditsUsed(ctx context.Context, id uuid.UUID, credits int) error
	ConsumeCredit(ctx context.Context, id uuid.UUID, limit int) error
	RefundCredit(ctx context.Context, id uuid.UUID) error

	CreateReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Report, error)
	ListReports(ctx context.Context, userID uuid.UUID) ([]*models.Report, error)
	ListReportsByStatus(ctx context.Context, userID uuid.UUID, status string) ([]*models.Report, error)
	UpdateReportStatus(ctx context.Context, id uuid.UUID, userID uuid.UUID, status *string, note string) error
	AppendReportContent(ctx context.Context, id uuid.UUID, userID uuid.UUID, section string) error
	DeleteReport(ctx context.Context, id uuid.UUID, userID uuid.UUID) error

	CreateArchiveDocument(ctx context.Context, doc *models.ArchiveDocument) error
	ListArchiveDocuments(ctx context.Context, userID uuid.UUID, section, docType string) ([]*models.ArchiveDocument, error)
	ListAllArchiveDocuments(ctx context.Context, userID uuid.UUID) ([]*models.ArchiveDocument, error)
	DeleteArchiveDocument(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
}
