package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urbanosolucoes/licitahub/internal/extract"
	"github.com/urbanosolucoes/licitahub/internal/store"
	"github.com/urbanosolucoes/licitahub/pkg/models"
)

// viabilityHeader marks the section the cross-check appends to a report's
// content. Its presence is how the UI knows a viability pass already ran.
const viabilityHeader = "\n\n---\n\n# 🛡️ VIABILITY\n"

// Service orchestrates AI analysis of bid documents: the 16-question audit,
// the archive cross-check and contextual Q&A over stored reports.
type Service struct {
	provider models.AIProvider
	store    store.Store
	timeout  time.Duration
}

// NewService creates a new Service.
func NewService(provider models.AIProvider, st store.Store, timeout time.Duration) *Service {
	return &Service{
		provider: provider,
		store:    st,
		timeout:  timeout,
	}
}

// Analyze consumes one analysis credit, runs the audit questionnaire over the
// uploaded documents and persists the resulting report. The credit is refunded
// when generation or persistence fails.
func (s *Service) Analyze(ctx context.Context, user *models.User, docs []models.Document) (*models.Report, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents provided")
	}

	limit := models.PlanLimit(user.Plan)
	if err := s.store.ConsumeCredit(ctx, user.ID, limit); err != nil {
		return nil, err
	}

	answer, err := s.generate(ctx, models.GenerateRequest{Documents: docs, Prompt: auditPrompt})
	if err != nil {
		s.refund(ctx, user.ID)
		return nil, err
	}

	now := time.Now().UTC()
	report := &models.Report{
		ID:        uuid.New(),
		UserID:    user.ID,
		Title:     extract.BuildDisplayTitle(answer),
		Content:   answer,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateReport(ctx, report); err != nil {
		s.refund(ctx, user.ID)
		return nil, fmt.Errorf("persist report: %w", err)
	}
	return report, nil
}

// CrossCheck runs the viability checklist for a stored report against the
// user's entire compliance archive and appends the answer to the report body.
func (s *Service) CrossCheck(ctx context.Context, user *models.User, reportID uuid.UUID) (*models.Report, error) {
	if user.Plan == models.PlanFree {
		return nil, ErrViabilityNotAllowed
	}

	report, err := s.store.GetReport(ctx, reportID, user.ID)
	if err != nil {
		return nil, err
	}

	archive, err := s.store.ListAllArchiveDocuments(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load archive: %w", err)
	}
	if len(archive) == 0 {
		return nil, ErrNoArchiveDocuments
	}

	docs := make([]models.Document, 0, len(archive))
	for _, d := range archive {
		docs = append(docs, models.Document{Filename: d.Filename, Data: d.Content})
	}

	answer, err := s.generate(ctx, models.GenerateRequest{
		Documents: docs,
		Prompt:    fmt.Sprintf(crossCheckPrompt, report.Content),
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.AppendReportContent(ctx, reportID, user.ID, viabilityHeader+answer); err != nil {
		return nil, err
	}
	return s.store.GetReport(ctx, reportID, user.ID)
}

// Ask answers a free-form question using a stored report as context.
func (s *Service) Ask(ctx context.Context, userID uuid.UUID, reportID uuid.UUID, question string) (string, error) {
	report, err := s.store.GetReport(ctx, reportID, userID)
	if err != nil {
		return "", err
	}
	return s.generate(ctx, models.GenerateRequest{
		Prompt: fmt.Sprintf(askPrompt, report.Content, question),
	})
}

func (s *Service) generate(ctx context.Context, req models.GenerateRequest) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.provider.Generate(genCtx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(answer) == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}

func (s *Service) refund(ctx context.Context, userID uuid.UUID) {
	if err := s.store.RefundCredit(ctx, userID); err != nil {
		slog.Error("credit refund failed", "user_id", userID, "error", err)
	}
}
