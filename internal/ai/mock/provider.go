package mock

import (
	"context"
	"strings"
	"time"

	"github.com/urbanosolucoes/licitahub/pkg/models"
)

// MockProvider satisfies models.AIProvider for testing and local development.
type MockProvider struct {
	Name_        string
	GenerateFunc func(ctx context.Context, req models.GenerateRequest) (string, error)
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Generate(ctx context.Context, req models.GenerateRequest) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return "", nil
}

// NewProvider returns a MockProvider that answers every audit with a canned
// report. The report carries a KEY_DATE tag three weekdays out so that title
// extraction and deadline scanning behave like a real analysis would.
func NewProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		GenerateFunc: func(_ context.Context, req models.GenerateRequest) (string, error) {
			names := make([]string, 0, len(req.Documents))
			for _, doc := range req.Documents {
				names = append(names, doc.Filename)
			}
			return cannedAudit(time.Now(), names), nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		GenerateFunc: func(_ context.Context, _ models.GenerateRequest) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		GenerateFunc: func(ctx context.Context, _ models.GenerateRequest) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
}

func cannedAudit(now time.Time, filenames []string) string {
	keyDate := now
	for n := 0; n < 3; {
		keyDate = keyDate.AddDate(0, 0, 1)
		if wd := keyDate.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}

	var b strings.Builder
	b.WriteString("# Bid Audit Report\n\n")
	b.WriteString("Documents reviewed: " + strings.Join(filenames, ", ") + "\n\n")
	b.WriteString("1. Contracting Body: Municipal Government of Springfield\n")
	b.WriteString("2. Object: Acquisition of hospital supplies for the municipal health network\n")
	b.WriteString("3. Estimated Value: R$ 1,250,000.00\n")
	b.WriteString("4. Modality: Electronic Auction (Pregão Eletrônico)\n")
	b.WriteString("5. KEY_DATE: " + keyDate.Format("02/01/2006") + " at 09:00, session held online.\n")
	b.WriteString("6. Platform: www.comprasgov.example.br\n")
	b.WriteString("7. Qualification Documents: CNPJ card, fiscal clearance certificates, technical attestations\n")
	b.WriteString("8. Bid Validity: 60 days\n")
	b.WriteString("9. Payment Terms: 30 days after invoice attestation\n")
	b.WriteString("10. Delivery Deadline: 15 days from purchase order\n")
	b.WriteString("11. Guarantees Required: none\n")
	b.WriteString("12. Penalties: fine of 0.5% per day of delay, capped at 10%\n")
	b.WriteString("13. Allows Consortium: no\n")
	b.WriteString("14. ME/EPP Benefits: exclusive items under R$ 80,000.00\n")
	b.WriteString("15. Appeal Deadlines: 3 business days after session\n")
	b.WriteString("16. Risk Flags: short delivery window, site visit not required\n")
	return b.String()
}

// Compile-time check that MockProvider implements AIProvider.
var _ models.AIProvider = (*MockProvider)(nil)
