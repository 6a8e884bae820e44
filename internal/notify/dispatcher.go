package notify

import (
	"context"
	"fmt"

	"github.com/urbanosolucoes/licitahub/pkg/models"
)

// Dispatcher renders per-owner digests and hands them to the mail transport.
// Sends are intentionally not idempotent: repeated runs on the same day re-send
// the same digest, which the twice-daily schedule accepts.
type Dispatcher struct {
	mailer     Mailer
	appBaseURL string
}

func NewDispatcher(mailer Mailer, appBaseURL string) *Dispatcher {
	return &Dispatcher{mailer: mailer, appBaseURL: appBaseURL}
}

// Dispatch sends one aggregated digest covering all of the owner's urgent
// entries. The caller guarantees entries is non-empty and sorted by urgency.
func (d *Dispatcher) Dispatch(ctx context.Context, owner *models.User, entries []models.DeadlineEntry) error {
	body, err := RenderDigest(owner.Name, entries, d.appBaseURL)
	if err != nil {
		return err
	}
	if err := d.mailer.Send(ctx, owner.Email, DigestSubject(len(entries)), body); err != nil {
		return fmt.Errorf("dispatch digest to %s: %w", owner.Username, err)
	}
	return nil
}
