package donation

import (
	"context"
	"time"

	"donorlift/internal/pickup"
	"donorlift/pkg/domain"
)

// Store persists donations. Create writes the donation and its paired pickup
// request as one atomic unit; Confirm only succeeds while the donation sits
// in delivered, so concurrent confirmations cannot double-apply.
type Store interface {
	Create(ctx context.Context, d *Donation, request *pickup.Request) error
	Get(ctx context.Context, id domain.DonationID) (*Donation, error)
	ListByDonor(ctx context.Context, donorID domain.UserID) ([]*Donation, error)
	SetStatus(ctx context.Context, id domain.DonationID, status Status, at time.Time) (*Donation, error)
	Confirm(ctx context.Context, id domain.DonationID, note string, at time.Time) (*Donation, error)
}
