package pickup

import (
	"context"
	"time"

	"donorlift/pkg/domain"
)

// Store persists pickup requests. UpdateStatus applies the whole transition
// atomically so the set-once timestamp rule holds under concurrent writers:
// the memory store mutates under its lock, the Postgres store uses a
// conditional (COALESCE) update.
type Store interface {
	Create(ctx context.Context, request *Request) error
	Get(ctx context.Context, id domain.PickupID) (*Request, error)
	UpdateStatus(ctx context.Context, id domain.PickupID, target Status, actor domain.UserID, now time.Time) (*Request, error)
	List(ctx context.Context, status Status, priority Priority) ([]*Request, error)
}
