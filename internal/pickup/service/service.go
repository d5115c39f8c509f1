package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"donorlift/internal/audit"
	"donorlift/internal/geo"
	"donorlift/internal/identity"
	"donorlift/internal/pickup"
	"donorlift/internal/platform/metrics"
	"donorlift/pkg/domain"
	dErrors "donorlift/pkg/domain-errors"
	"donorlift/pkg/platform/sentinel"
	"donorlift/pkg/requestcontext"
)

// DonationProjector applies a pickup status onto the paired donation record.
// Implemented by the donation service; defined here so this package depends
// only on the shape it needs.
type DonationProjector interface {
	ApplyPickupStatus(ctx context.Context, donationID domain.DonationID, status pickup.Status) error
}

// GeoIndex is the optional Redis-backed candidate pre-filter for proximity
// listings. Nil disables it; the exact Haversine check is always applied.
type GeoIndex interface {
	Within(ctx context.Context, center geo.Point, radiusKm float64) (map[domain.PickupID]struct{}, error)
	Remove(ctx context.Context, id domain.PickupID) error
}

// Service owns pickup status transitions and the browse/listing query.
type Service struct {
	store     pickup.Store
	projector DonationProjector
	geoIndex  GeoIndex
	auditor   *audit.Publisher
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

func New(store pickup.Store, projector DonationProjector, geoIndex GeoIndex, auditor *audit.Publisher, m *metrics.Metrics) *Service {
	return &Service{
		store:     store,
		projector: projector,
		geoIndex:  geoIndex,
		auditor:   auditor,
		metrics:   m,
		tracer:    otel.Tracer("donorlift/pickup"),
	}
}

// UpdateStatus drives the pickup lifecycle. The machine is permissive about
// state order; the only rejections are an invalid target status, an unknown
// request, or a caller acting on someone else's assignment. Every applied
// transition is projected onto the paired donation.
func (s *Service) UpdateStatus(ctx context.Context, id domain.PickupID, target pickup.Status, actor domain.UserID, role identity.Role) (*pickup.Request, error) {
	ctx, span := s.tracer.Start(ctx, "pickup.UpdateStatus",
		trace.WithAttributes(
			attribute.String("pickup.id", id.String()),
			attribute.String("pickup.target_status", target.String()),
		))
	defer span.End()

	if !target.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid status %q", target)
	}

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "pickup request not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load pickup request", err)
	}
	if role != identity.RoleAdmin && existing.VolunteerID != nil && *existing.VolunteerID != actor {
		return nil, dErrors.New(dErrors.CodeForbidden, "pickup request is assigned to another volunteer")
	}

	now := requestcontext.Now(ctx)
	fromStatus := existing.Status
	updated, err := s.store.UpdateStatus(ctx, id, target, actor, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "pickup request not found")
		}
		if dErrors.Is(err, dErrors.CodeBadRequest) {
			return nil, err
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update pickup status", err)
	}

	if err := s.projector.ApplyPickupStatus(ctx, updated.DonationID, updated.Status); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to project donation status", err)
	}

	if s.geoIndex != nil && (updated.Status == pickup.StatusDelivered || updated.Status == pickup.StatusCancelled) {
		// Best effort: a stale geo entry only over-includes candidates.
		_ = s.geoIndex.Remove(ctx, id)
	}

	s.metrics.IncPickupTransition(target.String())
	action := audit.ActionPickupStatusChanged
	if fromStatus == pickup.StatusAvailable && updated.Status == pickup.StatusAccepted {
		action = audit.ActionPickupAccepted
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:  action,
		Actor:   actor.String(),
		Subject: id.String(),
		Detail:  fromStatus.String() + "->" + updated.Status.String(),
	})
	return updated, nil
}

// List browses pickup requests with optional status, priority, and proximity
// filters. When the geo index is available and a radius filter was requested,
// it pre-narrows candidates with a padded radius; the exact DistanceKm check
// in BuildListing stays authoritative so the reported distance and the filter
// can never disagree.
func (s *Service) List(ctx context.Context, filter pickup.Filter) ([]pickup.ListItem, error) {
	ctx, span := s.tracer.Start(ctx, "pickup.List")
	defer span.End()

	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid status %q", filter.Status)
	}
	if filter.Priority != "" && !filter.Priority.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid priority %q", filter.Priority)
	}
	if filter.Observer != nil {
		if err := filter.Observer.Validate(); err != nil {
			return nil, err
		}
	}

	candidates, err := s.store.List(ctx, filter.Status, filter.Priority)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list pickup requests", err)
	}

	if s.geoIndex != nil && filter.Observer != nil && filter.RadiusKm > 0 {
		// Pad the Redis radius so its unrounded distance never excludes a
		// candidate the rounded authoritative check would keep.
		within, err := s.geoIndex.Within(ctx, *filter.Observer, filter.RadiusKm+1)
		if err == nil {
			narrowed := candidates[:0]
			for _, candidate := range candidates {
				if _, ok := within[candidate.ID]; ok {
					narrowed = append(narrowed, candidate)
				}
			}
			candidates = narrowed
		}
		// On index error fall through to the exact scan.
	}

	return pickup.BuildListing(candidates, filter), nil
}

// Get returns one pickup request.
func (s *Service) Get(ctx context.Context, id domain.PickupID) (*pickup.Request, error) {
	request, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "pickup request not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load pickup request", err)
	}
	return request, nil
}
