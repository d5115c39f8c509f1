package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"donorlift/internal/audit"
	"donorlift/internal/donation"
	"donorlift/internal/geo"
	"donorlift/internal/identity"
	"donorlift/internal/pickup"
	"donorlift/internal/platform/metrics"
	"donorlift/pkg/domain"
	dErrors "donorlift/pkg/domain-errors"
	"donorlift/pkg/platform/sentinel"
	"donorlift/pkg/requestcontext"
)

// GeoIndex registers pickup coordinates for proximity listings. Nil disables
// indexing; the listing path falls back to a full scan.
type GeoIndex interface {
	Add(ctx context.Context, id domain.PickupID, p geo.Point) error
}

// SubmitInput is what a donor provides when submitting a donation.
type SubmitInput struct {
	CharityID         domain.CharityID `json:"charityId"`
	Items             []donation.Item  `json:"items"`
	Urgency           donation.Urgency `json:"urgency"`
	Coordinates       *geo.Point       `json:"pickupCoordinates,omitempty"`
	Refrigerated      bool             `json:"refrigerated,omitempty"`
	Fragile           bool             `json:"fragile,omitempty"`
	ContactPreference string           `json:"contactPreference,omitempty"`
}

// Service owns donation submission, projection, and charity confirmation.
type Service struct {
	store    donation.Store
	identity identity.Store
	geoIndex GeoIndex
	auditor  *audit.Publisher
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

func New(store donation.Store, identityStore identity.Store, geoIndex GeoIndex, auditor *audit.Publisher, m *metrics.Metrics) *Service {
	return &Service{
		store:    store,
		identity: identityStore,
		geoIndex: geoIndex,
		auditor:  auditor,
		metrics:  m,
		tracer:   otel.Tracer("donorlift/donation"),
	}
}

// Submit records a donation together with its pickup request. The pickup
// request snapshots the items and takes the donor's urgency as its priority;
// the pair starts as submitted/available.
func (s *Service) Submit(ctx context.Context, donorID domain.UserID, input SubmitInput) (*donation.Donation, error) {
	ctx, span := s.tracer.Start(ctx, "donation.Submit")
	defer span.End()

	now := requestcontext.Now(ctx)
	d := &donation.Donation{
		ID:          domain.NewDonationID(),
		DonorID:     donorID,
		CharityID:   input.CharityID,
		PickupID:    domain.NewPickupID(),
		Items:       input.Items,
		Urgency:     input.Urgency,
		Status:      donation.StatusSubmitted,
		Coordinates: input.Coordinates,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("donation.id", d.ID.String()))

	items := make([]pickup.Item, len(input.Items))
	for i, item := range input.Items {
		items[i] = pickup.Item{
			Category:    item.Category,
			Description: item.Description,
			Quantity:    item.Quantity,
			Condition:   item.Condition,
		}
	}
	request := &pickup.Request{
		ID:          d.PickupID,
		DonationID:  d.ID,
		CharityID:   d.CharityID,
		Coordinates: input.Coordinates,
		Items:       items,
		Priority:    input.Urgency.Priority(),
		Status:      pickup.StatusAvailable,
		Metadata: pickup.Metadata{
			SubmittedAt:       now,
			Refrigerated:      input.Refrigerated,
			Fragile:           input.Fragile,
			ContactPreference: input.ContactPreference,
		},
	}

	if err := s.store.Create(ctx, d, request); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create donation", err)
	}

	if s.geoIndex != nil && input.Coordinates != nil {
		// Best effort: a missing index entry only widens the listing scan.
		_ = s.geoIndex.Add(ctx, request.ID, *input.Coordinates)
	}

	s.metrics.IncDonationsSubmitted()
	s.auditor.Emit(ctx, audit.Event{
		Action:  audit.ActionDonationSubmitted,
		Actor:   donorID.String(),
		Subject: d.ID.String(),
		Detail:  string(d.Urgency),
	})
	return d, nil
}

// Confirm is the charity's acknowledgement of a delivered donation. Only a
// user acting for the receiving organization may confirm, only from the
// delivered status, and only once. The thank-you note is required and stored
// verbatim.
func (s *Service) Confirm(ctx context.Context, callerID domain.UserID, id domain.DonationID, note string) (*donation.Donation, error) {
	ctx, span := s.tracer.Start(ctx, "donation.Confirm",
		trace.WithAttributes(attribute.String("donation.id", id.String())))
	defer span.End()

	if note == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "thank-you note is required")
	}

	profile, err := s.identity.GetCharityProfile(ctx, callerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeForbidden, "caller has no charity profile")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load charity profile", err)
	}

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "donation not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load donation", err)
	}
	if existing.CharityID != profile.CharityID {
		return nil, dErrors.New(dErrors.CodeForbidden, "donation belongs to another charity")
	}

	confirmed, err := s.store.Confirm(ctx, id, note, requestcontext.Now(ctx))
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "donation not found")
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.New(dErrors.CodeConflict, "donation is already confirmed")
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, dErrors.New(dErrors.CodeConflict, "donation has not been delivered")
		default:
			return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to confirm donation", err)
		}
	}

	s.metrics.IncDonationsConfirmed()
	s.auditor.Emit(ctx, audit.Event{
		Action:  audit.ActionDonationConfirmed,
		Actor:   callerID.String(),
		Subject: id.String(),
	})
	return confirmed, nil
}

// Get returns one donation.
func (s *Service) Get(ctx context.Context, id domain.DonationID) (*donation.Donation, error) {
	d, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "donation not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load donation", err)
	}
	return d, nil
}

// ListByDonor returns the caller's own donations, newest first.
func (s *Service) ListByDonor(ctx context.Context, donorID domain.UserID) ([]*donation.Donation, error) {
	out, err := s.store.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list donations", err)
	}
	return out, nil
}

// ApplyPickupStatus projects a pickup status onto the donation. A confirmed
// donation is final from the donor's point of view, so later pickup movement
// no longer changes it.
func (s *Service) ApplyPickupStatus(ctx context.Context, id domain.DonationID, status pickup.Status) error {
	projected, ok := donation.ProjectStatus(status)
	if !ok {
		return dErrors.Newf(dErrors.CodeBadRequest, "no donation status for pickup status %q", status)
	}

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "donation not found")
		}
		return dErrors.Wrap(dErrors.CodeInternal, "failed to load donation", err)
	}
	if existing.Status == donation.StatusConfirmed {
		return nil
	}
	if existing.Status == projected {
		return nil
	}

	if _, err := s.store.SetStatus(ctx, id, projected, requestcontext.Now(ctx)); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to set donation status", err)
	}
	return nil
}
