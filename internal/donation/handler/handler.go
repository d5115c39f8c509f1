package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"donorlift/internal/donation"
	"donorlift/internal/donation/service"
	"donorlift/internal/http/shared"
	"donorlift/internal/identity"
	"donorlift/internal/platform/metrics"
	"donorlift/internal/platform/middleware"
	"donorlift/pkg/domain"
	dErrors "donorlift/pkg/domain-errors"
)

// Service defines the donation operations the handler depends on.
type Service interface {
	Submit(ctx context.Context, donorID domain.UserID, input service.SubmitInput) (*donation.Donation, error)
	Confirm(ctx context.Context, callerID domain.UserID, id domain.DonationID, note string) (*donation.Donation, error)
	Get(ctx context.Context, id domain.DonationID) (*donation.Donation, error)
	ListByDonor(ctx context.Context, donorID domain.UserID) ([]*donation.Donation, error)
}

// Handler exposes the donation API.
type Handler struct {
	logger       *slog.Logger
	donations    Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

func New(donations Service, logger *slog.Logger, metrics *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		donations:    donations,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the donation routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(router chi.Router) {
		router.Use(middleware.Recovery(h.logger))
		router.Use(middleware.RequestID)
		router.Use(middleware.RequestTime)
		router.Use(middleware.ClientMetadata)
		router.Use(middleware.Logger(h.logger))
		router.Use(middleware.Timeout(30 * time.Second))
		router.Use(middleware.ContentTypeJSON)
		router.Use(middleware.LatencyMiddleware(h.metrics))
		router.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		router.Get("/donations/{donationID}", h.handleGet)

		router.Group(func(donor chi.Router) {
			donor.Use(middleware.RequireRole(h.logger, identity.RoleDonor.String(), identity.RoleAdmin.String()))
			donor.Post("/donations", h.handleSubmit)
			donor.Get("/donations", h.handleListMine)
		})

		router.Group(func(charity chi.Router) {
			charity.Use(middleware.RequireRole(h.logger, identity.RoleCharity.String()))
			charity.Post("/donations/{donationID}/confirm", h.handleConfirm)
		})
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	donorID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var input service.SubmitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.WarnContext(ctx, "invalid donation body",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	d, err := h.donations.Submit(ctx, donorID, input)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to submit donation", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, d)
}

type confirmRequest struct {
	ThankYouNote string `json:"thankYouNote"`
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	id, err := domain.ParseDonationID(chi.URLParam(r, "donationID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid donation id"))
		return
	}

	var body confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	confirmed, err := h.donations.Confirm(ctx, callerID, id, body.ThankYouNote)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to confirm donation", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, confirmed)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseDonationID(chi.URLParam(r, "donationID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid donation id"))
		return
	}

	d, err := h.donations.Get(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load donation", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	donorID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	donations, err := h.donations.ListByDonor(ctx, donorID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list donations", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"donations": donations,
		"count":     len(donations),
	})
}

func (h *Handler) callerID(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	ctx := r.Context()
	raw := middleware.GetUserID(ctx)
	if raw == "" {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return domain.UserID{}, false
	}
	id, err := domain.ParseUserID(raw)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid caller identity"))
		return domain.UserID{}, false
	}
	return id, true
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}
