package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"donorlift/internal/availability"
	"donorlift/internal/http/shared"
	"donorlift/internal/identity"
	"donorlift/internal/platform/metrics"
	"donorlift/internal/platform/middleware"
	"donorlift/pkg/domain"
	dErrors "donorlift/pkg/domain-errors"
)

// Service defines the availability operations the handler depends on.
type Service interface {
	Replace(ctx context.Context, volunteerID domain.UserID, schedule *availability.Schedule) (*availability.Schedule, error)
	Get(ctx context.Context, volunteerID domain.UserID) (*availability.Schedule, error)
	Delete(ctx context.Context, volunteerID domain.UserID) error
	AddUnavailability(ctx context.Context, volunteerID domain.UserID, window availability.Unavailability) error
	CheckAt(ctx context.Context, volunteerID domain.UserID, at time.Time) (bool, error)
	FindAvailableVolunteers(ctx context.Context, at time.Time) ([]availability.Match, error)
}

// Handler exposes the volunteer availability API.
type Handler struct {
	logger       *slog.Logger
	availability Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

func New(availability Service, logger *slog.Logger, metrics *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		availability: availability,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the availability routes with the chi router.
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

		router.Put("/volunteers/me/availability", h.handleReplace)
		router.Get("/volunteers/me/availability", h.handleGet)
		router.Delete("/volunteers/me/availability", h.handleDelete)
		router.Post("/volunteers/me/availability/unavailability", h.handleAddUnavailability)
		router.Get("/volunteers/me/availability/check", h.handleCheck)

		router.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireRole(h.logger, identity.RoleAdmin.String()))
			admin.Get("/admin/volunteers/available", h.handleFindAvailable)
		})
	})
}

func (h *Handler) handleReplace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	volunteerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var schedule availability.Schedule
	if err := json.NewDecoder(r.Body).Decode(&schedule); err != nil {
		h.logger.WarnContext(ctx, "invalid schedule body",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	saved, err := h.availability.Replace(ctx, volunteerID, &schedule)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to replace schedule", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, saved)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	volunteerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	schedule, err := h.availability.Get(ctx, volunteerID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load schedule", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, schedule)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	volunteerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	if err := h.availability.Delete(ctx, volunteerID); err != nil {
		h.writeServiceError(ctx, w, "failed to delete schedule", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddUnavailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	volunteerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var window availability.Unavailability
	if err := json.NewDecoder(r.Body).Decode(&window); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.availability.AddUnavailability(ctx, volunteerID, window); err != nil {
		h.writeServiceError(ctx, w, "failed to add unavailability", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	volunteerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	at, err := parseInstant(r.URL.Query().Get("at"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	available, err := h.availability.CheckAt(ctx, volunteerID, at)
	if err != nil {
		h.writeServiceError(ctx, w, "availability check failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"at":        at,
		"available": available,
	})
}

func (h *Handler) handleFindAvailable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	at, err := parseInstant(r.URL.Query().Get("at"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	matches, err := h.availability.FindAvailableVolunteers(ctx, at)
	if err != nil {
		h.writeServiceError(ctx, w, "volunteer matching failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"at":      at,
		"matches": matches,
	})
}

func (h *Handler) callerID(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	ctx := r.Context()
	raw := middleware.GetUserID(ctx)
	if raw == "" {
		// Should never happen behind RequireAuth.
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

func parseInstant(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, "query parameter 'at' is required (RFC 3339)")
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, "query parameter 'at' must be RFC 3339")
	}
	return at, nil
}
