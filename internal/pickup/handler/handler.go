package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"donorlift/internal/geo"
	"donorlift/internal/http/shared"
	"donorlift/internal/identity"
	"donorlift/internal/pickup"
	"donorlift/internal/platform/metrics"
	"donorlift/internal/platform/middleware"
	"donorlift/pkg/domain"
	dErrors "donorlift/pkg/domain-errors"
)

// Service defines the pickup operations the handler depends on.
type Service interface {
	UpdateStatus(ctx context.Context, id domain.PickupID, target pickup.Status, actor domain.UserID, role identity.Role) (*pickup.Request, error)
	List(ctx context.Context, filter pickup.Filter) ([]pickup.ListItem, error)
	Get(ctx context.Context, id domain.PickupID) (*pickup.Request, error)
}

// Handler exposes the pickup request API.
type Handler struct {
	logger       *slog.Logger
	pickups      Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

func New(pickups Service, logger *slog.Logger, metrics *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		pickups:      pickups,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the pickup routes with the chi router.
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

		router.Get("/pickups", h.handleList)
		router.Get("/pickups/{pickupID}", h.handleGet)
		router.Post("/pickups/{pickupID}/status", h.handleUpdateStatus)
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.callerID(w, r)
	if !ok {
		return
	}

	id, err := domain.ParsePickupID(chi.URLParam(r, "pickupID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid pickup id"))
		return
	}

	var body updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.WarnContext(ctx, "invalid status body",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	updated, err := h.pickups.UpdateStatus(ctx, id, pickup.Status(body.Status), actor, identity.Role(middleware.GetRole(ctx)))
	if err != nil {
		h.writeServiceError(ctx, w, "failed to update pickup status", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParsePickupID(chi.URLParam(r, "pickupID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid pickup id"))
		return
	}

	request, err := h.pickups.Get(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load pickup request", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, request)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseListFilter(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	items, err := h.pickups.List(ctx, filter)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list pickup requests", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"pickups": items,
		"count":   len(items),
	})
}

// parseListFilter reads the listing query parameters. lat and lon must come
// as a pair; radius_km without them is rejected rather than silently ignored.
func parseListFilter(r *http.Request) (pickup.Filter, error) {
	q := r.URL.Query()
	filter := pickup.Filter{
		Status:   pickup.Status(q.Get("status")),
		Priority: pickup.Priority(q.Get("priority")),
	}

	latRaw, lonRaw := q.Get("lat"), q.Get("lon")
	if (latRaw == "") != (lonRaw == "") {
		return pickup.Filter{}, dErrors.New(dErrors.CodeBadRequest, "lat and lon must be provided together")
	}
	if latRaw != "" {
		lat, err := strconv.ParseFloat(latRaw, 64)
		if err != nil {
			return pickup.Filter{}, dErrors.New(dErrors.CodeBadRequest, "invalid lat")
		}
		lon, err := strconv.ParseFloat(lonRaw, 64)
		if err != nil {
			return pickup.Filter{}, dErrors.New(dErrors.CodeBadRequest, "invalid lon")
		}
		filter.Observer = &geo.Point{Lat: lat, Lon: lon}
	}

	if raw := q.Get("radius_km"); raw != "" {
		if filter.Observer == nil {
			return pickup.Filter{}, dErrors.New(dErrors.CodeBadRequest, "radius_km requires lat and lon")
		}
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			return pickup.Filter{}, dErrors.New(dErrors.CodeBadRequest, "invalid radius_km")
		}
		filter.RadiusKm = radius
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return pickup.Filter{}, dErrors.New(dErrors.CodeBadRequest, "invalid limit")
		}
		filter.Limit = limit
	}
	return filter, nil
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
