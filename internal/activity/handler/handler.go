package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"repute/internal/activity"
	"repute/pkg/domain"
	dErrors "repute/pkg/domainerrors"
	"repute/pkg/platform/httputil"
	"repute/pkg/requestcontext"
)

// Service defines the interface for activity log operations.
type Service interface {
	RecordActivity(ctx context.Context, caller domain.Principal, domainID domain.DomainID,
		activityType string, value uint64, dataHash string) (domain.ActivityID, error)
	VerifyActivity(ctx context.Context, caller domain.Principal, domainID domain.DomainID,
		id domain.ActivityID) (uint64, error)
	GetUserActivities(ctx context.Context, caller domain.Principal, domainID domain.DomainID,
		user domain.Principal) ([]*activity.Activity, error)
}

// Handler wires activity endpoints to the activity service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an activity handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts activity endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/domains/{domainID}/activities", h.HandleRecord)
	r.Post("/domains/{domainID}/activities/{activityID}/verify", h.HandleVerify)
	r.Get("/domains/{domainID}/users/{user}/activities", h.HandleList)
}

// RecordActivityRequest is the wire form of a recorded activity.
type RecordActivityRequest struct {
	ActivityType string `json:"activity_type"`
	Value        uint64 `json:"value"`
	DataHash     string `json:"data_hash"`
}

type recordActivityResponse struct {
	ActivityID domain.ActivityID `json:"activity_id"`
}

type scoreResponse struct {
	Score uint64 `json:"score"`
}

// HandleRecord handles POST /domains/{domainID}/activities requests.
func (h *Handler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := httputil.RequireCaller(w, ctx)
	if !ok {
		return
	}

	domainID, err := domain.ParseDomainID(chi.URLParam(r, "domainID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidDomain, "malformed domain id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[RecordActivityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	id, err := h.service.RecordActivity(ctx, caller, domainID, req.ActivityType, req.Value, req.DataHash)
	if err != nil {
		h.logger.WarnContext(ctx, "activity recording failed",
			"request_id", requestID,
			"domain_id", domainID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, recordActivityResponse{ActivityID: id})
}

// HandleVerify handles POST /domains/{domainID}/activities/{activityID}/verify.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := httputil.RequireCaller(w, ctx)
	if !ok {
		return
	}

	domainID, err := domain.ParseDomainID(chi.URLParam(r, "domainID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidDomain, "malformed domain id"))
		return
	}
	id, err := domain.ParseActivityID(chi.URLParam(r, "activityID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	score, err := h.service.VerifyActivity(ctx, caller, domainID, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, scoreResponse{Score: score})
}

// HandleList handles GET /domains/{domainID}/users/{user}/activities.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := httputil.RequireCaller(w, ctx)
	if !ok {
		return
	}

	domainID, err := domain.ParseDomainID(chi.URLParam(r, "domainID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidDomain, "malformed domain id"))
		return
	}
	user, err := domain.ParsePrincipal(chi.URLParam(r, "user"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	list, err := h.service.GetUserActivities(ctx, caller, domainID, user)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}
