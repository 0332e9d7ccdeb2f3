package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"repute/internal/privacy"
	"repute/pkg/domain"
	dErrors "repute/pkg/domainerrors"
	"repute/pkg/platform/httputil"
	"repute/pkg/requestcontext"
)

// Service defines the interface for privacy and delegation operations.
type Service interface {
	UpdateSettings(ctx context.Context, caller domain.Principal, domainID domain.DomainID,
		owner domain.Principal, update privacy.SettingsUpdate) error
	GetSettings(ctx context.Context, caller domain.Principal, domainID domain.DomainID,
		owner domain.Principal) (*privacy.Settings, error)
	Delegate(ctx context.Context, caller domain.Principal, domainID domain.DomainID,
		proxy domain.Principal, expiresAt *domain.LogicalTime) error
	RemoveDelegation(ctx context.Context, caller domain.Principal, domainID domain.DomainID) error
}

// Handler wires privacy endpoints to the privacy service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a privacy handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts privacy and delegation endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Put("/domains/{domainID}/users/{user}/privacy", h.HandleUpdateSettings)
	r.Get("/domains/{domainID}/users/{user}/privacy", h.HandleGetSettings)
	r.Post("/domains/{domainID}/delegation", h.HandleDelegate)
	r.Delete("/domains/{domainID}/delegation", h.HandleRemoveDelegation)
}

// UpdateSettingsRequest is the wire form of a privacy settings overwrite.
type UpdateSettingsRequest struct {
	ShowScore         bool     `json:"show_score"`
	ShowEndorsements  bool     `json:"show_endorsements"`
	ShowActivities    bool     `json:"show_activities"`
	ShowVerifications bool     `json:"show_verifications"`
	AuthorizedViewers []string `json:"authorized_viewers,omitempty"`
}

// DelegateRequest is the wire form of a delegation grant.
type DelegateRequest struct {
	Proxy     string  `json:"proxy"`
	ExpiresAt *uint64 `json:"expires_at,omitempty"`
}

// HandleUpdateSettings handles PUT /domains/{domainID}/users/{user}/privacy.
// The owner writes their own settings; a live proxy may write on the owner's
// behalf.
func (h *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
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
	owner, err := domain.ParsePrincipal(chi.URLParam(r, "user"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateSettingsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	viewers := make([]domain.Principal, 0, len(req.AuthorizedViewers))
	for _, v := range req.AuthorizedViewers {
		p, err := domain.ParsePrincipal(v)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		viewers = append(viewers, p)
	}

	err = h.service.UpdateSettings(ctx, caller, domainID, owner, privacy.SettingsUpdate{
		ShowScore:         req.ShowScore,
		ShowEndorsements:  req.ShowEndorsements,
		ShowActivities:    req.ShowActivities,
		ShowVerifications: req.ShowVerifications,
		AuthorizedViewers: viewers,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "privacy settings update failed",
			"request_id", requestID,
			"domain_id", domainID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetSettings handles GET /domains/{domainID}/users/{user}/privacy.
func (h *Handler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
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
	owner, err := domain.ParsePrincipal(chi.URLParam(r, "user"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	settings, err := h.service.GetSettings(ctx, caller, domainID, owner)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, settings)
}

// HandleDelegate handles POST /domains/{domainID}/delegation requests.
func (h *Handler) HandleDelegate(w http.ResponseWriter, r *http.Request) {
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

	req, ok := httputil.DecodeAndPrepare[DelegateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	proxy, err := domain.ParsePrincipal(req.Proxy)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var expiresAt *domain.LogicalTime
	if req.ExpiresAt != nil {
		t := domain.LogicalTime(*req.ExpiresAt)
		expiresAt = &t
	}

	if err := h.service.Delegate(ctx, caller, domainID, proxy, expiresAt); err != nil {
		h.logger.WarnContext(ctx, "delegation failed",
			"request_id", requestID,
			"domain_id", domainID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemoveDelegation handles DELETE /domains/{domainID}/delegation.
func (h *Handler) HandleRemoveDelegation(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.RemoveDelegation(ctx, caller, domainID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
