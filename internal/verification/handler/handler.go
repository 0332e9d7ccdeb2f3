package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"repute/internal/verification"
	"repute/pkg/domain"
	dErrors "repute/pkg/domainerrors"
	"repute/pkg/platform/httputil"
	"repute/pkg/requestcontext"
)

// Service defines the interface for verification and provider operations.
type Service interface {
	AddVerifierProvider(ctx context.Context, caller domain.Principal, domainID domain.DomainID,
		provider domain.Principal, name string, allowedTypes []string) error
	RevokeVerifierProvider(ctx context.Context, caller domain.Principal, domainID domain.DomainID,
		provider domain.Principal) error
	IsAuthorizedVerifier(ctx context.Context, domainID domain.DomainID, principal domain.Principal) (bool, error)
	AddVerification(ctx context.Context, caller domain.Principal, domainID domain.DomainID,
		user domain.Principal, verificationType, evidenceHash string, level uint32,
		expiresAt *domain.LogicalTime) (uint64, error)
	RevokeVerification(ctx context.Context, caller domain.Principal, domainID domain.DomainID,
		user domain.Principal, verificationType string) (uint64, error)
	GetVerifications(ctx context.Context, caller domain.Principal, domainID domain.DomainID,
		user domain.Principal) ([]*verification.Verification, error)
}

// Handler wires verification endpoints to the verification service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a verification handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts verification and provider endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/domains/{domainID}/providers", h.HandleAddProvider)
	r.Delete("/domains/{domainID}/providers/{provider}", h.HandleRevokeProvider)
	r.Get("/domains/{domainID}/providers/{provider}", h.HandleProviderStatus)
	r.Post("/domains/{domainID}/verifications", h.HandleAddVerification)
	r.Delete("/domains/{domainID}/users/{user}/verifications/{type}", h.HandleRevokeVerification)
	r.Get("/domains/{domainID}/users/{user}/verifications", h.HandleList)
}

// AddProviderRequest is the wire form of a provider grant.
type AddProviderRequest struct {
	Provider     string   `json:"provider"`
	Name         string   `json:"name"`
	AllowedTypes []string `json:"allowed_types"`
}

// AddVerificationRequest is the wire form of an attestation.
type AddVerificationRequest struct {
	User             string  `json:"user"`
	VerificationType string  `json:"verification_type"`
	EvidenceHash     string  `json:"evidence_hash"`
	Level            uint32  `json:"level"`
	ExpiresAt        *uint64 `json:"expires_at,omitempty"`
}

type providerStatusResponse struct {
	Authorized bool `json:"authorized"`
}

type scoreResponse struct {
	Score uint64 `json:"score"`
}

// HandleAddProvider handles POST /domains/{domainID}/providers requests.
func (h *Handler) HandleAddProvider(w http.ResponseWriter, r *http.Request) {
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

	req, ok := httputil.DecodeAndPrepare[AddProviderRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	provider, err := domain.ParsePrincipal(req.Provider)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.AddVerifierProvider(ctx, caller, domainID, provider, req.Name, req.AllowedTypes); err != nil {
		h.logger.WarnContext(ctx, "provider authorization failed",
			"request_id", requestID,
			"domain_id", domainID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRevokeProvider handles DELETE /domains/{domainID}/providers/{provider}.
func (h *Handler) HandleRevokeProvider(w http.ResponseWriter, r *http.Request) {
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
	provider, err := domain.ParsePrincipal(chi.URLParam(r, "provider"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.RevokeVerifierProvider(ctx, caller, domainID, provider); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleProviderStatus handles GET /domains/{domainID}/providers/{provider}.
func (h *Handler) HandleProviderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := httputil.RequireCaller(w, ctx); !ok {
		return
	}

	domainID, err := domain.ParseDomainID(chi.URLParam(r, "domainID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidDomain, "malformed domain id"))
		return
	}
	provider, err := domain.ParsePrincipal(chi.URLParam(r, "provider"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	authorized, err := h.service.IsAuthorizedVerifier(ctx, domainID, provider)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, providerStatusResponse{Authorized: authorized})
}

// HandleAddVerification handles POST /domains/{domainID}/verifications.
func (h *Handler) HandleAddVerification(w http.ResponseWriter, r *http.Request) {
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

	req, ok := httputil.DecodeAndPrepare[AddVerificationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	user, err := domain.ParsePrincipal(req.User)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var expiresAt *domain.LogicalTime
	if req.ExpiresAt != nil {
		t := domain.LogicalTime(*req.ExpiresAt)
		expiresAt = &t
	}

	score, err := h.service.AddVerification(ctx, caller, domainID, user,
		req.VerificationType, req.EvidenceHash, req.Level, expiresAt)
	if err != nil {
		h.logger.WarnContext(ctx, "verification failed",
			"request_id", requestID,
			"domain_id", domainID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, scoreResponse{Score: score})
}

// HandleRevokeVerification handles
// DELETE /domains/{domainID}/users/{user}/verifications/{type}.
func (h *Handler) HandleRevokeVerification(w http.ResponseWriter, r *http.Request) {
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
	verificationType := chi.URLParam(r, "type")

	score, err := h.service.RevokeVerification(ctx, caller, domainID, user, verificationType)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, scoreResponse{Score: score})
}

// HandleList handles GET /domains/{domainID}/users/{user}/verifications.
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

	list, err := h.service.GetVerifications(ctx, caller, domainID, user)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}
