package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"repute/internal/endorsement"
	"repute/pkg/domain"
	dErrors "repute/pkg/domainerrors"
	"repute/pkg/platform/httputil"
	"repute/pkg/requestcontext"
)

// Service defines the interface for endorsement operations.
type Service interface {
	Endorse(ctx context.Context, caller domain.Principal, domainID domain.DomainID,
		endorsee domain.Principal, weight uint32, message string, tags []string) (uint64, error)
	RemoveEndorsement(ctx context.Context, caller domain.Principal, domainID domain.DomainID,
		endorsee domain.Principal) (uint64, error)
	GetUserEndorsements(ctx context.Context, caller domain.Principal, domainID domain.DomainID,
		user domain.Principal) ([]*endorsement.Endorsement, error)
}

// Handler wires endorsement endpoints to the endorsement service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an endorsement handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts endorsement endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/domains/{domainID}/endorsements", h.HandleEndorse)
	r.Delete("/domains/{domainID}/endorsements/{endorsee}", h.HandleRemove)
	r.Get("/domains/{domainID}/users/{user}/endorsements", h.HandleList)
}

// EndorseRequest is the wire form of an endorsement.
type EndorseRequest struct {
	Endorsee string   `json:"endorsee"`
	Weight   uint32   `json:"weight"`
	Message  string   `json:"message,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

type scoreResponse struct {
	Score uint64 `json:"score"`
}

// HandleEndorse handles POST /domains/{domainID}/endorsements requests.
func (h *Handler) HandleEndorse(w http.ResponseWriter, r *http.Request) {
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

	req, ok := httputil.DecodeAndPrepare[EndorseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	endorsee, err := domain.ParsePrincipal(req.Endorsee)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	score, err := h.service.Endorse(ctx, caller, domainID, endorsee, req.Weight, req.Message, req.Tags)
	if err != nil {
		h.logger.WarnContext(ctx, "endorsement failed",
			"request_id", requestID,
			"domain_id", domainID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, scoreResponse{Score: score})
}

// HandleRemove handles DELETE /domains/{domainID}/endorsements/{endorsee}.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
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
	endorsee, err := domain.ParsePrincipal(chi.URLParam(r, "endorsee"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	score, err := h.service.RemoveEndorsement(ctx, caller, domainID, endorsee)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, scoreResponse{Score: score})
}

// HandleList handles GET /domains/{domainID}/users/{user}/endorsements.
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

	list, err := h.service.GetUserEndorsements(ctx, caller, domainID, user)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}
