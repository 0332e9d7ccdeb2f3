package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"repute/internal/registry"
	"repute/pkg/domain"
	dErrors "repute/pkg/domainerrors"
	"repute/pkg/platform/httputil"
	"repute/pkg/requestcontext"
)

// Service defines the interface for domain registry operations.
type Service interface {
	CreateDomain(ctx context.Context, caller domain.Principal, req registry.CreateDomainRequest) (domain.DomainID, error)
	GetDomain(ctx context.Context, id domain.DomainID) (*registry.Domain, error)
}

// Handler wires domain registry endpoints to the registry service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a registry handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts registry endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/domains", h.HandleCreateDomain)
	r.Get("/domains/{domainID}", h.HandleGetDomain)
}

// CreateDomainRequest is the wire form of a domain configuration.
type CreateDomainRequest struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	WeightEndorsement  uint32 `json:"weight_endorsement"`
	WeightActivity     uint32 `json:"weight_activity"`
	WeightVerification uint32 `json:"weight_verification"`
	MinEndorsements    uint32 `json:"min_endorsements"`
}

type createDomainResponse struct {
	DomainID domain.DomainID `json:"domain_id"`
}

// HandleCreateDomain handles POST /domains requests.
func (h *Handler) HandleCreateDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := httputil.RequireCaller(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateDomainRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	id, err := h.service.CreateDomain(ctx, caller, registry.CreateDomainRequest{
		Name:               req.Name,
		Description:        req.Description,
		WeightEndorsement:  req.WeightEndorsement,
		WeightActivity:     req.WeightActivity,
		WeightVerification: req.WeightVerification,
		MinEndorsements:    req.MinEndorsements,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "domain creation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, createDomainResponse{DomainID: id})
}

// HandleGetDomain handles GET /domains/{domainID} requests.
func (h *Handler) HandleGetDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := httputil.RequireCaller(w, ctx); !ok {
		return
	}

	id, err := domain.ParseDomainID(chi.URLParam(r, "domainID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidDomain, "malformed domain id"))
		return
	}

	d, err := h.service.GetDomain(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}
