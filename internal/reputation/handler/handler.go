package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"repute/internal/reputation"
	"repute/pkg/domain"
	dErrors "repute/pkg/domainerrors"
	"repute/pkg/platform/httputil"
)

// Service defines the interface for reputation score reads.
type Service interface {
	GetScore(ctx context.Context, caller domain.Principal, domainID domain.DomainID,
		user domain.Principal) (*reputation.ScoreView, error)
}

// Handler wires the score read endpoint to the reputation ledger.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a reputation handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the score endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/domains/{domainID}/users/{user}/score", h.HandleGetScore)
}

// HandleGetScore handles GET /domains/{domainID}/users/{user}/score.
func (h *Handler) HandleGetScore(w http.ResponseWriter, r *http.Request) {
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

	view, err := h.service.GetScore(ctx, caller, domainID, user)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}
