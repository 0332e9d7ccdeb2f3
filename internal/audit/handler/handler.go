package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"repute/internal/audit"
	"repute/pkg/domain"
	dErrors "repute/pkg/domainerrors"
	"repute/pkg/platform/httputil"
)

// Store defines the audit event read surface.
type Store interface {
	ListByActor(ctx context.Context, actor domain.Principal) ([]audit.Event, error)
}

// Handler exposes the audit trail for operational inspection. Events carry
// identities and actions only, never privacy-gated field values, so the
// endpoint requires authentication but no per-owner gate.
type Handler struct {
	store  Store
	logger *slog.Logger
}

// New constructs an audit handler with its dependencies.
func New(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Register mounts the audit endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/events", h.HandleListByActor)
}

// HandleListByActor handles GET /audit/events?actor=... requests.
func (h *Handler) HandleListByActor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := httputil.RequireCaller(w, ctx); !ok {
		return
	}

	actor, err := domain.ParsePrincipal(r.URL.Query().Get("actor"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.store.ListByActor(ctx, actor)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}
