package masterdata

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/stockroom/console/internal/backend"
	"github.com/stockroom/console/internal/shared"
)

// Handler exposes console actions over the store.
type Handler struct {
	logger *slog.Logger
	store  *Store
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, store *Store) *Handler {
	return &Handler{logger: logger, store: store}
}

// MountRoutes registers the master-data routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/refresh", h.refresh)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	back := returnPath(r)
	if err := h.store.RefreshAll(r.Context()); err != nil {
		h.logger.Error("refresh master data", slog.Any("error", err))
		shared.Flash(r.Context(), shared.FlashError, backend.UserMessage(err, "Could not refresh reference data."))
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	shared.Flash(r.Context(), shared.FlashSuccess, "Reference data refreshed.")
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// returnPath sends the user back to the page that posted the form when it is
// a local path.
func returnPath(r *http.Request) string {
	if next := r.PostFormValue("next"); next != "" {
		if u, err := url.Parse(next); err == nil && u.Host == "" && u.Scheme == "" && len(u.Path) > 0 && u.Path[0] == '/' {
			return u.RequestURI()
		}
	}
	return "/"
}
