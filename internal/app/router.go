package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stockroom/console/internal/masterdata"
	"github.com/stockroom/console/internal/observability"
	"github.com/stockroom/console/internal/resources"
	"github.com/stockroom/console/internal/shared"
	"github.com/stockroom/console/internal/view"
	"github.com/stockroom/console/jobs"
	"github.com/stockroom/console/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	// Screens are the entity list and edit screens in sidebar order.
	Screens []resources.Screen
	// Flows are dedicated screens sharing a mount point with an entity
	// screen, such as the product wizard under /products.
	Flows             map[string][]resources.Mounter
	MasterDataHandler *masterdata.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with console defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
		var flash *shared.FlashMessage
		if sess != nil {
			flash = sess.PopFlash()
		}
		data := view.TemplateData{
			Title:       "Dashboard",
			CSRFToken:   csrfToken,
			Flash:       flash,
			CurrentPath: r.URL.Path,
		}
		if err := params.Templates.Render(w, http.StatusOK, "pages/home.html", data); err != nil {
			params.Logger.Error("render home", slog.Any("error", err))
		}
	})

	mounted := make(map[string]bool, len(params.Screens))
	for _, s := range params.Screens {
		flows := params.Flows[s.Path]
		handler := s.Handler
		r.Route(s.Path, func(sr chi.Router) {
			for _, f := range flows {
				f.MountRoutes(sr)
			}
			handler.MountRoutes(sr)
		})
		mounted[s.Path] = true
	}
	for path, flows := range params.Flows {
		if mounted[path] {
			continue
		}
		r.Route(path, func(sr chi.Router) {
			for _, f := range flows {
				f.MountRoutes(sr)
			}
		})
	}

	if params.MasterDataHandler != nil {
		r.Route("/masterdata", params.MasterDataHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(web.Assets())))
	r.Handle("/static/*", staticCacheHandler(fileServer))

	return r
}

// staticCacheHandler lets browsers cache embedded assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
