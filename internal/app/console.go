package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/stockroom/console/internal/attachments"
	"github.com/stockroom/console/internal/backend"
	"github.com/stockroom/console/internal/catalog"
	"github.com/stockroom/console/internal/masterdata"
	"github.com/stockroom/console/internal/observability"
	"github.com/stockroom/console/internal/procurement"
	"github.com/stockroom/console/internal/resources"
	"github.com/stockroom/console/internal/shared"
	"github.com/stockroom/console/internal/view"
	"github.com/stockroom/console/jobs"
)

const sessionCookieName = "stockroom_session"

// ConsoleParams are the process-level resources the console is built from.
type ConsoleParams struct {
	Config *Config
	Logger *slog.Logger
	Redis  *redis.Client
	// Files overrides the attachment store chosen by Config.StorageDriver.
	Files     attachments.Store
	Inspector jobs.QueueInspector
	Metrics   *observability.Metrics
}

// Console is the assembled web application.
type Console struct {
	Handler http.Handler
	Client  *backend.Client
	Store   *masterdata.Store
	Metrics *observability.Metrics
}

// NewConsole wires every screen on top of one backend client and one
// master-data store.
func NewConsole(ctx context.Context, p ConsoleParams) (*Console, error) {
	if p.Config == nil || p.Redis == nil {
		return nil, errors.New("app: config and redis are required")
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := p.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics()
	}

	client, err := backend.New(p.Config.BackendURL,
		backend.WithHTTPClient(&http.Client{Timeout: p.Config.BackendTimeout}),
		backend.WithLogger(logger),
		backend.WithObserver(metrics),
	)
	if err != nil {
		return nil, err
	}

	files := p.Files
	if files == nil {
		files, err = NewAttachmentStore(ctx, p.Config)
		if err != nil {
			return nil, err
		}
	}

	templates, err := view.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("app: parse templates: %w", err)
	}

	store := masterdata.NewStore(client, masterdata.NewRedisBacking(p.Redis), logger)
	sessions := shared.NewSessionManager(p.Redis, sessionCookieName, p.Config.SessionSecret, p.Config.SessionTTL, p.Config.IsProduction())
	csrf := shared.NewCSRFManager(p.Config.CSRFSecret)

	screens := resources.Screens(resources.Deps{
		Logger:    logger,
		Templates: templates,
		CSRF:      csrf,
		Client:    client,
		Store:     store,
	})
	wizard := catalog.NewHandler(logger, templates, csrf, catalog.NewService(client, store, files, logger), store)
	builder := procurement.NewHandler(logger, templates, csrf, procurement.NewService(client, store, logger), store)

	handler := NewRouter(RouterParams{
		Logger:         logger,
		Config:         p.Config,
		Templates:      templates,
		SessionManager: sessions,
		CSRFManager:    csrf,
		Screens:        screens,
		Flows: map[string][]resources.Mounter{
			"/products":        {wizard},
			"/purchase-orders": {builder},
		},
		MasterDataHandler: masterdata.NewHandler(logger, store),
		JobHandler:        jobs.NewHandler(p.Inspector, logger),
		Metrics:           metrics,
	})

	return &Console{Handler: handler, Client: client, Store: store, Metrics: metrics}, nil
}

// NewAttachmentStore returns the image store selected by configuration.
func NewAttachmentStore(ctx context.Context, cfg *Config) (attachments.Store, error) {
	switch cfg.StorageDriver {
	case StorageS3:
		s3Store, err := attachments.NewS3Store(ctx, cfg.S3())
		if err != nil {
			return nil, err
		}
		if err := s3Store.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("app: ensure bucket: %w", err)
		}
		return s3Store, nil
	case StorageMemory, "":
		return attachments.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("app: unknown storage driver %q", cfg.StorageDriver)
	}
}
