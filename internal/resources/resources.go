// Package resources configures the entity screens on top of the generic
// listing handler.
package resources

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stockroom/console/internal/backend"
	"github.com/stockroom/console/internal/listing"
	"github.com/stockroom/console/internal/masterdata"
	"github.com/stockroom/console/internal/shared"
	"github.com/stockroom/console/internal/view"
)

// Deps are the collaborators every screen needs.
type Deps struct {
	Logger    *slog.Logger
	Templates *view.Engine
	CSRF      *shared.CSRFManager
	Client    *backend.Client
	Store     *masterdata.Store
}

// Mounter registers routes on a sub-router.
type Mounter interface {
	MountRoutes(r chi.Router)
}

// Screen is an entity screen and where it is mounted.
type Screen struct {
	Path    string
	Handler Mounter
}

// Screens builds every entity screen in sidebar order.
func Screens(d Deps) []Screen {
	screens := []Screen{
		screen(d, Products(d.Store)),
		screen(d, Categories(d.Store, d.Logger)),
		screen(d, Subcategories(d.Store, d.Logger)),
		screen(d, Brands(d.Store, d.Logger)),
		screen(d, Attributes(d.Store)),
		screen(d, Suppliers(d.Store, d.Logger)),
		screen(d, PurchaseOrders()),
		screen(d, Warehouses()),
		screen(d, StockMovements()),
		screen(d, Customers()),
	}
	return screens
}

func screen[T, F any](d Deps, res *listing.Resource[T, F]) Screen {
	return Screen{
		Path:    res.Path,
		Handler: listing.NewHandler(d.Logger, d.Templates, d.CSRF, d.Client, res),
	}
}

// invalidate returns an AfterChange hook that drops a master-data kind.
func invalidate(store *masterdata.Store, logger *slog.Logger, kind masterdata.Kind) func(context.Context) error {
	return func(ctx context.Context) error {
		if store == nil {
			return nil
		}
		if err := store.Invalidate(ctx, kind); err != nil {
			if logger != nil {
				logger.Warn("invalidate master data", slog.String("kind", string(kind)), slog.Any("error", err))
			}
			return err
		}
		return nil
	}
}

func choices(items []masterdata.Choice) []listing.Option {
	out := make([]listing.Option, 0, len(items))
	for _, c := range items {
		out = append(out, listing.Option{Value: strconv.FormatInt(c.Value, 10), Label: c.Label})
	}
	return out
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func optionalItoa(n *int64) string {
	if n == nil {
		return ""
	}
	return itoa(*n)
}
