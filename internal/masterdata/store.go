package masterdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/stockroom/console/internal/backend"
)

// Store serves reference lists, fetching each one from the backend on first
// use and keeping it until it is invalidated. Construct one per process and
// hand it to the handlers that need it.
type Store struct {
	client  *backend.Client
	backing Backing
	logger  *slog.Logger
	flight  singleflight.Group
}

// NewStore builds a Store. A nil backing keeps lists in process memory.
func NewStore(client *backend.Client, backing Backing, logger *slog.Logger) *Store {
	if backing == nil {
		backing = NewMemoryBacking()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{client: client, backing: backing, logger: logger}
}

// Categories returns every category.
func (s *Store) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	return out, s.load(ctx, KindCategories, "", &out)
}

// Subcategories returns the subcategories of one category. A zero id yields
// an empty list without a backend call.
func (s *Store) Subcategories(ctx context.Context, categoryID int64) ([]Subcategory, error) {
	if categoryID <= 0 {
		return []Subcategory{}, nil
	}
	var out []Subcategory
	return out, s.load(ctx, KindSubcategories, strconv.FormatInt(categoryID, 10), &out)
}

// Brands returns every brand.
func (s *Store) Brands(ctx context.Context) ([]Brand, error) {
	var out []Brand
	return out, s.load(ctx, KindBrands, "", &out)
}

// Suppliers returns every supplier.
func (s *Store) Suppliers(ctx context.Context) ([]Supplier, error) {
	var out []Supplier
	return out, s.load(ctx, KindSuppliers, "", &out)
}

// UOMs returns every unit of measure.
func (s *Store) UOMs(ctx context.Context) ([]UOM, error) {
	var out []UOM
	return out, s.load(ctx, KindUOMs, "", &out)
}

// FindUOM looks a unit up by id.
func (s *Store) FindUOM(ctx context.Context, id int64) (UOM, bool, error) {
	uoms, err := s.UOMs(ctx)
	if err != nil {
		return UOM{}, false, err
	}
	for _, u := range uoms {
		if u.UOMID.Int64() == id {
			return u, true, nil
		}
	}
	return UOM{}, false, nil
}

// FindSupplier looks a supplier up by id.
func (s *Store) FindSupplier(ctx context.Context, id int64) (Supplier, bool, error) {
	suppliers, err := s.Suppliers(ctx)
	if err != nil {
		return Supplier{}, false, err
	}
	for _, sup := range suppliers {
		if sup.SupplierID == id {
			return sup, true, nil
		}
	}
	return Supplier{}, false, nil
}

// Refresh refetches one list and replaces the stored copy. scope is the
// category id for subcategories and empty otherwise.
func (s *Store) Refresh(ctx context.Context, kind Kind, scope string) error {
	key, err := s.dataKey(ctx, kind, scope)
	if err != nil {
		return err
	}
	_, err = s.fetchAndStore(ctx, kind, scope, key)
	return err
}

// Invalidate drops every stored copy of kind so the next read refetches.
func (s *Store) Invalidate(ctx context.Context, kind Kind) error {
	if _, err := s.backing.Incr(ctx, versionKey(kind)); err != nil {
		return fmt.Errorf("masterdata: invalidate %s: %w", kind, err)
	}
	return nil
}

// RefreshAll refetches categories, brands and suppliers concurrently. The
// first failure is returned once all fetches have finished; lists that did
// load are kept.
func (s *Store) RefreshAll(ctx context.Context) error {
	var g errgroup.Group
	for _, kind := range []Kind{KindCategories, KindBrands, KindSuppliers} {
		g.Go(func() error {
			if err := s.Refresh(ctx, kind, ""); err != nil {
				s.logger.Warn("master data refresh failed", slog.String("kind", string(kind)), slog.Any("error", err))
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Store) load(ctx context.Context, kind Kind, scope string, dest any) error {
	key, err := s.dataKey(ctx, kind, scope)
	if err != nil {
		return err
	}
	raw, ok, err := s.backing.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("masterdata: read %s: %w", key, err)
	}
	if !ok {
		v, err, _ := s.flight.Do(key, func() (any, error) {
			return s.fetchAndStore(ctx, kind, scope, key)
		})
		if err != nil {
			return err
		}
		raw = v.([]byte)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("masterdata: decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) fetchAndStore(ctx context.Context, kind Kind, scope, key string) ([]byte, error) {
	items, err := s.fetch(ctx, kind, scope)
	if err != nil {
		return nil, fmt.Errorf("masterdata: fetch %s: %w", kind, err)
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	if err := s.backing.Set(ctx, key, raw); err != nil {
		return nil, fmt.Errorf("masterdata: store %s: %w", key, err)
	}
	return raw, nil
}

func (s *Store) fetch(ctx context.Context, kind Kind, scope string) (any, error) {
	switch kind {
	case KindCategories:
		return backend.ListAll[Category](ctx, s.client, categoriesPath, nil)
	case KindSubcategories:
		return backend.ListAll[Subcategory](ctx, s.client, subcategoriesPath, url.Values{"categoryId": {scope}})
	case KindBrands:
		return backend.ListAll[Brand](ctx, s.client, brandsPath, nil)
	case KindSuppliers:
		return backend.ListAll[Supplier](ctx, s.client, suppliersPath, nil)
	case KindUOMs:
		return backend.ListAll[UOM](ctx, s.client, uomsPath, nil)
	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
}

func (s *Store) dataKey(ctx context.Context, kind Kind, scope string) (string, error) {
	ver, err := s.backing.Version(ctx, versionKey(kind))
	if err != nil {
		return "", fmt.Errorf("masterdata: version %s: %w", kind, err)
	}
	key := fmt.Sprintf("masterdata:%s:v%d", kind, ver)
	if scope != "" {
		key += ":" + scope
	}
	return key, nil
}

func versionKey(kind Kind) string {
	return "masterdata:" + string(kind) + ":version"
}
