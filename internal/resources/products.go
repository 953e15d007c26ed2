package resources

import (
	"context"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/stockroom/console/internal/backend"
	"github.com/stockroom/console/internal/listing"
	"github.com/stockroom/console/internal/masterdata"
	"github.com/stockroom/console/internal/shared"
)

// Product is a catalogue item.
type Product struct {
	ProductID   int64           `json:"productId"`
	Name        string          `json:"name"`
	CategoryID  int64           `json:"categoryId"`
	BrandID     int64           `json:"brandId"`
	SupplierID  int64           `json:"supplierId"`
	Description string          `json:"description"`
	Price       *backend.Amount `json:"price"`
	SKU         string          `json:"sku"`
	ImageURL    string          `json:"image_url"`
	Category    *struct {
		Name string `json:"category_name"`
	} `json:"category,omitempty"`
}

// CategoryName prefers the embedded category and falls back to its id.
func (p Product) CategoryName() string {
	if p.Category != nil && p.Category.Name != "" {
		return p.Category.Name
	}
	if p.CategoryID == 0 {
		return ""
	}
	return itoa(p.CategoryID)
}

// ProductForm is the update payload of the generic edit screen.
type ProductForm struct {
	Name        string         `json:"name" validate:"required,max=150"`
	CategoryID  int64          `json:"categoryId" validate:"required"`
	BrandID     int64          `json:"brandId" validate:"required"`
	SupplierID  int64          `json:"supplierId" validate:"required"`
	Description string         `json:"description"`
	Price       backend.Amount `json:"price"`
	SKU         string         `json:"sku" validate:"required"`
	ImageURL    string         `json:"image_url,omitempty"`
}

// Products configures the product list and edit screens. New products are
// created through the wizard.
func Products(store *masterdata.Store) *listing.Resource[Product, ProductForm] {
	return &listing.Resource[Product, ProductForm]{
		Title:      "Products",
		Singular:   "Product",
		Path:       "/products",
		Endpoint:   "/products",
		CreatePath: "/products/new",
		ID:         func(p Product) int64 { return p.ProductID },
		Columns: []listing.Column[Product]{
			{Title: "ID", Value: func(p Product) string { return itoa(p.ProductID) }},
			{Title: "Name", Value: func(p Product) string { return p.Name }},
			{Title: "Category", Value: Product.CategoryName},
			{Title: "Description", Value: func(p Product) string { return p.Description }},
			{Title: "SKU", Value: func(p Product) string { return p.SKU }},
			{Title: "Price", Value: func(p Product) string {
				if p.Price == nil {
					return ""
				}
				return p.Price.StringFixed(2)
			}},
		},
		Fields: []listing.Field{
			{Name: "name", Label: "Name", Kind: listing.KindText, Required: true},
			{Name: "categoryId", Label: "Category", Kind: listing.KindSelect, Required: true},
			{Name: "brandId", Label: "Brand", Kind: listing.KindSelect, Required: true},
			{Name: "supplierId", Label: "Supplier", Kind: listing.KindSelect, Required: true},
			{Name: "description", Label: "Description", Kind: listing.KindTextArea},
			{Name: "price", Label: "Price", Kind: listing.KindNumber, Required: true, Step: "0.01"},
			{Name: "sku", Label: "SKU", Kind: listing.KindText, Required: true},
			{Name: "image_url", Label: "Image URL", Kind: listing.KindText},
		},
		Bind: func(v url.Values) (ProductForm, shared.FieldErrors) {
			b := listing.NewBinder(v)
			f := ProductForm{
				Name:        b.String("name"),
				CategoryID:  b.Int("categoryId"),
				BrandID:     b.Int("brandId"),
				SupplierID:  b.Int("supplierId"),
				Description: b.String("description"),
				SKU:         b.String("sku"),
				ImageURL:    b.String("image_url"),
			}
			errs := b.Finish(f)
			price := b.Decimal("price")
			switch {
			case price == nil:
				errs.Add("price", "This field is required")
			case price.IsNegative():
				errs.Add("price", "Must be at least 0")
			default:
				f.Price = backend.NewAmount(*price)
			}
			return f, errs
		},
		Values: func(p Product) url.Values {
			v := url.Values{
				"name":        {p.Name},
				"categoryId":  {itoa(p.CategoryID)},
				"brandId":     {itoa(p.BrandID)},
				"supplierId":  {itoa(p.SupplierID)},
				"description": {p.Description},
				"sku":         {p.SKU},
				"image_url":   {p.ImageURL},
			}
			if p.Price != nil {
				v.Set("price", p.Price.String())
			}
			return v
		},
		Options: func(ctx context.Context, _ url.Values) (map[string][]listing.Option, error) {
			var (
				cats      []masterdata.Category
				brands    []masterdata.Brand
				suppliers []masterdata.Supplier
			)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() (err error) { cats, err = store.Categories(gctx); return err })
			g.Go(func() (err error) { brands, err = store.Brands(gctx); return err })
			g.Go(func() (err error) { suppliers, err = store.Suppliers(gctx); return err })
			if err := g.Wait(); err != nil {
				return nil, err
			}
			return map[string][]listing.Option{
				"categoryId": choices(masterdata.CategoryChoices(cats)),
				"brandId":    choices(masterdata.BrandChoices(brands)),
				"supplierId": choices(masterdata.SupplierChoices(suppliers)),
			}, nil
		},
	}
}
