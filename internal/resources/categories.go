package resources

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/stockroom/console/internal/listing"
	"github.com/stockroom/console/internal/masterdata"
	"github.com/stockroom/console/internal/shared"
)

// CategoryForm is the create/update payload.
type CategoryForm struct {
	Name        string `json:"category_name" validate:"required,max=100"`
	Description string `json:"description" validate:"required"`
}

// Categories configures the category screens.
func Categories(store *masterdata.Store, logger *slog.Logger) *listing.Resource[masterdata.Category, CategoryForm] {
	return &listing.Resource[masterdata.Category, CategoryForm]{
		Title:    "Categories",
		Singular: "Category",
		Path:     "/categories",
		Endpoint: "/categories",
		ID:       func(c masterdata.Category) int64 { return c.CategoryID },
		Columns: []listing.Column[masterdata.Category]{
			{Title: "ID", Value: func(c masterdata.Category) string { return itoa(c.CategoryID) }},
			{Title: "Name", Value: func(c masterdata.Category) string { return c.Name }},
			{Title: "Description", Value: func(c masterdata.Category) string { return c.Description }},
		},
		Fields: []listing.Field{
			{Name: "category_name", Label: "Name", Kind: listing.KindText, Required: true},
			{Name: "description", Label: "Description", Kind: listing.KindTextArea, Required: true},
		},
		Bind: func(v url.Values) (CategoryForm, shared.FieldErrors) {
			b := listing.NewBinder(v)
			f := CategoryForm{Name: b.String("category_name"), Description: b.String("description")}
			return f, b.Finish(f)
		},
		Values: func(c masterdata.Category) url.Values {
			return url.Values{"category_name": {c.Name}, "description": {c.Description}}
		},
		AfterChange: invalidate(store, logger, masterdata.KindCategories),
	}
}

// SubcategoryForm is the create/update payload.
type SubcategoryForm struct {
	Name        string `json:"name" validate:"required,max=100"`
	CategoryID  int64  `json:"categoryId" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// Subcategories configures the subcategory screens.
func Subcategories(store *masterdata.Store, logger *slog.Logger) *listing.Resource[masterdata.Subcategory, SubcategoryForm] {
	return &listing.Resource[masterdata.Subcategory, SubcategoryForm]{
		Title:    "Subcategories",
		Singular: "Subcategory",
		Path:     "/subcategories",
		Endpoint: "/subcategories",
		ID:       func(s masterdata.Subcategory) int64 { return s.SubCategoryID },
		Columns: []listing.Column[masterdata.Subcategory]{
			{Title: "ID", Value: func(s masterdata.Subcategory) string { return itoa(s.SubCategoryID) }},
			{Title: "Name", Value: func(s masterdata.Subcategory) string { return s.Name }},
			{Title: "Category ID", Value: func(s masterdata.Subcategory) string { return itoa(s.CategoryID) }},
			{Title: "Description", Value: func(s masterdata.Subcategory) string { return s.Description }},
		},
		Fields: []listing.Field{
			{Name: "name", Label: "Name", Kind: listing.KindText, Required: true},
			{Name: "categoryId", Label: "Category", Kind: listing.KindSelect, Required: true},
			{Name: "description", Label: "Description", Kind: listing.KindTextArea, Required: true},
		},
		Bind: func(v url.Values) (SubcategoryForm, shared.FieldErrors) {
			b := listing.NewBinder(v)
			f := SubcategoryForm{Name: b.String("name"), CategoryID: b.Int("categoryId"), Description: b.String("description")}
			return f, b.Finish(f)
		},
		Values: func(s masterdata.Subcategory) url.Values {
			return url.Values{"name": {s.Name}, "categoryId": {itoa(s.CategoryID)}, "description": {s.Description}}
		},
		Options: func(ctx context.Context, _ url.Values) (map[string][]listing.Option, error) {
			cats, err := store.Categories(ctx)
			if err != nil {
				return nil, err
			}
			return map[string][]listing.Option{"categoryId": choices(masterdata.CategoryChoices(cats))}, nil
		},
		AfterChange: invalidate(store, logger, masterdata.KindSubcategories),
	}
}
