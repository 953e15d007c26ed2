package resources

import (
	"log/slog"
	"net/url"

	"github.com/stockroom/console/internal/listing"
	"github.com/stockroom/console/internal/masterdata"
	"github.com/stockroom/console/internal/shared"
)

// BrandForm is the create/update payload.
type BrandForm struct {
	BrandName   string `json:"brandName" validate:"required,max=100"`
	Description string `json:"description" validate:"required"`
}

// Brands configures the brand screens.
func Brands(store *masterdata.Store, logger *slog.Logger) *listing.Resource[masterdata.Brand, BrandForm] {
	return &listing.Resource[masterdata.Brand, BrandForm]{
		Title:    "Brands",
		Singular: "Brand",
		Path:     "/brands",
		Endpoint: "/brands",
		ID:       func(b masterdata.Brand) int64 { return b.BrandID },
		Columns: []listing.Column[masterdata.Brand]{
			{Title: "ID", Value: func(b masterdata.Brand) string { return itoa(b.BrandID) }},
			{Title: "Name", Value: func(b masterdata.Brand) string { return b.BrandName }},
			{Title: "Description", Value: func(b masterdata.Brand) string { return b.Description }},
		},
		Fields: []listing.Field{
			{Name: "brandName", Label: "Name", Kind: listing.KindText, Required: true},
			{Name: "description", Label: "Description", Kind: listing.KindTextArea, Required: true},
		},
		Bind: func(v url.Values) (BrandForm, shared.FieldErrors) {
			b := listing.NewBinder(v)
			f := BrandForm{BrandName: b.String("brandName"), Description: b.String("description")}
			return f, b.Finish(f)
		},
		Values: func(b masterdata.Brand) url.Values {
			return url.Values{"brandName": {b.BrandName}, "description": {b.Description}}
		},
		AfterChange: invalidate(store, logger, masterdata.KindBrands),
	}
}
