package resources

import (
	"log/slog"
	"net/url"

	"github.com/stockroom/console/internal/listing"
	"github.com/stockroom/console/internal/masterdata"
	"github.com/stockroom/console/internal/shared"
)

// SupplierForm is the create/update payload.
type SupplierForm struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required,phone"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"required"`
}

// Suppliers configures the supplier screens.
func Suppliers(store *masterdata.Store, logger *slog.Logger) *listing.Resource[masterdata.Supplier, SupplierForm] {
	return &listing.Resource[masterdata.Supplier, SupplierForm]{
		Title:    "Suppliers",
		Singular: "Supplier",
		Path:     "/suppliers",
		Endpoint: "/suppliers",
		ID:       func(s masterdata.Supplier) int64 { return s.SupplierID },
		Columns: []listing.Column[masterdata.Supplier]{
			{Title: "ID", Value: func(s masterdata.Supplier) string { return itoa(s.SupplierID) }},
			{Title: "Name", Value: func(s masterdata.Supplier) string { return s.Name }},
			{Title: "Phone", Value: func(s masterdata.Supplier) string { return s.Phone }},
			{Title: "Email", Value: func(s masterdata.Supplier) string { return s.Email }},
			{Title: "Address", Value: func(s masterdata.Supplier) string { return s.Address }},
		},
		Fields: []listing.Field{
			{Name: "name", Label: "Name", Kind: listing.KindText, Required: true},
			{Name: "phone", Label: "Phone", Kind: listing.KindTel, Required: true},
			{Name: "email", Label: "Email", Kind: listing.KindEmail, Required: true},
			{Name: "address", Label: "Address", Kind: listing.KindTextArea, Required: true},
		},
		Bind: func(v url.Values) (SupplierForm, shared.FieldErrors) {
			b := listing.NewBinder(v)
			f := SupplierForm{
				Name:    b.String("name"),
				Phone:   b.String("phone"),
				Email:   b.String("email"),
				Address: b.String("address"),
			}
			return f, b.Finish(f)
		},
		Values: func(s masterdata.Supplier) url.Values {
			return url.Values{"name": {s.Name}, "phone": {s.Phone}, "email": {s.Email}, "address": {s.Address}}
		},
		AfterChange: invalidate(store, logger, masterdata.KindSuppliers),
	}
}
