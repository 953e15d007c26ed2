package resources

import (
	"net/url"

	"github.com/stockroom/console/internal/listing"
	"github.com/stockroom/console/internal/shared"
)

// Customer is a customer record.
type Customer struct {
	CustomerID int64  `json:"customer_id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// CustomerForm is the create/update payload.
type CustomerForm struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required,phone"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"required"`
}

// Customers configures the customer screens.
func Customers() *listing.Resource[Customer, CustomerForm] {
	return &listing.Resource[Customer, CustomerForm]{
		Title:    "Customers",
		Singular: "Customer",
		Path:     "/customers",
		Endpoint: "/customers",
		ID:       func(c Customer) int64 { return c.CustomerID },
		Columns: []listing.Column[Customer]{
			{Title: "ID", Value: func(c Customer) string { return itoa(c.CustomerID) }},
			{Title: "Name", Value: func(c Customer) string { return c.Name }},
			{Title: "Phone", Value: func(c Customer) string { return c.Phone }},
			{Title: "Email", Value: func(c Customer) string { return c.Email }},
			{Title: "Address", Value: func(c Customer) string { return c.Address }},
		},
		Fields: []listing.Field{
			{Name: "name", Label: "Name", Kind: listing.KindText, Required: true},
			{Name: "phone", Label: "Phone", Kind: listing.KindTel, Required: true},
			{Name: "email", Label: "Email", Kind: listing.KindEmail, Required: true},
			{Name: "address", Label: "Address", Kind: listing.KindTextArea, Required: true},
		},
		Bind: func(v url.Values) (CustomerForm, shared.FieldErrors) {
			b := listing.NewBinder(v)
			f := CustomerForm{
				Name:    b.String("name"),
				Phone:   b.String("phone"),
				Email:   b.String("email"),
				Address: b.String("address"),
			}
			return f, b.Finish(f)
		},
		Values: func(c Customer) url.Values {
			return url.Values{"name": {c.Name}, "phone": {c.Phone}, "email": {c.Email}, "address": {c.Address}}
		},
	}
}
