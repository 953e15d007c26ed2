package resources

import (
	"net/url"

	"github.com/stockroom/console/internal/listing"
	"github.com/stockroom/console/internal/shared"
)

// Warehouse is a stock location.
type Warehouse struct {
	WarehouseID int64  `json:"warehouseId"`
	Name        string `json:"name"`
	Location    string `json:"location"`
}

// WarehouseForm is the create/update payload.
type WarehouseForm struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location" validate:"required"`
}

// Warehouses configures the warehouse screens.
func Warehouses() *listing.Resource[Warehouse, WarehouseForm] {
	return &listing.Resource[Warehouse, WarehouseForm]{
		Title:    "Warehouses",
		Singular: "Warehouse",
		Path:     "/warehouses",
		Endpoint: "/warehouses",
		ID:       func(w Warehouse) int64 { return w.WarehouseID },
		Columns: []listing.Column[Warehouse]{
			{Title: "ID", Value: func(w Warehouse) string { return itoa(w.WarehouseID) }},
			{Title: "Name", Value: func(w Warehouse) string { return w.Name }},
			{Title: "Location", Value: func(w Warehouse) string { return w.Location }},
		},
		Fields: []listing.Field{
			{Name: "name", Label: "Name", Kind: listing.KindText, Required: true},
			{Name: "location", Label: "Location", Kind: listing.KindText, Required: true},
		},
		Bind: func(v url.Values) (WarehouseForm, shared.FieldErrors) {
			b := listing.NewBinder(v)
			f := WarehouseForm{Name: b.String("name"), Location: b.String("location")}
			return f, b.Finish(f)
		},
		Values: func(w Warehouse) url.Values {
			return url.Values{"name": {w.Name}, "location": {w.Location}}
		},
	}
}
