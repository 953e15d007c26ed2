package resources

import (
	"net/url"
	"strconv"

	"github.com/stockroom/console/internal/listing"
	"github.com/stockroom/console/internal/shared"
)

// StockMovement records goods entering or leaving a warehouse.
type StockMovement struct {
	MovementID   int64  `json:"movement_id"`
	ProductID    int64  `json:"product_id"`
	Quantity     int64  `json:"quantity"`
	MovementType string `json:"movement_type"`
	Date         string `json:"date"`
	WarehouseID  int64  `json:"warehouse_id"`
	SupplierID   *int64 `json:"supplier_id,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// StockMovementForm is the create/update payload.
type StockMovementForm struct {
	ProductID    int64  `json:"product_id" validate:"required"`
	Quantity     int64  `json:"quantity" validate:"required"`
	MovementType string `json:"movement_type" validate:"required,oneof=in out"`
	Date         string `json:"date" validate:"required,isodate"`
	WarehouseID  int64  `json:"warehouse_id" validate:"required"`
}

// StockMovements configures the stock movement screens.
func StockMovements() *listing.Resource[StockMovement, StockMovementForm] {
	return &listing.Resource[StockMovement, StockMovementForm]{
		Title:    "Stock Movements",
		Singular: "Stock movement",
		Path:     "/stock-movements",
		Endpoint: "/stock-movements",
		ID:       func(m StockMovement) int64 { return m.MovementID },
		Columns: []listing.Column[StockMovement]{
			{Title: "ID", Value: func(m StockMovement) string { return itoa(m.MovementID) }},
			{Title: "Product ID", Value: func(m StockMovement) string { return itoa(m.ProductID) }},
			{Title: "Quantity", Value: func(m StockMovement) string { return itoa(m.Quantity) }},
			{Title: "Movement Type", Value: func(m StockMovement) string { return m.MovementType }},
			{Title: "Date", Value: func(m StockMovement) string { return m.Date }},
			{Title: "Warehouse ID", Value: func(m StockMovement) string { return itoa(m.WarehouseID) }},
			{Title: "Created At", Value: func(m StockMovement) string { return m.CreatedAt }},
			{Title: "Updated At", Value: func(m StockMovement) string { return m.UpdatedAt }},
		},
		Fields: []listing.Field{
			{Name: "product_id", Label: "Product ID", Kind: listing.KindNumber, Required: true},
			{Name: "quantity", Label: "Quantity", Kind: listing.KindNumber, Required: true},
			{Name: "movement_type", Label: "Movement Type", Kind: listing.KindSelect, Required: true, Options: []listing.Option{
				{Value: "in", Label: "In"},
				{Value: "out", Label: "Out"},
			}},
			{Name: "date", Label: "Date", Kind: listing.KindDate, Required: true},
			{Name: "warehouse_id", Label: "Warehouse ID", Kind: listing.KindNumber, Required: true},
		},
		Bind: func(v url.Values) (StockMovementForm, shared.FieldErrors) {
			b := listing.NewBinder(v)
			f := StockMovementForm{
				ProductID:    b.Int("product_id"),
				Quantity:     b.Int("quantity"),
				MovementType: b.String("movement_type"),
				Date:         b.String("date"),
				WarehouseID:  b.Int("warehouse_id"),
			}
			return f, b.Finish(f)
		},
		Values: func(m StockMovement) url.Values {
			date := m.Date
			if len(date) > 10 {
				date = date[:10]
			}
			return url.Values{
				"product_id":    {itoa(m.ProductID)},
				"quantity":      {strconv.FormatInt(m.Quantity, 10)},
				"movement_type": {m.MovementType},
				"date":          {date},
				"warehouse_id":  {itoa(m.WarehouseID)},
			}
		},
	}
}
