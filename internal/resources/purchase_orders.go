package resources

import (
	"github.com/stockroom/console/internal/backend"
	"github.com/stockroom/console/internal/listing"
)

// PurchaseOrder is a submitted order as listed by the backend.
type PurchaseOrder struct {
	ID           backend.FlexID `json:"purchaseOrderId"`
	SupplierID   int64          `json:"supplierId"`
	OrderDate    string         `json:"orderDate"`
	DeliveryDate string         `json:"deliveryDate"`
	Status       string         `json:"status"`
	Supplier     *struct {
		Name string `json:"name"`
	} `json:"supplier,omitempty"`
}

// SupplierName prefers the embedded supplier and falls back to its id.
func (o PurchaseOrder) SupplierName() string {
	if o.Supplier != nil && o.Supplier.Name != "" {
		return o.Supplier.Name
	}
	return itoa(o.SupplierID)
}

// PurchaseOrders configures the purchase order list. Orders are created
// through the builder and are not edited afterwards.
func PurchaseOrders() *listing.Resource[PurchaseOrder, struct{}] {
	return &listing.Resource[PurchaseOrder, struct{}]{
		Title:      "Purchase Orders",
		Singular:   "Purchase order",
		Path:       "/purchase-orders",
		Endpoint:   "/purchase-orders",
		CreatePath: "/purchase-orders/new",
		ReadOnly:   true,
		ID:         func(o PurchaseOrder) int64 { return o.ID.Int64() },
		Columns: []listing.Column[PurchaseOrder]{
			{Title: "ID", Value: func(o PurchaseOrder) string { return o.ID.String() }},
			{Title: "Supplier", Value: PurchaseOrder.SupplierName},
			{Title: "Order Date", Value: func(o PurchaseOrder) string { return o.OrderDate }},
			{Title: "Delivery Date", Value: func(o PurchaseOrder) string { return o.DeliveryDate }},
			{Title: "Status", Value: func(o PurchaseOrder) string { return o.Status }},
		},
	}
}
