package procurement

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/stockroom/console/internal/backend"
	"github.com/stockroom/console/internal/masterdata"
)

const (
	purchaseOrdersPath = "/purchase-orders"
	autocompletePath   = "/products/autocomplete"

	// MinQueryLength is the shortest query sent to autocomplete.
	MinQueryLength = 2

	statusPending = "pending"
)

// Service runs the builder's backend interactions.
type Service struct {
	client *backend.Client
	store  *masterdata.Store
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(client *backend.Client, store *masterdata.Store, logger *slog.Logger) *Service {
	return &Service{client: client, store: store, logger: logger}
}

// Suggest looks up products matching query and remembers them on d.
// Queries shorter than MinQueryLength clear the suggestions without a call.
func (s *Service) Suggest(ctx context.Context, d *Draft, query string) ([]Option, error) {
	d.Query = query
	if utf8.RuneCountInString(strings.TrimSpace(query)) < MinQueryLength {
		d.Options = nil
		return []Option{}, nil
	}
	opts, err := backend.ListAll[Option](ctx, s.client, autocompletePath, url.Values{"query": {query}})
	if err != nil {
		return nil, err
	}
	d.Options = opts
	return opts, nil
}

// Supplier returns the detail panel data for the chosen supplier.
func (s *Service) Supplier(ctx context.Context, id int64) (masterdata.Supplier, bool, error) {
	if id == 0 {
		return masterdata.Supplier{}, false, nil
	}
	return s.store.FindSupplier(ctx, id)
}

type orderLine struct {
	ProductID       int64          `json:"productId"`
	QuantityOrdered int64          `json:"quantityOrdered"`
	Price           backend.Amount `json:"price"`
}

type orderPayload struct {
	SupplierID   int64       `json:"supplierId"`
	OrderDate    string      `json:"orderDate"`
	DeliveryDate string      `json:"deliveryDate"`
	Products     []orderLine `json:"products"`
	Status       string      `json:"status"`
}

// Submit sends the order. Callers validate the header first; an order with
// no lines is rejected here. On success d is cleared.
func (s *Service) Submit(ctx context.Context, d *Draft) error {
	if len(d.Lines) == 0 {
		return ErrNoLines
	}
	payload := orderPayload{
		SupplierID:   d.SupplierID,
		OrderDate:    d.OrderDate,
		DeliveryDate: d.DeliveryDate,
		Products:     make([]orderLine, 0, len(d.Lines)),
		Status:       statusPending,
	}
	for _, l := range d.Lines {
		payload.Products = append(payload.Products, orderLine{ProductID: l.ProductID, QuantityOrdered: l.Quantity, Price: l.Price})
	}
	if err := s.client.Post(ctx, purchaseOrdersPath, payload, nil); err != nil {
		return err
	}
	d.Reset()
	return nil
}
