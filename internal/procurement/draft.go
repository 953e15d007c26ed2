// Package procurement builds purchase orders line by line before sending
// them to the backend in one request.
package procurement

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stockroom/console/internal/backend"
	"github.com/stockroom/console/internal/listing"
	"github.com/stockroom/console/internal/shared"
)

var (
	// ErrLastRow is returned when removing the only sub-form row.
	ErrLastRow = errors.New("procurement: cannot remove the last row")
	// ErrRowIndex is returned for a row index outside the sub-form.
	ErrRowIndex = errors.New("procurement: row index out of range")
	// ErrNoLines blocks submitting an order without products.
	ErrNoLines = errors.New("procurement: order has no products")
	// ErrSubFormClosed is returned when editing rows while the sub-form is closed.
	ErrSubFormClosed = errors.New("procurement: product form is closed")
)

// Option is one autocomplete suggestion.
type Option struct {
	ProductID backend.FlexID `json:"productId"`
	Name      string         `json:"name"`
}

// Row is an unsaved sub-form row exactly as typed.
type Row struct {
	ProductID string `json:"productId"`
	Quantity  string `json:"quantity"`
	Price     string `json:"price"`
}

// Line is a saved order line. Lines are not edited after saving.
type Line struct {
	ProductID   int64          `json:"productId"`
	ProductName string         `json:"productName"`
	Quantity    int64          `json:"quantity"`
	Price       backend.Amount `json:"price"`
}

// Total is quantity times price.
func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(l.Quantity))
}

// Draft is one user's order under construction. It lives in the session.
type Draft struct {
	SupplierID   int64    `json:"supplierId"`
	OrderDate    string   `json:"orderDate"`
	DeliveryDate string   `json:"deliveryDate"`
	Lines        []Line   `json:"lines"`
	Rows         []Row    `json:"rows"`
	SubFormOpen  bool     `json:"subFormOpen"`
	Options      []Option `json:"options"`
	Query        string   `json:"query"`
}

// RowErrors maps a row index to its field errors.
type RowErrors map[int]shared.FieldErrors

// Any reports whether any row failed.
func (re RowErrors) Any() bool {
	return len(re) > 0
}

type header struct {
	SupplierID   int64  `json:"supplierId" validate:"required"`
	OrderDate    string `json:"orderDate" validate:"required,isodate"`
	DeliveryDate string `json:"deliveryDate" validate:"required,isodate"`
}

// ValidateHeader checks supplier and dates.
func (d *Draft) ValidateHeader() shared.FieldErrors {
	return listing.Validate(header{SupplierID: d.SupplierID, OrderDate: d.OrderDate, DeliveryDate: d.DeliveryDate})
}

// OpenRows opens the sub-form with one blank row.
func (d *Draft) OpenRows() {
	d.Rows = []Row{{}}
	d.SubFormOpen = true
}

// CloseRows discards the sub-form.
func (d *Draft) CloseRows() {
	d.Rows = nil
	d.SubFormOpen = false
}

// AddRow appends a blank row.
func (d *Draft) AddRow() error {
	if !d.SubFormOpen {
		return ErrSubFormClosed
	}
	d.Rows = append(d.Rows, Row{})
	return nil
}

// RemoveRow drops row i. The last remaining row cannot be removed.
func (d *Draft) RemoveRow(i int) error {
	if !d.SubFormOpen {
		return ErrSubFormClosed
	}
	if i < 0 || i >= len(d.Rows) {
		return ErrRowIndex
	}
	if len(d.Rows) <= 1 {
		return ErrLastRow
	}
	d.Rows = append(d.Rows[:i], d.Rows[i+1:]...)
	return nil
}

// SaveRows validates rows and, when all pass, appends them to the order
// lines and closes the sub-form. On failure the rows are kept for editing.
func (d *Draft) SaveRows(rows []Row) (RowErrors, error) {
	if !d.SubFormOpen {
		return nil, ErrSubFormClosed
	}
	d.Rows = rows
	lines := make([]Line, 0, len(rows))
	errs := RowErrors{}
	for i, row := range rows {
		line, fe := d.parseRow(row)
		if fe.Any() {
			errs[i] = fe
			continue
		}
		lines = append(lines, line)
	}
	if len(rows) == 0 {
		errs[0] = shared.FieldErrors{"productId": "This field is required"}
	}
	if errs.Any() {
		return errs, nil
	}
	d.Lines = append(d.Lines, lines...)
	d.CloseRows()
	return nil, nil
}

func (d *Draft) parseRow(row Row) (Line, shared.FieldErrors) {
	fe := shared.FieldErrors{}
	var line Line

	productID := strings.TrimSpace(row.ProductID)
	if productID == "" {
		fe.Add("productId", "This field is required")
	} else if id, err := strconv.ParseInt(productID, 10, 64); err != nil || id <= 0 {
		fe.Add("productId", "Select a product from the suggestions")
	} else {
		line.ProductID = id
		line.ProductName = d.productName(id)
	}

	qty := strings.TrimSpace(row.Quantity)
	if qty == "" {
		fe.Add("quantity", "This field is required")
	} else if n, err := strconv.ParseInt(qty, 10, 64); err != nil {
		fe.Add("quantity", "Must be a whole number")
	} else if n < 1 {
		fe.Add("quantity", "Must be at least 1")
	} else {
		line.Quantity = n
	}

	price := strings.TrimSpace(row.Price)
	if price == "" {
		fe.Add("price", "This field is required")
	} else if p, err := decimal.NewFromString(price); err != nil {
		fe.Add("price", "Must be a number")
	} else if p.IsNegative() {
		fe.Add("price", "Must be at least 0")
	} else {
		line.Price = backend.NewAmount(p)
	}
	return line, fe
}

// productName resolves id against the last suggestions, falling back to the
// identifier itself.
func (d *Draft) productName(id int64) string {
	for _, opt := range d.Options {
		if opt.ProductID.Int64() == id {
			return opt.Name
		}
	}
	return strconv.FormatInt(id, 10)
}

// Total sums every saved line.
func (d *Draft) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range d.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// Reset discards everything.
func (d *Draft) Reset() {
	*d = Draft{}
}
