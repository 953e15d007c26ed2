package listing

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stockroom/console/internal/shared"
)

// Binder reads typed values out of a submitted form, collecting parse
// failures as field errors.
type Binder struct {
	values url.Values
	errs   shared.FieldErrors
}

// NewBinder wraps values.
func NewBinder(values url.Values) *Binder {
	return &Binder{values: values, errs: shared.FieldErrors{}}
}

// String returns the trimmed value of name.
func (b *Binder) String(name string) string {
	return strings.TrimSpace(b.values.Get(name))
}

// Int parses name as a whole number. Blank yields 0.
func (b *Binder) Int(name string) int64 {
	raw := b.String(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		b.errs.Add(name, "Must be a whole number")
		return 0
	}
	return n
}

// OptionalInt parses name, returning nil when blank.
func (b *Binder) OptionalInt(name string) *int64 {
	if b.String(name) == "" {
		return nil
	}
	n := b.Int(name)
	if _, failed := b.errs[name]; failed {
		return nil
	}
	return &n
}

// Decimal parses name as a decimal number, returning nil when blank.
func (b *Binder) Decimal(name string) *decimal.Decimal {
	raw := b.String(name)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		b.errs.Add(name, "Must be a number")
		return nil
	}
	return &d
}

// Bool reports whether a checkbox named name was ticked.
func (b *Binder) Bool(name string) bool {
	switch strings.ToLower(b.String(name)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// Errors returns the parse failures collected so far.
func (b *Binder) Errors() shared.FieldErrors {
	return b.errs
}

// Finish validates dest and merges the result with parse failures. Parse
// failures take precedence for the same field.
func (b *Binder) Finish(dest any) shared.FieldErrors {
	for field, msg := range Validate(dest) {
		b.errs.Add(field, msg)
	}
	return b.errs
}
