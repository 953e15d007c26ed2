// Package listing implements the paged list and edit screens shared by every
// entity the console manages.
package listing

import (
	"context"
	"net/url"

	"github.com/stockroom/console/internal/shared"
)

// FieldKind selects the input rendered for a form field.
type FieldKind string

// Input kinds understood by the form template.
const (
	KindText     FieldKind = "text"
	KindTextArea FieldKind = "textarea"
	KindNumber   FieldKind = "number"
	KindEmail    FieldKind = "email"
	KindTel      FieldKind = "tel"
	KindDate     FieldKind = "date"
	KindSelect   FieldKind = "select"
	KindCheckbox FieldKind = "checkbox"
)

// Option is one choice of a select field.
type Option struct {
	Value string
	Label string
}

// Field describes one form input.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
	// Options lists fixed choices. Fields whose choices come from reference
	// data leave it empty and are filled by Resource.Options.
	Options []Option
	Step    string
}

// Column renders one list cell.
type Column[T any] struct {
	Title string
	Value func(T) string
}

// Resource configures the list and form screens for one entity type. T is
// the entity as the backend returns it, F the payload sent on create/update.
type Resource[T, F any] struct {
	Title    string
	Singular string
	// Path is where the screens are mounted in the console.
	Path string
	// Endpoint is the backend collection, e.g. /customers.
	Endpoint string
	ID       func(T) int64
	Columns  []Column[T]
	Fields   []Field
	// Bind parses and validates a submitted form.
	Bind func(url.Values) (F, shared.FieldErrors)
	// Values prefills the edit form from an entity.
	Values func(T) url.Values
	// Options resolves select choices keyed by field name.
	Options func(ctx context.Context, values url.Values) (map[string][]Option, error)
	// AfterChange runs after a successful create, update or delete.
	AfterChange func(ctx context.Context) error
	// CreatePath sends "New" to a dedicated flow instead of the generic form.
	CreatePath string
	// ReadOnly disables the generic edit form.
	ReadOnly bool
}

// NewPath returns the location of the create screen.
func (r *Resource[T, F]) NewPath() string {
	if r.CreatePath != "" {
		return r.CreatePath
	}
	return r.Path + "/new"
}
