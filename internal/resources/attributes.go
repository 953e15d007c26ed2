package resources

import (
	"context"
	"net/url"
	"strconv"

	"github.com/stockroom/console/internal/backend"
	"github.com/stockroom/console/internal/listing"
	"github.com/stockroom/console/internal/masterdata"
	"github.com/stockroom/console/internal/shared"
)

// Attribute is a product attribute definition.
type Attribute struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Code         string         `json:"code"`
	DataType     string         `json:"dataType"`
	LegacyType   string         `json:"data_type,omitempty"`
	UOMID        backend.FlexID `json:"uomId"`
	IsMultiValue bool           `json:"is_multi_value"`
	CreatedAt    string         `json:"created_at,omitempty"`
}

// Type returns the data type under either spelling the backend uses.
func (a Attribute) Type() string {
	if a.DataType != "" {
		return a.DataType
	}
	return a.LegacyType
}

// AttributeForm is the create/update payload.
type AttributeForm struct {
	Name         string `json:"name" validate:"required,max=100"`
	Code         string `json:"code" validate:"required,max=50,code"`
	DataType     string `json:"dataType" validate:"required,oneof=text number boolean"`
	UOMID        *int64 `json:"uomId,omitempty"`
	IsMultiValue bool   `json:"is_multi_value"`
}

// Attributes configures the attribute screens.
func Attributes(store *masterdata.Store) *listing.Resource[Attribute, AttributeForm] {
	return &listing.Resource[Attribute, AttributeForm]{
		Title:    "Attributes",
		Singular: "Attribute",
		Path:     "/attributes",
		Endpoint: "/attributes",
		ID:       func(a Attribute) int64 { return a.ID },
		Columns: []listing.Column[Attribute]{
			{Title: "ID", Value: func(a Attribute) string { return itoa(a.ID) }},
			{Title: "Name", Value: func(a Attribute) string { return a.Name }},
			{Title: "Code", Value: func(a Attribute) string { return a.Code }},
			{Title: "Data Type", Value: Attribute.Type},
			{Title: "UOM", Value: func(a Attribute) string {
				if a.UOMID == 0 {
					return ""
				}
				return a.UOMID.String()
			}},
			{Title: "Multi Value", Value: func(a Attribute) string {
				if a.IsMultiValue {
					return "Yes"
				}
				return "No"
			}},
			{Title: "Created At", Value: func(a Attribute) string { return a.CreatedAt }},
		},
		Fields: []listing.Field{
			{Name: "name", Label: "Name", Kind: listing.KindText, Required: true},
			{Name: "code", Label: "Code", Kind: listing.KindText, Required: true},
			{Name: "dataType", Label: "Data Type", Kind: listing.KindSelect, Required: true, Options: []listing.Option{
				{Value: "text", Label: "Text"},
				{Value: "number", Label: "Number"},
				{Value: "boolean", Label: "Boolean"},
			}},
			{Name: "uomId", Label: "Unit of Measure", Kind: listing.KindSelect},
			{Name: "is_multi_value", Label: "Multi Value", Kind: listing.KindCheckbox},
		},
		Bind: func(v url.Values) (AttributeForm, shared.FieldErrors) {
			b := listing.NewBinder(v)
			f := AttributeForm{
				Name:         b.String("name"),
				Code:         b.String("code"),
				DataType:     b.String("dataType"),
				UOMID:        b.OptionalInt("uomId"),
				IsMultiValue: b.Bool("is_multi_value"),
			}
			return f, b.Finish(f)
		},
		Values: func(a Attribute) url.Values {
			v := url.Values{
				"name":           {a.Name},
				"code":           {a.Code},
				"dataType":       {a.Type()},
				"is_multi_value": {strconv.FormatBool(a.IsMultiValue)},
			}
			if a.UOMID != 0 {
				v.Set("uomId", a.UOMID.String())
			}
			return v
		},
		Options: func(ctx context.Context, _ url.Values) (map[string][]listing.Option, error) {
			uoms, err := store.UOMs(ctx)
			if err != nil {
				return nil, err
			}
			return map[string][]listing.Option{"uomId": choices(masterdata.UOMChoices(uoms))}, nil
		},
	}
}
