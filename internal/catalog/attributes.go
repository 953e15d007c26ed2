// Package catalog implements the two-step product creation wizard.
package catalog

import (
	"encoding/json"
	"strings"

	"github.com/stockroom/console/internal/view"
)

// Attribute is a measurable product property required by some units.
type Attribute string

// Known attributes.
const (
	Volume    Attribute = "volume"
	Length    Attribute = "length"
	Thickness Attribute = "thickness"
	Breadth   Attribute = "breadth"
	Height    Attribute = "height"
	Weight    Attribute = "weight"
)

// Label is the attribute name with its first letter upper-cased.
func (a Attribute) Label() string {
	return view.Capitalize(string(a))
}

var attributesByUOM = map[string][]Attribute{
	"litre": {Volume},
	"ml":    {Volume},
	"m":     {Length, Thickness},
	"cm":    {Length, Thickness},
	"ft":    {Length, Thickness},
	"m2":    {Length, Breadth},
	"box":   {Length, Breadth, Height, Weight},
	"units": {Length, Breadth, Height, Weight},
	"kg":    {Length, Breadth, Height, Weight},
	"g":     {Length, Breadth, Height, Weight},
}

// RequiredAttributes returns the attributes a product sold in uomName must
// declare. Matching ignores case; unknown units require nothing.
func RequiredAttributes(uomName string) []Attribute {
	attrs := attributesByUOM[strings.ToLower(strings.TrimSpace(uomName))]
	out := make([]Attribute, len(attrs))
	copy(out, attrs)
	return out
}

// AttributeValues are the step-two entries, sent to the backend as one flat
// object such as {"volume":"5","additional":"color:red"}.
type AttributeValues struct {
	Values     map[Attribute]string
	Additional string
}

// MarshalJSON flattens the values; additional is omitted when blank.
func (v AttributeValues) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, len(v.Values)+1)
	for attr, value := range v.Values {
		out[string(attr)] = value
	}
	if strings.TrimSpace(v.Additional) != "" {
		out["additional"] = v.Additional
	}
	return json.Marshal(out)
}
