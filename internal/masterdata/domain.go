// Package masterdata caches the reference lists that populate form choices:
// categories, subcategories, brands, suppliers and units of measure.
package masterdata

import "github.com/stockroom/console/internal/backend"

// Kind names one reference list.
type Kind string

// Reference list kinds.
const (
	KindCategories    Kind = "categories"
	KindSubcategories Kind = "subcategories"
	KindBrands        Kind = "brands"
	KindSuppliers     Kind = "suppliers"
	KindUOMs          Kind = "uoms"
)

// Backend endpoints for the unpaged reference lists.
const (
	categoriesPath    = "/categories/list"
	subcategoriesPath = "/subcategories/list"
	brandsPath        = "/brands/list"
	suppliersPath     = "/suppliers/list"
	uomsPath          = "/shared/uom"
)

// Category is a product category.
type Category struct {
	CategoryID  int64  `json:"categoryId"`
	Name        string `json:"category_name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Subcategory belongs to exactly one category.
type Subcategory struct {
	SubCategoryID int64  `json:"subCategoryId"`
	Name          string `json:"name"`
	CategoryID    int64  `json:"categoryId"`
	Description   string `json:"description"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// Brand is a product brand.
type Brand struct {
	BrandID     int64  `json:"brandId"`
	BrandName   string `json:"brandName"`
	Description string `json:"description"`
}

// Supplier provides products to purchase orders.
type Supplier struct {
	SupplierID int64  `json:"supplierId"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Address    string `json:"address"`
}

// UOM is a unit of measure such as litre, kg or box.
type UOM struct {
	UOMID   backend.FlexID `json:"uomId"`
	UOMName string         `json:"uomName"`
}

// Choice is a value/label pair rendered as a select option.
type Choice struct {
	Value int64
	Label string
}

// CategoryChoices converts categories into select options.
func CategoryChoices(items []Category) []Choice {
	out := make([]Choice, 0, len(items))
	for _, c := range items {
		out = append(out, Choice{Value: c.CategoryID, Label: c.Name})
	}
	return out
}

// SubcategoryChoices converts subcategories into select options.
func SubcategoryChoices(items []Subcategory) []Choice {
	out := make([]Choice, 0, len(items))
	for _, s := range items {
		out = append(out, Choice{Value: s.SubCategoryID, Label: s.Name})
	}
	return out
}

// BrandChoices converts brands into select options.
func BrandChoices(items []Brand) []Choice {
	out := make([]Choice, 0, len(items))
	for _, b := range items {
		out = append(out, Choice{Value: b.BrandID, Label: b.BrandName})
	}
	return out
}

// SupplierChoices converts suppliers into select options.
func SupplierChoices(items []Supplier) []Choice {
	out := make([]Choice, 0, len(items))
	for _, s := range items {
		out = append(out, Choice{Value: s.SupplierID, Label: s.Name})
	}
	return out
}

// UOMChoices converts units of measure into select options.
func UOMChoices(items []UOM) []Choice {
	out := make([]Choice, 0, len(items))
	for _, u := range items {
		out = append(out, Choice{Value: u.UOMID.Int64(), Label: u.UOMName})
	}
	return out
}
