package catalog

import (
	"github.com/stockroom/console/internal/attachments"
)

// MaxImages caps the images attached to one product draft.
const MaxImages = 6

// User-facing messages.
const (
	MsgNameTaken     = "Product already exists!"
	MsgNotImage      = "Only image files are allowed!"
	MsgTooManyImages = "You can upload a maximum of 6 images only"
)

// BasicInfo is the step-one form.
type BasicInfo struct {
	Name          string `json:"name" validate:"required,max=150"`
	CategoryID    int64  `json:"categoryId" validate:"required"`
	SubCategoryID *int64 `json:"subCategoryId,omitempty"`
	BrandID       *int64 `json:"brandId,omitempty"`
	BuyingUOMID   int64  `json:"buyingUomId" validate:"required"`
	SellingUOMID  int64  `json:"sellingUomId" validate:"required"`
	Description   string `json:"description,omitempty"`
	ReorderPoint  *int64 `json:"reorderPoint,omitempty" validate:"omitempty,gte=0"`
}

// Image is an accepted upload.
type Image struct {
	Key         string `json:"key"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

// Wizard is one user's in-progress product. It lives in the session.
type Wizard struct {
	DraftID   string      `json:"draftId"`
	Basic     BasicInfo   `json:"basic"`
	Images    []Image     `json:"images"`
	ProductID int64       `json:"productId"`
	Submitted bool        `json:"submitted"`
	Required  []Attribute `json:"required"`
	// PostedName is the name step one was accepted with.
	PostedName string `json:"postedName,omitempty"`
	// TakenName is the last name the backend reported as existing.
	TakenName  string               `json:"takenName,omitempty"`
	Entered    map[Attribute]string `json:"entered,omitempty"`
	Additional string               `json:"additional,omitempty"`
}

// NewWizard starts an empty draft.
func NewWizard() *Wizard {
	return &Wizard{DraftID: attachments.NewDraftID()}
}

// SetName updates the name; a different name clears the taken marker.
func (w *Wizard) SetName(name string) {
	w.Basic.Name = name
	if name != w.TakenName {
		w.TakenName = ""
	}
}

// MarkNameTaken records that name already exists in the backend.
func (w *Wizard) MarkNameTaken(name string) {
	w.TakenName = name
}

// NameTaken reports whether the current name is known to exist.
func (w *Wizard) NameTaken() bool {
	return w.TakenName != "" && w.TakenName == w.Basic.Name
}

// SelectCategory sets the category. Choosing a different one clears the
// subcategory.
func (w *Wizard) SelectCategory(id int64) {
	if id == w.Basic.CategoryID {
		return
	}
	w.Basic.CategoryID = id
	w.Basic.SubCategoryID = nil
}

// AttributesUnlocked reports whether step two may be shown.
func (w *Wizard) AttributesUnlocked() bool {
	return w.Submitted && w.ProductID != 0
}

// CanAddImage reports whether another image fits.
func (w *Wizard) CanAddImage() bool {
	return len(w.Images) < MaxImages
}

// RemoveImage drops the image with key and returns it.
func (w *Wizard) RemoveImage(key string) (Image, bool) {
	for i, img := range w.Images {
		if img.Key == key {
			w.Images = append(w.Images[:i], w.Images[i+1:]...)
			return img, true
		}
	}
	return Image{}, false
}

// SetRequired replaces the required attribute set and forgets entries for
// attributes no longer in it.
func (w *Wizard) SetRequired(attrs []Attribute) {
	w.Required = attrs
	for attr := range w.Entered {
		if !w.IsRequired(attr) {
			delete(w.Entered, attr)
		}
	}
}

// IsRequired reports whether attr is required for the chosen selling unit.
func (w *Wizard) IsRequired(attr Attribute) bool {
	for _, a := range w.Required {
		if a == attr {
			return true
		}
	}
	return false
}
