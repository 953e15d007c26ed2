package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/stockroom/console/internal/attachments"
	"github.com/stockroom/console/internal/backend"
	"github.com/stockroom/console/internal/listing"
	"github.com/stockroom/console/internal/masterdata"
	"github.com/stockroom/console/internal/shared"
)

const (
	productsPath     = "/products"
	productExistPath = "/products/exist"
)

var (
	// ErrNotImage rejects an upload whose content is not an image.
	ErrNotImage = errors.New("catalog: not an image")
	// ErrTooManyImages rejects uploads past MaxImages.
	ErrTooManyImages = errors.New("catalog: image limit reached")
	// ErrNameTaken blocks step one while the name is known to exist.
	ErrNameTaken = errors.New("catalog: product name exists")
	// ErrLocked is returned when step two is used before step one succeeded.
	ErrLocked = errors.New("catalog: attributes step locked")
	// ErrInvalidBasic means step one no longer validates.
	ErrInvalidBasic = errors.New("catalog: basic info invalid")
	// ErrNoProductID means the backend accepted step one without an id.
	ErrNoProductID = errors.New("catalog: backend returned no product id")
)

// Service runs the wizard's backend interactions.
type Service struct {
	client *backend.Client
	store  *masterdata.Store
	files  attachments.Store
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(client *backend.Client, store *masterdata.Store, files attachments.Store, logger *slog.Logger) *Service {
	return &Service{client: client, store: store, files: files, logger: logger}
}

// CheckName asks the backend whether a product called name exists.
func (s *Service) CheckName(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	return s.client.Exists(ctx, productExistPath, url.Values{"name": {name}})
}

// CheckAndMark runs CheckName and records a hit on w. Failures of the check
// itself are logged and leave w unchanged. The name step one was accepted
// with is not checked again.
func (s *Service) CheckAndMark(ctx context.Context, w *Wizard) bool {
	if w.AttributesUnlocked() && w.Basic.Name == w.PostedName {
		return false
	}
	exists, err := s.CheckName(ctx, w.Basic.Name)
	if err != nil {
		s.logger.Warn("product name check failed", slog.String("name", w.Basic.Name), slog.Any("error", err))
		return false
	}
	if exists {
		w.MarkNameTaken(w.Basic.Name)
	}
	return exists
}

// AddImage validates one upload and stores it. Rejected files never enter
// the wizard.
func (s *Service) AddImage(ctx context.Context, w *Wizard, filename string, data []byte) error {
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return ErrNotImage
	}
	if !w.CanAddImage() {
		return ErrTooManyImages
	}
	key := attachments.DraftKey(w.DraftID, filename)
	contentType := strings.SplitN(mtype.String(), ";", 2)[0]
	if err := s.files.Put(ctx, key, contentType, data); err != nil {
		return fmt.Errorf("catalog: store image: %w", err)
	}
	w.Images = append(w.Images, Image{Key: key, Filename: filename, ContentType: contentType, Size: len(data)})
	return nil
}

// RemoveImage drops an image from w and from storage.
func (s *Service) RemoveImage(ctx context.Context, w *Wizard, key string) error {
	img, ok := w.RemoveImage(key)
	if !ok {
		return nil
	}
	if err := s.files.Delete(ctx, img.Key); err != nil {
		return fmt.Errorf("catalog: delete image: %w", err)
	}
	return nil
}

// Discard deletes every stored upload of w.
func (s *Service) Discard(ctx context.Context, w *Wizard) {
	for _, img := range w.Images {
		if err := s.files.Delete(ctx, img.Key); err != nil {
			s.logger.Warn("discard draft image", slog.String("key", img.Key), slog.Any("error", err))
		}
	}
	w.Images = nil
}

// ValidateBasic checks the step-one form.
func ValidateBasic(w *Wizard) shared.FieldErrors {
	errs := listing.Validate(w.Basic)
	if w.NameTaken() {
		errs.Add("name", MsgNameTaken)
	}
	return errs
}

type createReply struct {
	ProductID backend.FlexID `json:"productId"`
	ID        backend.FlexID `json:"id"`
}

func (r createReply) id() int64 {
	if r.ProductID != 0 {
		return r.ProductID.Int64()
	}
	return r.ID.Int64()
}

// SubmitBasic posts step one. On success the product id is recorded and the
// required attributes are derived from the selling unit.
func (s *Service) SubmitBasic(ctx context.Context, w *Wizard) error {
	if w.NameTaken() {
		return ErrNameTaken
	}
	var reply createReply
	if err := s.client.Post(ctx, productsPath, w.Basic, &reply); err != nil {
		return err
	}
	if reply.id() == 0 {
		return ErrNoProductID
	}

	w.ProductID = reply.id()
	w.Submitted = true
	w.PostedName = w.Basic.Name
	w.SetRequired(s.requiredFor(ctx, w.Basic.SellingUOMID))
	return nil
}

// Resync recomputes the required attributes of an unlocked wizard after step
// one was edited.
func (s *Service) Resync(ctx context.Context, w *Wizard) {
	w.SetRequired(s.requiredFor(ctx, w.Basic.SellingUOMID))
}

func (s *Service) requiredFor(ctx context.Context, uomID int64) []Attribute {
	uom, ok, err := s.store.FindUOM(ctx, uomID)
	if err != nil {
		s.logger.Warn("resolve selling unit", slog.Int64("uom_id", uomID), slog.Any("error", err))
		return []Attribute{}
	}
	if !ok {
		return []Attribute{}
	}
	return RequiredAttributes(uom.UOMName)
}

// ValidateAttributes checks the step-two form against the required set.
func ValidateAttributes(w *Wizard) shared.FieldErrors {
	errs := shared.FieldErrors{}
	for _, attr := range w.Required {
		if strings.TrimSpace(w.Entered[attr]) == "" {
			errs.Add(string(attr), "Please enter "+string(attr))
		}
	}
	return errs
}

type productPayload struct {
	BasicInfo
	Attributes AttributeValues `json:"attributes"`
	Images     []string        `json:"images,omitempty"`
}

// SubmitAttributes sends the complete product with its attributes.
func (s *Service) SubmitAttributes(ctx context.Context, w *Wizard) error {
	if !w.AttributesUnlocked() {
		return ErrLocked
	}
	if ValidateBasic(w).Any() {
		return ErrInvalidBasic
	}
	values := make(map[Attribute]string, len(w.Required))
	for _, attr := range w.Required {
		values[attr] = strings.TrimSpace(w.Entered[attr])
	}
	payload := productPayload{
		BasicInfo:  w.Basic,
		Attributes: AttributeValues{Values: values, Additional: strings.TrimSpace(w.Additional)},
	}
	for _, img := range w.Images {
		payload.Images = append(payload.Images, img.Key)
	}
	return s.client.Post(ctx, productsPath, payload, nil)
}
