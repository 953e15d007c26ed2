package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stockroom/console/internal/backend"
	"github.com/stockroom/console/internal/listing"
	"github.com/stockroom/console/internal/masterdata"
	"github.com/stockroom/console/internal/platform/httpx"
	"github.com/stockroom/console/internal/shared"
	"github.com/stockroom/console/internal/view"
)

const (
	wizardSessionKey = "catalog.wizard"
	wizardTemplate   = "pages/product_wizard.html"
	basicPath        = "/products/new"
	attributesPath   = "/products/new/attributes"
	listPath         = "/products"

	maxUploadBytes = 10 << 20
	maxFormMemory  = 32 << 20
)

// Handler serves the wizard screens under /products.
type Handler struct {
	logger    *slog.Logger
	templates *view.Engine
	csrf      *shared.CSRFManager
	service   *Service
	store     *masterdata.Store
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, service *Service, store *masterdata.Store) *Handler {
	return &Handler{logger: logger, templates: templates, csrf: csrf, service: service, store: store}
}

// MountRoutes registers the wizard on the products router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/new", h.showBasic)
	r.Post("/new/basic", h.postBasic)
	r.Get("/new/name-check", h.nameCheck)
	r.Get("/new/attributes", h.showAttributes)
	r.Post("/new/attributes", h.postAttributes)
	r.Post("/new/cancel", h.cancel)
}

func (h *Handler) showBasic(w http.ResponseWriter, r *http.Request) {
	wiz := h.loadWizard(r)
	h.renderBasic(w, r, wiz, shared.FieldErrors{}, http.StatusOK)
}

func (h *Handler) postBasic(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	wiz := h.loadWizard(r)
	parseErrs := bindBasic(wiz, r.PostForm)

	action, key := r.PostFormValue("action"), r.PostFormValue("key")
	if k := r.PostFormValue("remove_image"); k != "" {
		action, key = "remove_image", k
	}
	switch action {
	case "select_category":
		if wiz.Basic.CategoryID != 0 {
			if err := h.store.Refresh(ctx, masterdata.KindSubcategories, strconv.FormatInt(wiz.Basic.CategoryID, 10)); err != nil {
				h.logger.Warn("refresh subcategories", slog.Int64("category_id", wiz.Basic.CategoryID), slog.Any("error", err))
				shared.Flash(ctx, shared.FlashWarning, backend.UserMessage(err, "Could not load subcategories."))
			}
		}
		h.saveAndRedirect(w, r, wiz, basicPath)
	case "check_name":
		if h.service.CheckAndMark(ctx, wiz) {
			shared.Flash(ctx, shared.FlashError, MsgNameTaken)
		}
		h.saveAndRedirect(w, r, wiz, basicPath)
	case "upload":
		h.upload(ctx, r, wiz)
		h.saveAndRedirect(w, r, wiz, basicPath)
	case "remove_image":
		if err := h.service.RemoveImage(ctx, wiz, key); err != nil {
			h.logger.Warn("remove image", slog.Any("error", err))
		}
		h.saveAndRedirect(w, r, wiz, basicPath)
	default:
		h.next(w, r, wiz, parseErrs)
	}
}

func (h *Handler) next(w http.ResponseWriter, r *http.Request, wiz *Wizard, parseErrs shared.FieldErrors) {
	ctx := r.Context()
	errs := parseErrs
	for field, msg := range ValidateBasic(wiz) {
		errs.Add(field, msg)
	}
	if errs.Any() {
		h.save(r, wiz)
		h.renderBasic(w, r, wiz, errs, http.StatusBadRequest)
		return
	}
	if wiz.AttributesUnlocked() {
		h.service.Resync(ctx, wiz)
		h.saveAndRedirect(w, r, wiz, attributesPath)
		return
	}

	if err := h.service.SubmitBasic(ctx, wiz); err != nil {
		h.logger.Error("submit product basic info", slog.Any("error", err))
		msg := backend.UserMessage(err, "Failed to submit basic info. Please try again.")
		if errors.Is(err, ErrNameTaken) {
			msg = MsgNameTaken
		}
		shared.Flash(ctx, shared.FlashError, msg)
		h.saveAndRedirect(w, r, wiz, basicPath)
		return
	}
	shared.Flash(ctx, shared.FlashSuccess, "Basic info submitted successfully. You can now add attributes.")
	h.saveAndRedirect(w, r, wiz, attributesPath)
}

func (h *Handler) upload(ctx context.Context, r *http.Request, wiz *Wizard) {
	if r.MultipartForm == nil {
		return
	}
	reported := map[string]bool{}
	report := func(msg string) {
		if !reported[msg] {
			reported[msg] = true
			shared.Flash(ctx, shared.FlashError, msg)
		}
	}
	for _, fh := range r.MultipartForm.File["images"] {
		data, err := readUpload(fh)
		if err != nil {
			h.logger.Warn("read upload", slog.String("filename", fh.Filename), slog.Any("error", err))
			report("Could not read " + fh.Filename + ".")
			continue
		}
		switch err := h.service.AddImage(ctx, wiz, fh.Filename, data); {
		case err == nil:
		case errors.Is(err, ErrNotImage):
			report(MsgNotImage)
		case errors.Is(err, ErrTooManyImages):
			report(MsgTooManyImages)
		default:
			h.logger.Error("store upload", slog.String("filename", fh.Filename), slog.Any("error", err))
			report("Could not store " + fh.Filename + ".")
		}
	}
}

type nameCheckResponse struct {
	Exists  bool   `json:"exists"`
	Message string `json:"message,omitempty"`
}

// nameCheck backs the on-blur check of the name input.
func (h *Handler) nameCheck(w http.ResponseWriter, r *http.Request) {
	wiz := h.loadWizard(r)
	wiz.SetName(r.URL.Query().Get("name"))
	resp := nameCheckResponse{}
	if h.service.CheckAndMark(r.Context(), wiz) {
		resp = nameCheckResponse{Exists: true, Message: MsgNameTaken}
	}
	h.save(r, wiz)
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) showAttributes(w http.ResponseWriter, r *http.Request) {
	wiz := h.loadWizard(r)
	if !wiz.AttributesUnlocked() {
		shared.Flash(r.Context(), shared.FlashWarning, "Submit the basic info first.")
		http.Redirect(w, r, basicPath, http.StatusSeeOther)
		return
	}
	h.renderAttributes(w, r, wiz, shared.FieldErrors{}, http.StatusOK)
}

func (h *Handler) postAttributes(w http.ResponseWriter, r *http.Request) {
	wiz := h.loadWizard(r)
	if !wiz.AttributesUnlocked() {
		shared.Flash(r.Context(), shared.FlashWarning, "Submit the basic info first.")
		http.Redirect(w, r, basicPath, http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	wiz.Entered = make(map[Attribute]string, len(wiz.Required))
	for _, attr := range wiz.Required {
		wiz.Entered[attr] = r.PostFormValue(string(attr))
	}
	wiz.Additional = r.PostFormValue("attributes")

	if errs := ValidateAttributes(wiz); errs.Any() {
		h.save(r, wiz)
		h.renderAttributes(w, r, wiz, errs, http.StatusBadRequest)
		return
	}
	if err := h.service.SubmitAttributes(r.Context(), wiz); err != nil {
		if errors.Is(err, ErrInvalidBasic) {
			shared.Flash(r.Context(), shared.FlashError, "Fix the basic info before submitting.")
			h.saveAndRedirect(w, r, wiz, basicPath)
			return
		}
		h.logger.Error("submit product", slog.Int64("product_id", wiz.ProductID), slog.Any("error", err))
		h.save(r, wiz)
		errs := shared.FieldErrors{}
		errs.Add("general", backend.UserMessage(err, "Failed to create product. Please try again."))
		h.renderAttributes(w, r, wiz, errs, http.StatusBadRequest)
		return
	}
	h.clear(r)
	shared.Flash(r.Context(), shared.FlashSuccess, "Product created successfully!")
	http.Redirect(w, r, listPath, http.StatusSeeOther)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	wiz := h.loadWizard(r)
	h.service.Discard(r.Context(), wiz)
	h.clear(r)
	http.Redirect(w, r, listPath, http.StatusSeeOther)
}

func (h *Handler) renderBasic(w http.ResponseWriter, r *http.Request, wiz *Wizard, errs shared.FieldErrors, status int) {
	ctx := r.Context()
	data := map[string]any{
		"Step":      1,
		"Wizard":    wiz,
		"Errors":    errs,
		"NameTaken": wiz.NameTaken(),
		"MaxImages": MaxImages,
		"CanUpload": wiz.CanAddImage(),
		"Unlocked":  wiz.AttributesUnlocked(),
		"Form":      basicValues(wiz),
	}
	if err := h.loadChoices(ctx, wiz, data); err != nil {
		h.logger.Warn("load wizard choices", slog.Any("error", err))
		errs.Add("general", backend.UserMessage(err, "Some choices could not be loaded."))
	}
	h.render(w, r, wizardTemplate, data, status)
}

func (h *Handler) loadChoices(ctx context.Context, wiz *Wizard, data map[string]any) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	cats, err := h.store.Categories(ctx)
	keep(err)
	brands, err := h.store.Brands(ctx)
	keep(err)
	uoms, err := h.store.UOMs(ctx)
	keep(err)
	subs, err := h.store.Subcategories(ctx, wiz.Basic.CategoryID)
	keep(err)

	data["Categories"] = masterdata.CategoryChoices(cats)
	data["Brands"] = masterdata.BrandChoices(brands)
	data["UOMs"] = masterdata.UOMChoices(uoms)
	data["Subcategories"] = masterdata.SubcategoryChoices(subs)
	return firstErr
}

func (h *Handler) renderAttributes(w http.ResponseWriter, r *http.Request, wiz *Wizard, errs shared.FieldErrors, status int) {
	type attrField struct {
		Name  string
		Label string
		Value string
		Error string
	}
	fields := make([]attrField, 0, len(wiz.Required))
	for _, attr := range wiz.Required {
		fields = append(fields, attrField{
			Name:  string(attr),
			Label: attr.Label(),
			Value: wiz.Entered[attr],
			Error: errs[string(attr)],
		})
	}
	h.render(w, r, wizardTemplate, map[string]any{
		"Step":       2,
		"Wizard":     wiz,
		"Errors":     errs,
		"Fields":     fields,
		"Additional": wiz.Additional,
		"Unlocked":   true,
	}, status)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "New Product",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, status, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
	}
}

func (h *Handler) loadWizard(r *http.Request) *Wizard {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return NewWizard()
	}
	var wiz Wizard
	ok, err := sess.State(wizardSessionKey, &wiz)
	if err != nil {
		h.logger.Warn("decode wizard state", slog.Any("error", err))
	}
	if !ok || err != nil || wiz.DraftID == "" {
		return NewWizard()
	}
	return &wiz
}

func (h *Handler) save(r *http.Request, wiz *Wizard) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return
	}
	if err := sess.PutState(wizardSessionKey, wiz); err != nil {
		h.logger.Error("encode wizard state", slog.Any("error", err))
	}
}

func (h *Handler) saveAndRedirect(w http.ResponseWriter, r *http.Request, wiz *Wizard, location string) {
	h.save(r, wiz)
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func (h *Handler) clear(r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.Delete(wizardSessionKey)
	}
}

// bindBasic copies the step-one inputs into wiz without validating them.
func bindBasic(wiz *Wizard, form url.Values) shared.FieldErrors {
	b := listing.NewBinder(form)
	wiz.SetName(b.String("name"))
	prevCategory := wiz.Basic.CategoryID
	wiz.SelectCategory(b.Int("categoryId"))
	switch {
	case wiz.Basic.CategoryID == 0:
		wiz.Basic.SubCategoryID = nil
	case wiz.Basic.CategoryID == prevCategory:
		wiz.Basic.SubCategoryID = b.OptionalInt("subCategoryId")
	}
	wiz.Basic.BrandID = b.OptionalInt("brandId")
	wiz.Basic.BuyingUOMID = b.Int("buyingUomId")
	wiz.Basic.SellingUOMID = b.Int("sellingUomId")
	wiz.Basic.Description = b.String("description")
	wiz.Basic.ReorderPoint = b.OptionalInt("reorderPoint")
	return b.Errors()
}

func basicValues(wiz *Wizard) map[string]string {
	opt := func(n *int64) string {
		if n == nil {
			return ""
		}
		return strconv.FormatInt(*n, 10)
	}
	num := func(n int64) string {
		if n == 0 {
			return ""
		}
		return strconv.FormatInt(n, 10)
	}
	return map[string]string{
		"name":          wiz.Basic.Name,
		"categoryId":    num(wiz.Basic.CategoryID),
		"subCategoryId": opt(wiz.Basic.SubCategoryID),
		"brandId":       opt(wiz.Basic.BrandID),
		"buyingUomId":   num(wiz.Basic.BuyingUOMID),
		"sellingUomId":  num(wiz.Basic.SellingUOMID),
		"description":   wiz.Basic.Description,
		"reorderPoint":  opt(wiz.Basic.ReorderPoint),
	}
}

func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return io.ReadAll(io.LimitReader(f, maxUploadBytes))
}
