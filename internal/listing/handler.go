package listing

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stockroom/console/internal/backend"
	"github.com/stockroom/console/internal/shared"
	"github.com/stockroom/console/internal/view"
)

const (
	listTemplate = "pages/resource_list.html"
	formTemplate = "pages/resource_form.html"
)

// Meta is the non-generic part of a Resource handed to templates.
type Meta struct {
	Title    string
	Singular string
	Path     string
	NewPath  string
	ReadOnly bool
	Headers  []string
}

// Row is one rendered list row.
type Row struct {
	ID    int64
	Cells []string
}

// FieldView is a form field together with its current value and error.
type FieldView struct {
	Field
	Value   string
	Checked bool
	Error   string
	Choices []Option
}

// Handler serves the list, create, edit and delete screens of a Resource.
type Handler[T, F any] struct {
	logger    *slog.Logger
	templates *view.Engine
	csrf      *shared.CSRFManager
	resource  *Resource[T, F]
	ctrl      *Controller[T, F]
}

// NewHandler builds a Handler for resource.
func NewHandler[T, F any](logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, client *backend.Client, resource *Resource[T, F]) *Handler[T, F] {
	return &Handler[T, F]{
		logger:    logger,
		templates: templates,
		csrf:      csrf,
		resource:  resource,
		ctrl:      NewController(client, resource),
	}
}

// MountRoutes registers the screens relative to the resource path. The
// generic create form is skipped when the resource has its own create flow,
// and the edit form when it is read-only.
func (h *Handler[T, F]) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	if h.resource.CreatePath == "" {
		r.Get("/new", h.newForm)
		r.Post("/", h.create)
	}
	if !h.resource.ReadOnly {
		r.Get("/{id}/edit", h.editForm)
		r.Post("/{id}/edit", h.update)
	}
	r.Post("/{id}/delete", h.delete)
}

func (h *Handler[T, F]) meta() Meta {
	headers := make([]string, 0, len(h.resource.Columns))
	for _, col := range h.resource.Columns {
		headers = append(headers, col.Title)
	}
	return Meta{
		Title:    h.resource.Title,
		Singular: h.resource.Singular,
		Path:     h.resource.Path,
		NewPath:  h.resource.NewPath(),
		ReadOnly: h.resource.ReadOnly,
		Headers:  headers,
	}
}

func (h *Handler[T, F]) list(w http.ResponseWriter, r *http.Request) {
	page, limit := shared.ParsePage(r.URL.Query())
	data := map[string]any{
		"Resource":   h.meta(),
		"Rows":       []Row{},
		"Pagination": shared.NewPagination(page, limit, 0),
		"PageSizes":  shared.PageSizes,
	}

	result, err := h.ctrl.Page(r.Context(), page, limit)
	if err != nil {
		h.logger.Error("list "+h.resource.Endpoint, slog.Any("error", err))
		data["LoadError"] = backend.UserMessage(err, "Failed to load "+h.resource.Title+".")
		h.render(w, r, listTemplate, data, http.StatusBadGateway)
		return
	}

	rows := make([]Row, 0, len(result.Items))
	for _, item := range result.Items {
		cells := make([]string, 0, len(h.resource.Columns))
		for _, col := range h.resource.Columns {
			cells = append(cells, col.Value(item))
		}
		rows = append(rows, Row{ID: h.resource.ID(item), Cells: cells})
	}
	data["Rows"] = rows
	data["Pagination"] = shared.NewPagination(page, limit, result.Total)
	h.render(w, r, listTemplate, data, http.StatusOK)
}

func (h *Handler[T, F]) newForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, url.Values{}, shared.FieldErrors{}, 0, http.StatusOK)
}

func (h *Handler[T, F]) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form, errs := h.resource.Bind(r.PostForm)
	if errs.Any() {
		h.renderForm(w, r, r.PostForm, errs, 0, http.StatusBadRequest)
		return
	}
	if err := h.ctrl.Create(r.Context(), form); err != nil {
		h.logger.Error("create "+h.resource.Endpoint, slog.Any("error", err))
		errs.Add("general", backend.UserMessage(err, "Failed to create "+h.resource.Singular+"."))
		h.renderForm(w, r, r.PostForm, errs, 0, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, h.resource.Path, shared.FlashSuccess, h.resource.Singular+" created successfully")
}

func (h *Handler[T, F]) editForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	item, err := h.ctrl.Get(r.Context(), id)
	if backend.IsNotFound(err) {
		h.logger.Warn("get "+h.resource.Endpoint+": not found", slog.Int64("id", id))
		h.redirectWithFlash(w, r, h.resource.Path, shared.FlashError, h.resource.Singular+" not found")
		return
	}
	if err != nil {
		h.logger.Error("get "+h.resource.Endpoint, slog.Any("error", err), slog.Int64("id", id))
		h.redirectWithFlash(w, r, h.resource.Path, shared.FlashError, backend.UserMessage(err, h.resource.Singular+" not found"))
		return
	}
	h.renderForm(w, r, h.resource.Values(item), shared.FieldErrors{}, id, http.StatusOK)
}

func (h *Handler[T, F]) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form, errs := h.resource.Bind(r.PostForm)
	if errs.Any() {
		h.renderForm(w, r, r.PostForm, errs, id, http.StatusBadRequest)
		return
	}
	if err := h.ctrl.Update(r.Context(), id, form); err != nil {
		h.logger.Error("update "+h.resource.Endpoint, slog.Any("error", err), slog.Int64("id", id))
		errs.Add("general", backend.UserMessage(err, "Failed to update "+h.resource.Singular+"."))
		h.renderForm(w, r, r.PostForm, errs, id, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, h.resource.Path, shared.FlashSuccess, h.resource.Singular+" updated successfully")
}

func (h *Handler[T, F]) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	err := h.ctrl.Delete(r.Context(), id)
	if backend.IsNotFound(err) {
		h.redirectWithFlash(w, r, h.resource.Path, shared.FlashWarning, h.resource.Singular+" no longer exists")
		return
	}
	if err != nil {
		h.logger.Error("delete "+h.resource.Endpoint, slog.Any("error", err), slog.Int64("id", id))
		h.redirectWithFlash(w, r, h.resource.Path, shared.FlashError, backend.UserMessage(err, "Failed to delete "+h.resource.Singular+"."))
		return
	}
	h.redirectWithFlash(w, r, h.resource.Path, shared.FlashSuccess, h.resource.Singular+" deleted successfully")
}

func (h *Handler[T, F]) renderForm(w http.ResponseWriter, r *http.Request, values url.Values, errs shared.FieldErrors, id int64, status int) {
	var options map[string][]Option
	if h.resource.Options != nil {
		var err error
		options, err = h.resource.Options(r.Context(), values)
		if err != nil {
			h.logger.Warn("load form options", slog.String("resource", h.resource.Endpoint), slog.Any("error", err))
			errs.Add("general", backend.UserMessage(err, "Some choices could not be loaded."))
		}
	}

	fields := make([]FieldView, 0, len(h.resource.Fields))
	for _, f := range h.resource.Fields {
		fv := FieldView{Field: f, Value: values.Get(f.Name), Error: errs[f.Name], Choices: f.Options}
		if f.Kind == KindCheckbox {
			fv.Checked = NewBinder(values).Bool(f.Name)
		}
		if dynamic, ok := options[f.Name]; ok {
			fv.Choices = dynamic
		}
		fields = append(fields, fv)
	}

	action := h.resource.Path
	if id != 0 {
		action = h.resource.Path + "/" + strconv.FormatInt(id, 10) + "/edit"
	}
	h.render(w, r, formTemplate, map[string]any{
		"Resource": h.meta(),
		"Fields":   fields,
		"Errors":   errs,
		"Action":   action,
		"Editing":  id != 0,
	}, status)
}

func (h *Handler[T, F]) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       h.resource.Title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, status, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
	}
}

func (h *Handler[T, F]) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	shared.Flash(r.Context(), kind, message)
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
