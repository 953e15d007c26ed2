package procurement

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stockroom/console/internal/backend"
	"github.com/stockroom/console/internal/masterdata"
	"github.com/stockroom/console/internal/platform/httpx"
	"github.com/stockroom/console/internal/shared"
	"github.com/stockroom/console/internal/view"
)

const (
	draftSessionKey = "procurement.draft"
	builderTemplate = "pages/purchase_order_builder.html"
	builderPath     = "/purchase-orders/new"
	listPath        = "/purchase-orders"
)

// Handler serves the purchase order builder under /purchase-orders.
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

// MountRoutes registers the builder on the purchase orders router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/new", h.show)
	r.Post("/new", h.submit)
	r.Post("/new/header", h.postHeader)
	r.Post("/new/rows", h.postRows)
	r.Get("/new/products", h.products)
	r.Post("/new/reset", h.reset)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	h.renderBuilder(w, r, h.loadDraft(r), shared.FieldErrors{}, nil, http.StatusOK)
}

func (h *Handler) postHeader(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	draft := h.loadDraft(r)
	bindHeader(draft, r.PostForm)
	h.saveAndRedirect(w, r, draft)
}

func (h *Handler) postRows(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	draft := h.loadDraft(r)
	if r.PostForm.Has("supplierId") {
		bindHeader(draft, r.PostForm)
	}
	action, index := r.PostFormValue("action"), r.PostFormValue("index")
	if i := r.PostFormValue("remove_row"); i != "" {
		action, index = "remove_row", i
	}
	if action == "open" {
		draft.OpenRows()
		h.saveAndRedirect(w, r, draft)
		return
	}
	if !draft.SubFormOpen {
		h.saveAndRedirect(w, r, draft)
		return
	}
	rows := bindRows(r.PostForm)
	if len(rows) > 0 {
		draft.Rows = rows
	}

	switch action {
	case "add_row":
		_ = draft.AddRow()
	case "remove_row":
		idx, _ := strconv.Atoi(index)
		if err := draft.RemoveRow(idx); errors.Is(err, ErrLastRow) {
			shared.Flash(ctx, shared.FlashWarning, "At least one product row is required.")
		}
	case "search":
		if _, err := h.service.Suggest(ctx, draft, r.PostFormValue("query")); err != nil {
			h.logger.Warn("product autocomplete", slog.Any("error", err))
			shared.Flash(ctx, shared.FlashError, backend.UserMessage(err, "Product search failed."))
		}
	case "save":
		rowErrs, err := draft.SaveRows(draft.Rows)
		if err != nil {
			h.saveAndRedirect(w, r, draft)
			return
		}
		if rowErrs.Any() {
			h.save(r, draft)
			h.renderBuilder(w, r, draft, shared.FieldErrors{}, rowErrs, http.StatusBadRequest)
			return
		}
		shared.Flash(ctx, shared.FlashSuccess, "Products added to the order.")
	case "close":
		draft.CloseRows()
	}
	h.saveAndRedirect(w, r, draft)
}

// products backs script-driven autocomplete.
func (h *Handler) products(w http.ResponseWriter, r *http.Request) {
	draft := h.loadDraft(r)
	opts, err := h.service.Suggest(r.Context(), draft, r.URL.Query().Get("query"))
	if err != nil {
		h.logger.Warn("product autocomplete", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.save(r, draft)
	httpx.JSON(w, http.StatusOK, opts)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	draft := h.loadDraft(r)
	if r.PostForm.Has("supplierId") {
		bindHeader(draft, r.PostForm)
	}
	if errs := draft.ValidateHeader(); errs.Any() {
		h.save(r, draft)
		h.renderBuilder(w, r, draft, errs, nil, http.StatusBadRequest)
		return
	}
	if len(draft.Lines) == 0 {
		shared.Flash(ctx, shared.FlashError, "Add at least one product before submitting.")
		h.saveAndRedirect(w, r, draft)
		return
	}
	if err := h.service.Submit(ctx, draft); err != nil {
		h.logger.Error("submit purchase order", slog.Any("error", err))
		shared.Flash(ctx, shared.FlashError, backend.UserMessage(err, "Failed to create purchase order. Please try again."))
		h.saveAndRedirect(w, r, draft)
		return
	}
	h.clear(r)
	shared.Flash(ctx, shared.FlashSuccess, "Purchase order created successfully!")
	http.Redirect(w, r, listPath, http.StatusSeeOther)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	h.clear(r)
	http.Redirect(w, r, builderPath, http.StatusSeeOther)
}

func (h *Handler) renderBuilder(w http.ResponseWriter, r *http.Request, draft *Draft, errs shared.FieldErrors, rowErrs RowErrors, status int) {
	ctx := r.Context()
	data := map[string]any{
		"Draft":     draft,
		"Errors":    errs,
		"RowErrors": rowErrs,
		"Total":     draft.Total().StringFixed(2),
	}
	suppliers, err := h.store.Suppliers(ctx)
	if err != nil {
		h.logger.Warn("load suppliers", slog.Any("error", err))
		errs.Add("general", backend.UserMessage(err, "Suppliers could not be loaded."))
	}
	data["Suppliers"] = masterdata.SupplierChoices(suppliers)
	if supplier, ok, err := h.service.Supplier(ctx, draft.SupplierID); err == nil && ok {
		data["Supplier"] = supplier
	}
	rows := make([]rowView, 0, len(draft.Rows))
	for i, row := range draft.Rows {
		rows = append(rows, rowView{Index: i, Row: row, Errors: rowErrs[i], Removable: len(draft.Rows) > 1})
	}
	data["Rows"] = rows
	h.render(w, r, builderTemplate, data, status)
}

type rowView struct {
	Index     int
	Row       Row
	Errors    shared.FieldErrors
	Removable bool
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "New Purchase Order",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, status, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
	}
}

func (h *Handler) loadDraft(r *http.Request) *Draft {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return &Draft{}
	}
	var draft Draft
	if _, err := sess.State(draftSessionKey, &draft); err != nil {
		h.logger.Warn("decode purchase order draft", slog.Any("error", err))
		return &Draft{}
	}
	return &draft
}

func (h *Handler) save(r *http.Request, draft *Draft) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return
	}
	if err := sess.PutState(draftSessionKey, draft); err != nil {
		h.logger.Error("encode purchase order draft", slog.Any("error", err))
	}
}

func (h *Handler) saveAndRedirect(w http.ResponseWriter, r *http.Request, draft *Draft) {
	h.save(r, draft)
	http.Redirect(w, r, builderPath, http.StatusSeeOther)
}

func (h *Handler) clear(r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.Delete(draftSessionKey)
	}
}

func bindHeader(draft *Draft, form url.Values) {
	id, err := strconv.ParseInt(form.Get("supplierId"), 10, 64)
	if err != nil {
		id = 0
	}
	draft.SupplierID = id
	draft.OrderDate = form.Get("orderDate")
	draft.DeliveryDate = form.Get("deliveryDate")
}

// bindRows reads the parallel row_product, row_quantity and row_price inputs.
func bindRows(form url.Values) []Row {
	products := form["row_product"]
	quantities := form["row_quantity"]
	prices := form["row_price"]
	n := max(len(products), len(quantities), len(prices))
	at := func(vals []string, i int) string {
		if i < len(vals) {
			return vals[i]
		}
		return ""
	}
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, Row{ProductID: at(products, i), Quantity: at(quantities, i), Price: at(prices, i)})
	}
	return rows
}
