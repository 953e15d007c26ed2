package procurement

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/console/internal/backend"
	"github.com/stockroom/console/internal/masterdata"
	"github.com/stockroom/console/internal/shared"
	"github.com/stockroom/console/internal/view"
)

func TestRowsLifecycle(t *testing.T) {
	var d Draft
	assert.ErrorIs(t, d.AddRow(), ErrSubFormClosed)

	d.OpenRows()
	require.Len(t, d.Rows, 1)
	assert.ErrorIs(t, d.RemoveRow(0), ErrLastRow)

	require.NoError(t, d.AddRow())
	require.Len(t, d.Rows, 2)
	assert.ErrorIs(t, d.RemoveRow(5), ErrRowIndex)
	require.NoError(t, d.RemoveRow(1))
	assert.Len(t, d.Rows, 1)
}

func TestSaveRowsValidatesEveryRow(t *testing.T) {
	var d Draft
	d.OpenRows()

	errs, err := d.SaveRows([]Row{
		{ProductID: "", Quantity: "0", Price: "-1"},
		{ProductID: "7", Quantity: "2", Price: "abc"},
	})
	require.NoError(t, err)
	require.True(t, errs.Any())
	assert.Equal(t, "This field is required", errs[0]["productId"])
	assert.Equal(t, "Must be at least 1", errs[0]["quantity"])
	assert.Equal(t, "Must be at least 0", errs[0]["price"])
	assert.Equal(t, "Must be a number", errs[1]["price"])
	assert.Empty(t, d.Lines)
	assert.True(t, d.SubFormOpen)
	assert.Len(t, d.Rows, 2)
}

func TestSaveRowsResolvesNamesAndCloses(t *testing.T) {
	d := Draft{Options: []Option{{ProductID: 7, Name: "Thinner"}}}
	d.OpenRows()

	errs, err := d.SaveRows([]Row{
		{ProductID: "7", Quantity: "2", Price: "4.50"},
		{ProductID: "9", Quantity: "1", Price: "0"},
	})
	require.NoError(t, err)
	assert.False(t, errs.Any())
	require.Len(t, d.Lines, 2)
	assert.Equal(t, "Thinner", d.Lines[0].ProductName)

	assert.Equal(t, "9", d.Lines[1].ProductName)
	assert.False(t, d.SubFormOpen)
	assert.Empty(t, d.Rows)
	assert.Equal(t, "9.00", d.Total().StringFixed(2))

	d.OpenRows()
	_, err = d.SaveRows([]Row{{ProductID: "7", Quantity: "1", Price: "1"}})
	require.NoError(t, err)
	assert.Len(t, d.Lines, 3)
}

func TestValidateHeader(t *testing.T) {
	d := Draft{OrderDate: "2026-10-18", DeliveryDate: "18.10.2026"}
	errs := d.ValidateHeader()
	assert.Equal(t, "This field is required", errs["supplierId"])
	assert.Equal(t, "Enter a valid date as YYYY-MM-DD", errs["deliveryDate"])
	assert.NotContains(t, errs, "orderDate")

	d = Draft{SupplierID: 3, OrderDate: "2026-02-30", DeliveryDate: "2026-03-01"}
	errs = d.ValidateHeader()
	assert.Equal(t, "Enter a valid date as YYYY-MM-DD", errs["orderDate"])
}

type fakeBackend struct {
	mu           sync.Mutex
	autocomplete []string
	orders       []json.RawMessage
	failOrder    string
}

func (f *fakeBackend) queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.autocomplete...)
}

func (f *fakeBackend) lastOrder() json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.orders) == 0 {
		return nil
	}
	return f.orders[len(f.orders)-1]
}

func newServer(t *testing.T, f *fakeBackend) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/products/autocomplete", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		f.autocomplete = append(f.autocomplete, req.URL.Query().Get("query"))
		f.mu.Unlock()
		_, _ = w.Write([]byte(`[{"productId":7,"name":"Thinner"},{"productId":"8","name":"Thinner Pro"}]`))
	})
	r.Get("/suppliers/list", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"supplierId":3,"name":"Globex","phone":"555-0100","address":"1 Harbour Rd"}]`))
	})
	r.Post("/purchase-orders", func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		f.mu.Lock()
		f.orders = append(f.orders, body)
		fail := f.failOrder
		f.mu.Unlock()
		if fail != "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"` + fail + `"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newService(t *testing.T, f *fakeBackend) (*Service, *masterdata.Store, *backend.Client) {
	t.Helper()
	client, err := backend.New(newServer(t, f).URL)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := masterdata.NewStore(client, nil, logger)
	return NewService(client, store, logger), store, client
}

func TestSuggestNeedsTwoCharacters(t *testing.T) {
	f := &fakeBackend{}
	svc, _, _ := newService(t, f)
	ctx := context.Background()
	d := Draft{Options: []Option{{ProductID: 1, Name: "stale"}}}

	opts, err := svc.Suggest(ctx, &d, "a")
	require.NoError(t, err)
	assert.Empty(t, opts)
	assert.Empty(t, d.Options)
	assert.Empty(t, f.queries())

	opts, err = svc.Suggest(ctx, &d, "ab")
	require.NoError(t, err)
	require.Len(t, opts, 2)
	assert.Equal(t, int64(8), opts[1].ProductID.Int64())
	assert.Equal(t, []string{"ab"}, f.queries())
	assert.Len(t, d.Options, 2)
}

func TestSubmitRequiresLines(t *testing.T) {
	svc, _, _ := newService(t, &fakeBackend{})
	d := Draft{SupplierID: 3, OrderDate: "2026-10-18", DeliveryDate: "2026-10-25"}

	assert.ErrorIs(t, svc.Submit(context.Background(), &d), ErrNoLines)
}

func TestSubmitPayloadAndReset(t *testing.T) {
	f := &fakeBackend{}
	svc, _, _ := newService(t, f)
	d := Draft{
		SupplierID:   3,
		OrderDate:    "2026-10-18",
		DeliveryDate: "2026-10-25",
		Options:      []Option{{ProductID: 7, Name: "Thinner"}},
	}
	d.OpenRows()
	_, err := d.SaveRows([]Row{{ProductID: "7", Quantity: "2", Price: "4.5"}})
	require.NoError(t, err)

	require.NoError(t, svc.Submit(context.Background(), &d))

	assert.JSONEq(t, `{
		"supplierId": 3,
		"orderDate": "2026-10-18",
		"deliveryDate": "2026-10-25",
		"products": [{"productId": 7, "quantityOrdered": 2, "price": 4.5}],
		"status": "pending"
	}`, string(f.lastOrder()))
	assert.Equal(t, Draft{}, d)
}

func TestSubmitFailurePreservesDraft(t *testing.T) {
	f := &fakeBackend{failOrder: "Supplier is inactive"}
	svc, _, _ := newService(t, f)
	d := Draft{SupplierID: 3, OrderDate: "2026-10-18", DeliveryDate: "2026-10-25", Lines: []Line{{ProductID: 7, Quantity: 1}}}

	err := svc.Submit(context.Background(), &d)

	require.Error(t, err)
	assert.Equal(t, "Supplier is inactive", backend.UserMessage(err, ""))
	assert.Len(t, d.Lines, 1)
}

type harness struct {
	router http.Handler
	fake   *fakeBackend
	sess   *shared.Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	f := &fakeBackend{}
	svc, store, _ := newService(t, f)
	engine, err := view.NewEngine()
	require.NoError(t, err)
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), engine, shared.NewCSRFManager("secret"), svc, store)
	sess := &shared.Session{ID: "s1"}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/purchase-orders", h.MountRoutes)
	return &harness{router: r, fake: f, sess: sess}
}

func (h *harness) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) draft(t *testing.T) Draft {
	t.Helper()
	var d Draft
	_, err := h.sess.State(draftSessionKey, &d)
	require.NoError(t, err)
	return d
}

func TestBuilderFlow(t *testing.T) {
	h := newHarness(t)

	rec := h.post("/purchase-orders/new/header", url.Values{"supplierId": {"3"}, "orderDate": {"2026-10-18"}, "deliveryDate": {"2026-10-25"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = httptest.NewRecorder()
	h.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/purchase-orders/new", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 Harbour Rd")
	assert.Contains(t, rec.Body.String(), `class="button primary" disabled>Create purchase order`)

	h.post("/purchase-orders/new/rows", url.Values{"action": {"open"}})
	assert.True(t, h.draft(t).SubFormOpen)

	h.post("/purchase-orders/new/rows", url.Values{"action": {"search"}, "query": {"th"}, "row_product": {""}, "row_quantity": {""}, "row_price": {""}})
	assert.Len(t, h.draft(t).Options, 2)

	rec = h.post("/purchase-orders/new/rows", url.Values{"action": {"remove_row"}, "index": {"0"}, "row_product": {""}, "row_quantity": {""}, "row_price": {""}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Len(t, h.draft(t).Rows, 1)

	rec = h.post("/purchase-orders/new/rows", url.Values{"action": {"save"}, "row_product": {"7"}, "row_quantity": {"0"}, "row_price": {"2"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Must be at least 1")

	rec = h.post("/purchase-orders/new/rows", url.Values{"action": {"save"}, "row_product": {"7"}, "row_quantity": {"3"}, "row_price": {"2"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	d := h.draft(t)
	require.Len(t, d.Lines, 1)
	assert.Equal(t, "Thinner", d.Lines[0].ProductName)

	rec = httptest.NewRecorder()
	h.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/purchase-orders/new", nil))
	assert.Contains(t, rec.Body.String(), `class="button primary">Create purchase order`)

	rec = h.post("/purchase-orders/new", url.Values{"supplierId": {"3"}, "orderDate": {"2026-10-18"}, "deliveryDate": {"2026-10-25"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/purchase-orders", rec.Header().Get("Location"))
	assert.NotNil(t, h.fake.lastOrder())
	assert.Equal(t, Draft{}, h.draft(t))
}

func TestSubmitWithoutLinesIsBlocked(t *testing.T) {
	h := newHarness(t)

	rec := h.post("/purchase-orders/new", url.Values{"supplierId": {"3"}, "orderDate": {"2026-10-18"}, "deliveryDate": {"2026-10-25"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/purchase-orders/new", rec.Header().Get("Location"))
	flash := h.sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "Add at least one product before submitting.", flash.Message)
	assert.Nil(t, h.fake.lastOrder())
}

func TestSubmitHeaderErrorsRender(t *testing.T) {
	h := newHarness(t)

	rec := h.post("/purchase-orders/new", url.Values{"supplierId": {""}, "orderDate": {""}, "deliveryDate": {""}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "This field is required")
}

func TestProductsEndpointReturnsJSON(t *testing.T) {
	h := newHarness(t)

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/purchase-orders/new/products?query=t", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Empty(t, h.fake.queries())
}
