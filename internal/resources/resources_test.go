package resources

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/console/internal/backend"
	"github.com/stockroom/console/internal/listing"
	"github.com/stockroom/console/internal/masterdata"
	"github.com/stockroom/console/internal/shared"
	"github.com/stockroom/console/internal/view"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCustomerBindRules(t *testing.T) {
	res := Customers()

	_, errs := res.Bind(url.Values{"name": {"Ada"}, "phone": {"call me"}, "email": {"nope"}, "address": {""}})

	assert.Equal(t, "Invalid phone number", errs["phone"])
	assert.Equal(t, "Invalid email format", errs["email"])
	assert.Equal(t, "This field is required", errs["address"])
	assert.NotContains(t, errs, "name")
}

func TestAttributeBindRules(t *testing.T) {
	res := Attributes(nil)

	form, errs := res.Bind(url.Values{
		"name":           {"Colour"},
		"code":           {"colour-code"},
		"dataType":       {"date"},
		"uomId":          {"4"},
		"is_multi_value": {"on"},
	})

	assert.Equal(t, "Only letters, digits and underscores are allowed", errs["code"])
	assert.Equal(t, "Must be one of: text, number, boolean", errs["dataType"])
	require.NotNil(t, form.UOMID)
	assert.Equal(t, int64(4), *form.UOMID)
	assert.True(t, form.IsMultiValue)

	_, errs = res.Bind(url.Values{"name": {"Colour"}, "code": {strings.Repeat("a", 51)}, "dataType": {"text"}})
	assert.Equal(t, "Must be at most 50 characters", errs["code"])
}

func TestAttributeAcceptsEitherTypeSpelling(t *testing.T) {
	var a Attribute
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"data_type":"number","uomId":"3"}`), &a))
	assert.Equal(t, "number", a.Type())
	assert.Equal(t, int64(3), a.UOMID.Int64())
}

func TestStockMovementBindRules(t *testing.T) {
	res := StockMovements()

	_, errs := res.Bind(url.Values{"product_id": {"x"}, "quantity": {"3"}, "movement_type": {"sideways"}, "date": {"18/10/2026"}, "warehouse_id": {"2"}})

	assert.Equal(t, "Must be a whole number", errs["product_id"])
	assert.Equal(t, "Must be one of: in, out", errs["movement_type"])
	assert.Equal(t, "Enter a valid date as YYYY-MM-DD", errs["date"])
	assert.NotContains(t, errs, "quantity")
}

func TestProductBindPrice(t *testing.T) {
	res := Products(nil)
	base := url.Values{"name": {"Paint"}, "categoryId": {"1"}, "brandId": {"2"}, "supplierId": {"3"}, "sku": {"P-1"}}

	v := cloneValues(base)
	v.Set("price", "-1")
	_, errs := res.Bind(v)
	assert.Equal(t, "Must be at least 0", errs["price"])

	_, errs = res.Bind(cloneValues(base))
	assert.Equal(t, "This field is required", errs["price"])

	v = cloneValues(base)
	v.Set("price", "12.50")
	form, errs := res.Bind(v)
	assert.False(t, errs.Any())
	payload, err := json.Marshal(form)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"price":12.5`)
}

func TestPurchaseOrderColumnsFallBackToSupplierID(t *testing.T) {
	var o PurchaseOrder
	require.NoError(t, json.Unmarshal([]byte(`{"purchaseOrderId":"9","supplierId":4,"status":"pending"}`), &o))
	assert.Equal(t, "4", o.SupplierName())
	assert.Equal(t, int64(9), PurchaseOrders().ID(o))
}

func TestScreensMountEveryResource(t *testing.T) {
	engine, err := view.NewEngine()
	require.NoError(t, err)
	screens := Screens(Deps{Logger: discardLogger(), Templates: engine, CSRF: shared.NewCSRFManager("s")})

	var paths []string
	for _, s := range screens {
		paths = append(paths, s.Path)
	}
	assert.Equal(t, []string{
		"/products", "/categories", "/subcategories", "/brands", "/attributes",
		"/suppliers", "/purchase-orders", "/warehouses", "/stock-movements", "/customers",
	}, paths)
}

func TestBrandChangeInvalidatesStore(t *testing.T) {
	var listCalls atomic.Int32
	r := chi.NewRouter()
	r.Get("/brands/list", func(w http.ResponseWriter, _ *http.Request) {
		listCalls.Add(1)
		_, _ = w.Write([]byte(`[{"brandId":1,"brandName":"Acme"}]`))
	})
	r.Post("/brands", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	client, err := backend.New(srv.URL)
	require.NoError(t, err)
	store := masterdata.NewStore(client, nil, discardLogger())
	ctx := context.Background()

	_, err = store.Brands(ctx)
	require.NoError(t, err)

	res := Brands(store, discardLogger())
	form, errs := res.Bind(url.Values{"brandName": {"Globex"}, "description": {"Tools"}})
	require.False(t, errs.Any())
	h := listing.NewController(client, res)
	require.NoError(t, h.Create(ctx, form))

	_, err = store.Brands(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), listCalls.Load())
}

func cloneValues(v url.Values) url.Values {
	out := url.Values{}
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
