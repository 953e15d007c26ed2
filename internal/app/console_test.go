package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/console/internal/attachments"
	_ "github.com/stockroom/console/testing"
)

type fakeBackend struct {
	mu        sync.Mutex
	customers []map[string]any
	created   []map[string]any
}

func (f *fakeBackend) router() http.Handler {
	r := chi.NewRouter()
	list := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}
	}
	r.Get("/categories/list", list(`[{"categoryId":1,"category_name":"Chemicals"}]`))
	r.Get("/subcategories/list", list(`[]`))
	r.Get("/brands/list", list(`[{"brandId":2,"brandName":"Acme"}]`))
	r.Get("/suppliers/list", list(`[{"supplierId":3,"name":"Globex"}]`))
	r.Get("/shared/uom", list(`[{"uomId":"4","uomName":"Litre"}]`))
	r.Get("/brands", list(`{"data":[{"brandId":2,"brandName":"Acme"}],"total":1}`))
	r.Get("/customers", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"data": f.customers, "total": len(f.customers)})
	})
	r.Post("/customers", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(req.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.created = append(f.created, body)
		body["customer_id"] = len(f.customers) + 1
		f.customers = append(f.customers, body)
		w.WriteHeader(http.StatusCreated)
	})
	return r
}

func (f *fakeBackend) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

type consoleHarness struct {
	server  *httptest.Server
	client  *http.Client
	backend *fakeBackend
	redis   *miniredis.Miniredis
}

func testConfig(backendURL string) *Config {
	return &Config{
		AppEnv:            "test",
		AppRequestTimeout: 5 * time.Second,
		RateLimit:         1000,
		BackendURL:        backendURL,
		BackendTimeout:    5 * time.Second,
		SessionSecret:     "session-secret",
		SessionTTL:        time.Hour,
		CSRFSecret:        "csrf-secret",
		StorageDriver:     StorageMemory,
	}
}

func newConsoleHarness(t *testing.T) *consoleHarness {
	t.Helper()
	fake := &fakeBackend{}
	backendSrv := httptest.NewServer(fake.router())
	t.Cleanup(backendSrv.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	console, err := NewConsole(context.Background(), ConsoleParams{
		Config: testConfig(backendSrv.URL),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Redis:  rdb,
		Files:  attachments.NewMemoryStore(),
	})
	require.NoError(t, err)

	srv := httptest.NewServer(console.Handler)
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &consoleHarness{server: srv, client: &http.Client{Jar: jar}, backend: fake, redis: mr}
}

func (h *consoleHarness) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := h.client.Get(h.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (h *consoleHarness) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := h.client.PostForm(h.server.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

var csrfMeta = regexp.MustCompile(`name="csrf-token" content="([^"]+)"`)

func csrfToken(t *testing.T, body string) string {
	t.Helper()
	m := csrfMeta.FindStringSubmatch(body)
	require.Len(t, m, 2, "page carries no csrf token")
	return m[1]
}

func TestHealthz(t *testing.T) {
	h := newConsoleHarness(t)

	resp, body := h.get(t, "/healthz")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestHomeRendersSidebarAndSecurityHeaders(t *testing.T) {
	h := newConsoleHarness(t)

	resp, body := h.get(t, "/")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Purchase Orders")
	assert.Contains(t, body, "Stock Movements")
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	u, _ := url.Parse(h.server.URL)
	assert.NotEmpty(t, h.client.Jar.Cookies(u))
}

func TestPostWithoutTokenIsForbidden(t *testing.T) {
	h := newConsoleHarness(t)
	h.get(t, "/")

	resp, _ := h.post(t, "/customers", url.Values{"name": {"Ann"}})

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, h.backend.createdCount())
}

func TestCreateCustomerEndToEnd(t *testing.T) {
	h := newConsoleHarness(t)
	_, page := h.get(t, "/customers/new")
	token := csrfToken(t, page)

	resp, body := h.post(t, "/customers", url.Values{
		"csrf_token": {token},
		"name":       {"Ann Lee"},
		"phone":      {"+1 555 0100"},
		"email":      {"ann@example.com"},
		"address":    {"1 Main St"},
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/customers", resp.Request.URL.Path)
	assert.Contains(t, body, "Customer created successfully")
	assert.Contains(t, body, "ann@example.com")
	assert.Equal(t, 1, h.backend.createdCount())
}

func TestDedicatedFlowsShareMountPoints(t *testing.T) {
	h := newConsoleHarness(t)

	resp, body := h.get(t, "/products/new")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Chemicals")
	assert.Contains(t, body, "Litre")

	resp, body = h.get(t, "/purchase-orders/new")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Globex")
}

func TestMasterDataSharedThroughRedis(t *testing.T) {
	h := newConsoleHarness(t)

	h.get(t, "/products/new")

	keys := strings.Join(h.redis.Keys(), " ")
	assert.Contains(t, keys, "masterdata:categories")
	assert.Contains(t, keys, "stockroom:session:")
}

func TestRefreshMasterDataAction(t *testing.T) {
	h := newConsoleHarness(t)
	_, page := h.get(t, "/brands")

	resp, body := h.post(t, "/masterdata/refresh", url.Values{"csrf_token": {csrfToken(t, page)}, "next": {"/brands"}})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/brands", resp.Request.URL.Path)
	assert.Contains(t, body, "Reference data refreshed.")
}

func TestMetricsRecordBackendCalls(t *testing.T) {
	h := newConsoleHarness(t)
	h.get(t, "/customers")

	resp, body := h.get(t, "/metrics")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `stockroom_backend_requests_total{code="200",endpoint="/customers",method="GET"}`)
}

func TestJobsHealthWithoutInspector(t *testing.T) {
	h := newConsoleHarness(t)

	resp, body := h.get(t, "/jobs/health")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"queue":"default"`)
}

func TestStaticAssetsServed(t *testing.T) {
	h := newConsoleHarness(t)

	resp, body := h.get(t, "/static/css/app.css")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))
	assert.Contains(t, body, ".sidebar")
}

func TestNewAttachmentStoreRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig("http://localhost:8000")
	cfg.StorageDriver = "ftp"

	_, err := NewAttachmentStore(context.Background(), cfg)

	assert.Error(t, err)

	cfg.StorageDriver = StorageMemory
	store, err := NewAttachmentStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &attachments.MemoryStore{}, store)
}
