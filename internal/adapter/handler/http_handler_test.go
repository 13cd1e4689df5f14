package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/inventory-service/internal/adapter/storage"
	"github.com/rl1809/inventory-service/internal/core/domain"
	"github.com/rl1809/inventory-service/internal/core/service"
	"github.com/rl1809/inventory-service/pkg/logger"
	"github.com/rl1809/inventory-service/pkg/metrics"
)

const testAPIKey = "inventory-secret"

type stubCatalog struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	err      error
}

func (c *stubCatalog) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	p, ok := c.products[productID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{products: map[int64]domain.Product{
		1: {ID: 1, Name: "Laptop", Price: decimal.RequireFromString("1500.00"), Description: "15 inch laptop"},
		2: {ID: 2, Name: "Mouse", Price: decimal.RequireFromString("19.99"), Description: "Wireless"},
	}}
}

type testEnv struct {
	catalog *stubCatalog
	store   *storage.MemoryStore
	router  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	reg := prometheus.NewRegistry()
	catalog := newStubCatalog()
	store := storage.NewMemoryStore()
	svc := service.NewInventoryService(catalog, store, service.WithMetrics(metrics.NewInventoryMetrics(reg)))

	router := NewRouter(NewHTTPHandler(svc, logger.Nop()), RouterConfig{
		APIKey:  testAPIKey,
		Logger:  logger.Nop(),
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	return &testEnv{catalog: catalog, store: store, router: router}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, testAPIKey)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seed(t *testing.T, productID int64, quantity int) {
	t.Helper()
	_, err := e.store.Save(context.Background(), domain.Inventory{ProductID: productID, Quantity: quantity})
	require.NoError(t, err)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func attributes(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "missing data: %v", body)
	attrs, ok := data["attributes"].(map[string]any)
	require.True(t, ok, "missing attributes: %v", data)
	return attrs
}

func firstError(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	errs, ok := body["errors"].([]any)
	require.True(t, ok, "missing errors: %v", body)
	require.Len(t, errs, 1)
	return errs[0].(map[string]any)
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestInventoryRoutesRequireAPIKey(t *testing.T) {
	env := newTestEnv(t)

	for _, key := range []string{"", "wrong"} {
		req := httptest.NewRequest(http.MethodGet, "/api/inventory/1", nil)
		if key != "" {
			req.Header.Set(apiKeyHeader, key)
		}
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"errors":[{"status":"401","title":"Not authorized","detail":"API Key invalid or null"}]}`, rec.Body.String())
	}
}

func TestGetInventory_CreatesEmptyRecord(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/inventory/1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "inventory", data["type"])
	assert.NotNil(t, data["id"])

	attrs := attributes(t, body)
	assert.EqualValues(t, 0, attrs["quantity"])
	product := attrs["product"].(map[string]any)
	assert.Equal(t, "Laptop", product["name"])
	assert.EqualValues(t, 1500, product["price"])
	assert.Equal(t, "15 inch laptop", product["description"])
}

func TestGetInventory_InvalidPath(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/inventory/abc", "/api/inventory/0", "/api/inventory/-3"} {
		rec := env.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestGetInventory_UnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/inventory/99", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	apiErr := firstError(t, decodeBody(t, rec))
	assert.Equal(t, "404", apiErr["status"])
	assert.Equal(t, "Product not found", apiErr["title"])
	assert.Equal(t, "Product with ID 99 not found", apiErr["detail"])
}

func TestUpdateInventory(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/inventory", `{"productId":2,"quantity":15}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	attrs := attributes(t, decodeBody(t, rec))
	assert.EqualValues(t, 2, attrs["productId"])
	assert.EqualValues(t, 15, attrs["quantity"])
	assert.NotZero(t, attrs["id"])
	assert.EqualValues(t, 19.99, attrs["product"].(map[string]any)["price"])

	rec = env.do(t, http.MethodGet, "/api/inventory/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 15, attributes(t, decodeBody(t, rec))["quantity"])
}

func TestUpdateInventory_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		title  string
	}{
		{name: "negative quantity", body: `{"productId":1,"quantity":-1}`, status: http.StatusBadRequest, title: "Invalid request"},
		{name: "quantity above 32-bit range", body: `{"productId":1,"quantity":3000000000}`, status: http.StatusBadRequest, title: "Invalid request"},
		{name: "missing quantity", body: `{"productId":1}`, status: http.StatusBadRequest, title: "Invalid request"},
		{name: "missing product", body: `{"quantity":3}`, status: http.StatusBadRequest, title: "Invalid request"},
		{name: "malformed", body: `{"productId":`, status: http.StatusBadRequest, title: "Invalid request"},
		{name: "unknown product", body: `{"productId":99,"quantity":3}`, status: http.StatusNotFound, title: "Product not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(t, http.MethodPut, "/api/inventory", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.title, firstError(t, decodeBody(t, rec))["title"])
		})
	}
}

func TestUpdateInventory_QuantityUpperBound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/inventory", `{"productId":1,"quantity":2147483647}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 2147483647, attributes(t, decodeBody(t, rec))["quantity"])

	rec = env.do(t, http.MethodPut, "/api/inventory", `{"productId":1,"quantity":2147483648}`)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "quantity must be at most 2147483647", firstError(t, decodeBody(t, rec))["detail"])

	inv, err := env.store.FindByProductID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2147483647, inv.Quantity)
	assert.EqualValues(t, 2147483647, toInventoryResponse(inv).GetQuantity())
}

func TestPurchase(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, 1, 10)

	rec := env.do(t, http.MethodPost, "/api/inventory/purchase", `{"productId":1,"quantity":3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "purchase", body["data"].(map[string]any)["type"])
	attrs := attributes(t, body)
	assert.EqualValues(t, 1, attrs["productId"])
	assert.Equal(t, "Laptop", attrs["productName"])
	assert.EqualValues(t, 3, attrs["quantityPurchased"])
	assert.EqualValues(t, 7, attrs["remainingStock"])
}

func TestPurchase_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		title  string
		detail string
	}{
		{name: "insufficient stock", body: `{"productId":1,"quantity":20}`, status: http.StatusBadRequest,
			title: "Insufficient stock", detail: "Insufficient inventory for product ID: 1"},
		{name: "zero quantity", body: `{"productId":1,"quantity":0}`, status: http.StatusBadRequest,
			title: "Invalid request", detail: "Quantity must be greater than zero"},
		{name: "unknown product", body: `{"productId":99,"quantity":1}`, status: http.StatusNotFound,
			title: "Product not found", detail: "Product with ID 99 not found"},
		{name: "no inventory", body: `{"productId":2,"quantity":1}`, status: http.StatusNotFound,
			title: "Inventory not found", detail: "No inventory found for product ID: 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.seed(t, 1, 10)

			rec := env.do(t, http.MethodPost, "/api/inventory/purchase", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			apiErr := firstError(t, decodeBody(t, rec))
			assert.Equal(t, tt.title, apiErr["title"])
			assert.Equal(t, tt.detail, apiErr["detail"])

			inv, err := env.store.FindByProductID(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, 10, inv.Quantity)
		})
	}
}

func TestPurchase_UpstreamUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, 1, 10)
	env.catalog.err = domain.WrapFault(domain.FaultUpstreamUnavailable, errors.New("dial tcp"), "catalog request failed")

	rec := env.do(t, http.MethodPost, "/api/inventory/purchase", `{"productId":1,"quantity":1}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	apiErr := firstError(t, decodeBody(t, rec))
	assert.Equal(t, "Product service unavailable", apiErr["title"])
	assert.Equal(t, "catalog request failed", apiErr["detail"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, 1, 10)
	env.do(t, http.MethodPost, "/api/inventory/purchase", `{"productId":1,"quantity":2}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "inventory_purchases_total")
}

func TestStatusForFault(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusForFault(domain.FaultInvalidRequest))
	assert.Equal(t, http.StatusNotFound, statusForFault(domain.FaultNotFound))
	assert.Equal(t, http.StatusBadRequest, statusForFault(domain.FaultInsufficientStock))
	assert.Equal(t, http.StatusConflict, statusForFault(domain.FaultConflict))
	assert.Equal(t, http.StatusServiceUnavailable, statusForFault(domain.FaultUpstreamUnavailable))
	assert.Equal(t, http.StatusInternalServerError, statusForFault(""))
}

func TestWriteError_HidesUnexpectedErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), logger.Nop(), rec, errors.New("db password leaked"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}
