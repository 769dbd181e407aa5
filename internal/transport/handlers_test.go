package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"buyfly/internal/domain"
	"buyfly/internal/middleware"
	"buyfly/internal/repository"
	"buyfly/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	router   chi.Router
	dewey    repository.DeweyRepository
	shipping repository.ShippingRepository
}

func newTestEnv(t *testing.T, apiKey string, sales []domain.NearbySale, shipping []domain.ShippingItem) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	deweyRepo := repository.NewMemoryDeweyRepository()
	shippingRepo := repository.NewMemoryShippingRepository(shipping...)
	salesRepo := repository.NewMemorySalesRepository(sales...)

	router := chi.NewRouter()
	NewDeweyHandler(deweyRepo, logger).RegisterRoutes(router)
	NewNearbyHandler(service.NewNearbyService(salesRepo), logger).RegisterRoutes(router)
	NewShippingHandler(shippingRepo, logger).RegisterRoutes(router, middleware.APIKeyMiddleware(apiKey, logger))
	NewSourceHandler(service.NewScoringService(nil, logger), 10, logger).RegisterRoutes(router)

	return &testEnv{router: router, dewey: deweyRepo, shipping: shippingRepo}
}

func (e *testEnv) do(t *testing.T, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestWhosNearFiltersAndSorts(t *testing.T) {
	// Due-north fixtures around (40.0, -74.0); 1 degree lat ~ 69.1 mi.
	sales := []domain.NearbySale{
		{ID: "far", Type: domain.SaleEstate, Name: "Far Estate", Address: "x", Lat: 40.0 + 15/69.0934, Lng: -74.0},
		{ID: "near", Type: domain.SaleThrift, Name: "Near Thrift", Address: "x", Lat: 40.0 + 9.9/69.0934, Lng: -74.0},
		{ID: "closest", Type: domain.SaleGarage, Name: "Garage", Address: "x", Lat: 40.0 + 2/69.0934, Lng: -74.0},
	}
	env := newTestEnv(t, "", sales, nil)

	w := env.do(t, http.MethodGet, "/api/whos-near?lat=40.0&lng=-74.0&radius=10", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []domain.NearbySale
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "closest", got[0].ID)
	assert.Equal(t, "near", got[1].ID)
	assert.True(t, got[0].DistanceMiles <= got[1].DistanceMiles)
}

func TestWhosNearRequiresCoordinates(t *testing.T) {
	env := newTestEnv(t, "", nil, nil)

	w := env.do(t, http.MethodGet, "/api/whos-near?lng=-74.0", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/whos-near?lat=40.0", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/whos-near?lat=40.0&lng=-74.0&radius=-3", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeweySaveIsIdempotentByID(t *testing.T) {
	env := newTestEnv(t, "", nil, nil)

	first := domain.ProductAnalysis{ID: "item-1", IdentifiedProduct: "Lamp", Brand: "Acme", Quantity: 1}
	body, _ := json.Marshal(first)
	w := env.do(t, http.MethodPost, "/api/dewey/save", bytes.NewBuffer(body), "application/json")
	require.Equal(t, http.StatusOK, w.Code)

	second := domain.ProductAnalysis{ID: "item-1", IdentifiedProduct: "Floor Lamp", Quantity: 2}
	body, _ = json.Marshal(second)
	w = env.do(t, http.MethodPost, "/api/dewey/save", bytes.NewBuffer(body), "application/json")
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/dewey", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var items []domain.ProductAnalysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Floor Lamp", items[0].IdentifiedProduct)
	assert.Empty(t, items[0].Brand, "save replaces the whole payload")
}

func TestDeweySaveRejectsBadPayloads(t *testing.T) {
	env := newTestEnv(t, "", nil, nil)

	w := env.do(t, http.MethodPost, "/api/dewey/save", bytes.NewBufferString(`{"identified_product":"x"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing id")

	tooMany := domain.ProductAnalysis{ID: "p", Photos: make([]string, domain.MaxPhotos+1)}
	body, _ := json.Marshal(tooMany)
	w = env.do(t, http.MethodPost, "/api/dewey/save", bytes.NewBuffer(body), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code, "photo cap enforced")
}

func TestShippingAPIKey(t *testing.T) {
	env := newTestEnv(t, "secret", nil, []domain.ShippingItem{
		{ID: "s1", Platform: domain.PlatformEbay, ItemName: "Boots", SalePrice: 40, BuyerAddress: "a"},
	})

	w := env.do(t, http.MethodGet, "/api/shipping", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/shipping?apiKey=secret", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var items []domain.ShippingItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	assert.Len(t, items, 1)
}

func TestMarkShipped(t *testing.T) {
	env := newTestEnv(t, "", nil, []domain.ShippingItem{
		{ID: "s1", Platform: domain.PlatformPoshmark, ItemName: "Bag"},
	})

	w := env.do(t, http.MethodPost, "/api/shipping/mark-shipped",
		bytes.NewBufferString(`{"id":"s1","platform":"poshmark"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)

	var resp MarkShippedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "s1", resp.Removed)

	// Second attempt misses: the item already left the active set.
	w = env.do(t, http.MethodPost, "/api/shipping/mark-shipped",
		bytes.NewBufferString(`{"id":"s1","platform":"poshmark"}`), "application/json")
	require.Equal(t, http.StatusNotFound, w.Code)

	resp = MarkShippedResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Error)
}

func TestMarkShippedValidation(t *testing.T) {
	env := newTestEnv(t, "", nil, nil)

	w := env.do(t, http.MethodPost, "/api/shipping/mark-shipped",
		bytes.NewBufferString(`{"id":"s1","platform":"craigslist"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func multipartSubmission(t *testing.T, imageCount int, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i := 0; i < imageCount; i++ {
		part, err := mw.CreateFormFile(fmt.Sprintf("image%d", i), fmt.Sprintf("frame%d.jpg", i))
		require.NoError(t, err)
		_, err = part.Write([]byte(strings.Repeat("x", 64)))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestSourceSubmission(t *testing.T) {
	env := newTestEnv(t, "", nil, nil)

	body, contentType := multipartSubmission(t, 3, map[string]string{
		"barcode":       "0123456789012",
		"purchasePrice": "4.50",
		"color":         "red",
		"size":          "M",
		"sku":           "SKU-9",
		"quantity":      "2",
	})
	w := env.do(t, http.MethodPost, "/api/source", body, contentType)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var analysis domain.ProductAnalysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &analysis))
	assert.Equal(t, 0.95, analysis.Confidence)
	assert.Contains(t, analysis.IdentifiedProduct, "0123456789012")
	assert.Equal(t, 2, analysis.Quantity)
	assert.Equal(t, "red", analysis.Color)
	assert.GreaterOrEqual(t, analysis.EstimatedProfit, float64(0))
	assert.Equal(t, domain.Recommend(analysis.EstimatedProfit), analysis.Recommendation)
}

func TestSourceSubmissionImageBounds(t *testing.T) {
	env := newTestEnv(t, "", nil, nil)

	body, contentType := multipartSubmission(t, 0, map[string]string{"barcode": "x"})
	w := env.do(t, http.MethodPost, "/api/source", body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code, "no images")

	body, contentType = multipartSubmission(t, 11, nil)
	w = env.do(t, http.MethodPost, "/api/source", body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code, "more than ten images")
}

func TestVendooPrepare(t *testing.T) {
	env := newTestEnv(t, "", nil, nil)

	payload := PrepareRequest{Items: []domain.ProductAnalysis{
		{ID: "a", IdentifiedProduct: "Lamp"},
		{ID: "b", IdentifiedProduct: "Chair"},
	}}
	body, _ := json.Marshal(payload)

	w := env.do(t, http.MethodPost, "/api/vendoo/prepare", bytes.NewBuffer(body), "application/json")
	require.Equal(t, http.StatusOK, w.Code)

	var resp PrepareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, 2, resp.Count)

	w = env.do(t, http.MethodPost, "/api/vendoo/prepare", bytes.NewBufferString(`{"items":[]}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code, "empty batches are rejected")
}
