package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/floresya/backend/internal/cache"
	"github.com/floresya/backend/internal/events"
	"github.com/floresya/backend/internal/handlers"
	"github.com/floresya/backend/internal/postgrest"
	"github.com/floresya/backend/internal/repository"
	"github.com/floresya/backend/internal/services"
)

func newProductRouter(t *testing.T, pages handlers.PageLimits) *chi.Mux {
	t.Helper()

	client := postgrest.NewMemoryClient()
	client.AddTable("products",
		"id", "name", "summary", "description", "sku", "price_usd", "stock",
		"featured", "carousel_order", "created_at", "updated_at",
		"active", "deleted_at", "deleted_by", "deletion_reason", "deletion_ip",
		"reactivated_at", "reactivated_by")
	client.AddTable("product_images",
		"id", "product_id", "url", "size", "file_hash", "is_primary",
		"image_index", "created_at", "updated_at", "active")

	logger := zerolog.New(io.Discard)
	svcs := services.New(services.Deps{
		Repos:      repository.NewRepositories(client, logger),
		Cache:      cache.New(nil, time.Minute, logger),
		Events:     events.NewPublisher(nil, logger),
		BCryptCost: 4,
	}, logger)

	h := handlers.NewProductHandler(svcs.Product, svcs.Image, pages, logger)

	r := chi.NewRouter()
	r.Route("/v1/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/reactivate", h.Reactivate)
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "10.0.0.9:52113"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestProductLifecycle(t *testing.T) {
	router := newProductRouter(t, handlers.PageLimits{Default: 20, Max: 100})

	// Create.
	rec := doJSON(t, router, http.MethodPost, "/v1/products", map[string]interface{}{
		"name":      "Red Roses",
		"sku":       "FY-ROSE-12",
		"price_usd": 29.99,
		"stock":     10,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeBody(t, rec)
	id := int64(created["id"].(float64))
	require.Equal(t, "Red Roses", created["name"])
	require.Equal(t, true, created["active"])

	// Read it back.
	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/v1/products/%d", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Patch the price.
	rec = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/v1/products/%d", id), map[string]interface{}{
		"price_usd": 24.99,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, 24.99, decodeBody(t, rec)["price_usd"])

	// Soft delete with a reason.
	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/v1/products/%d", id), map[string]interface{}{
		"deleted_by": 1,
		"reason":     "out of season",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Gone from the active view.
	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/v1/products/%d", id), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Deleting again reports not found, not success.
	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/v1/products/%d", id), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Reactivation restores it.
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/products/%d/reactivate", id), map[string]interface{}{
		"reactivated_by": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, true, decodeBody(t, rec)["active"])

	// Reactivating an active product is a conflict.
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/products/%d/reactivate", id), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestProductListPaginationEnvelope(t *testing.T) {
	router := newProductRouter(t, handlers.PageLimits{Default: 20, Max: 100})

	for i := 1; i <= 5; i++ {
		rec := doJSON(t, router, http.MethodPost, "/v1/products", map[string]interface{}{
			"name":      fmt.Sprintf("Bouquet %d", i),
			"sku":       fmt.Sprintf("FY-%d", i),
			"price_usd": float64(i * 10),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := doJSON(t, router, http.MethodGet, "/v1/products?page=2&limit=2&order_by=price_usd&ascending=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data := body["data"].([]interface{})
	require.Len(t, data, 2)
	require.Equal(t, "Bouquet 3", data[0].(map[string]interface{})["name"])

	pagination := body["pagination"].(map[string]interface{})
	require.Equal(t, float64(2), pagination["page"])
	require.Equal(t, float64(5), pagination["total"])
	require.Equal(t, float64(3), pagination["pages"])
}

func TestProductListHonorsConfiguredPageLimits(t *testing.T) {
	router := newProductRouter(t, handlers.PageLimits{Default: 2, Max: 3})

	for i := 1; i <= 5; i++ {
		rec := doJSON(t, router, http.MethodPost, "/v1/products", map[string]interface{}{
			"name":      fmt.Sprintf("Bouquet %d", i),
			"sku":       fmt.Sprintf("FY-%d", i),
			"price_usd": float64(i * 10),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	// No limit given falls back to the configured default.
	rec := doJSON(t, router, http.MethodGet, "/v1/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Len(t, body["data"].([]interface{}), 2)
	require.Equal(t, float64(2), body["pagination"].(map[string]interface{})["limit"])

	// A limit beyond the configured maximum is rejected in favor of the default.
	rec = doJSON(t, router, http.MethodGet, "/v1/products?limit=50", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	require.Len(t, body["data"].([]interface{}), 2)

	// A limit within bounds is used as-is.
	rec = doJSON(t, router, http.MethodGet, "/v1/products?limit=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	require.Len(t, body["data"].([]interface{}), 3)
}

func TestProductErrorEnvelope(t *testing.T) {
	router := newProductRouter(t, handlers.PageLimits{Default: 20, Max: 100})

	// Validation failure carries the typed error envelope.
	rec := doJSON(t, router, http.MethodPost, "/v1/products", map[string]interface{}{
		"name": "X",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, false, body["success"])
	require.NotEmpty(t, body["code"])

	// Malformed path id.
	rec = doJSON(t, router, http.MethodGet, "/v1/products/banana", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing resource.
	rec = doJSON(t, router, http.MethodGet, "/v1/products/999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
