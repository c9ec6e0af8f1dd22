package order

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_PlaceAndUpdate(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := chi.NewRouter()
	NewHandler(svc).Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders",
		strings.NewReader(`{"items":[{"id":"tee","size":"S","quantity":1}]}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotNil(t, created.Order)
	assert.Equal(t, 1, created.Order.ID)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/orders/1", strings.NewReader(`{"status":"delivered"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "delivered", orders[0]["status"])
}

func TestHandler_PlaceErrors(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := chi.NewRouter()
	NewHandler(svc).Routes(r)

	tests := []struct {
		name     string
		method   string
		target   string
		body     string
		wantCode int
		wantErr  string
	}{
		{name: "insufficient stock", method: http.MethodPost, target: "/api/orders", body: `{"items":[{"id":"cap","size":"U","quantity":5}]}`, wantCode: http.StatusBadRequest, wantErr: "insufficient_stock"},
		{name: "no items", method: http.MethodPost, target: "/api/orders", body: `{}`, wantCode: http.StatusBadRequest, wantErr: "invalid_request_body"},
		{name: "zero quantity", method: http.MethodPost, target: "/api/orders", body: `{"items":[{"id":"cap","size":"U","quantity":0}]}`, wantCode: http.StatusBadRequest, wantErr: "invalid_quantity"},
		{name: "broken body", method: http.MethodPost, target: "/api/orders", body: `{`, wantCode: http.StatusBadRequest, wantErr: "invalid_request_body"},
		{name: "update non numeric id", method: http.MethodPut, target: "/api/orders/abc", body: `{}`, wantCode: http.StatusNotFound, wantErr: "not_found"},
		{name: "update unknown id", method: http.MethodPut, target: "/api/orders/9", body: `{}`, wantCode: http.StatusNotFound, wantErr: "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantCode, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantErr, body["code"])
		})
	}
}
