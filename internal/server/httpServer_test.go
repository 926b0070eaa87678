package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Asus/TradeAnalytics/internal/location"
	"github.com/Asus/TradeAnalytics/internal/product"
	"github.com/Asus/TradeAnalytics/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAnalytics отдаёт заготовленные ответы и запоминает границы дат
type mockAnalytics struct {
	err        error
	start, end time.Time
}

func (m *mockAnalytics) Locations(ctx context.Context) (location.Result, error) {
	if m.err != nil {
		return location.Result{}, m.err
	}
	return location.Result{
		Provinces: []location.ProvinceNode{{Province: "上海", TotalAmount: 400, TopProducts: []string{"Widget(3)"}}},
		Cities:    []location.CityNode{},
		Districts: []location.DistrictNode{},
	}, nil
}

func (m *mockAnalytics) Profiles(ctx context.Context) (service.UserReport, error) {
	return service.UserReport{}, m.err
}

func (m *mockAnalytics) Sales(ctx context.Context, start, end time.Time) ([]product.ProductStats, error) {
	m.start, m.end = start, end
	if m.err != nil {
		return nil, m.err
	}
	return []product.ProductStats{{ProductID: "p1", ProductName: "Widget", TotalQuantity: 4}}, nil
}

func (m *mockAnalytics) Cancellation(ctx context.Context) ([]product.CancellationStats, error) {
	return []product.CancellationStats{
		{ProductID: "p3", CancellationRate: 1, High: true},
		{ProductID: "p1", CancellationRate: 0.25},
	}, m.err
}

func (m *mockAnalytics) HighCancellation(ctx context.Context) ([]product.CancellationStats, error) {
	return []product.CancellationStats{{ProductID: "p3", CancellationRate: 1, High: true}}, m.err
}

func (m *mockAnalytics) Association(ctx context.Context) ([]product.Itemset, error) {
	return nil, m.err
}

func (m *mockAnalytics) Categories(ctx context.Context) (product.CategoryReport, error) {
	return product.CategoryReport{}, m.err
}

func (m *mockAnalytics) Health(ctx context.Context) ([]product.HealthRecord, error) {
	return nil, m.err
}

func (m *mockAnalytics) Recommendations(ctx context.Context) ([]string, error) {
	return []string{"Top sellers: Widget: increase stock and promotion"}, m.err
}

func (m *mockAnalytics) Reload(ctx context.Context) (*service.Snapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &service.Snapshot{ID: uuid.New(), LoadedAt: time.Now()}, nil
}

type response struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func do(t *testing.T, srv *Server, method, target string) (int, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	var body response
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
	return rec.Code, body
}

func TestRoutes(t *testing.T) {
	srv := NewServer(":0", &mockAnalytics{}, time.UTC)

	testCases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/trade/analyze-location"},
		{http.MethodGet, "/api/trade/analyze-user"},
		{http.MethodPost, "/api/trade/reload"},
		{http.MethodGet, "/api/product/analyze-sales"},
		{http.MethodGet, "/api/product/analyze-cancellation"},
		{http.MethodGet, "/api/product/analyze-association"},
		{http.MethodGet, "/api/product/analyze-category"},
		{http.MethodGet, "/api/product/analyze-health"},
		{http.MethodGet, "/api/product/recommendations"},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			code, body := do(t, srv, tc.method, tc.path)
			assert.Equal(t, http.StatusOK, code)
			assert.Equal(t, "success", body.Status)
		})
	}
}

func TestLocationTables(t *testing.T) {
	srv := NewServer(":0", &mockAnalytics{}, time.UTC)
	_, body := do(t, srv, http.MethodGet, "/api/trade/analyze-location")

	var data map[string]struct {
		Columns []string         `json:"columns"`
		Data    []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))

	provinces := data["province_summary"]
	assert.Equal(t, []string{"province", "province_total", "top_products"}, provinces.Columns)
	require.Len(t, provinces.Data, 1)
	assert.Equal(t, "上海", provinces.Data[0]["province"])
	// пустые уровни приходят пустыми таблицами, а не null
	assert.NotNil(t, data["city_summary"].Data)
	assert.Len(t, data["district_summary"].Data, 0)
}

func TestSalesDateRange(t *testing.T) {
	mock := &mockAnalytics{}
	srv := NewServer(":0", mock, time.UTC)

	code, _ := do(t, srv, http.MethodGet, "/api/product/analyze-sales?start=2025-06-01&end=2025-06-30")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), mock.start)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), mock.end)

	testCases := []struct {
		name  string
		query string
	}{
		{"bad start", "?start=2025-13-45"},
		{"end before start", "?start=2025-06-30&end=2025-06-01"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := do(t, srv, http.MethodGet, "/api/product/analyze-sales"+tc.query)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, "error", body.Status)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestHighCancellationFilter(t *testing.T) {
	srv := NewServer(":0", &mockAnalytics{}, time.UTC)
	_, body := do(t, srv, http.MethodGet, "/api/product/analyze-cancellation?high=true")

	var table struct {
		Data []product.CancellationStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &table))
	require.Len(t, table.Data, 1)
	assert.Equal(t, "p3", table.Data[0].ProductID)
}

func TestCancellationModes(t *testing.T) {
	srv := NewServer(":0", &mockAnalytics{}, time.UTC)

	testCases := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"?high=false", 2},
		{"?high=true", 1},
	}
	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			_, body := do(t, srv, http.MethodGet, "/api/product/analyze-cancellation"+tc.query)
			var table struct {
				Data []product.CancellationStats `json:"data"`
			}
			require.NoError(t, json.Unmarshal(body.Data, &table))
			assert.Len(t, table.Data, tc.want)
		})
	}
}

func TestWriteJSONUnencodableBody(t *testing.T) {
	rec := httptest.NewRecorder()
	writeData(rec, map[string]float64{"merchandise_total": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	assert.Equal(t, "error", body.Status)
	assert.Contains(t, body.Message, "unsupported value")
}

func TestErrors(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		code int
	}{
		{"load failure", errors.New("connection refused"), http.StatusInternalServerError},
		{"no source", fmt.Errorf("wrapped: %w", service.ErrNoSource), http.StatusServiceUnavailable},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := NewServer(":0", &mockAnalytics{err: tc.err}, time.UTC)
			code, body := do(t, srv, http.MethodGet, "/api/trade/analyze-location")
			assert.Equal(t, tc.code, code)
			assert.Equal(t, "error", body.Status)
			assert.Contains(t, body.Message, tc.err.Error())
		})
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	srv := NewServer(":0", &mockAnalytics{}, time.UTC)

	code, _ := do(t, srv, http.MethodGet, "/order/123")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, srv, http.MethodGet, "/api/trade/reload")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}

func TestNewTableColumns(t *testing.T) {
	table := NewTable([]product.Itemset(nil))
	assert.Equal(t, []string{"items", "itemsets", "count", "support"}, table.Columns)
	assert.Equal(t, []product.Itemset{}, table.Data)
}
