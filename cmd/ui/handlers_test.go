package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"trading-etl-go/internal/etl"
	"trading-etl-go/internal/metrics"
	"trading-etl-go/internal/models"
	"trading-etl-go/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func testResult() *etl.Result {
	res := etl.Transform([]models.Trade{
		{TradeID: 1, UserID: 1, StockSymbol: "AAPL", TransactionType: "BUY", Price: 600, Quantity: 100, TradeDate: "2025-02-01"},
		{TradeID: 2, UserID: 2, StockSymbol: "TSLA", TransactionType: "SELL", Price: 200, Quantity: 50, TradeDate: "2025-01-01"},
		{TradeID: 3, UserID: 3, StockSymbol: "AAPL", TransactionType: "BUY", Price: 1000, Quantity: 60, TradeDate: "2025-01-05"},
	}, etl.DefaultHighValueThreshold)
	return &res
}

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	h := NewAPIHandler(zap.NewNop(), testResult())
	server := httptest.NewServer(newMux(h, metrics.New().Handler()))
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestAPIHandlers(t *testing.T) {
	server := setupTestServer(t)

	t.Run("Status", func(t *testing.T) {
		var status StatusResponse
		resp := getJSON(t, server.URL+"/api/status", &status)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 3, status.Trades)
		assert.Equal(t, 2, status.Symbols)
		assert.Equal(t, 2, status.HighValue)
	})

	t.Run("Symbols", func(t *testing.T) {
		var symbols []string
		getJSON(t, server.URL+"/api/symbols", &symbols)
		assert.Equal(t, []string{"AAPL", "TSLA"}, symbols)
	})

	t.Run("Trades filtered by symbol", func(t *testing.T) {
		var trades []models.ValuedTrade
		getJSON(t, server.URL+"/api/trades?symbol=AAPL&limit=1", &trades)
		require.Len(t, trades, 1)
		assert.Equal(t, "AAPL", trades[0].StockSymbol)
		assert.Equal(t, 60000.0, trades[0].TotalValue)
	})

	t.Run("Summary", func(t *testing.T) {
		var summary []models.StockSummary
		getJSON(t, server.URL+"/api/summary", &summary)
		assert.Equal(t, []models.StockSummary{
			{StockSymbol: "AAPL", TotalValue: 120000},
			{StockSymbol: "TSLA", TotalValue: 10000},
		}, summary)
	})

	t.Run("High value", func(t *testing.T) {
		var high []models.HighValueTrade
		getJSON(t, server.URL+"/api/high-value", &high)
		require.Len(t, high, 2)
		for _, h := range high {
			assert.Greater(t, h.TotalValue, etl.DefaultHighValueThreshold)
		}
	})

	t.Run("Price series", func(t *testing.T) {
		var points []report.PricePoint
		getJSON(t, server.URL+"/api/price-series?symbol=AAPL", &points)
		require.Len(t, points, 2)
		assert.Equal(t, "2025-01-05", points[0].TradeDate)
	})

	t.Run("Price series without symbol", func(t *testing.T) {
		resp := getJSON(t, server.URL+"/api/price-series", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Histogram", func(t *testing.T) {
		var bins []report.HistogramBin
		getJSON(t, server.URL+"/api/quantity-histogram?bins=2", &bins)
		assert.Len(t, bins, 2)
	})

	t.Run("Invalid bins", func(t *testing.T) {
		for _, bins := range []string{"abc", "0", "-3", "101", "1000000000"} {
			resp := getJSON(t, server.URL+"/api/quantity-histogram?bins="+bins, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "bins=%s", bins)
		}
	})

	t.Run("Largest allowed bins", func(t *testing.T) {
		var bins []report.HistogramBin
		resp := getJSON(t, server.URL+"/api/quantity-histogram?bins=100", &bins)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, bins, report.MaxHistogramBins)
	})

	t.Run("Transactions", func(t *testing.T) {
		var counts []report.TransactionCount
		getJSON(t, server.URL+"/api/transactions", &counts)
		require.Len(t, counts, 2)
		assert.Equal(t, "BUY", counts[0].TransactionType)
		assert.Equal(t, 2, counts[0].Count)
	})

	t.Run("Metrics", func(t *testing.T) {
		resp := getJSON(t, server.URL+"/metrics", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestRateLimited(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(0.001), 1)
	handler := rateLimited(limiter, zap.NewNop(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
}
