package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"trading-etl-go/internal/etl"
	"trading-etl-go/internal/report"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultPreviewRows = 5

// APIHandler holds dependencies for the API endpoints.
// The result is computed once at startup and only read afterwards.
type APIHandler struct {
	log      *zap.Logger
	result   *etl.Result
	loadedAt time.Time
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, result *etl.Result) *APIHandler {
	return &APIHandler{log: log, result: result, loadedAt: time.Now()}
}

// StatusResponse is the structure for the /api/status endpoint.
type StatusResponse struct {
	Trades    int       `json:"trades"`
	Symbols   int       `json:"symbols"`
	HighValue int       `json:"high_value"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// StatusHandler reports the size of the loaded artifacts.
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, StatusResponse{
		Trades:    len(h.result.Trades),
		Symbols:   len(h.result.Summary),
		HighValue: len(h.result.HighValue),
		LoadedAt:  h.loadedAt,
	})
}

// SymbolsHandler returns the distinct symbols for the symbol selector.
func (h *APIHandler) SymbolsHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, report.Symbols(h.result.Trades))
}

// TradesHandler returns the head of the trades of an optional symbol.
func (h *APIHandler) TradesHandler(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.intParam(w, r, "limit", defaultPreviewRows)
	if !ok {
		return
	}
	trades := report.FilterBySymbol(h.result.Trades, r.URL.Query().Get("symbol"))
	h.writeJSON(w, report.Preview(trades, limit))
}

// SummaryHandler returns total value per symbol, highest first.
func (h *APIHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.intParam(w, r, "limit", -1)
	if !ok {
		return
	}
	h.writeJSON(w, report.TopSymbols(h.result.Summary, limit))
}

// HighValueHandler returns every high-value trade.
func (h *APIHandler) HighValueHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.result.HighValue)
}

// PriceSeriesHandler returns the date-ordered prices of one symbol.
func (h *APIHandler) PriceSeriesHandler(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}
	h.writeJSON(w, report.PriceSeries(h.result.Trades, symbol))
}

// QuantityHistogramHandler returns the distribution of trade quantities.
func (h *APIHandler) QuantityHistogramHandler(w http.ResponseWriter, r *http.Request) {
	bins, ok := h.intParam(w, r, "bins", report.DefaultHistogramBins)
	if !ok {
		return
	}
	if bins < 1 || bins > report.MaxHistogramBins {
		http.Error(w, fmt.Sprintf("bins must be between 1 and %d", report.MaxHistogramBins), http.StatusBadRequest)
		return
	}
	h.writeJSON(w, report.QuantityHistogram(h.result.Trades, bins))
}

// TransactionsHandler returns the BUY/SELL split.
func (h *APIHandler) TransactionsHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, report.TransactionCounts(h.result.Trades))
}

func (h *APIHandler) intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}

// rateLimited rejects requests beyond the limiter's budget with 429.
func rateLimited(limiter *rate.Limiter, log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			log.Warn("Rate limit exceeded", zap.String("path", r.URL.Path))
			w.Header().Set("Retry-After", "1")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// newMux wires the API endpoints and the metrics endpoint.
func newMux(h *APIHandler, metricsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", h.StatusHandler)
	mux.HandleFunc("/api/symbols", h.SymbolsHandler)
	mux.HandleFunc("/api/trades", h.TradesHandler)
	mux.HandleFunc("/api/summary", h.SummaryHandler)
	mux.HandleFunc("/api/high-value", h.HighValueHandler)
	mux.HandleFunc("/api/price-series", h.PriceSeriesHandler)
	mux.HandleFunc("/api/quantity-histogram", h.QuantityHistogramHandler)
	mux.HandleFunc("/api/transactions", h.TransactionsHandler)
	mux.Handle("/metrics", metricsHandler)
	return mux
}
