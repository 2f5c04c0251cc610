// Package report shapes pipeline artifacts into the datasets the dashboard plots.
// Nothing here touches a store; it works on the in-memory result of a run.
package report

import (
	"sort"

	"trading-etl-go/internal/models"
)

// DefaultHistogramBins is the bin count used when a caller asks for none.
const DefaultHistogramBins = 10

// MaxHistogramBins caps the bin count; larger requests are clamped.
const MaxHistogramBins = 100

// PricePoint is one sample of a symbol's price series.
type PricePoint struct {
	TradeID   int64   `json:"trade_id"`
	TradeDate string  `json:"trade_date"`
	Price     float64 `json:"price"`
}

// HistogramBin counts values falling in [Lower, Upper). The last bin also
// includes its upper edge.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// TransactionCount is the number and share of trades of one transaction type.
type TransactionCount struct {
	TransactionType string  `json:"transaction_type"`
	Count           int     `json:"count"`
	Share           float64 `json:"share"`
}

// Preview returns at most n trades from the head of trades.
func Preview(trades []models.ValuedTrade, n int) []models.ValuedTrade {
	if n < 0 || n > len(trades) {
		n = len(trades)
	}
	return trades[:n]
}

// Symbols returns the distinct symbols in trades, sorted.
func Symbols(trades []models.ValuedTrade) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, t := range trades {
		if _, ok := seen[t.StockSymbol]; ok {
			continue
		}
		seen[t.StockSymbol] = struct{}{}
		out = append(out, t.StockSymbol)
	}
	sort.Strings(out)
	return out
}

// FilterBySymbol keeps the trades of symbol. An empty symbol keeps everything.
func FilterBySymbol(trades []models.ValuedTrade, symbol string) []models.ValuedTrade {
	if symbol == "" {
		return trades
	}
	out := []models.ValuedTrade{}
	for _, t := range trades {
		if t.StockSymbol == symbol {
			out = append(out, t)
		}
	}
	return out
}

// PriceSeries returns the prices of symbol ordered by trade date, then trade id.
func PriceSeries(trades []models.ValuedTrade, symbol string) []PricePoint {
	points := []PricePoint{}
	for _, t := range trades {
		if t.StockSymbol != symbol {
			continue
		}
		points = append(points, PricePoint{TradeID: t.TradeID, TradeDate: t.TradeDate, Price: t.Price})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].TradeDate != points[j].TradeDate {
			return points[i].TradeDate < points[j].TradeDate
		}
		return points[i].TradeID < points[j].TradeID
	})
	return points
}

// QuantityHistogram splits the quantity range of trades into bins of equal width.
// bins is clamped to MaxHistogramBins.
func QuantityHistogram(trades []models.ValuedTrade, bins int) []HistogramBin {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}
	if bins > MaxHistogramBins {
		bins = MaxHistogramBins
	}
	if len(trades) == 0 {
		return []HistogramBin{}
	}

	lo, hi := trades[0].Quantity, trades[0].Quantity
	for _, t := range trades[1:] {
		if t.Quantity < lo {
			lo = t.Quantity
		}
		if t.Quantity > hi {
			hi = t.Quantity
		}
	}

	lower, upper := float64(lo), float64(hi)
	if lower == upper {
		lower -= 0.5
		upper += 0.5
	}
	width := (upper - lower) / float64(bins)

	out := make([]HistogramBin, bins)
	for i := range out {
		out[i].Lower = lower + float64(i)*width
		out[i].Upper = lower + float64(i+1)*width
	}
	out[bins-1].Upper = upper

	for _, t := range trades {
		idx := int((float64(t.Quantity) - lower) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

// TransactionCounts tallies trades per transaction type, most frequent first.
func TransactionCounts(trades []models.ValuedTrade) []TransactionCount {
	counts := make(map[string]int)
	for _, t := range trades {
		counts[t.TransactionType]++
	}

	out := make([]TransactionCount, 0, len(counts))
	for typ, n := range counts {
		out = append(out, TransactionCount{
			TransactionType: typ,
			Count:           n,
			Share:           float64(n) / float64(len(trades)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].TransactionType < out[j].TransactionType
	})
	return out
}

// TopSymbols returns the first n rows of an already sorted summary.
func TopSymbols(summary []models.StockSummary, n int) []models.StockSummary {
	if n < 0 || n > len(summary) {
		n = len(summary)
	}
	return summary[:n]
}
