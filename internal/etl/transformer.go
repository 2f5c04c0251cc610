package etl

import (
	"sort"

	"trading-etl-go/internal/models"
)

// DefaultHighValueThreshold is the total value a trade must exceed to count as high value.
const DefaultHighValueThreshold = 50000.0

// Result holds the artifacts of a transformation.
type Result struct {
	Trades    []models.ValuedTrade
	Summary   []models.StockSummary
	HighValue []models.HighValueTrade
}

// TotalValue is price times quantity.
func TotalValue(t models.Trade) float64 {
	return t.Price * float64(t.Quantity)
}

// Transform derives total_value for each trade, sums it per symbol and
// selects trades whose value is strictly above threshold. It does no I/O.
//
// Summary rows are ordered by descending total value; equal totals fall back
// to ascending symbol so the order is reproducible.
func Transform(trades []models.Trade, threshold float64) Result {
	res := Result{
		Trades:    make([]models.ValuedTrade, 0, len(trades)),
		Summary:   []models.StockSummary{},
		HighValue: []models.HighValueTrade{},
	}

	totals := make(map[string]float64)
	for _, t := range trades {
		v := TotalValue(t)
		res.Trades = append(res.Trades, models.ValuedTrade{Trade: t, TotalValue: v})
		totals[t.StockSymbol] += v
		if v > threshold {
			res.HighValue = append(res.HighValue, models.HighValueTrade{Trade: t, TotalValue: v})
		}
	}

	for symbol, total := range totals {
		res.Summary = append(res.Summary, models.StockSummary{StockSymbol: symbol, TotalValue: total})
	}
	sort.Slice(res.Summary, func(i, j int) bool {
		a, b := res.Summary[i], res.Summary[j]
		if a.TotalValue != b.TotalValue {
			return a.TotalValue > b.TotalValue
		}
		return a.StockSymbol < b.StockSymbol
	})

	return res
}
