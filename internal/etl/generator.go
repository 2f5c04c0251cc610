package etl

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"trading-etl-go/internal/models"
)

const (
	minUserID   = 1
	maxUserID   = 50
	minPrice    = 100.0
	maxPrice    = 1500.0
	minQuantity = 1
	maxQuantity = 100
	maxDay      = 28 // every month has a 28th
)

var transactionTypes = []string{models.TransactionBuy, models.TransactionSell}

// GeneratorOptions controls the shape of a synthetic dataset.
type GeneratorOptions struct {
	Count   int
	Year    int
	Symbols []string
}

// Validate reports whether the options can produce a dataset.
func (o GeneratorOptions) Validate() error {
	if o.Count <= 0 {
		return fmt.Errorf("generator count must be positive, got %d", o.Count)
	}
	if len(o.Symbols) == 0 {
		return errors.New("generator needs at least one symbol")
	}
	if o.Year < 1 || o.Year > 9999 {
		return fmt.Errorf("generator year out of range: %d", o.Year)
	}
	return nil
}

// NewRand returns a deterministic random source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate produces opts.Count trades with ids 1..Count, sampling every other
// field independently from rng.
func Generate(rng *rand.Rand, opts GeneratorOptions) []models.Trade {
	trades := make([]models.Trade, 0, opts.Count)
	for i := 1; i <= opts.Count; i++ {
		trades = append(trades, models.Trade{
			TradeID:         int64(i),
			UserID:          intBetween(rng, minUserID, maxUserID),
			StockSymbol:     opts.Symbols[rng.IntN(len(opts.Symbols))],
			TransactionType: transactionTypes[rng.IntN(len(transactionTypes))],
			Price:           roundCents(minPrice + rng.Float64()*(maxPrice-minPrice)),
			Quantity:        intBetween(rng, minQuantity, maxQuantity),
			TradeDate:       fmt.Sprintf("%04d-%02d-%02d", opts.Year, intBetween(rng, 1, 12), intBetween(rng, 1, maxDay)),
		})
	}
	return trades
}

// intBetween returns a uniform integer in [lo, hi].
func intBetween(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
