package main

import (
	"context"
	"fmt"
	"os"

	"trading-etl-go/internal/config"
	"trading-etl-go/internal/etl"
	"trading-etl-go/internal/logger"
	"trading-etl-go/internal/metrics"
	"trading-etl-go/internal/report"
	"trading-etl-go/internal/tracing"

	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	tracer, err := tracing.New(cfg.Tracing.Enabled, os.Stdout)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer tracer.Shutdown(context.Background())

	pipeline := etl.NewPipeline(log, &cfg, metrics.New(), tracer)
	result, err := pipeline.Run(context.Background())
	if err != nil {
		log.Fatal("ETL run failed", zap.Error(err))
	}

	logResult(log, result, cfg.Report.TopN)
}

// logResult prints the batch report: a preview, the top symbols, the number of
// high-value trades and the BUY/SELL split.
func logResult(log *zap.Logger, result *etl.Result, topN int) {
	for _, t := range report.Preview(result.Trades, 5) {
		log.Info("Trade",
			zap.Int64("trade_id", t.TradeID),
			zap.Int("user_id", t.UserID),
			zap.String("symbol", t.StockSymbol),
			zap.String("type", t.TransactionType),
			zap.Float64("price", t.Price),
			zap.Int("quantity", t.Quantity),
			zap.String("date", t.TradeDate),
		)
	}

	for i, s := range report.TopSymbols(result.Summary, topN) {
		log.Info("Top symbol", zap.Int("rank", i+1), zap.String("symbol", s.StockSymbol), zap.Float64("total_value", s.TotalValue))
	}

	log.Info("High-value trades", zap.Int("count", len(result.HighValue)))

	for _, c := range report.TransactionCounts(result.Trades) {
		log.Info("Transactions", zap.String("type", c.TransactionType), zap.Int("count", c.Count))
	}
}
