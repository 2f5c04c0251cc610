package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"trading-etl-go/internal/config"
	"trading-etl-go/internal/etl"
	"trading-etl-go/internal/logger"
	"trading-etl-go/internal/metrics"
	"trading-etl-go/internal/tracing"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	tracer, err := tracing.New(cfg.Tracing.Enabled, os.Stdout)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer tracer.Shutdown(context.Background())

	// Run the pipeline once; the dashboard serves this result for its lifetime.
	m := metrics.New()
	result, err := etl.NewPipeline(log, &cfg, m, tracer).Run(context.Background())
	if err != nil {
		log.Fatal("ETL run failed", zap.Error(err))
	}

	apiHandler := NewAPIHandler(log, result)
	limiter := rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateLimitBurst)
	handler := rateLimited(limiter, log, newMux(apiHandler, m.Handler()))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting web server", zap.String("address", addr))

	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal("Web server failed", zap.Error(err))
	}
}
