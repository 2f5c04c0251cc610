package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"trading-etl-go/internal/config"
	"trading-etl-go/internal/logger"
	"trading-etl-go/internal/reportclient"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := reportclient.NewClient(&cfg.Report, log)
	if err := printReport(ctx, os.Stdout, client, cfg.Report.TopN); err != nil {
		log.Fatal("Failed to build report", zap.Error(err))
	}
}
