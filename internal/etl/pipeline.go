package etl

import (
	"context"
	"fmt"
	"time"

	"trading-etl-go/internal/config"
	"trading-etl-go/internal/database"
	"trading-etl-go/internal/metrics"
	"trading-etl-go/internal/models"
	"trading-etl-go/internal/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stage names used in logs, metrics and spans.
const (
	StageGenerate  = "generate"
	StageLoad      = "load"
	StageExtract   = "extract"
	StageTransform = "transform"
	StagePersist   = "persist"
)

// Pipeline runs generate, load, extract, transform and persist once per call.
// Runs must not overlap: the load check and the table replacements are not
// safe against a concurrent run on the same stores.
type Pipeline struct {
	logger  *zap.Logger
	cfg     *config.Config
	metrics *metrics.Metrics
	tracer  *tracing.Tracer
	seed    uint64
}

// NewPipeline creates a pipeline. A nil tracer disables tracing and nil metrics
// get a private registry.
func NewPipeline(logger *zap.Logger, cfg *config.Config, m *metrics.Metrics, tracer *tracing.Tracer) *Pipeline {
	if m == nil {
		m = metrics.New()
	}
	if tracer == nil {
		tracer = tracing.Noop()
	}
	seed := cfg.Generator.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Pipeline{logger: logger, cfg: cfg, metrics: m, tracer: tracer, seed: seed}
}

// Seed returns the generator seed used by this pipeline.
func (p *Pipeline) Seed() uint64 {
	return p.seed
}

// Run executes the stages in order. Each store is opened for the stage that
// needs it and closed before the next one starts. The first error ends the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	ctx, span := p.tracer.Start(ctx, "etl.run")
	defer span.End()

	start := time.Now()
	p.logger.Info("Starting ETL run",
		zap.String("primary", p.cfg.Database.PrimaryDSN),
		zap.String("secondary", p.cfg.Database.SecondaryDSN),
		zap.Uint64("seed", p.seed),
	)

	var trades []models.Trade
	err := p.stage(ctx, StageGenerate, func(ctx context.Context) error {
		opts := GeneratorOptions{
			Count:   p.cfg.Generator.Count,
			Year:    p.cfg.Generator.Year,
			Symbols: p.cfg.Generator.Symbols,
		}
		if err := opts.Validate(); err != nil {
			return err
		}
		trades = Generate(NewRand(p.seed), opts)
		p.metrics.TradesGenerated.Add(float64(len(trades)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, StageLoad, func(ctx context.Context) error {
		return p.withStore(p.cfg.Database.PrimaryDSN, func(db *gorm.DB) error {
			res, err := Load(ctx, db, trades, p.cfg.Database.BatchSize)
			if err != nil {
				return err
			}
			if res.Skipped {
				p.metrics.LoadsSkipped.Inc()
				p.logger.Info("Primary store already populated, skipping insert", zap.Int64("existing", res.Existing))
				return nil
			}
			p.metrics.TradesLoaded.Add(float64(res.Inserted))
			p.logger.Info("Trades loaded", zap.Int("inserted", res.Inserted))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	var extracted []models.Trade
	err = p.stage(ctx, StageExtract, func(ctx context.Context) error {
		return p.withStore(p.cfg.Database.PrimaryDSN, func(db *gorm.DB) error {
			var err error
			extracted, err = Extract(ctx, db)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	p.metrics.TradesExtracted.Set(float64(len(extracted)))
	if len(extracted) == 0 {
		p.logger.Warn("No trades extracted, results will be empty")
	}

	var result Result
	err = p.stage(ctx, StageTransform, func(ctx context.Context) error {
		result = Transform(extracted, p.threshold())
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.metrics.HighValueTrades.Set(float64(len(result.HighValue)))
	p.metrics.SummaryRows.Set(float64(len(result.Summary)))

	err = p.stage(ctx, StagePersist, func(ctx context.Context) error {
		return p.withStore(p.cfg.Database.SecondaryDSN, func(db *gorm.DB) error {
			return Persist(ctx, db, result.Summary, result.HighValue, p.cfg.Database.BatchSize)
		})
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("ETL run complete",
		zap.Int("trades", len(result.Trades)),
		zap.Int("symbols", len(result.Summary)),
		zap.Int("high_value", len(result.HighValue)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &result, nil
}

func (p *Pipeline) threshold() float64 {
	if p.cfg.Transform.HighValueThreshold > 0 {
		return p.cfg.Transform.HighValueThreshold
	}
	return DefaultHighValueThreshold
}

// stage wraps fn with a span, a duration metric and a failure log.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, "etl."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	p.metrics.ObserveStage(name, start, err)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
		p.logger.Error("Stage failed", zap.String("stage", name), zap.Error(err))
		return fmt.Errorf("%s stage: %w", name, err)
	}
	p.logger.Debug("Stage finished", zap.String("stage", name), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// withStore opens dsn for the duration of fn.
func (p *Pipeline) withStore(dsn string, fn func(db *gorm.DB) error) error {
	db, err := database.Open(dsn)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	defer func() {
		if cerr := database.Close(db); cerr != nil {
			p.logger.Warn("Failed to close store", zap.String("dsn", dsn), zap.Error(cerr))
		}
	}()
	return fn(db)
}
