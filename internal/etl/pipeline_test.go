package etl

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"trading-etl-go/internal/config"
	"trading-etl-go/internal/database"
	"trading-etl-go/internal/metrics"
	"trading-etl-go/internal/models"
	"trading-etl-go/internal/tracing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(dir string, seed uint64) *config.Config {
	return &config.Config{
		Generator: config.Generator{Count: 300, Seed: seed, Year: 2025, Symbols: config.DefaultSymbols},
		Transform: config.Transform{HighValueThreshold: DefaultHighValueThreshold},
		Database: config.Database{
			PrimaryDSN:   filepath.Join(dir, "trading.db"),
			SecondaryDSN: filepath.Join(dir, "trading_summary.db"),
			BatchSize:    50,
		},
	}
}

func secondaryContents(t *testing.T, dsn string) ([]models.StockSummary, []models.HighValueTrade) {
	t.Helper()
	db, err := database.Open(dsn)
	require.NoError(t, err)
	defer database.Close(db)
	return readSecondary(t, db)
}

func TestPipelineRun(t *testing.T) {
	cfg := testConfig(t.TempDir(), 7)
	m := metrics.New()
	p := NewPipeline(zap.NewNop(), cfg, m, nil)

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, res.Trades, 300)
	assert.Len(t, res.Summary, len(config.DefaultSymbols))
	for _, h := range res.HighValue {
		assert.Greater(t, h.TotalValue, DefaultHighValueThreshold)
	}

	summary, high := secondaryContents(t, cfg.Database.SecondaryDSN)
	assert.Equal(t, res.Summary, summary)
	assert.ElementsMatch(t, res.HighValue, high)

	assert.Equal(t, 300.0, testutil.ToFloat64(m.TradesGenerated))
	assert.Equal(t, 300.0, testutil.ToFloat64(m.TradesLoaded))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LoadsSkipped))
	assert.Equal(t, float64(len(res.HighValue)), testutil.ToFloat64(m.HighValueTrades))
}

func TestPipelineReloadIsIdempotent(t *testing.T) {
	cfg := testConfig(t.TempDir(), 7)
	m := metrics.New()

	first, err := NewPipeline(zap.NewNop(), cfg, m, nil).Run(context.Background())
	require.NoError(t, err)

	// A different seed would produce different rows, but the store is already populated.
	cfg2 := *cfg
	cfg2.Generator.Seed = 99
	second, err := NewPipeline(zap.NewNop(), &cfg2, m, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, second.Trades, 300)
	assert.ElementsMatch(t, first.Trades, second.Trades)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadsSkipped))

	db, err := database.Open(cfg.Database.PrimaryDSN)
	require.NoError(t, err)
	defer database.Close(db)
	var count int64
	require.NoError(t, db.Model(&models.Trade{}).Count(&count).Error)
	assert.Equal(t, int64(300), count)
}

func TestPipelineOverwritesSecondary(t *testing.T) {
	dir := t.TempDir()
	secondary := filepath.Join(dir, "trading_summary.db")

	cfgA := testConfig(dir, 1)
	cfgA.Database.PrimaryDSN = filepath.Join(dir, "a.db")
	cfgA.Database.SecondaryDSN = secondary
	cfgA.Generator.Symbols = []string{"AAPL", "TSLA"}

	cfgB := testConfig(dir, 2)
	cfgB.Database.PrimaryDSN = filepath.Join(dir, "b.db")
	cfgB.Database.SecondaryDSN = secondary
	cfgB.Generator.Symbols = []string{"AMZN"}

	_, err := NewPipeline(zap.NewNop(), cfgA, nil, nil).Run(context.Background())
	require.NoError(t, err)
	resB, err := NewPipeline(zap.NewNop(), cfgB, nil, nil).Run(context.Background())
	require.NoError(t, err)

	summary, high := secondaryContents(t, secondary)
	assert.Equal(t, resB.Summary, summary)
	require.Len(t, summary, 1)
	assert.Equal(t, "AMZN", summary[0].StockSymbol)
	assert.ElementsMatch(t, resB.HighValue, high)
	for _, h := range high {
		assert.Equal(t, "AMZN", h.StockSymbol)
	}
}

func TestEmptyDatasetFlowsThrough(t *testing.T) {
	ctx := context.Background()
	primary := openTestDB(t)
	secondary := openTestDB(t)

	_, err := Load(ctx, primary, nil, 0)
	require.NoError(t, err)
	trades, err := Extract(ctx, primary)
	require.NoError(t, err)
	require.Empty(t, trades)

	res := Transform(trades, DefaultHighValueThreshold)
	require.NoError(t, Persist(ctx, secondary, res.Summary, res.HighValue, 0))

	summary, high := readSecondary(t, secondary)
	assert.Empty(t, summary)
	assert.Empty(t, high)
}

func TestPipelineFailures(t *testing.T) {
	t.Run("Primary store unavailable", func(t *testing.T) {
		dir := t.TempDir()
		cfg := testConfig(dir, 1)
		cfg.Database.PrimaryDSN = filepath.Join(dir, "missing", "trading.db")
		m := metrics.New()

		res, err := NewPipeline(zap.NewNop(), cfg, m, nil).Run(context.Background())
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Contains(t, err.Error(), StageLoad)
		assert.Nil(t, res)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.StageFailures.WithLabelValues(StageLoad)))
	})

	t.Run("Secondary store unavailable", func(t *testing.T) {
		dir := t.TempDir()
		cfg := testConfig(dir, 1)
		cfg.Database.SecondaryDSN = filepath.Join(dir, "missing", "summary.db")

		_, err := NewPipeline(zap.NewNop(), cfg, nil, nil).Run(context.Background())
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Contains(t, err.Error(), StagePersist)
	})

	t.Run("Schema mismatch", func(t *testing.T) {
		cfg := testConfig(t.TempDir(), 1)
		db, err := database.Open(cfg.Database.PrimaryDSN)
		require.NoError(t, err)
		require.NoError(t, db.Exec("CREATE TABLE trades (trade_id INTEGER PRIMARY KEY)").Error)
		require.NoError(t, database.Close(db))

		_, err = NewPipeline(zap.NewNop(), cfg, nil, nil).Run(context.Background())
		assert.ErrorIs(t, err, ErrSchemaMismatch)
	})

	t.Run("Invalid generator options", func(t *testing.T) {
		cfg := testConfig(t.TempDir(), 1)
		cfg.Generator.Symbols = nil

		_, err := NewPipeline(zap.NewNop(), cfg, nil, nil).Run(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), StageGenerate)
	})
}

func TestPipelineTracing(t *testing.T) {
	var buf bytes.Buffer
	tr, err := tracing.New(true, &buf)
	require.NoError(t, err)

	_, err = NewPipeline(zap.NewNop(), testConfig(t.TempDir(), 5), nil, tr).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, tr.Shutdown(context.Background()))

	for _, stage := range []string{StageGenerate, StageLoad, StageExtract, StageTransform, StagePersist} {
		assert.Contains(t, buf.String(), "etl."+stage)
	}
}

func TestPipelineSeed(t *testing.T) {
	p := NewPipeline(zap.NewNop(), testConfig(t.TempDir(), 0), nil, nil)
	assert.NotZero(t, p.Seed())

	p = NewPipeline(zap.NewNop(), testConfig(t.TempDir(), 12), nil, nil)
	assert.Equal(t, uint64(12), p.Seed())
}

func TestPipelineStage(t *testing.T) {
	m := metrics.New()
	p := NewPipeline(zap.NewNop(), testConfig(t.TempDir(), 1), m, nil)

	t.Run("Error is wrapped with the stage name", func(t *testing.T) {
		boom := errors.New("boom")
		err := p.stage(context.Background(), StageTransform, func(ctx context.Context) error { return boom })

		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), StageTransform)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.StageFailures.WithLabelValues(StageTransform)))
	})

	t.Run("Success returns nil", func(t *testing.T) {
		err := p.stage(context.Background(), StageExtract, func(ctx context.Context) error { return nil })
		assert.NoError(t, err)
		assert.Equal(t, 0.0, testutil.ToFloat64(m.StageFailures.WithLabelValues(StageExtract)))
	})
}
