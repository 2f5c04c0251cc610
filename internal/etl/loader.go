package etl

import (
	"context"
	"fmt"

	"trading-etl-go/internal/models"
	"gorm.io/gorm"
)

const defaultBatchSize = 200

// LoadResult describes what a load stage did.
type LoadResult struct {
	Existing int64 // rows found before loading
	Inserted int
	Skipped  bool
}

// Load ensures the trades table exists and inserts trades into it, unless the
// table already holds rows. The emptiness check is the only idempotency guard:
// a populated table is left as is, whatever its contents.
func Load(ctx context.Context, db *gorm.DB, trades []models.Trade, batchSize int) (LoadResult, error) {
	var res LoadResult
	db = db.WithContext(ctx)

	if err := ensureTable(db, &models.Trade{}, models.TradeColumns); err != nil {
		return res, err
	}

	if err := db.Model(&models.Trade{}).Count(&res.Existing).Error; err != nil {
		return res, fmt.Errorf("%w: count trades: %w", ErrStoreUnavailable, err)
	}
	if res.Existing > 0 {
		res.Skipped = true
		return res, nil
	}
	if len(trades) == 0 {
		return res, nil
	}

	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(trades, batchSize).Error
	})
	if err != nil {
		return res, fmt.Errorf("%w: insert trades: %w", ErrStoreUnavailable, err)
	}
	res.Inserted = len(trades)
	return res, nil
}

// ensureTable creates the table for model when absent. An existing table must
// already carry every column in columns.
func ensureTable(db *gorm.DB, model interface{}, columns []string) error {
	m := db.Migrator()
	if !m.HasTable(model) {
		if err := m.CreateTable(model); err != nil {
			return fmt.Errorf("%w: create table: %w", ErrStoreUnavailable, err)
		}
		return nil
	}

	var missing []string
	for _, col := range columns {
		if !m.HasColumn(model, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: table is missing columns %v", ErrSchemaMismatch, missing)
	}
	return nil
}
