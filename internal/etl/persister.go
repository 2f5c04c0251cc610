package etl

import (
	"context"
	"fmt"

	"trading-etl-go/internal/models"
	"gorm.io/gorm"
)

// Persist replaces the stock_total_value and high_value_trades tables with
// summary and highValue. Each table is swapped inside its own transaction, so
// a failed write leaves the previous contents of that table in place.
func Persist(ctx context.Context, db *gorm.DB, summary []models.StockSummary, highValue []models.HighValueTrade, batchSize int) error {
	db = db.WithContext(ctx)
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	if err := replaceTable(db, &models.StockSummary{}, summary, batchSize); err != nil {
		return fmt.Errorf("replace %s: %w", models.StockSummary{}.TableName(), err)
	}
	if err := replaceTable(db, &models.HighValueTrade{}, highValue, batchSize); err != nil {
		return fmt.Errorf("replace %s: %w", models.HighValueTrade{}.TableName(), err)
	}
	return nil
}

// replaceTable drops and recreates the table of model, then inserts rows, all
// in one transaction.
func replaceTable[T any](db *gorm.DB, model interface{}, rows []T, batchSize int) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		m := tx.Migrator()
		if err := m.DropTable(model); err != nil {
			return err
		}
		if err := m.CreateTable(model); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, batchSize).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}
