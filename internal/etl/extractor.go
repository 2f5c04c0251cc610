package etl

import (
	"context"
	"fmt"

	"trading-etl-go/internal/models"
	"gorm.io/gorm"
)

// Extract reads every trade from the primary store. Row order is unspecified.
func Extract(ctx context.Context, db *gorm.DB) ([]models.Trade, error) {
	var trades []models.Trade
	if err := db.WithContext(ctx).Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("%w: read trades: %w", ErrStoreUnavailable, err)
	}
	return trades, nil
}
