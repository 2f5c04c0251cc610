package models

// StockSummary is the aggregated trade value of one symbol.
type StockSummary struct {
	StockSymbol string  `gorm:"column:stock_symbol;primaryKey" json:"stock_symbol"`
	TotalValue  float64 `gorm:"column:total_value" json:"total_value"`
}

// TableName pins the secondary table name.
func (StockSummary) TableName() string { return "stock_total_value" }

// HighValueTrade is a trade whose total value exceeds the configured threshold.
// It carries every trade column plus total_value.
type HighValueTrade struct {
	Trade
	TotalValue float64 `gorm:"column:total_value" json:"total_value"`
}

// TableName pins the secondary table name.
func (HighValueTrade) TableName() string { return "high_value_trades" }
