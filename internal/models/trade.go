package models

// Transaction types.
const (
	TransactionBuy  = "BUY"
	TransactionSell = "SELL"
)

// Trade represents one synthetic trade record in the primary store.
type Trade struct {
	TradeID         int64   `gorm:"column:trade_id;primaryKey;autoIncrement:false" json:"trade_id"`
	UserID          int     `gorm:"column:user_id" json:"user_id"`
	StockSymbol     string  `gorm:"column:stock_symbol" json:"stock_symbol"`
	TransactionType string  `gorm:"column:transaction_type" json:"transaction_type"` // "BUY" or "SELL"
	Price           float64 `gorm:"column:price" json:"price"`
	Quantity        int     `gorm:"column:quantity" json:"quantity"`
	TradeDate       string  `gorm:"column:trade_date" json:"trade_date"` // YYYY-MM-DD
}

// TableName pins the primary table name.
func (Trade) TableName() string { return "trades" }

// TradeColumns lists the columns the trades table must carry.
var TradeColumns = []string{
	"trade_id", "user_id", "stock_symbol", "transaction_type", "price", "quantity", "trade_date",
}

// ValuedTrade is a trade together with its derived total value.
// It is never stored in the primary table.
type ValuedTrade struct {
	Trade
	TotalValue float64 `gorm:"column:total_value" json:"total_value"`
}

// TableName keeps ValuedTrade from resolving to the trades table it would
// otherwise inherit from Trade. Nothing persists this type.
func (ValuedTrade) TableName() string { return "valued_trades" }
