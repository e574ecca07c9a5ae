package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketBar is one daily OHLCV row for a tracked instrument.
// Natural key: (Symbol, Datetime). Indicator columns stay null until a
// backfill run supplies them.
type MarketBar struct {
	Symbol   string          `db:"symbol"`
	Datetime time.Time       `db:"datetime"`
	Open     decimal.Decimal `db:"open_price"`
	High     decimal.Decimal `db:"high_price"`
	Low      decimal.Decimal `db:"low_price"`
	Close    decimal.Decimal `db:"close_price"`
	Volume   int64           `db:"volume"`

	SMA50  decimal.NullDecimal `db:"sma_50"`
	SMA200 decimal.NullDecimal `db:"sma_200"`
	RSI14  decimal.NullDecimal `db:"rsi_14"`
	MACD   decimal.NullDecimal `db:"macd"`
}
