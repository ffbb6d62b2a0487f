package collector

import (
	"context"

	"coinscan/internal/model"
)

// Fetcher is the market-data boundary of the screening pipeline.
type Fetcher interface {
	// TradingPairs lists the active symbols quoted in quoteAsset.
	TradingPairs(ctx context.Context, quoteAsset string) ([]string, error)
	// Klines fetches the most recent limit candles for symbol/interval.
	Klines(ctx context.Context, symbol, interval string, limit int) (model.Series, error)
	Name() string
}
