package candlecache

import (
	"context"
	"log"

	"coinscan/internal/collector"
	"coinscan/internal/model"
)

// cachingFetcher serves klines from the cache when fresh enough and falls
// through to the wrapped fetcher otherwise. Cache write failures only cost
// the caching benefit, never the fetch.
type cachingFetcher struct {
	inner collector.Fetcher
	cache *Cache
}

// WrapFetcher puts the cache in front of a fetcher.
func WrapFetcher(inner collector.Fetcher, cache *Cache) collector.Fetcher {
	return &cachingFetcher{inner: inner, cache: cache}
}

func (f *cachingFetcher) Name() string { return f.inner.Name() + "+cache" }

func (f *cachingFetcher) TradingPairs(ctx context.Context, quoteAsset string) ([]string, error) {
	return f.inner.TradingPairs(ctx, quoteAsset)
}

func (f *cachingFetcher) Klines(ctx context.Context, symbol, interval string, limit int) (model.Series, error) {
	if series, ok := f.cache.Get(symbol, interval, limit); ok {
		return series, nil
	}
	series, err := f.inner.Klines(ctx, symbol, interval, limit)
	if err != nil {
		return model.Series{}, err
	}
	if err := f.cache.Put(series); err != nil {
		log.Printf("[WARN] cache klines for %s: %v", symbol, err)
	}
	return series, nil
}
