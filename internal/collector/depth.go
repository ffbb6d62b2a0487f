package collector

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"coinscan/internal/model"
)

// PriceLevel is one order-book entry.
type PriceLevel struct {
	Price float64
	Qty   float64
}

// OrderBook is a depth snapshot for one symbol.
type OrderBook struct {
	Symbol string
	Bids   []PriceLevel
	Asks   []PriceLevel
}

// TopBid returns the best bid, or false when the book side is empty.
func (b OrderBook) TopBid() (PriceLevel, bool) {
	if len(b.Bids) == 0 {
		return PriceLevel{}, false
	}
	return b.Bids[0], true
}

// TopAsk returns the best ask, or false when the book side is empty.
func (b OrderBook) TopAsk() (PriceLevel, bool) {
	if len(b.Asks) == 0 {
		return PriceLevel{}, false
	}
	return b.Asks[0], true
}

type depthResponse struct {
	Bids [][]string `json:"bids"`
	Asks [][]string `json:"asks"`
}

// OrderBook fetches a depth snapshot via GET /depth.
func (f *BinanceFetcher) OrderBook(ctx context.Context, symbol string, limit int) (OrderBook, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("limit", strconv.Itoa(limit))

	var resp depthResponse
	if err := f.client.GetJSON(ctx, "/depth", q, &resp); err != nil {
		return OrderBook{}, classify(symbol, err)
	}

	book := OrderBook{Symbol: symbol}
	var err error
	if book.Bids, err = parseLevels(resp.Bids); err != nil {
		return OrderBook{}, &FetchError{Kind: FailDataIntegrity, Symbol: symbol, Err: fmt.Errorf("bids: %w", err)}
	}
	if book.Asks, err = parseLevels(resp.Asks); err != nil {
		return OrderBook{}, &FetchError{Kind: FailDataIntegrity, Symbol: symbol, Err: fmt.Errorf("asks: %w", err)}
	}
	return book, nil
}

// LatestCandle fetches the single most recent candle for symbol/interval.
func (f *BinanceFetcher) LatestCandle(ctx context.Context, symbol, interval string) (model.Candle, error) {
	series, err := f.Klines(ctx, symbol, interval, 1)
	if err != nil {
		return model.Candle{}, err
	}
	if series.Len() == 0 {
		return model.Candle{}, &FetchError{
			Kind:   FailDataIntegrity,
			Symbol: symbol,
			Err:    fmt.Errorf("empty kline response"),
		}
	}
	return series.Candles[series.Len()-1], nil
}

func parseLevels(raw [][]string) ([]PriceLevel, error) {
	levels := make([]PriceLevel, 0, len(raw))
	for i, entry := range raw {
		if len(entry) < 2 {
			return nil, fmt.Errorf("level %d: expected [price, qty]", i)
		}
		price, err := strconv.ParseFloat(entry[0], 64)
		if err != nil {
			return nil, fmt.Errorf("level %d price: %w", i, err)
		}
		qty, err := strconv.ParseFloat(entry[1], 64)
		if err != nil {
			return nil, fmt.Errorf("level %d qty: %w", i, err)
		}
		levels = append(levels, PriceLevel{Price: price, Qty: qty})
	}
	return levels, nil
}
