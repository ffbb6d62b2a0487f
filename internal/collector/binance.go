package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"coinscan/internal/model"
)

// BinanceFetcher implements Fetcher against the Binance spot REST API.
type BinanceFetcher struct {
	client *Client

	// now is the clock used for the future-timestamp integrity check.
	now func() time.Time
}

// NewBinanceFetcher wraps a resilient client as a Binance fetcher.
func NewBinanceFetcher(client *Client) *BinanceFetcher {
	return &BinanceFetcher{client: client, now: time.Now}
}

func (f *BinanceFetcher) Name() string { return "binance" }

// exchangeInfo is the subset of GET /exchangeInfo we consume.
type exchangeInfo struct {
	Symbols []struct {
		Symbol string `json:"symbol"`
		Status string `json:"status"`
	} `json:"symbols"`
}

// TradingPairs returns every symbol with status TRADING that is quoted in
// quoteAsset, in exchange listing order. Errors here are fatal to a run:
// there is no partial symbol universe.
func (f *BinanceFetcher) TradingPairs(ctx context.Context, quoteAsset string) ([]string, error) {
	var info exchangeInfo
	if err := f.client.GetJSON(ctx, "/exchangeInfo", nil, &info); err != nil {
		return nil, fmt.Errorf("exchange info: %w", err)
	}
	pairs := make([]string, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status == "TRADING" && strings.HasSuffix(s.Symbol, quoteAsset) {
			pairs = append(pairs, s.Symbol)
		}
	}
	return pairs, nil
}

// Klines fetches the most recent limit candles. Any unparseable numeric
// field or a timestamp later than the current wall clock invalidates the
// whole series; there is no row-level recovery at this stage.
func (f *BinanceFetcher) Klines(ctx context.Context, symbol, interval string, limit int) (model.Series, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("limit", strconv.Itoa(limit))

	// Binance-style klines arrive as 12-element mixed-type arrays.
	var raw [][]interface{}
	if err := f.client.GetJSON(ctx, "/klines", q, &raw); err != nil {
		return model.Series{}, classify(symbol, err)
	}

	series := model.Series{
		Symbol:    symbol,
		Interval:  interval,
		Candles:   make([]model.Candle, 0, len(raw)),
		FetchedAt: f.now(),
	}
	for i, row := range raw {
		c, err := parseKline(row)
		if err != nil {
			return model.Series{}, &FetchError{
				Kind:   FailDataIntegrity,
				Symbol: symbol,
				Err:    fmt.Errorf("kline %d: %w", i, err),
			}
		}
		series.Candles = append(series.Candles, c)
	}
	if err := validateSeries(series); err != nil {
		return model.Series{}, &FetchError{Kind: FailDataIntegrity, Symbol: symbol, Err: err}
	}
	return series, nil
}

// parseKline maps one raw kline row onto a Candle. Only the first nine
// fields are consumed: open time, OHLC, base volume, close time (skipped),
// quote volume, trade count.
func parseKline(row []interface{}) (model.Candle, error) {
	if len(row) < 9 {
		return model.Candle{}, fmt.Errorf("expected at least 9 fields, got %d", len(row))
	}
	openTime, err := anyToInt64(row[0])
	if err != nil {
		return model.Candle{}, fmt.Errorf("open time: %w", err)
	}
	c := model.Candle{OpenTime: time.UnixMilli(openTime).UTC()}

	fields := []struct {
		idx  int
		name string
		dst  *float64
	}{
		{1, "open", &c.Open},
		{2, "high", &c.High},
		{3, "low", &c.Low},
		{4, "close", &c.Close},
		{5, "volume", &c.Volume},
		{7, "quote volume", &c.QuoteVolume},
	}
	for _, fld := range fields {
		v, err := anyToFloat(row[fld.idx])
		if err != nil {
			return model.Candle{}, fmt.Errorf("%s: %w", fld.name, err)
		}
		*fld.dst = v
	}

	trades, err := anyToInt64(row[8])
	if err != nil {
		return model.Candle{}, fmt.Errorf("trade count: %w", err)
	}
	c.TradeCount = trades
	return c, nil
}

// validateSeries enforces the series invariants: strictly increasing open
// times and no timestamp later than the acquisition wall clock.
func validateSeries(s model.Series) error {
	for i := 1; i < len(s.Candles); i++ {
		if !s.Candles[i].OpenTime.After(s.Candles[i-1].OpenTime) {
			return fmt.Errorf("open time not strictly increasing at index %d", i)
		}
	}
	if n := len(s.Candles); n > 0 {
		if last := s.Candles[n-1].OpenTime; last.After(s.FetchedAt) {
			return fmt.Errorf("future timestamp %s in kline data", last.Format(time.RFC3339))
		}
	}
	return nil
}

// anyToFloat parses the mixed string/number values Binance puts in kline
// arrays. Non-finite values are rejected at this boundary.
func anyToFloat(x interface{}) (float64, error) {
	switch t := x.(type) {
	case string:
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("non-finite value %q", t)
		}
		return v, nil
	case float64:
		return t, nil
	case json.Number:
		return t.Float64()
	default:
		return 0, fmt.Errorf("unexpected number type %T", x)
	}
}

func anyToInt64(x interface{}) (int64, error) {
	switch t := x.(type) {
	case string:
		return strconv.ParseInt(t, 10, 64)
	case float64:
		return int64(t), nil
	case json.Number:
		return t.Int64()
	default:
		return 0, fmt.Errorf("unexpected int type %T", x)
	}
}
