package model

import "time"

// Candle represents a single OHLCV bar as returned by the exchange.
type Candle struct {
	OpenTime    time.Time
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
	QuoteVolume float64
	TradeCount  int64
}

// Series holds the chronological candle history for one symbol/interval.
// It is produced once by the fetcher and read-only downstream.
type Series struct {
	Symbol    string
	Interval  string
	Candles   []Candle
	FetchedAt time.Time
}

// Len returns the number of candles in the series.
func (s Series) Len() int { return len(s.Candles) }

// Closes extracts the close prices in chronological order.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		closes[i] = c.Close
	}
	return closes
}

// QuoteVolumes extracts the quote-asset volumes in chronological order.
func (s Series) QuoteVolumes() []float64 {
	vols := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		vols[i] = c.QuoteVolume
	}
	return vols
}
