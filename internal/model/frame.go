package model

import "time"

// FrameRow carries the derived indicator state for one candle position.
// Indicators that need a warm-up window are nil until enough history has
// accumulated; nil means undefined and must never be read as zero.
type FrameRow struct {
	OpenTime    time.Time
	Close       float64
	QuoteVolume float64

	RSI      *float64
	MACD     *float64
	Signal   *float64
	MACDHist *float64
	MA50     *float64
	MA200    *float64
	VolMA20  *float64

	VolumePct  *float64
	Momentum7  *float64
	Momentum30 *float64

	MA50Slope     *float64
	RSISlope      *float64
	MACDHistSlope *float64
	VolumeSlope   *float64

	OBV float64
}

// IndicatorFrame is the indicator series aligned index-for-index with the
// candle series it was derived from.
type IndicatorFrame struct {
	Symbol string
	Rows   []FrameRow
}

// complete reports whether every indicator required for scoring is defined.
func (r FrameRow) complete() bool {
	return r.MA50 != nil && r.MA200 != nil && r.RSI != nil &&
		r.MACD != nil && r.Signal != nil && r.VolMA20 != nil
}

// Complete returns a copy of the frame with all warm-up rows dropped, so
// scoring only ever sees fully determined indicator state.
func (f IndicatorFrame) Complete() IndicatorFrame {
	rows := make([]FrameRow, 0, len(f.Rows))
	for _, r := range f.Rows {
		if r.complete() {
			rows = append(rows, r)
		}
	}
	return IndicatorFrame{Symbol: f.Symbol, Rows: rows}
}

// Last returns the most recent row. Callers must check that the frame is
// non-empty first.
func (f IndicatorFrame) Last() FrameRow { return f.Rows[len(f.Rows)-1] }
