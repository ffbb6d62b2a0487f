package calculator

import (
	"math"
	"testing"
	"time"

	"coinscan/internal/model"
)

func makeSeries(closes, qvols []float64) model.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]model.Candle, len(closes))
	for i := range closes {
		qv := 1000.0
		if qvols != nil {
			qv = qvols[i]
		}
		candles[i] = model.Candle{
			OpenTime:    start.Add(time.Duration(i) * 24 * time.Hour),
			Open:        closes[i],
			High:        closes[i] * 1.01,
			Low:         closes[i] * 0.99,
			Close:       closes[i],
			Volume:      qv / closes[i],
			QuoteVolume: qv,
		}
	}
	return model.Series{
		Symbol:    "TESTUSDT",
		Interval:  "1d",
		Candles:   candles,
		FetchedAt: start.Add(time.Duration(len(closes)) * 24 * time.Hour),
	}
}

func risingCloses(n int) []float64 {
	closes := make([]float64, n)
	price := 100.0
	for i := 0; i < n; i++ {
		// two gains then one loss, net rising, keeps RSI off the 100 rail
		switch i % 3 {
		case 0, 1:
			price += 1.0
		case 2:
			price -= 0.6
		}
		closes[i] = price
	}
	return closes
}

func TestDeriveDeterministic(t *testing.T) {
	series := makeSeries(risingCloses(260), nil)
	a := Derive(series)
	b := Derive(series)

	if len(a.Rows) != len(b.Rows) {
		t.Fatalf("row count mismatch: %d vs %d", len(a.Rows), len(b.Rows))
	}
	for i := range a.Rows {
		if !rowsEqual(a.Rows[i], b.Rows[i]) {
			t.Fatalf("row %d differs between identical derivations", i)
		}
	}
}

func rowsEqual(a, b model.FrameRow) bool {
	eq := func(x, y *float64) bool {
		if (x == nil) != (y == nil) {
			return false
		}
		return x == nil || *x == *y
	}
	return a.Close == b.Close && a.OBV == b.OBV &&
		eq(a.RSI, b.RSI) && eq(a.MACD, b.MACD) && eq(a.Signal, b.Signal) &&
		eq(a.MACDHist, b.MACDHist) && eq(a.MA50, b.MA50) && eq(a.MA200, b.MA200) &&
		eq(a.VolMA20, b.VolMA20) && eq(a.VolumePct, b.VolumePct) &&
		eq(a.Momentum7, b.Momentum7) && eq(a.Momentum30, b.Momentum30) &&
		eq(a.MA50Slope, b.MA50Slope) && eq(a.RSISlope, b.RSISlope) &&
		eq(a.MACDHistSlope, b.MACDHistSlope) && eq(a.VolumeSlope, b.VolumeSlope)
}

func TestDeriveWarmupWindows(t *testing.T) {
	frame := Derive(makeSeries(risingCloses(250), nil))

	tests := []struct {
		name  string
		get   func(model.FrameRow) *float64
		first int // first index the value must be defined at
	}{
		{"RSI", func(r model.FrameRow) *float64 { return r.RSI }, 14},
		{"MA50", func(r model.FrameRow) *float64 { return r.MA50 }, 49},
		{"MA200", func(r model.FrameRow) *float64 { return r.MA200 }, 199},
		{"VolMA20", func(r model.FrameRow) *float64 { return r.VolMA20 }, 19},
		{"Momentum7", func(r model.FrameRow) *float64 { return r.Momentum7 }, 7},
		{"Momentum30", func(r model.FrameRow) *float64 { return r.Momentum30 }, 30},
		{"MA50Slope", func(r model.FrameRow) *float64 { return r.MA50Slope }, 54},
		{"RSISlope", func(r model.FrameRow) *float64 { return r.RSISlope }, 19},
		{"MACDHistSlope", func(r model.FrameRow) *float64 { return r.MACDHistSlope }, 3},
		{"VolumeSlope", func(r model.FrameRow) *float64 { return r.VolumeSlope }, 3},
	}
	for _, tt := range tests {
		if v := tt.get(frame.Rows[tt.first-1]); v != nil {
			t.Errorf("%s: defined at index %d, want undefined", tt.name, tt.first-1)
		}
		if v := tt.get(frame.Rows[tt.first]); v == nil {
			t.Errorf("%s: undefined at index %d, want defined", tt.name, tt.first)
		}
	}
}

func TestMA200UndefinedBelow200Candles(t *testing.T) {
	frame := Derive(makeSeries(risingCloses(199), nil))
	for i, row := range frame.Rows {
		if row.MA200 != nil {
			t.Fatalf("MA200 defined at index %d with only 199 candles", i)
		}
	}
	// MA50 must still be defined from index 49 onward.
	if frame.Rows[49].MA50 == nil || frame.Rows[198].MA50 == nil {
		t.Fatal("MA50 undefined despite >= 50 candles")
	}
}

func TestDeriveFlatSeriesRSIUndefined(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100
	}
	frame := Derive(makeSeries(closes, nil))
	for i, row := range frame.Rows {
		if row.RSI != nil {
			t.Fatalf("RSI defined at index %d for a flat series", i)
		}
	}
}

func TestDeriveVolumeBaselineZero(t *testing.T) {
	qvols := make([]float64, 60)
	closes := risingCloses(60)
	// zero volume throughout: baseline is zero, volume_pct must stay undefined
	frame := Derive(makeSeries(closes, qvols))
	for i, row := range frame.Rows {
		if row.VolumePct != nil {
			t.Fatalf("VolumePct defined at index %d with a zero baseline", i)
		}
	}
}

func TestDeriveVolumePct(t *testing.T) {
	n := 40
	qvols := make([]float64, n)
	for i := range qvols {
		qvols[i] = 1000
	}
	qvols[n-1] = 2500
	frame := Derive(makeSeries(risingCloses(n), qvols))

	last := frame.Rows[n-1]
	if last.VolumePct == nil {
		t.Fatal("VolumePct undefined at last row")
	}
	baseline := (19*1000.0 + 2500.0) / 20.0
	want := (2500.0/baseline - 1) * 100
	if math.Abs(*last.VolumePct-want) > 1e-9 {
		t.Errorf("VolumePct = %.6f, want %.6f", *last.VolumePct, want)
	}
}

func TestDeriveOBV(t *testing.T) {
	closes := []float64{10, 11, 11, 9, 12}
	qvols := []float64{100, 200, 300, 400, 500}
	frame := Derive(makeSeries(closes, qvols))

	want := []float64{0, 200, 200, -200, 300}
	for i, row := range frame.Rows {
		if row.OBV != want[i] {
			t.Errorf("OBV[%d] = %.0f, want %.0f", i, row.OBV, want[i])
		}
	}
}

func TestDeriveMACDSeed(t *testing.T) {
	frame := Derive(makeSeries(risingCloses(30), nil))
	first := frame.Rows[0]
	// Both EMAs are seeded with the first close, so MACD starts at zero.
	if first.MACD == nil || *first.MACD != 0 {
		t.Errorf("MACD[0] = %v, want 0", first.MACD)
	}
	if first.MACDHist == nil || *first.MACDHist != 0 {
		t.Errorf("MACDHist[0] = %v, want 0", first.MACDHist)
	}
}

func TestCompleteDropsWarmupRows(t *testing.T) {
	frame := Derive(makeSeries(risingCloses(250), nil)).Complete()
	if len(frame.Rows) != 51 {
		t.Fatalf("complete frame has %d rows, want 51", len(frame.Rows))
	}
	for i, row := range frame.Rows {
		if row.MA200 == nil || row.MA50 == nil || row.RSI == nil ||
			row.MACD == nil || row.Signal == nil || row.VolMA20 == nil {
			t.Fatalf("incomplete row %d survived Complete()", i)
		}
	}
}
