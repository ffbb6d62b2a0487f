package screener

import (
	"context"
	"errors"
	"testing"
	"time"

	"coinscan/internal/model"
)

// fakeFetcher serves canned series or errors per symbol.
type fakeFetcher struct {
	series map[string]model.Series
	errs   map[string]error
}

func (f *fakeFetcher) TradingPairs(ctx context.Context, quoteAsset string) ([]string, error) {
	pairs := make([]string, 0, len(f.series))
	for sym := range f.series {
		pairs = append(pairs, sym)
	}
	return pairs, nil
}

func (f *fakeFetcher) Klines(ctx context.Context, symbol, interval string, limit int) (model.Series, error) {
	if err, ok := f.errs[symbol]; ok {
		return model.Series{}, err
	}
	s, ok := f.series[symbol]
	if !ok {
		return model.Series{}, errors.New("unknown symbol")
	}
	return s, nil
}

func (f *fakeFetcher) Name() string { return "fake" }

func seriesFromCloses(symbol string, closes, qvols []float64) model.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]model.Candle, len(closes))
	for i := range closes {
		candles[i] = model.Candle{
			OpenTime:    start.Add(time.Duration(i) * 24 * time.Hour),
			Open:        closes[i],
			High:        closes[i] + 1,
			Low:         closes[i] - 1,
			Close:       closes[i],
			Volume:      qvols[i] / closes[i],
			QuoteVolume: qvols[i],
		}
	}
	return model.Series{
		Symbol:    symbol,
		Interval:  "1d",
		Candles:   candles,
		FetchedAt: start.Add(time.Duration(len(closes)) * 24 * time.Hour),
	}
}

// bullishSeries trends up with RSI held in the healthy band by alternating a
// full gain with a half loss, and spikes the final candle's quote volume.
func bullishSeries(symbol string, n int) model.Series {
	closes := make([]float64, n)
	qvols := make([]float64, n)
	price := 100.0
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			price += 1.0
		} else {
			price -= 0.5
		}
		closes[i] = price
		qvols[i] = 1000
	}
	qvols[n-1] = 2500
	return seriesFromCloses(symbol, closes, qvols)
}

// bearishSeries declines for most of its length with a small late rally, so
// the moving averages stay bearish while RSI runs hot.
func bearishSeries(symbol string, n int) model.Series {
	closes := make([]float64, n)
	qvols := make([]float64, n)
	price := 500.0
	for i := 0; i < n; i++ {
		if i < n-14 {
			price -= 1.0
		} else {
			price += 0.2
		}
		closes[i] = price
		qvols[i] = 1000
	}
	return seriesFromCloses(symbol, closes, qvols)
}

func defaultOptions() Options {
	return Options{
		Interval:    "1d",
		Limit:       300,
		Concurrency: 4,
		MinScore:    7,
		MinHistory:  250,
	}
}

func TestAnalyzeBullishVersusBearish(t *testing.T) {
	fetcher := &fakeFetcher{series: map[string]model.Series{
		"BULLUSDT": bullishSeries("BULLUSDT", 300),
		"BEARUSDT": bearishSeries("BEARUSDT", 300),
	}}
	s := New(fetcher, defaultOptions())

	bull, err := s.analyze(context.Background(), 0, "BULLUSDT")
	if err != nil {
		t.Fatalf("analyze bull: %v", err)
	}
	bear, err := s.analyze(context.Background(), 1, "BEARUSDT")
	if err != nil {
		t.Fatalf("analyze bear: %v", err)
	}

	if bull.Score < 10 {
		t.Errorf("bullish score = %d, want >= 10", bull.Score)
	}
	if bull.Trend != model.TrendUp {
		t.Errorf("bullish trend = %q, want Up", bull.Trend)
	}
	if bear.Score >= bull.Score {
		t.Errorf("bearish score %d not below bullish score %d", bear.Score, bull.Score)
	}
	if bear.Trend != model.TrendDown {
		t.Errorf("bearish trend = %q, want Down", bear.Trend)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	fetcher := &fakeFetcher{series: map[string]model.Series{
		"BULLUSDT": bullishSeries("BULLUSDT", 300),
	}}
	s := New(fetcher, defaultOptions())

	first, err := s.analyze(context.Background(), 0, "BULLUSDT")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := s.analyze(context.Background(), 0, "BULLUSDT")
		if err != nil {
			t.Fatal(err)
		}
		if again.Score != first.Score || again.Trend != first.Trend {
			t.Fatalf("run %d: score %d trend %q, want %d %q",
				i, again.Score, again.Trend, first.Score, first.Trend)
		}
	}
}

func TestAnalyzeInsufficientHistory(t *testing.T) {
	fetcher := &fakeFetcher{series: map[string]model.Series{
		"NEWUSDT": bullishSeries("NEWUSDT", 120),
	}}
	s := New(fetcher, defaultOptions())

	if _, err := s.analyze(context.Background(), 0, "NEWUSDT"); err == nil {
		t.Fatal("expected insufficient history error")
	}
}

func TestScreenExcludesFailedSymbols(t *testing.T) {
	fetcher := &fakeFetcher{
		series: map[string]model.Series{
			"AUSDT": bullishSeries("AUSDT", 300),
			"BUSDT": bullishSeries("BUSDT", 300),
			"CUSDT": bullishSeries("CUSDT", 300),
		},
		errs: map[string]error{
			"BADUSDT":  errors.New("retries exhausted after 6 attempts"),
			"GONEUSDT": errors.New("status 400: invalid symbol"),
		},
	}
	opts := defaultOptions()
	opts.MinScore = 0
	s := New(fetcher, opts)

	result, err := s.Screen(context.Background(),
		[]string{"AUSDT", "BADUSDT", "BUSDT", "GONEUSDT", "CUSDT"})
	if err != nil {
		t.Fatalf("Screen: %v", err)
	}
	if result.Scanned != 5 {
		t.Errorf("Scanned = %d, want 5", result.Scanned)
	}
	if result.Excluded != 2 {
		t.Errorf("Excluded = %d, want 2", result.Excluded)
	}
	if len(result.Records) != 3 {
		t.Errorf("got %d records, want 3", len(result.Records))
	}
}

func TestScreenMinScoreFilter(t *testing.T) {
	fetcher := &fakeFetcher{series: map[string]model.Series{
		"BULLUSDT": bullishSeries("BULLUSDT", 300),
		"BEARUSDT": bearishSeries("BEARUSDT", 300),
	}}
	s := New(fetcher, defaultOptions())

	result, err := s.Screen(context.Background(), []string{"BULLUSDT", "BEARUSDT"})
	if err != nil {
		t.Fatalf("Screen: %v", err)
	}
	for _, r := range result.Records {
		if r.Symbol == "BEARUSDT" {
			t.Error("bearish symbol survived the minimum score filter")
		}
		if r.Score < 7 {
			t.Errorf("record %s below minimum score: %d", r.Symbol, r.Score)
		}
	}
}

func TestScreenOrderIsReproducible(t *testing.T) {
	symbols := []string{"AUSDT", "BUSDT", "CUSDT", "DUSDT", "EUSDT", "FUSDT"}
	series := make(map[string]model.Series, len(symbols))
	for _, sym := range symbols {
		series[sym] = bullishSeries(sym, 300)
	}
	opts := defaultOptions()
	opts.MinScore = 0
	opts.Concurrency = 3

	// All symbols score identically, so only the discovery-order tie-break
	// decides the ranking. It must hold across runs despite the pool.
	for run := 0; run < 5; run++ {
		result, err := New(&fakeFetcher{series: series}, opts).Screen(context.Background(), symbols)
		if err != nil {
			t.Fatalf("Screen: %v", err)
		}
		if len(result.Records) != len(symbols) {
			t.Fatalf("got %d records, want %d", len(result.Records), len(symbols))
		}
		for i, sym := range symbols {
			if result.Records[i].Symbol != sym {
				t.Fatalf("run %d: rank %d = %s, want %s", run, i, result.Records[i].Symbol, sym)
			}
		}
	}
}

func TestScreenEmptyUniverse(t *testing.T) {
	s := New(&fakeFetcher{}, defaultOptions())
	result, err := s.Screen(context.Background(), nil)
	if err != nil {
		t.Fatalf("Screen: %v", err)
	}
	if result.Scanned != 0 || len(result.Records) != 0 {
		t.Errorf("unexpected result for empty universe: %+v", result)
	}
}
