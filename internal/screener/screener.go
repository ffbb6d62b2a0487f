package screener

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"coinscan/internal/calculator"
	"coinscan/internal/collector"
	"coinscan/internal/model"
	"coinscan/internal/strategy"
)

// Options configures one screening run.
type Options struct {
	Interval    string
	Limit       int
	Concurrency int
	MinScore    int
	MinHistory  int
	RateBatch   int
	RatePause   time.Duration
}

// Screener fans the fetch → derive → score pipeline out over a bounded
// worker pool and collects the surviving records.
type Screener struct {
	fetcher collector.Fetcher
	opts    Options
}

// New creates a Screener over the given fetcher.
func New(fetcher collector.Fetcher, opts Options) *Screener {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Screener{fetcher: fetcher, opts: opts}
}

type task struct {
	seq    int
	symbol string
}

type outcome struct {
	record *model.ScoreRecord
	err    error
}

// Screen runs the pipeline for every symbol. Per-symbol failures are logged
// and excluded; they never abort the run. Records below the minimum score
// are dropped silently. The returned records are sorted by score descending
// with the discovery-order tie-break already applied.
func (s *Screener) Screen(ctx context.Context, symbols []string) (*model.ScreeningResult, error) {
	if len(symbols) == 0 {
		return &model.ScreeningResult{}, nil
	}

	tasks := make(chan task)
	outcomes := make(chan outcome)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < s.opts.Concurrency; i++ {
		g.Go(func() error {
			for t := range tasks {
				rec, err := s.analyze(ctx, t.seq, t.symbol)
				outcomes <- outcome{record: rec, err: err}
			}
			return nil
		})
	}

	go func() {
		defer close(tasks)
		for i, sym := range symbols {
			tasks <- task{seq: i, symbol: sym}
		}
	}()

	// Single accumulation point: only this loop appends, so workers never
	// race on the result collection.
	result := &model.ScreeningResult{Scanned: len(symbols)}
	pace := newPacer(s.opts.RateBatch, s.opts.RatePause)
	for i := 0; i < len(symbols); i++ {
		out := <-outcomes
		switch {
		case out.err != nil:
			result.Excluded++
			log.Printf("[WARN] symbol excluded: %v", out.err)
		case out.record.Score >= s.opts.MinScore:
			result.Records = append(result.Records, *out.record)
		}
		pace.Completed()
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Records = strategy.Rank(result.Records, s.opts.MinScore, 0)
	log.Printf("[INFO] screen complete: %d scanned, %d excluded, %d candidates, %d rate pauses",
		result.Scanned, result.Excluded, len(result.Records), pace.Pauses())
	return result, nil
}

// analyze runs fetch → derive → score for one symbol. Every failure mode of
// the taxonomy is returned as an error for the collector loop to count.
func (s *Screener) analyze(ctx context.Context, seq int, symbol string) (*model.ScoreRecord, error) {
	series, err := s.fetcher.Klines(ctx, symbol, s.opts.Interval, s.opts.Limit)
	if err != nil {
		return nil, err
	}
	if series.Len() < s.opts.MinHistory {
		return nil, fmt.Errorf("%s: insufficient history: %d candles, need %d",
			symbol, series.Len(), s.opts.MinHistory)
	}

	frame := calculator.Derive(series).Complete()
	if len(frame.Rows) == 0 {
		return nil, fmt.Errorf("%s: insufficient history: no fully determined indicator rows", symbol)
	}

	rec := strategy.Evaluate(seq, frame)
	return &rec, nil
}
