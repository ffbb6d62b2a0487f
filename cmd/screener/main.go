package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"coinscan/internal/candlecache"
	"coinscan/internal/collector"
	"coinscan/internal/config"
	"coinscan/internal/report"
	"coinscan/internal/scheduler"
	"coinscan/internal/screener"
	"coinscan/internal/strategy"
	"coinscan/internal/stream"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] coinscan starting...")

	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	client := collector.NewClient(cfg.Binance.BaseURL, cfg.Retry.MaxRetries, cfg.BackoffBase(), cfg.BackoffCap())
	var fetcher collector.Fetcher = collector.NewBinanceFetcher(client)
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Optional kline cache
	if cfg.Cache.SQLitePath != "" {
		cache, err := candlecache.Open(cfg.Cache.SQLitePath, cfg.CacheTTL())
		if err != nil {
			log.Printf("[WARN] init candle cache failed, fetching uncached: %v", err)
		} else {
			fetcher = candlecache.WrapFetcher(fetcher, cache)
			defer cache.Close()
		}
	}

	scr := screener.New(fetcher, screener.Options{
		Interval:    cfg.Screen.Interval,
		Limit:       cfg.Screen.Limit,
		Concurrency: cfg.Screen.Concurrency,
		MinScore:    cfg.Screen.MinScore,
		MinHistory:  cfg.Screen.MinHistory,
		RateBatch:   cfg.RateLimit.BatchSize,
		RatePause:   cfg.RatePause(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runScreen := func() {
		if err := screenOnce(ctx, cfg, fetcher, scr); err != nil {
			log.Printf("[ERROR] screen run: %v", err)
		}
	}

	// Optional live trade stream
	if cfg.Stream.Symbol != "" {
		agg := stream.NewAggregator(cfg.Binance.WSURL, cfg.Stream.Symbol, cfg.StreamWindow())
		summaries := make(chan stream.Summary)
		go func() {
			for s := range summaries {
				log.Printf("[INFO] %s last window: %d trades, %.4f base, %.2f quote",
					s.Symbol, s.Trades, s.BaseQty, s.QuoteQty)
			}
		}()
		go func() {
			if err := agg.Run(ctx, summaries); err != nil {
				log.Printf("[ERROR] trade stream: %v", err)
			}
			close(summaries)
		}()
	}

	// One-shot unless a cron schedule is configured.
	if cfg.Schedule.Cron == "" {
		runScreen()
		return
	}

	sched := scheduler.New(runScreen)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, screening now")
		go sched.RunNow()
	}

	log.Println("[INFO] coinscan is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] coinscan stopped")
}

// screenOnce discovers the symbol universe, screens it and prints the ranked
// table. Discovery failure is fatal to the run: no partial universe.
func screenOnce(ctx context.Context, cfg *config.Config, fetcher collector.Fetcher, scr *screener.Screener) error {
	symbols, err := fetcher.TradingPairs(ctx, cfg.Screen.QuoteAsset)
	if err != nil {
		return fmt.Errorf("symbol discovery: %w", err)
	}
	if cfg.Screen.MaxSymbols > 0 && len(symbols) > cfg.Screen.MaxSymbols {
		symbols = symbols[:cfg.Screen.MaxSymbols]
	}
	log.Printf("[INFO] screening %d %s pairs", len(symbols), cfg.Screen.QuoteAsset)

	result, err := scr.Screen(ctx, symbols)
	if err != nil {
		return err
	}

	ranked := strategy.Rank(result.Records, cfg.Screen.MinScore, cfg.Screen.TopN)
	fmt.Println("\nTop candidates:")
	fmt.Print(report.FormatTable(ranked))
	fmt.Println(report.FormatSummary(result))
	return nil
}
