package candlecache

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"coinscan/internal/model"
)

// Cache is a SQLite-backed kline cache. Scheduled scans within one interval
// hit the cache instead of refetching the whole universe. Only raw input
// series are stored, never screening results.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	mu  sync.Mutex
	now func() time.Time
}

// Open opens (or creates) the cache database and runs migrations.
func Open(path string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &Cache{db: db, ttl: ttl, now: time.Now}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] candle cache opened: %s (ttl %s)", path, ttl)
	return c, nil
}

func (c *Cache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS klines (
			symbol       TEXT NOT NULL,
			interval     TEXT NOT NULL,
			open_time    INTEGER NOT NULL,
			open         REAL,
			high         REAL,
			low          REAL,
			close        REAL,
			volume       REAL,
			quote_volume REAL,
			trade_count  INTEGER,
			fetched_at   INTEGER NOT NULL,
			PRIMARY KEY (symbol, interval, open_time)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_klines_fetched ON klines(symbol, interval, fetched_at)`,
	}
	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// Get returns the cached series when at least limit fresh candles exist for
// symbol/interval. Freshness is judged against the stored fetch time.
func (c *Cache) Get(symbol, interval string, limit int) (model.Series, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.db.Query(`SELECT open_time, open, high, low, close, volume, quote_volume, trade_count, fetched_at
		FROM klines WHERE symbol = ? AND interval = ?
		ORDER BY open_time DESC LIMIT ?`, symbol, interval, limit)
	if err != nil {
		log.Printf("[WARN] candle cache read: %v", err)
		return model.Series{}, false
	}
	defer rows.Close()

	var candles []model.Candle
	var oldestFetch int64 = 1<<63 - 1
	for rows.Next() {
		var openTime, trades, fetchedAt int64
		var cd model.Candle
		if err := rows.Scan(&openTime, &cd.Open, &cd.High, &cd.Low, &cd.Close,
			&cd.Volume, &cd.QuoteVolume, &trades, &fetchedAt); err != nil {
			log.Printf("[WARN] candle cache scan: %v", err)
			return model.Series{}, false
		}
		cd.OpenTime = time.UnixMilli(openTime).UTC()
		cd.TradeCount = trades
		if fetchedAt < oldestFetch {
			oldestFetch = fetchedAt
		}
		candles = append(candles, cd)
	}
	if err := rows.Err(); err != nil {
		log.Printf("[WARN] candle cache rows: %v", err)
		return model.Series{}, false
	}
	if len(candles) < limit {
		return model.Series{}, false
	}

	fetchedAt := time.Unix(oldestFetch, 0)
	if c.now().Sub(fetchedAt) > c.ttl {
		return model.Series{}, false
	}

	// Rows were read newest-first; restore chronological order.
	for i, j := 0, len(candles)-1; i < j; i, j = i+1, j-1 {
		candles[i], candles[j] = candles[j], candles[i]
	}
	return model.Series{
		Symbol:    symbol,
		Interval:  interval,
		Candles:   candles,
		FetchedAt: fetchedAt,
	}, true
}

// Put replaces the cached candles for the series' symbol/interval.
func (c *Cache) Put(series model.Series) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM klines WHERE symbol = ? AND interval = ?`,
		series.Symbol, series.Interval); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear old klines: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO klines
		(symbol, interval, open_time, open, high, low, close, volume, quote_volume, trade_count, fetched_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	fetchedAt := series.FetchedAt.Unix()
	for _, cd := range series.Candles {
		if _, err := stmt.Exec(series.Symbol, series.Interval, cd.OpenTime.UnixMilli(),
			cd.Open, cd.High, cd.Low, cd.Close, cd.Volume, cd.QuoteVolume,
			cd.TradeCount, fetchedAt); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert kline: %w", err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	log.Println("[INFO] closing candle cache")
	return c.db.Close()
}
