package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Summary aggregates the trades observed during one window.
type Summary struct {
	Symbol   string
	WindowAt time.Time
	Trades   int
	BaseQty  float64
	QuoteQty float64
}

// tradeEvent is the subset of the exchange trade stream payload we consume.
type tradeEvent struct {
	Price string `json:"p"`
	Qty   string `json:"q"`
	Time  int64  `json:"T"`
}

// Aggregator subscribes to a live trade stream and emits per-window
// summaries. Cancellation is coarse: cancelling the context ends the whole
// subscription.
type Aggregator struct {
	url    string
	symbol string
	window time.Duration
}

// NewAggregator builds an aggregator for one symbol. baseURL is the
// websocket stream root, e.g. wss://stream.binance.com:9443/ws.
func NewAggregator(baseURL, symbol string, window time.Duration) *Aggregator {
	if window <= 0 {
		window = time.Minute
	}
	return &Aggregator{
		url:    fmt.Sprintf("%s/%s@trade", strings.TrimSuffix(baseURL, "/"), strings.ToLower(symbol)),
		symbol: strings.ToUpper(symbol),
		window: window,
	}
}

// Run connects and aggregates until the context is cancelled, sending one
// Summary per elapsed window on out. It returns nil on cancellation and the
// connection error otherwise.
func (a *Aggregator) Run(ctx context.Context, out chan<- Summary) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, a.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", a.url, err)
	}
	defer conn.Close()
	log.Printf("[INFO] trade stream connected: %s", a.symbol)

	events := make(chan tradeEvent)
	readErr := make(chan error, 1)
	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			var ev tradeEvent
			if err := json.Unmarshal(msg, &ev); err != nil {
				log.Printf("[WARN] trade stream decode: %v", err)
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(a.window)
	defer ticker.Stop()

	sum := Summary{Symbol: a.symbol}
	for {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		case err := <-readErr:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("trade stream read: %w", err)
		case ev := <-events:
			qty, err := strconv.ParseFloat(ev.Qty, 64)
			if err != nil {
				continue
			}
			price, err := strconv.ParseFloat(ev.Price, 64)
			if err != nil {
				continue
			}
			sum.Trades++
			sum.BaseQty += qty
			sum.QuoteQty += qty * price
		case t := <-ticker.C:
			sum.WindowAt = t
			select {
			case out <- sum:
			case <-ctx.Done():
				return nil
			}
			sum = Summary{Symbol: a.symbol}
		}
	}
}
