package report

import (
	"fmt"
	"strings"

	"coinscan/internal/model"
)

// FormatTable renders ranked records as a fixed-width text table. Column
// precision follows the screener contract: price/MA/MACD values at two
// decimals, RSI/momentum/volume at one, histogram at four.
func FormatTable(records []model.ScoreRecord) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%-12s %-12s %-6s %-7s %-8s %-8s %-12s %-11s %s\n",
		"SYMBOL", "PRICE", "SCORE", "RSI", "VOL%", "M7D%", "MA50 SLOPE", "MACD HIST", "TREND"))

	for _, r := range records {
		b.WriteString(fmt.Sprintf("%-12s %-12.2f %-6d %-7.1f %-8.1f %-8.1f %-12.2f %-11.4f %s\n",
			r.Symbol, r.Price, r.Score, r.RSI, r.VolumePct, r.Momentum7,
			r.MA50Slope, r.MACDHist, r.Trend))
	}

	return b.String()
}

// FormatSummary renders the run totals, including the count of excluded
// symbols.
func FormatSummary(result *model.ScreeningResult) string {
	return fmt.Sprintf("scanned %d symbols, excluded %d, %d candidates above threshold",
		result.Scanned, result.Excluded, len(result.Records))
}
