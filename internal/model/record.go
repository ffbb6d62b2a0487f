package model

// TrendLabel classifies the MA50/MA200 relationship at the latest candle.
type TrendLabel string

const (
	TrendUp   TrendLabel = "Up"
	TrendDown TrendLabel = "Down"
)

// ScoreRecord is the per-symbol outcome of one screening run. Seq is the
// position of the symbol in the discovered universe and provides the stable
// tie-break during ranking, independent of task completion order.
type ScoreRecord struct {
	Seq       int
	Symbol    string
	Price     float64
	RSI       float64
	VolumePct float64
	Momentum7 float64
	MA50Slope float64
	MACDHist  float64
	Score     int
	Trend     TrendLabel
}

// ScreeningResult collects the surviving records of one orchestrator run
// together with the count of symbols excluded along the way.
type ScreeningResult struct {
	Records  []ScoreRecord
	Scanned  int
	Excluded int
}
