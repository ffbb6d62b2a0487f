package strategy

import (
	"math"

	"coinscan/internal/model"
)

// Rule weights of the composite score, applied against the latest row of a
// complete indicator frame.
const (
	ptsMATrend      = 3
	ptsCloseAboveMA = 2
	ptsMA50Slope    = 1
	ptsMACDHist     = 2
	ptsHistSlope    = 1
	ptsRSIHealthy   = 2
	ptsRSIOverheat  = -1
	ptsRSISlope     = 1
	ptsVolSurgeHigh = 3
	ptsVolSurgeMid  = 2
	ptsVolSurgeLow  = 1
	ptsVolSlope     = 1
	ptsMom7High     = 3
	ptsMom7Mid      = 2
	ptsMom7Low      = 1
	ptsOBVTrend     = 2

	obvTrendRows = 10
)

// Score computes the deterministic composite score from the last row of the
// frame plus the trailing OBV window. Undefined indicator values never
// satisfy a condition. The volume and momentum tiers are mutually exclusive:
// only the first matching tier contributes.
func Score(frame model.IndicatorFrame) int {
	if len(frame.Rows) == 0 {
		return 0
	}
	latest := frame.Last()
	score := 0

	// Trend
	if maBull(latest) {
		score += ptsMATrend
	}
	if latest.MA50 != nil && latest.MA200 != nil &&
		latest.Close > *latest.MA50 && latest.Close > *latest.MA200 {
		score += ptsCloseAboveMA
	}
	if gt(latest.MA50Slope, 0) {
		score += ptsMA50Slope
	}

	// Momentum oscillators
	if gt(latest.MACDHist, 0) {
		score += ptsMACDHist
	}
	if gt(latest.MACDHistSlope, 0) {
		score += ptsHistSlope
	}
	if latest.RSI != nil {
		switch {
		case 50 < *latest.RSI && *latest.RSI < 70:
			score += ptsRSIHealthy
		case *latest.RSI >= 70:
			score += ptsRSIOverheat
		}
	}
	if gt(latest.RSISlope, 0) {
		score += ptsRSISlope
	}

	// Volume
	if latest.VolumePct != nil {
		switch {
		case *latest.VolumePct > 100:
			score += ptsVolSurgeHigh
		case *latest.VolumePct > 50:
			score += ptsVolSurgeMid
		case *latest.VolumePct > 20:
			score += ptsVolSurgeLow
		}
	}
	if gt(latest.VolumeSlope, 0) {
		score += ptsVolSlope
	}

	// Price momentum
	if latest.Momentum7 != nil {
		switch {
		case *latest.Momentum7 > 15:
			score += ptsMom7High
		case *latest.Momentum7 > 10:
			score += ptsMom7Mid
		case *latest.Momentum7 > 5:
			score += ptsMom7Low
		}
	}

	// OBV confirmation: last five rows vs the five before them.
	if n := len(frame.Rows); n >= obvTrendRows {
		recent := obvMean(frame.Rows[n-5:])
		prior := obvMean(frame.Rows[n-10 : n-5])
		if recent > prior {
			score += ptsOBVTrend
		}
	}

	return score
}

// Trend labels the frame Up iff MA50 > MA200 at the last row.
func Trend(frame model.IndicatorFrame) model.TrendLabel {
	if len(frame.Rows) > 0 && maBull(frame.Last()) {
		return model.TrendUp
	}
	return model.TrendDown
}

// maBull reports whether both moving averages are defined with the short one
// above the long one.
func maBull(r model.FrameRow) bool {
	return r.MA50 != nil && r.MA200 != nil && *r.MA50 > *r.MA200
}

// Evaluate builds the per-symbol score record from a complete frame. seq is
// the discovery position used for stable ranking.
func Evaluate(seq int, frame model.IndicatorFrame) model.ScoreRecord {
	latest := frame.Last()
	return model.ScoreRecord{
		Seq:       seq,
		Symbol:    frame.Symbol,
		Price:     latest.Close,
		RSI:       deref(latest.RSI),
		VolumePct: deref(latest.VolumePct),
		Momentum7: deref(latest.Momentum7),
		MA50Slope: deref(latest.MA50Slope),
		MACDHist:  deref(latest.MACDHist),
		Score:     Score(frame),
		Trend:     Trend(frame),
	}
}

func obvMean(rows []model.FrameRow) float64 {
	sum := 0.0
	for _, r := range rows {
		sum += r.OBV
	}
	return sum / float64(len(rows))
}

// gt reports whether v is defined and greater than threshold.
func gt(v *float64, threshold float64) bool {
	return v != nil && *v > threshold
}

// deref unwraps an optional indicator value, keeping undefined distinct from
// zero by mapping it to NaN for display-only fields.
func deref(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
