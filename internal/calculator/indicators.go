package calculator

import "coinscan/internal/model"

// Indicator windows. MA200 in particular must stay undefined below 200
// candles instead of silently averaging a shorter window.
const (
	rsiPeriod     = 14
	macdFast      = 12
	macdSlow      = 26
	macdSignal    = 9
	maShortWindow = 50
	maLongWindow  = 200
	volWindow     = 20

	momentumShortLag = 7
	momentumLongLag  = 30
	maSlopeLag       = 5
	rsiSlopeLag      = 5
	histSlopeLag     = 3
	volSlopeLag      = 3
)

// Derive computes the full indicator frame for a candle series. It is a pure
// function: the input series is never mutated, every value at position i uses
// only positions <= i, and identical inputs yield identical frames.
func Derive(series model.Series) model.IndicatorFrame {
	n := series.Len()
	closes := series.Closes()
	qvols := series.QuoteVolumes()

	rsi := deriveRSI(closes)
	macd, signal, hist := deriveMACD(closes)

	ma50 := rollingMeanF(closes, maShortWindow)
	ma200 := rollingMeanF(closes, maLongWindow)

	volMA20 := rollingMeanF(qvols, volWindow)
	volumePct := make([]*float64, n)
	for i, base := range volMA20 {
		if base == nil || *base == 0 {
			continue
		}
		volumePct[i] = fptr((qvols[i]/(*base) - 1) * 100)
	}

	momentum7 := pctChange(closes, momentumShortLag)
	momentum30 := pctChange(closes, momentumLongLag)

	ma50Slope := diffLag(ma50, maSlopeLag)
	rsiSlope := diffLag(rsi, rsiSlopeLag)
	histSlope := diffLag(lift(hist), histSlopeLag)
	volSlope := diffLag(lift(qvols), volSlopeLag)

	obv := deriveOBV(closes, qvols)

	frame := model.IndicatorFrame{Symbol: series.Symbol, Rows: make([]model.FrameRow, n)}
	for i := 0; i < n; i++ {
		frame.Rows[i] = model.FrameRow{
			OpenTime:    series.Candles[i].OpenTime,
			Close:       closes[i],
			QuoteVolume: qvols[i],

			RSI:      rsi[i],
			MACD:     fptr(macd[i]),
			Signal:   fptr(signal[i]),
			MACDHist: fptr(hist[i]),
			MA50:     ma50[i],
			MA200:    ma200[i],
			VolMA20:  volMA20[i],

			VolumePct:  volumePct[i],
			Momentum7:  momentum7[i],
			Momentum30: momentum30[i],

			MA50Slope:     ma50Slope[i],
			RSISlope:      rsiSlope[i],
			MACDHistSlope: histSlope[i],
			VolumeSlope:   volSlope[i],

			OBV: obv[i],
		}
	}
	return frame
}

// deriveRSI computes RSI(14) from rolling means of gains and losses over the
// trailing 14 deltas. Positions with fewer than 14 prior deltas are
// undefined, as is a window with neither gains nor losses.
func deriveRSI(closes []float64) []*float64 {
	n := len(closes)
	gains := make([]*float64, n)
	losses := make([]*float64, n)
	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = fptr(change)
			losses[i] = fptr(0)
		} else {
			gains[i] = fptr(0)
			losses[i] = fptr(-change)
		}
	}

	avgGain := rollingMean(gains, rsiPeriod)
	avgLoss := rollingMean(losses, rsiPeriod)

	rsi := make([]*float64, n)
	for i := 0; i < n; i++ {
		if avgGain[i] == nil || avgLoss[i] == nil {
			continue
		}
		if *avgLoss[i] == 0 {
			if *avgGain[i] == 0 {
				continue // flat window, relative strength undefined
			}
			rsi[i] = fptr(100)
			continue
		}
		rs := *avgGain[i] / *avgLoss[i]
		rsi[i] = fptr(100 - 100/(1+rs))
	}
	return rsi
}

// deriveMACD returns the MACD line (EMA12 − EMA26), its EMA9 signal line and
// the histogram. All three are defined from the first position because the
// EMAs are seeded with the first value.
func deriveMACD(closes []float64) (macd, signal, hist []float64) {
	ema12 := ewm(closes, macdFast)
	ema26 := ewm(closes, macdSlow)

	macd = make([]float64, len(closes))
	for i := range macd {
		macd[i] = ema12[i] - ema26[i]
	}
	signal = ewm(macd, macdSignal)

	hist = make([]float64, len(closes))
	for i := range hist {
		hist[i] = macd[i] - signal[i]
	}
	return macd, signal, hist
}

// deriveOBV accumulates quote volume signed by the close-to-close direction.
// A zero change contributes zero; the first position is zero.
func deriveOBV(closes, qvols []float64) []float64 {
	obv := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			obv[i] = obv[i-1] + qvols[i]
		case closes[i] < closes[i-1]:
			obv[i] = obv[i-1] - qvols[i]
		default:
			obv[i] = obv[i-1]
		}
	}
	return obv
}
