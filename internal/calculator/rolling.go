package calculator

// Rolling-window helpers shared by the indicator derivations. A nil entry
// means the value is undefined at that position (warm-up not satisfied);
// undefined inputs propagate through every window that covers them.

func fptr(v float64) *float64 { return &v }

// rollingMean computes the mean over the trailing window ending at each
// position. The result is nil until the window is full or while any value
// inside the window is undefined.
func rollingMean(vals []*float64, window int) []*float64 {
	out := make([]*float64, len(vals))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(vals); i++ {
		sum := 0.0
		defined := true
		for j := i - window + 1; j <= i; j++ {
			if vals[j] == nil {
				defined = false
				break
			}
			sum += *vals[j]
		}
		if defined {
			out[i] = fptr(sum / float64(window))
		}
	}
	return out
}

// rollingMeanF is rollingMean over a fully defined series.
func rollingMeanF(vals []float64, window int) []*float64 {
	return rollingMean(lift(vals), window)
}

// diffLag computes vals[i] - vals[i-lag], nil when either side is undefined.
func diffLag(vals []*float64, lag int) []*float64 {
	out := make([]*float64, len(vals))
	for i := lag; i < len(vals); i++ {
		if vals[i] == nil || vals[i-lag] == nil {
			continue
		}
		out[i] = fptr(*vals[i] - *vals[i-lag])
	}
	return out
}

// pctChange computes the percent change over lag positions. A zero base
// value leaves the entry undefined rather than dividing by zero.
func pctChange(vals []float64, lag int) []*float64 {
	out := make([]*float64, len(vals))
	for i := lag; i < len(vals); i++ {
		base := vals[i-lag]
		if base == 0 {
			continue
		}
		out[i] = fptr((vals[i]/base - 1) * 100)
	}
	return out
}

// ewm computes the recursive exponential moving average with
// alpha = 2/(span+1), seeded by the first value (no bias adjustment).
func ewm(vals []float64, span int) []float64 {
	out := make([]float64, len(vals))
	if len(vals) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = vals[0]
	for i := 1; i < len(vals); i++ {
		out[i] = alpha*vals[i] + (1-alpha)*out[i-1]
	}
	return out
}

// lift wraps a fully defined series as pointers.
func lift(vals []float64) []*float64 {
	out := make([]*float64, len(vals))
	for i, v := range vals {
		out[i] = fptr(v)
	}
	return out
}
