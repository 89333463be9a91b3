package backtest

import (
	"math"

	"github.com/usecambi/cambi-ccyoe/internal/types"
)

// calculateMetrics derives the scalar performance metrics from the series
// of per-period returns.
func calculateMetrics(returns []float64, periodsPerYear int) types.PerformanceMetrics {
	return types.PerformanceMetrics{
		TotalReturn: compoundReturn(returns),
		SharpeRatio: computeSharpe(returns, periodsPerYear),
		MaxDrawdown: computeMaxDrawdown(returns),
	}
}

// compoundReturn is the compounded product of the per-period returns minus
// one.
func compoundReturn(returns []float64) float64 {
	cumulative := 1.0
	for _, r := range returns {
		cumulative *= 1 + r
	}
	return cumulative - 1
}

// computeSharpe returns the annualized Sharpe ratio of the return series,
// assuming a zero risk-free rate. A zero standard deviation yields zero,
// not an error: a perfectly flat series simply has no risk premium to price.
func computeSharpe(returns []float64, periodsPerYear int) float64 {
	if len(returns) == 0 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	if len(returns) > 1 {
		variance /= float64(len(returns) - 1)
	}

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}

	return (mean / std) * math.Sqrt(float64(periodsPerYear))
}

// computeMaxDrawdown is the largest peak-to-trough decline of the cumulative
// return curve, returned as a positive fraction.
func computeMaxDrawdown(returns []float64) float64 {
	equity := 1.0
	peak := 1.0
	maxDD := 0.0

	for _, r := range returns {
		equity *= 1 + r
		if equity > peak {
			peak = equity
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - equity) / peak
		if dd > maxDD {
			maxDD = dd
		}
	}

	return maxDD
}
