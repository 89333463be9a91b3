/*

This file contains the backtest result types. A BacktestResult is owned by
the backtester that produced it and is read-only to callers.

*/

package types

import (
	"time"

	"github.com/google/uuid"
)

// PerformanceMetrics holds the scalar metrics derived from a completed run.
type PerformanceMetrics struct {
	TotalReturn      float64             `json:"total_return"`       // Compounded product of daily returns minus one
	SharpeRatio      float64             `json:"sharpe_ratio"`       // Annualized; zero when the return stddev is zero
	MaxDrawdown      float64             `json:"max_drawdown"`       // Largest peak-to-trough decline, as a positive fraction
	YieldImprovement map[AssetID]float64 `json:"yield_improvement"`  // Asset -> mean (effective - observed) in basis points
	RebalanceCount   int                 `json:"rebalance_count"`    // Number of events fired during the run
	AvgExcessYield   float64             `json:"avg_excess_yield_bp"` // Mean per-step total excess, all steps included
}

// BacktestResult is the complete output of one backtest run.
type BacktestResult struct {
	RunID        uuid.UUID          `json:"run_id"`
	StartTime    time.Time          `json:"start_time"`
	EndTime      time.Time          `json:"end_time"`
	Steps        int                `json:"steps"`
	DailyReturns []float64          `json:"daily_returns"`
	Events       []RebalanceEvent   `json:"events"`
	Metrics      PerformanceMetrics `json:"metrics"`
	Config       AllocationConfig   `json:"config"`
}
