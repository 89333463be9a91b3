package state

import (
	"database/sql"
	"fmt"
)

// StoreSummary represents aggregate statistics over all stored runs.
type StoreSummary struct {
	TotalRuns       int     `json:"total_runs"`
	TotalEvents     int     `json:"total_events"`
	AvgSharpeRatio  float64 `json:"avg_sharpe_ratio"`
	BestTotalReturn float64 `json:"best_total_return"`
	LastRunAt       string  `json:"last_run_at"`
}

// GetStoreSummary computes the aggregate view served on the dashboard's
// summary endpoint. An empty store returns zero values, not an error.
func GetStoreSummary() (*StoreSummary, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	summary := &StoreSummary{}

	runQuery := `
		SELECT COUNT(*),
		       COALESCE(AVG(sharpe_ratio), 0),
		       COALESCE(MAX(total_return), 0),
		       COALESCE(MAX(created_at)::TEXT, '')
		FROM backtest_runs;
	`
	err := DB.QueryRow(runQuery).Scan(
		&summary.TotalRuns, &summary.AvgSharpeRatio, &summary.BestTotalReturn, &summary.LastRunAt)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to aggregate backtest runs: %w", err)
	}

	eventQuery := `SELECT COUNT(*) FROM rebalance_events;`
	if err := DB.QueryRow(eventQuery).Scan(&summary.TotalEvents); err != nil {
		return nil, fmt.Errorf("failed to count rebalance events: %w", err)
	}

	return summary, nil
}
