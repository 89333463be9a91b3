package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // PostgreSQL driver for array support
	"github.com/rs/zerolog/log"

	"github.com/usecambi/cambi-ccyoe/internal/types"
)

// StoredRun is a persisted backtest run as read back from the database.
type StoredRun struct {
	RunID            uuid.UUID                 `json:"run_id"`
	CreatedAt        time.Time                 `json:"created_at"`
	ScenarioName     string                    `json:"scenario_name"`
	StartTime        time.Time                 `json:"start_time"`
	EndTime          time.Time                 `json:"end_time"`
	Steps            int                       `json:"steps"`
	Config           types.AllocationConfig    `json:"config"`
	TotalReturn      float64                   `json:"total_return"`
	SharpeRatio      float64                   `json:"sharpe_ratio"`
	MaxDrawdown      float64                   `json:"max_drawdown"`
	RebalanceCount   int                       `json:"rebalance_count"`
	AvgExcessYield   float64                   `json:"avg_excess_yield_bp"`
	YieldImprovement map[types.AssetID]float64 `json:"yield_improvement"`
	DailyReturns     []float64                 `json:"daily_returns"`
}

// SaveBacktestRun persists a completed run and its rebalance events in one
// transaction. A failure leaves the store unchanged.
func SaveBacktestRun(result *types.BacktestResult, scenarioName string) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	configJSON, err := json.Marshal(result.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal allocation_config: %w", err)
	}
	improvementJSON, err := json.Marshal(result.Metrics.YieldImprovement)
	if err != nil {
		return fmt.Errorf("failed to marshal yield_improvement: %w", err)
	}

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	runQuery := `
		INSERT INTO backtest_runs (
			run_id, scenario_name, start_ts, end_ts, steps, allocation_config,
			total_return, sharpe_ratio, max_drawdown, rebalance_count,
			avg_excess_yield_bp, yield_improvement, daily_returns
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err = tx.Exec(
		runQuery,
		result.RunID, scenarioName, result.StartTime, result.EndTime, result.Steps, configJSON,
		result.Metrics.TotalReturn, result.Metrics.SharpeRatio, result.Metrics.MaxDrawdown,
		result.Metrics.RebalanceCount, result.Metrics.AvgExcessYield, improvementJSON,
		pq.Array(result.DailyReturns),
	)
	if err != nil {
		return fmt.Errorf("failed to insert backtest run: %w", err)
	}

	eventQuery := `
		INSERT INTO rebalance_events (
			run_id, event_timestamp, total_excess_bp, treasury_bp, bucket_amounts, asset_amounts
		) VALUES ($1, $2, $3, $4, $5, $6);
	`
	for i, event := range result.Events {
		bucketsJSON, err := json.Marshal(event.Buckets)
		if err != nil {
			return fmt.Errorf("failed to marshal bucket_amounts for event %d: %w", i, err)
		}
		amountsJSON, err := json.Marshal(event.AssetAmounts)
		if err != nil {
			return fmt.Errorf("failed to marshal asset_amounts for event %d: %w", i, err)
		}
		_, err = tx.Exec(eventQuery,
			result.RunID, event.Timestamp, event.TotalExcess, event.Treasury, bucketsJSON, amountsJSON)
		if err != nil {
			return fmt.Errorf("failed to insert rebalance event %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit backtest run: %w", err)
	}

	log.Info().
		Str("run_id", result.RunID.String()).
		Str("scenario", scenarioName).
		Int("events", len(result.Events)).
		Msg("Backtest run saved to database")

	return nil
}

// GetRecentRuns returns up to limit runs, newest first.
func GetRecentRuns(limit int) ([]StoredRun, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT run_id, created_at, scenario_name, start_ts, end_ts, steps,
		       allocation_config, total_return, sharpe_ratio, max_drawdown,
		       rebalance_count, avg_excess_yield_bp, yield_improvement, daily_returns
		FROM backtest_runs
		ORDER BY created_at DESC
		LIMIT $1;
	`
	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent runs: %w", err)
	}
	defer rows.Close()

	var runs []StoredRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating run rows: %w", err)
	}

	return runs, nil
}

// GetRunByID returns one stored run, or sql.ErrNoRows when absent.
func GetRunByID(runID uuid.UUID) (*StoredRun, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT run_id, created_at, scenario_name, start_ts, end_ts, steps,
		       allocation_config, total_return, sharpe_ratio, max_drawdown,
		       rebalance_count, avg_excess_yield_bp, yield_improvement, daily_returns
		FROM backtest_runs
		WHERE run_id = $1;
	`
	run, err := scanRun(DB.QueryRow(query, runID))
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRunEvents returns a run's rebalance events in fire order.
func GetRunEvents(runID uuid.UUID) ([]types.RebalanceEvent, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT event_timestamp, total_excess_bp, treasury_bp, bucket_amounts, asset_amounts
		FROM rebalance_events
		WHERE run_id = $1
		ORDER BY event_timestamp ASC, event_id ASC;
	`
	rows, err := DB.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rebalance events: %w", err)
	}
	defer rows.Close()

	var events []types.RebalanceEvent
	for rows.Next() {
		var event types.RebalanceEvent
		var bucketsJSON, amountsJSON []byte
		if err := rows.Scan(&event.Timestamp, &event.TotalExcess, &event.Treasury, &bucketsJSON, &amountsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan rebalance event: %w", err)
		}
		if err := json.Unmarshal(bucketsJSON, &event.Buckets); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bucket_amounts: %w", err)
		}
		if err := json.Unmarshal(amountsJSON, &event.AssetAmounts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal asset_amounts: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating event rows: %w", err)
	}

	return events, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (StoredRun, error) {
	var run StoredRun
	var configJSON, improvementJSON []byte
	err := row.Scan(
		&run.RunID, &run.CreatedAt, &run.ScenarioName, &run.StartTime, &run.EndTime, &run.Steps,
		&configJSON, &run.TotalReturn, &run.SharpeRatio, &run.MaxDrawdown,
		&run.RebalanceCount, &run.AvgExcessYield, &improvementJSON,
		pq.Array(&run.DailyReturns),
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return run, err
		}
		return run, fmt.Errorf("failed to scan backtest run: %w", err)
	}
	if err := json.Unmarshal(configJSON, &run.Config); err != nil {
		return run, fmt.Errorf("failed to unmarshal allocation_config: %w", err)
	}
	if err := json.Unmarshal(improvementJSON, &run.YieldImprovement); err != nil {
		return run, fmt.Errorf("failed to unmarshal yield_improvement: %w", err)
	}
	return run, nil
}
