package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool. The initial ping is
// retried with exponential backoff so that the process survives the
// database coming up a few seconds after it does.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	pingBackoff := backoff.NewExponentialBackOff()
	pingBackoff.MaxElapsedTime = 30 * time.Second
	err = backoff.RetryNotify(
		func() error { return DB.Ping() },
		pingBackoff,
		func(err error, wait time.Duration) {
			log.Warn().Err(err).Dur("retry_in", wait).Msg("Database not reachable yet, retrying...")
		},
	)
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// TestDBConnection reports whether the pool can still reach the database.
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	return DB.Ping()
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS backtest_runs (
			run_id UUID PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			scenario_name VARCHAR(255) NOT NULL DEFAULT '',
			start_ts TIMESTAMPTZ NOT NULL,
			end_ts TIMESTAMPTZ NOT NULL,
			steps INTEGER NOT NULL,
			allocation_config JSONB NOT NULL,
			total_return DOUBLE PRECISION NOT NULL,
			sharpe_ratio DOUBLE PRECISION NOT NULL,
			max_drawdown DOUBLE PRECISION NOT NULL,
			rebalance_count INTEGER NOT NULL,
			avg_excess_yield_bp DOUBLE PRECISION NOT NULL,
			yield_improvement JSONB NOT NULL,
			daily_returns DOUBLE PRECISION[] NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_backtest_runs_created ON backtest_runs(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_backtest_runs_scenario ON backtest_runs(scenario_name, created_at DESC);

		CREATE TABLE IF NOT EXISTS rebalance_events (
			event_id SERIAL PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES backtest_runs(run_id) ON DELETE CASCADE,
			event_timestamp TIMESTAMPTZ NOT NULL,
			total_excess_bp BIGINT NOT NULL,
			treasury_bp BIGINT NOT NULL,
			bucket_amounts JSONB NOT NULL,
			asset_amounts JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_rebalance_events_run ON rebalance_events(run_id, event_timestamp);
	`
	if _, err := DB.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to apply database schema: %w", err)
	}

	log.Info().Msg("Database schema is up to date.")
	return nil
}
