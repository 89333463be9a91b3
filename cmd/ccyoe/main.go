package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/usecambi/cambi-ccyoe/internal/backtest"
	"github.com/usecambi/cambi-ccyoe/internal/config"
	"github.com/usecambi/cambi-ccyoe/internal/datasource"
	"github.com/usecambi/cambi-ccyoe/internal/executor"
	"github.com/usecambi/cambi-ccyoe/internal/logger"
	"github.com/usecambi/cambi-ccyoe/internal/report"
	"github.com/usecambi/cambi-ccyoe/internal/scenario"
	"github.com/usecambi/cambi-ccyoe/internal/state"
	"github.com/usecambi/cambi-ccyoe/internal/web"
)

// main is the entry point for the CCYOE system.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Str("mode", config.Mode).Msg("CCYOE Starting...")

	// Initialize Database Connection (only when results are persisted)
	if config.PersistResults {
		dbCfg := state.DBConfig{
			Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
			User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
			DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
		}
		if err := state.InitDB(dbCfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer state.CloseDB()
		if err := state.EnsureSchema(); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure database schema")
		}
	}

	switch config.Mode {
	case "backtest":
		runBacktest()
	case "serve":
		runServer()
	}
}

// runBacktest executes one scenario end to end and prints the report.
func runBacktest() {
	scn, err := scenario.Load(config.ScenarioPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", config.ScenarioPath).Msg("Failed to load scenario")
	}

	snapshots, err := datasource.LoadSnapshotsCSV(scn.DataFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", scn.DataFile).Msg("Failed to load yield history")
	}

	bt, err := backtest.New(scn.Allocation)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to construct backtester")
	}

	result, err := bt.Run(snapshots)
	if err != nil {
		log.Fatal().Err(err).Msg("Backtest run failed")
	}

	// Replay the fired events through the dry run executor. This is the
	// same boundary a live settlement executor would implement.
	exec := executor.NewDryRunExecutor()
	defer exec.Close()
	ctx := context.Background()
	for _, event := range result.Events {
		if err := exec.Execute(ctx, event); err != nil {
			log.Fatal().Err(err).Msg("Executor rejected rebalance event")
		}
	}

	rep := report.Generate(result)
	fmt.Print(rep.String())

	if config.PersistResults {
		if err := state.SaveBacktestRun(result, scn.Name); err != nil {
			log.Fatal().Err(err).Msg("Failed to persist backtest run")
		}
		log.Info().Str("runID", result.RunID.String()).Msg("Backtest run persisted")
	}
}

// runServer starts the dashboard over stored runs and blocks.
func runServer() {
	webServer := web.NewWebServer(config.WebPort)
	log.Info().
		Str("port", config.WebPort).
		Str("url", "http://localhost:"+config.WebPort).
		Msg("Starting CCYOE dashboard")
	if err := webServer.Start(); err != nil {
		log.Fatal().Err(err).Msg("Web server failed")
	}
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
