package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment
// variables. These are populated at startup by the LoadConfig function.
var (
	// Mode selects what the process does: "backtest" runs one scenario and
	// exits, "serve" starts the dashboard over stored runs.
	Mode string

	// ScenarioPath is the YAML scenario file to run in backtest mode.
	ScenarioPath string

	// WebPort is the dashboard listen port in serve mode.
	WebPort string

	// PersistResults controls whether backtest results are written to the
	// database. Requires the DB_* variables when enabled.
	PersistResults bool
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	Mode = getEnvOrDefault("CCYOE_MODE", "backtest")
	if Mode != "backtest" && Mode != "serve" {
		return errors.New("CCYOE_MODE must be 'backtest' or 'serve', got: " + Mode)
	}

	ScenarioPath = getEnvOrDefault("CCYOE_SCENARIO", "")
	if Mode == "backtest" && ScenarioPath == "" {
		return errors.New("environment variable CCYOE_SCENARIO is required in backtest mode")
	}

	WebPort = getEnvOrDefault("WEB_PORT", "8080")

	var err error
	PersistResults, err = getEnvAsBool("CCYOE_PERSIST", Mode == "serve")
	if err != nil {
		return err
	}
	if Mode == "serve" && !PersistResults {
		return errors.New("serve mode requires CCYOE_PERSIST=true, there is nothing to serve without the result store")
	}

	log.Debug().
		Str("Mode", Mode).
		Str("ScenarioPath", ScenarioPath).
		Bool("PersistResults", PersistResults).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnvOrDefault retrieves a string environment variable with a fallback.
func getEnvOrDefault(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsBool retrieves an environment variable as a bool. Returns the
// fallback when unset, an error when set but unparseable.
func getEnvAsBool(key string, fallback bool) (bool, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, errors.New("environment variable " + key + " must be a valid bool, got: " + valueStr)
	}
	return value, nil
}
