/*

This package loads backtest scenarios from YAML files. A scenario names a
yield history file and carries the allocation configuration for the run.

*/

package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/usecambi/cambi-ccyoe/internal/logger"
	"github.com/usecambi/cambi-ccyoe/internal/policy"
	"github.com/usecambi/cambi-ccyoe/internal/types"
)

var ErrInvalidScenario = errors.New("scenario file is invalid")

var scenarioLogger = logger.GetForComponent("scenario_loader")

// Scenario is one complete backtest definition.
type Scenario struct {
	Name       string                 `yaml:"name"`
	DataFile   string                 `yaml:"data_file"`
	Allocation types.AllocationConfig `yaml:"allocation"`
}

// Load parses and validates a scenario file. Unknown YAML keys are ignored;
// an allocation config that fails validation is rejected here, before any
// engine is constructed. A relative DataFile resolves against the scenario
// file's directory.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, errors.Join(ErrInvalidScenario, err)
	}

	if s.Name == "" {
		s.Name = filepath.Base(path)
	}
	if s.DataFile == "" {
		return nil, errors.Join(ErrInvalidScenario, errors.New("data_file is required"))
	}
	if !filepath.IsAbs(s.DataFile) {
		s.DataFile = filepath.Join(filepath.Dir(path), s.DataFile)
	}

	if err := policy.ValidateConfig(s.Allocation); err != nil {
		return nil, errors.Join(ErrInvalidScenario, err)
	}

	scenarioLogger.Info().
		Str("name", s.Name).
		Str("dataFile", s.DataFile).
		Int("assets", len(s.Allocation.TargetYields)).
		Msg("Scenario loaded")

	return &s, nil
}
