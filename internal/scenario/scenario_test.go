package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const validAllocationYAML = `allocation:
  under_supplied_allocation: 0.40
  strategic_growth_allocation: 0.30
  proportional_allocation: 0.20
  treasury_allocation: 0.10
  rebalance_threshold_bp: 100
  target_yields_bp:
    cmBTC: 500
    cmUSD: 1400
    cmBRL: 2000
  holdings_weights:
    cmBTC: 0.25
    cmUSD: 0.45
    cmBRL: 0.30
  periods_per_year: 365
`

const validScenarioYAML = "name: brl-premium-q1\ndata_file: yields.csv\n" + validAllocationYAML

func writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeScenario(t, "scenario.yaml", validScenarioYAML)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.Name != "brl-premium-q1" {
		t.Errorf("name = %q, want brl-premium-q1", s.Name)
	}
	// Relative data file resolves against the scenario's directory.
	wantData := filepath.Join(filepath.Dir(path), "yields.csv")
	if s.DataFile != wantData {
		t.Errorf("data file = %q, want %q", s.DataFile, wantData)
	}
	if s.Allocation.RebalanceThreshold != 100 {
		t.Errorf("threshold = %d, want 100", s.Allocation.RebalanceThreshold)
	}
	if s.Allocation.TargetYields["cmBRL"] != 2000 {
		t.Errorf("cmBRL target = %d, want 2000", s.Allocation.TargetYields["cmBRL"])
	}
}

func TestLoadDefaultsNameToFilename(t *testing.T) {
	content := "data_file: yields.csv\n" + validAllocationYAML
	path := writeScenario(t, "unnamed.yaml", content)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Name != "unnamed.yaml" {
		t.Errorf("name = %q, want unnamed.yaml", s.Name)
	}
}

func TestLoadKeepsAbsoluteDataFile(t *testing.T) {
	abs := filepath.Join(string(filepath.Separator), "data", "yields.csv")
	content := "name: abs\ndata_file: " + abs + "\n" + validAllocationYAML
	path := writeScenario(t, "abs.yaml", content)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.DataFile != abs {
		t.Errorf("data file = %q, want %q", s.DataFile, abs)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing data_file",
			content: "name: nodata\n",
		},
		{
			name:    "not yaml",
			content: "{{{{",
		},
		{
			name: "invalid allocation",
			content: `name: bad
data_file: yields.csv
allocation:
  under_supplied_allocation: 0.9
  strategic_growth_allocation: 0.3
  proportional_allocation: 0.2
  treasury_allocation: 0.1
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, "scenario.yaml", tt.content)
			_, err := Load(path)
			if !errors.Is(err, ErrInvalidScenario) {
				t.Fatalf("expected ErrInvalidScenario, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
