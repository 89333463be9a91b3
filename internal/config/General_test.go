package config

import (
	"testing"
)

func TestLoadConfigBacktestMode(t *testing.T) {
	t.Setenv("CCYOE_MODE", "backtest")
	t.Setenv("CCYOE_SCENARIO", "/scenarios/basic.yaml")
	t.Setenv("CCYOE_PERSIST", "false")

	if err := LoadConfig(); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if Mode != "backtest" {
		t.Errorf("Mode = %q, want backtest", Mode)
	}
	if ScenarioPath != "/scenarios/basic.yaml" {
		t.Errorf("ScenarioPath = %q", ScenarioPath)
	}
	if PersistResults {
		t.Error("PersistResults = true, want false")
	}
}

func TestLoadConfigServeMode(t *testing.T) {
	t.Setenv("CCYOE_MODE", "serve")
	t.Setenv("CCYOE_SCENARIO", "")
	t.Setenv("WEB_PORT", "9090")

	if err := LoadConfig(); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if WebPort != "9090" {
		t.Errorf("WebPort = %q, want 9090", WebPort)
	}
	if !PersistResults {
		t.Error("serve mode must default PersistResults to true")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "unknown mode",
			env:  map[string]string{"CCYOE_MODE": "replay"},
		},
		{
			name: "backtest without scenario",
			env:  map[string]string{"CCYOE_MODE": "backtest", "CCYOE_SCENARIO": ""},
		},
		{
			name: "serve without persistence",
			env:  map[string]string{"CCYOE_MODE": "serve", "CCYOE_PERSIST": "false"},
		},
		{
			name: "unparseable persist flag",
			env: map[string]string{
				"CCYOE_MODE": "backtest", "CCYOE_SCENARIO": "s.yaml", "CCYOE_PERSIST": "maybe",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			if err := LoadConfig(); err == nil {
				t.Fatal("expected configuration error, got nil")
			}
		})
	}
}
