package engine

import (
	"testing"
	"time"

	"github.com/usecambi/cambi-ccyoe/internal/types"
)

func testConfig() types.AllocationConfig {
	return types.AllocationConfig{
		UnderSuppliedAllocation:   0.40,
		StrategicGrowthAllocation: 0.30,
		ProportionalAllocation:    0.20,
		TreasuryAllocation:        0.10,
		RebalanceThreshold:        100,
		TargetYields: map[types.AssetID]int64{
			"cmBTC": 500,
			"cmUSD": 1400,
			"cmBRL": 2000,
		},
		HoldingsWeights: map[types.AssetID]float64{
			"cmBTC": 0.25,
			"cmUSD": 0.45,
			"cmBRL": 0.30,
		},
		PeriodsPerYear: 365,
	}
}

func snapshotAt(day int, yields map[types.AssetID]int64) types.YieldSnapshot {
	return types.YieldSnapshot{
		Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		Yields:    yields,
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.TreasuryAllocation = 0.5
	if _, err := New(cfg); err == nil {
		t.Fatal("expected constructor error for invalid config")
	}
}

func TestNewDefaultsPeriodsPerYear(t *testing.T) {
	cfg := testConfig()
	cfg.PeriodsPerYear = 0
	eng, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := eng.Config().PeriodsPerYear; got != types.DefaultPeriodsPerYear {
		t.Fatalf("PeriodsPerYear = %d, want %d", got, types.DefaultPeriodsPerYear)
	}
}

func TestStepAccumulatesBelowThreshold(t *testing.T) {
	eng, err := New(testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// 50 bp excess: below the 100 bp threshold.
	snapshot := snapshotAt(0, map[types.AssetID]int64{
		"cmBTC": 500,
		"cmUSD": 1400,
		"cmBRL": 2050,
	})

	state, event, err := eng.Step(NewState(), snapshot)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if event != nil {
		t.Fatalf("expected no event below threshold, got %+v", event)
	}
	if state.AccumulatedExcess != 50 {
		t.Fatalf("accumulated excess = %d, want 50", state.AccumulatedExcess)
	}
	for id, observed := range snapshot.Yields {
		if state.EffectiveYields[id] != observed {
			t.Errorf("effective yield for %s = %d, want observed %d", id, state.EffectiveYields[id], observed)
		}
	}
}

func TestStepFiresAndResetsAccumulator(t *testing.T) {
	eng, err := New(testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	state := NewState()

	// Day 0: 50 bp, carries.
	state, event, err := eng.Step(state, snapshotAt(0, map[types.AssetID]int64{
		"cmBTC": 500, "cmUSD": 1400, "cmBRL": 2050,
	}))
	if err != nil {
		t.Fatalf("step 0 failed: %v", err)
	}
	if event != nil {
		t.Fatal("step 0 should not fire")
	}

	// Day 1: 60 bp pushes the accumulator to 110, over the threshold.
	snapshot := snapshotAt(1, map[types.AssetID]int64{
		"cmBTC": 500, "cmUSD": 1400, "cmBRL": 2060,
	})
	state, event, err = eng.Step(state, snapshot)
	if err != nil {
		t.Fatalf("step 1 failed: %v", err)
	}
	if event == nil {
		t.Fatal("step 1 should fire a rebalance event")
	}
	if state.AccumulatedExcess != 0 {
		t.Fatalf("accumulator = %d after event, want 0", state.AccumulatedExcess)
	}

	// The event redistributes the step's own 60 bp excess.
	if event.TotalExcess != 60 {
		t.Fatalf("event total excess = %d, want 60", event.TotalExcess)
	}
	if event.Timestamp != snapshot.Timestamp {
		t.Fatalf("event timestamp = %s, want %s", event.Timestamp, snapshot.Timestamp)
	}

	// Effective yields are observed plus the credited amounts, and the
	// credited amounts plus treasury conserve the total.
	var credited int64
	for id, effective := range state.EffectiveYields {
		credited += effective - snapshot.Yields[id]
	}
	if credited+event.Treasury != event.TotalExcess {
		t.Fatalf("credited %d bp + treasury %d bp != total %d bp", credited, event.Treasury, event.TotalExcess)
	}
}

func TestStepNoEventWhenNothingToRedistribute(t *testing.T) {
	cfg := testConfig()
	cfg.RebalanceThreshold = 0 // trigger always satisfied
	eng, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Everything at target: the trigger passes but the outcome is empty.
	state, event, err := eng.Step(NewState(), snapshotAt(0, map[types.AssetID]int64{
		"cmBTC": 500, "cmUSD": 1400, "cmBRL": 2000,
	}))
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if event != nil {
		t.Fatalf("expected no event for a balanced snapshot, got %+v", event)
	}
	if state.AccumulatedExcess != 0 {
		t.Fatalf("accumulated excess = %d, want 0", state.AccumulatedExcess)
	}
}

func TestStepRejectsUnknownAsset(t *testing.T) {
	eng, err := New(testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, _, err = eng.Step(NewState(), snapshotAt(0, map[types.AssetID]int64{
		"cmXAU": 900,
	}))
	if err == nil {
		t.Fatal("expected error for unconfigured asset")
	}
}
