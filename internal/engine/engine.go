/*

This package contains the optimization engine, which orchestrates the
allocation policy and the rebalance trigger for a single time step.

*/

package engine

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/usecambi/cambi-ccyoe/internal/logger"
	"github.com/usecambi/cambi-ccyoe/internal/policy"
	"github.com/usecambi/cambi-ccyoe/internal/types"
)

// State carries the engine's per-run state between steps: the excess
// accumulated since the last rebalance event and each asset's effective
// (post-redistribution) yield.
type State struct {
	AccumulatedExcess int64                   `json:"accumulated_excess_bp"`
	EffectiveYields   map[types.AssetID]int64 `json:"effective_yields_bp"`
}

// NewState returns the initial state for a run: nothing accumulated, no
// effective yields until the first snapshot is processed.
func NewState() State {
	return State{EffectiveYields: make(map[types.AssetID]int64)}
}

// Engine applies the allocation policy and the rebalance trigger to one
// snapshot at a time. The configuration is validated once at construction
// and is immutable for the engine's lifetime.
type Engine struct {
	cfg    types.AllocationConfig
	logger zerolog.Logger
}

// New validates the configuration and constructs an engine. An invalid
// configuration is fatal here; it is never re-checked per step.
func New(cfg types.AllocationConfig) (*Engine, error) {
	if cfg.PeriodsPerYear == 0 {
		cfg.PeriodsPerYear = types.DefaultPeriodsPerYear
	}
	if err := policy.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("engine construction failed: %w", err)
	}

	return &Engine{
		cfg:    cfg,
		logger: logger.GetForComponent("optimization_engine"),
	}, nil
}

// Config returns the engine's validated configuration.
func (e *Engine) Config() types.AllocationConfig {
	return e.cfg
}

// Step processes one snapshot. The step excess is added to the accumulator;
// when the accumulator reaches the threshold the full policy runs, amounts
// are applied to effective yields, the accumulator resets and a rebalance
// event is emitted. Otherwise the accumulator carries forward and effective
// yields track the observed yields unchanged.
func (e *Engine) Step(state State, snapshot types.YieldSnapshot) (State, *types.RebalanceEvent, error) {
	_, _, stepExcess, err := policy.ClassifyYields(snapshot, e.cfg)
	if err != nil {
		return State{}, nil, err
	}

	next := State{
		AccumulatedExcess: state.AccumulatedExcess + stepExcess,
		EffectiveYields:   make(map[types.AssetID]int64, len(snapshot.Yields)),
	}
	for id, observed := range snapshot.Yields {
		next.EffectiveYields[id] = observed
	}

	if !policy.ShouldRebalance(next.AccumulatedExcess, e.cfg) {
		e.logger.Debug().
			Time("timestamp", snapshot.Timestamp).
			Int64("stepExcessBP", stepExcess).
			Int64("accumulatedBP", next.AccumulatedExcess).
			Int64("thresholdBP", e.cfg.RebalanceThreshold).
			Msg("Threshold not reached, carrying accumulator forward")
		return next, nil, nil
	}

	outcome, err := policy.ComputeAllocation(snapshot, e.cfg)
	if err != nil {
		return State{}, nil, err
	}

	// The accumulator crossed the threshold but the current snapshot has
	// nothing to redistribute. No event fires; the accumulator carries
	// until a snapshot with actual excess arrives.
	if outcome.IsEmpty() {
		return next, nil, nil
	}

	for id, amount := range outcome.AssetAmounts {
		next.EffectiveYields[id] += amount
	}
	next.AccumulatedExcess = 0

	event := &types.RebalanceEvent{
		Timestamp:    snapshot.Timestamp,
		TotalExcess:  outcome.TotalExcess,
		Buckets:      outcome.Buckets,
		AssetAmounts: outcome.AssetAmounts,
		Treasury:     outcome.Treasury,
	}

	e.logger.Info().
		Time("timestamp", event.Timestamp).
		Int64("totalExcessBP", event.TotalExcess).
		Int64("treasuryBP", event.Treasury).
		Int("assetsCredited", len(event.AssetAmounts)).
		Msg("Rebalance event fired")

	return next, event, nil
}
