/*

This package implements the CCYOE allocation policy: the pure computation
that splits a step's total excess yield into the four redistribution buckets
and attributes bucket amounts to individual assets.

All arithmetic is integer basis points. Every split uses largest-remainder
rounding so that no basis point is created or destroyed; the conservation
invariant sum(asset amounts) + treasury == total excess holds exactly.

*/

package policy

import (
	"errors"
	"fmt"
	"math"

	sdkmath "cosmossdk.io/math"

	"github.com/usecambi/cambi-ccyoe/internal/logger"
	"github.com/usecambi/cambi-ccyoe/internal/types"
	"github.com/usecambi/cambi-ccyoe/internal/utils"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidConfig      = errors.New("allocation config is invalid")
	ErrConfigMismatch     = errors.New("snapshot asset missing from config")
	ErrMathematicalError  = errors.New("mathematical calculation error")
	ErrEmptySnapshot      = errors.New("snapshot contains no assets")
	ErrConservationBroken = errors.New("conservation invariant violated")
)

var policyLogger = logger.GetForComponent("allocation_policy")

// ValidateConfig performs full validation of an AllocationConfig. It is run
// once at engine construction, never per step.
func ValidateConfig(cfg types.AllocationConfig) error {
	fractions := []struct {
		name  string
		value float64
	}{
		{"under_supplied_allocation", cfg.UnderSuppliedAllocation},
		{"strategic_growth_allocation", cfg.StrategicGrowthAllocation},
		{"proportional_allocation", cfg.ProportionalAllocation},
		{"treasury_allocation", cfg.TreasuryAllocation},
	}

	sum := 0.0
	for _, f := range fractions {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return errors.Join(ErrInvalidConfig, fmt.Errorf("%s is not finite", f.name))
		}
		if f.value < 0 || f.value > 1 {
			return errors.Join(ErrInvalidConfig, fmt.Errorf("%s (%f) must be between 0 and 1", f.name, f.value))
		}
		sum += f.value
	}
	if math.Abs(sum-1.0) > types.FractionSumTolerance {
		return errors.Join(ErrInvalidConfig, fmt.Errorf("allocation fractions sum to %.12f, expected 1.0", sum))
	}

	if cfg.RebalanceThreshold < 0 {
		return errors.Join(ErrInvalidConfig, fmt.Errorf("rebalance threshold (%d bp) cannot be negative", cfg.RebalanceThreshold))
	}

	if len(cfg.TargetYields) == 0 {
		return errors.Join(ErrInvalidConfig, errors.New("target yields map is empty"))
	}
	for id, target := range cfg.TargetYields {
		if target < 0 {
			return errors.Join(ErrInvalidConfig, fmt.Errorf("target yield for %s (%d bp) cannot be negative", id, target))
		}
	}

	weightSum := 0.0
	for id := range cfg.TargetYields {
		weight, ok := cfg.HoldingsWeights[id]
		if !ok {
			return errors.Join(ErrInvalidConfig, fmt.Errorf("no holdings weight configured for asset %s", id))
		}
		if math.IsNaN(weight) || math.IsInf(weight, 0) {
			return errors.Join(ErrInvalidConfig, fmt.Errorf("holdings weight for %s is not finite", id))
		}
		if weight < 0 || weight > 1 {
			return errors.Join(ErrInvalidConfig, fmt.Errorf("holdings weight for %s (%f) must be between 0 and 1", id, weight))
		}
		weightSum += weight
	}
	if math.Abs(weightSum-1.0) > types.WeightSumTolerance {
		return errors.Join(ErrInvalidConfig, fmt.Errorf("holdings weights sum to %.9f, expected 1.0", weightSum))
	}
	for id := range cfg.HoldingsWeights {
		if _, ok := cfg.TargetYields[id]; !ok {
			return errors.Join(ErrInvalidConfig, fmt.Errorf("holdings weight for unknown asset %s", id))
		}
	}

	if len(cfg.StrategicWeights) > 0 {
		strategicSum := 0.0
		for id, weight := range cfg.StrategicWeights {
			if _, ok := cfg.TargetYields[id]; !ok {
				return errors.Join(ErrInvalidConfig, fmt.Errorf("strategic weight for unknown asset %s", id))
			}
			if math.IsNaN(weight) || math.IsInf(weight, 0) {
				return errors.Join(ErrInvalidConfig, fmt.Errorf("strategic weight for %s is not finite", id))
			}
			if weight < 0 || weight > 1 {
				return errors.Join(ErrInvalidConfig, fmt.Errorf("strategic weight for %s (%f) must be between 0 and 1", id, weight))
			}
			strategicSum += weight
		}
		if math.Abs(strategicSum-1.0) > types.WeightSumTolerance {
			return errors.Join(ErrInvalidConfig, fmt.Errorf("strategic weights sum to %.9f, expected 1.0", strategicSum))
		}
	}

	if cfg.PeriodsPerYear < 0 {
		return errors.Join(ErrInvalidConfig, fmt.Errorf("periods per year (%d) cannot be negative", cfg.PeriodsPerYear))
	}

	return nil
}

// ClassifyYields is the policy's first pass: it computes each asset's excess
// and deficit relative to its target and the aggregate excess across all
// assets. Assets with positive excess are sources, assets with positive
// deficit are sinks.
func ClassifyYields(snapshot types.YieldSnapshot, cfg types.AllocationConfig) (sources map[types.AssetID]int64, sinks map[types.AssetID]int64, totalExcess int64, err error) {
	if len(snapshot.Yields) == 0 {
		return nil, nil, 0, ErrEmptySnapshot
	}

	sources = make(map[types.AssetID]int64)
	sinks = make(map[types.AssetID]int64)

	for _, id := range snapshot.AssetIDs() {
		target, ok := cfg.TargetYields[id]
		if !ok {
			return nil, nil, 0, errors.Join(ErrConfigMismatch, fmt.Errorf("asset %s has no target yield", id))
		}
		weight, ok := cfg.HoldingsWeights[id]
		if !ok {
			return nil, nil, 0, errors.Join(ErrConfigMismatch, fmt.Errorf("asset %s has no holdings weight", id))
		}

		asset := types.Asset{
			ID:             id,
			CurrentYield:   snapshot.Yields[id],
			TargetYield:    target,
			HoldingsWeight: weight,
		}
		if excess := asset.ExcessYield(); excess > 0 {
			sources[id] = excess
			totalExcess += excess
		} else if deficit := asset.DeficitYield(); deficit > 0 {
			sinks[id] = deficit
		}
	}

	return sources, sinks, totalExcess, nil
}

// ComputeAllocation evaluates the full allocation policy for one snapshot.
// It is a pure function of its inputs and has no side effects.
func ComputeAllocation(snapshot types.YieldSnapshot, cfg types.AllocationConfig) (types.AllocationOutcome, error) {
	sources, sinks, totalExcess, err := ClassifyYields(snapshot, cfg)
	if err != nil {
		return types.AllocationOutcome{}, err
	}

	outcome := types.AllocationOutcome{
		TotalExcess:  totalExcess,
		Buckets:      make(map[types.Bucket]int64, len(types.BucketOrder)),
		AssetAmounts: make(map[types.AssetID]int64, len(snapshot.Yields)),
		SourceExcess: sources,
		SinkDeficits: sinks,
	}

	// Nothing over target anywhere: empty outcome, no redistribution.
	if totalExcess == 0 {
		return outcome, nil
	}

	assetIDs := snapshot.AssetIDs()

	// Split total excess into the four buckets in fixed order.
	bucketWeights := []sdkmath.LegacyDec{
		utils.MustFloat64ToLegacyDec(cfg.UnderSuppliedAllocation),
		utils.MustFloat64ToLegacyDec(cfg.StrategicGrowthAllocation),
		utils.MustFloat64ToLegacyDec(cfg.ProportionalAllocation),
		utils.MustFloat64ToLegacyDec(cfg.TreasuryAllocation),
	}
	bucketAmounts, err := splitByWeights(totalExcess, bucketWeights)
	if err != nil {
		return types.AllocationOutcome{}, errors.Join(ErrMathematicalError, err)
	}

	underSupplied := bucketAmounts[0]
	strategic := bucketAmounts[1]
	proportional := bucketAmounts[2]
	treasury := bucketAmounts[3]

	// No under-supplied asset to receive the bucket: redirect it into the
	// proportional bucket rather than the treasury, so the value still
	// reaches asset holders.
	if len(sinks) == 0 && underSupplied > 0 {
		policyLogger.Debug().
			Int64("redirectedBP", underSupplied).
			Msg("No sink assets; redirecting under-supplied bucket to proportional")
		proportional += underSupplied
		underSupplied = 0
	}

	outcome.Buckets[types.BucketUnderSupplied] = underSupplied
	outcome.Buckets[types.BucketStrategicGrowth] = strategic
	outcome.Buckets[types.BucketProportional] = proportional
	outcome.Buckets[types.BucketTreasury] = treasury
	outcome.Treasury = treasury

	for _, id := range assetIDs {
		outcome.AssetAmounts[id] = 0
	}

	// Under-supplied bucket: sinks only, weighted by each asset's deficit.
	if underSupplied > 0 {
		sinkIDs := make([]types.AssetID, 0, len(sinks))
		for _, id := range assetIDs {
			if _, ok := sinks[id]; ok {
				sinkIDs = append(sinkIDs, id)
			}
		}
		weights := make([]sdkmath.LegacyDec, len(sinkIDs))
		for i, id := range sinkIDs {
			weights[i] = sdkmath.LegacyNewDec(sinks[id])
		}
		amounts, err := splitByWeights(underSupplied, weights)
		if err != nil {
			return types.AllocationOutcome{}, errors.Join(ErrMathematicalError, err)
		}
		for i, id := range sinkIDs {
			outcome.AssetAmounts[id] += amounts[i]
		}
	}

	// Strategic growth bucket: configured weights, defaulting to an equal
	// split across all assets, sources included.
	if strategic > 0 {
		weights := make([]sdkmath.LegacyDec, len(assetIDs))
		for i, id := range assetIDs {
			if len(cfg.StrategicWeights) > 0 {
				weights[i] = utils.MustFloat64ToLegacyDec(cfg.StrategicWeights[id])
			} else {
				weights[i] = sdkmath.LegacyOneDec()
			}
		}
		amounts, err := splitByWeights(strategic, weights)
		if err != nil {
			return types.AllocationOutcome{}, errors.Join(ErrMathematicalError, err)
		}
		for i, id := range assetIDs {
			outcome.AssetAmounts[id] += amounts[i]
		}
	}

	// Proportional bucket: all assets, weighted by holdings weight.
	if proportional > 0 {
		weights := make([]sdkmath.LegacyDec, len(assetIDs))
		for i, id := range assetIDs {
			weights[i] = utils.MustFloat64ToLegacyDec(cfg.HoldingsWeights[id])
		}
		amounts, err := splitByWeights(proportional, weights)
		if err != nil {
			return types.AllocationOutcome{}, errors.Join(ErrMathematicalError, err)
		}
		for i, id := range assetIDs {
			outcome.AssetAmounts[id] += amounts[i]
		}
	}

	// Conservation check: the treasury scalar plus every per-asset amount
	// must reproduce the total excess exactly.
	distributed := treasury
	for _, amount := range outcome.AssetAmounts {
		distributed += amount
	}
	if distributed != totalExcess {
		policyLogger.Error().
			Int64("distributedBP", distributed).
			Int64("totalExcessBP", totalExcess).
			Msg("Conservation invariant violated")
		return types.AllocationOutcome{}, errors.Join(ErrConservationBroken,
			fmt.Errorf("distributed %d bp of %d bp total excess", distributed, totalExcess))
	}

	return outcome, nil
}

// splitByWeights divides total basis points across weights using the
// largest-remainder method: each share is floored, then the leftover units
// are handed out one by one in order of descending fractional remainder,
// ties going to the lowest index. The returned amounts always sum to total.
func splitByWeights(total int64, weights []sdkmath.LegacyDec) ([]int64, error) {
	if total < 0 {
		return nil, fmt.Errorf("cannot split negative total: %d", total)
	}
	if len(weights) == 0 {
		return nil, errors.New("no weights to split across")
	}

	amounts := make([]int64, len(weights))
	if total == 0 {
		return amounts, nil
	}

	weightSum := sdkmath.LegacyZeroDec()
	for i, w := range weights {
		if w.IsNegative() {
			return nil, fmt.Errorf("weight %d is negative: %s", i, w)
		}
		weightSum = weightSum.Add(w)
	}
	if weightSum.IsZero() {
		return nil, errors.New("weights sum to zero")
	}

	remainders := make([]sdkmath.LegacyDec, len(weights))
	var floorSum int64
	for i, w := range weights {
		ideal := w.Quo(weightSum).MulInt64(total)
		floor := ideal.TruncateInt64()
		amounts[i] = floor
		remainders[i] = ideal.Sub(sdkmath.LegacyNewDec(floor))
		floorSum += floor
	}

	leftover := total - floorSum
	if leftover < 0 || leftover > int64(len(weights)) {
		return nil, fmt.Errorf("largest-remainder leftover out of range: %d", leftover)
	}

	// Hand out the leftover units by descending remainder, lowest index
	// first on ties.
	for ; leftover > 0; leftover-- {
		best := -1
		for i := range remainders {
			if best == -1 || remainders[i].GT(remainders[best]) {
				best = i
			}
		}
		amounts[best]++
		remainders[best] = sdkmath.LegacyNewDec(-1)
	}

	return amounts, nil
}
