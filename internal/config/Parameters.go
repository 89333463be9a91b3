/*

This file contains the default allocation parameters for the CCYOE.

These defaults describe the protocol's three collateral-backed assets and
the baseline redistribution policy. They are used when a scenario file does
not override them.

*/

package config

import (
	"github.com/usecambi/cambi-ccyoe/internal/types"
)

// DefaultAllocationConfig provides the baseline redistribution policy.
var DefaultAllocationConfig = types.AllocationConfig{
	// --- Bucket Fractions ---
	UnderSuppliedAllocation: 0.40, // Largest share goes to under-supplied assets.
	// Rationale: closing yield deficits is the engine's primary job; assets
	// trading below target erode holder confidence fastest.

	StrategicGrowthAllocation: 0.30, // Directed growth incentives.
	// Rationale: strategic weights let governance boost specific assets
	// without changing targets, e.g. to bootstrap a new collateral type.

	ProportionalAllocation: 0.20, // Broad-based share by holdings weight.
	// Rationale: every holder participates in the upside, proportional to
	// their share of protocol value.

	TreasuryAllocation: 0.10, // Protocol reserve.
	// Rationale: a small retained buffer funds operations and absorbs
	// shortfalls in lean periods.

	// --- Trigger ---
	RebalanceThreshold: 100, // Fire once accumulated excess reaches 100 bp.
	// Rationale: redistributing on every basis point of drift would thrash
	// the on-chain executor; 100 bp batches the flow into meaningful events.

	// --- Per-Asset Targets (basis points) ---
	TargetYields: map[types.AssetID]int64{
		"cmBTC": 500,  // BTC-backed: conservative wrapped-collateral yield.
		"cmUSD": 1400, // USD-backed: anchored to Brazilian fixed-income rates.
		"cmBRL": 2000, // BRL-backed: highest target, carries the FX premium.
	},

	// --- Holdings Weights (shares of total protocol value) ---
	HoldingsWeights: map[types.AssetID]float64{
		"cmBTC": 0.25,
		"cmUSD": 0.45,
		"cmBRL": 0.30,
	},

	// StrategicWeights left empty: the strategic growth bucket splits
	// equally until governance sets explicit weights.

	PeriodsPerYear: types.DefaultPeriodsPerYear,
}
