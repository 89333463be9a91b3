/*

This file contains the allocation configuration and the types produced by the
allocation policy: the per-step outcome and the rebalance event emitted when
the trigger fires.

*/

package types

import (
	"sort"
	"time"
)

// Bucket names one of the four fixed-purpose shares into which total excess
// yield is split before per-asset attribution.
type Bucket string

const (
	BucketUnderSupplied   Bucket = "UNDER_SUPPLIED"
	BucketStrategicGrowth Bucket = "STRATEGIC_GROWTH"
	BucketProportional    Bucket = "PROPORTIONAL"
	BucketTreasury        Bucket = "TREASURY"
)

// BucketOrder is the fixed order in which buckets are split and attributed.
// Largest-remainder rounding resolves ties in this order.
var BucketOrder = [4]Bucket{
	BucketUnderSupplied,
	BucketStrategicGrowth,
	BucketProportional,
	BucketTreasury,
}

// AllocationConfig holds every parameter of one optimization run. It is
// constructed and validated once, then passed explicitly into each policy
// evaluation; there is no ambient or global engine configuration.
type AllocationConfig struct {
	// Bucket fractions. Must sum to 1.0 within FractionSumTolerance.
	UnderSuppliedAllocation   float64 `json:"under_supplied_allocation" yaml:"under_supplied_allocation"`
	StrategicGrowthAllocation float64 `json:"strategic_growth_allocation" yaml:"strategic_growth_allocation"`
	ProportionalAllocation    float64 `json:"proportional_allocation" yaml:"proportional_allocation"`
	TreasuryAllocation        float64 `json:"treasury_allocation" yaml:"treasury_allocation"`

	// RebalanceThreshold is the accumulated excess, in basis points, at
	// which a redistribution event fires.
	RebalanceThreshold int64 `json:"rebalance_threshold_bp" yaml:"rebalance_threshold_bp"`

	// TargetYields maps every tracked asset to its target yield in basis
	// points. An asset appearing in a snapshot without a target here is a
	// config mismatch.
	TargetYields map[AssetID]int64 `json:"target_yields_bp" yaml:"target_yields_bp"`

	// HoldingsWeights maps every tracked asset to its share of total
	// protocol value. Must sum to 1.0 within WeightSumTolerance.
	HoldingsWeights map[AssetID]float64 `json:"holdings_weights" yaml:"holdings_weights"`

	// StrategicWeights distributes the strategic growth bucket. Optional;
	// when empty the bucket is split equally across all assets.
	StrategicWeights map[AssetID]float64 `json:"strategic_weights,omitempty" yaml:"strategic_weights,omitempty"`

	// PeriodsPerYear converts per-step yields into per-period returns and
	// annualizes the Sharpe ratio. Defaults to 365 (daily snapshots).
	PeriodsPerYear int `json:"periods_per_year" yaml:"periods_per_year"`
}

const (
	// FractionSumTolerance is the permitted deviation of the four bucket
	// fractions from 1.0.
	FractionSumTolerance = 1e-9

	// WeightSumTolerance is the permitted deviation of holdings or
	// strategic weights from 1.0.
	WeightSumTolerance = 1e-6

	// DefaultPeriodsPerYear assumes one snapshot per day.
	DefaultPeriodsPerYear = 365
)

// AssetIDs returns the configured asset identifiers in ascending order.
func (c AllocationConfig) AssetIDs() []AssetID {
	ids := make([]AssetID, 0, len(c.TargetYields))
	for id := range c.TargetYields {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AllocationOutcome is the result of one policy evaluation: how the step's
// total excess splits across buckets and assets. The conservation invariant
// holds exactly: sum(AssetAmounts) + Treasury == TotalExcess.
type AllocationOutcome struct {
	TotalExcess  int64             `json:"total_excess_bp"`
	Buckets      map[Bucket]int64  `json:"buckets_bp"`
	AssetAmounts map[AssetID]int64 `json:"asset_amounts_bp"`
	Treasury     int64             `json:"treasury_bp"`

	// First-pass source/sink attribution, kept for logging and diagnostics.
	SourceExcess map[AssetID]int64 `json:"source_excess_bp,omitempty"`
	SinkDeficits map[AssetID]int64 `json:"sink_deficits_bp,omitempty"`
}

// IsEmpty reports whether the outcome redistributes nothing.
func (o AllocationOutcome) IsEmpty() bool {
	return o.TotalExcess == 0
}

// RebalanceEvent is the discrete redistribution record emitted when the
// trigger fires. Events are append-only: once created they are never
// mutated. The on-chain executor consumes them as transfer instructions.
type RebalanceEvent struct {
	Timestamp    time.Time         `json:"timestamp"`
	TotalExcess  int64             `json:"total_excess_bp"`
	Buckets      map[Bucket]int64  `json:"buckets_bp"`
	AssetAmounts map[AssetID]int64 `json:"asset_amounts_bp"`
	Treasury     int64             `json:"treasury_bp"`
}
