/*

This file contains the types describing the collateral-backed assets whose
yields the CCYOE observes and redistributes.

*/

package types

// AssetID identifies a collateral-backed asset, e.g. "cmBTC".
type AssetID string

// Asset describes one collateral-backed asset tracked by the engine.
type Asset struct {
	ID             AssetID `json:"id"`
	CurrentYield   int64   `json:"current_yield_bp"` // Observed yield in basis points
	TargetYield    int64   `json:"target_yield_bp"`  // Configured target yield in basis points
	HoldingsWeight float64 `json:"holdings_weight"`  // Share of total protocol value (0.0 to 1.0)
}

// ExcessYield is how far the asset trades above its target, zero when it
// does not. An asset with positive excess is a redistribution source.
func (a Asset) ExcessYield() int64 {
	if a.CurrentYield > a.TargetYield {
		return a.CurrentYield - a.TargetYield
	}
	return 0
}

// DeficitYield is how far the asset trades below its target, zero when it
// does not. An asset with positive deficit is a redistribution sink.
func (a Asset) DeficitYield() int64 {
	if a.CurrentYield < a.TargetYield {
		return a.TargetYield - a.CurrentYield
	}
	return 0
}
