/*

This file contains the yield snapshot type, the immutable per-step observation
consumed by the backtester and the optimization engine.

*/

package types

import (
	"sort"
	"time"
)

// YieldSnapshot records the observed yield of every tracked asset at one
// point in time. Snapshots are immutable once recorded; they are produced by
// the external data source and never mutated by the engine.
type YieldSnapshot struct {
	Timestamp time.Time         `json:"timestamp"`
	Yields    map[AssetID]int64 `json:"yields_bp"` // Asset -> observed yield in basis points
}

// AssetIDs returns the snapshot's asset identifiers in ascending order.
// All per-asset iteration in the engine goes through this so that rounding
// tie-breaks are deterministic across runs.
func (s YieldSnapshot) AssetIDs() []AssetID {
	ids := make([]AssetID, 0, len(s.Yields))
	for id := range s.Yields {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
