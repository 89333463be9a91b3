package policy

import (
	"github.com/usecambi/cambi-ccyoe/internal/types"
)

// ShouldRebalance reports whether accumulated excess has reached the
// configured threshold. The trigger itself is stateless; the caller owns
// the accumulator.
func ShouldRebalance(accumulatedExcessBP int64, cfg types.AllocationConfig) bool {
	return accumulatedExcessBP >= cfg.RebalanceThreshold
}
