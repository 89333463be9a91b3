package policy

import (
	"testing"
)

func TestShouldRebalance(t *testing.T) {
	tests := []struct {
		name        string
		accumulated int64
		threshold   int64
		want        bool
	}{
		{"below threshold", 99, 100, false},
		{"exactly at threshold", 100, 100, true},
		{"above threshold", 101, 100, true},
		{"zero accumulated", 0, 100, false},
		{"zero threshold always fires", 0, 0, true},
		{"large accumulation", 1 << 40, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.RebalanceThreshold = tt.threshold
			if got := ShouldRebalance(tt.accumulated, cfg); got != tt.want {
				t.Fatalf("ShouldRebalance(%d, threshold=%d) = %v, want %v",
					tt.accumulated, tt.threshold, got, tt.want)
			}
		})
	}
}
