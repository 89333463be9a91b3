package report

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/usecambi/cambi-ccyoe/internal/types"
)

func sampleResult() *types.BacktestResult {
	return &types.BacktestResult{
		RunID:     uuid.MustParse("4f5e6d7c-0000-4000-8000-000000000001"),
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Steps:     91,
		Metrics: types.PerformanceMetrics{
			TotalReturn:    0.0345,
			SharpeRatio:    1.87,
			MaxDrawdown:    0.012,
			RebalanceCount: 14,
			AvgExcessYield: 62.5,
			YieldImprovement: map[types.AssetID]float64{
				"cmUSD": 38.2,
				"cmBTC": 4.1,
				"cmBRL": -1.5,
			},
		},
	}
}

func TestGenerateSortsImprovements(t *testing.T) {
	rep := Generate(sampleResult())

	if len(rep.Improvements) != 3 {
		t.Fatalf("improvements = %d, want 3", len(rep.Improvements))
	}
	for i := 1; i < len(rep.Improvements); i++ {
		if rep.Improvements[i-1].Asset >= rep.Improvements[i].Asset {
			t.Fatalf("improvements not sorted: %v", rep.Improvements)
		}
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	result := sampleResult()

	first := Generate(result).String()
	second := Generate(result).String()
	if first != second {
		t.Fatal("generating the report twice produced different output")
	}
}

func TestStringContainsHeadlineFigures(t *testing.T) {
	rendered := Generate(sampleResult()).String()

	for _, want := range []string{
		"4f5e6d7c-0000-4000-8000-000000000001",
		"2024-01-01 00:00:00 to 2024-03-31 00:00:00 (91 steps)",
		"3.4500%", // total return
		"1.8700",  // sharpe
		"1.2000%", // max drawdown
		"Rebalances:       14",
		"62.50 bp",
		"cmUSD",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("report missing %q:\n%s", want, rendered)
		}
	}
}

func TestWriteMatchesString(t *testing.T) {
	rep := Generate(sampleResult())

	var sb strings.Builder
	if err := rep.Write(&sb); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if sb.String() != rep.String() {
		t.Fatal("Write output differs from String output")
	}
}
