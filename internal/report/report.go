/*

This package renders a completed backtest result into a human-readable
performance report. It performs no new computation: every figure comes
straight from the BacktestResult, so generating the report twice for the
same result yields identical output.

*/

package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/usecambi/cambi-ccyoe/internal/types"
)

// AssetImprovement is one asset's average yield improvement over the run.
type AssetImprovement struct {
	Asset         types.AssetID `json:"asset"`
	ImprovementBP float64       `json:"improvement_bp"`
}

// Report is a read-only view over a completed BacktestResult.
type Report struct {
	RunID            string             `json:"run_id"`
	StartTime        string             `json:"start_time"`
	EndTime          string             `json:"end_time"`
	Steps            int                `json:"steps"`
	TotalReturn      float64            `json:"total_return"`
	SharpeRatio      float64            `json:"sharpe_ratio"`
	MaxDrawdown      float64            `json:"max_drawdown"`
	RebalanceCount   int                `json:"rebalance_count"`
	AvgExcessYieldBP float64            `json:"avg_excess_yield_bp"`
	Improvements     []AssetImprovement `json:"improvements"`
}

// Generate builds the report view for a completed result.
func Generate(result *types.BacktestResult) Report {
	improvements := make([]AssetImprovement, 0, len(result.Metrics.YieldImprovement))
	for id, bp := range result.Metrics.YieldImprovement {
		improvements = append(improvements, AssetImprovement{Asset: id, ImprovementBP: bp})
	}
	sort.Slice(improvements, func(i, j int) bool { return improvements[i].Asset < improvements[j].Asset })

	return Report{
		RunID:            result.RunID.String(),
		StartTime:        result.StartTime.UTC().Format("2006-01-02 15:04:05"),
		EndTime:          result.EndTime.UTC().Format("2006-01-02 15:04:05"),
		Steps:            result.Steps,
		TotalReturn:      result.Metrics.TotalReturn,
		SharpeRatio:      result.Metrics.SharpeRatio,
		MaxDrawdown:      result.Metrics.MaxDrawdown,
		RebalanceCount:   result.Metrics.RebalanceCount,
		AvgExcessYieldBP: result.Metrics.AvgExcessYield,
		Improvements:     improvements,
	}
}

// String renders the report as a fixed-width text block.
func (r Report) String() string {
	var sb strings.Builder

	sb.WriteString("========== CCYOE Backtest Report ==========\n")
	fmt.Fprintf(&sb, "Run:              %s\n", r.RunID)
	fmt.Fprintf(&sb, "Period:           %s to %s (%d steps)\n", r.StartTime, r.EndTime, r.Steps)
	fmt.Fprintf(&sb, "Total Return:     %.4f%%\n", r.TotalReturn*100)
	fmt.Fprintf(&sb, "Sharpe Ratio:     %.4f\n", r.SharpeRatio)
	fmt.Fprintf(&sb, "Max Drawdown:     %.4f%%\n", r.MaxDrawdown*100)
	fmt.Fprintf(&sb, "Rebalances:       %d\n", r.RebalanceCount)
	fmt.Fprintf(&sb, "Avg Excess Yield: %.2f bp\n", r.AvgExcessYieldBP)
	sb.WriteString("Yield Improvement by Asset:\n")
	for _, imp := range r.Improvements {
		fmt.Fprintf(&sb, "  %-8s %+.2f bp\n", imp.Asset, imp.ImprovementBP)
	}
	sb.WriteString("===========================================\n")

	return sb.String()
}

// Write writes the text rendering to w.
func (r Report) Write(w io.Writer) error {
	_, err := io.WriteString(w, r.String())
	return err
}
