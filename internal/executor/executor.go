package executor

import (
	"context"
	"sync"

	"github.com/usecambi/cambi-ccyoe/internal/logger"
	"github.com/usecambi/cambi-ccyoe/internal/types"
)

// Executor defines the boundary through which rebalance events leave the
// engine. The engine produces events; what happens to them afterwards is an
// implementation concern (on-chain settlement, simulation, recording).
type Executor interface {
	// Execute consumes one rebalance event. Events arrive in fire order and
	// must be treated as immutable.
	Execute(ctx context.Context, event types.RebalanceEvent) error

	// Close cleans up any resources held by the executor.
	Close() error
}

// DryRunExecutor records events without acting on them. It is the default
// executor for backtests and local runs.
type DryRunExecutor struct {
	mu     sync.Mutex
	events []types.RebalanceEvent
}

// NewDryRunExecutor creates a recording executor.
func NewDryRunExecutor() *DryRunExecutor {
	return &DryRunExecutor{}
}

var dryRunLogger = logger.GetForComponent("dry_run_executor")

// Execute records the event and logs its shape.
func (e *DryRunExecutor) Execute(ctx context.Context, event types.RebalanceEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	e.events = append(e.events, event)
	count := len(e.events)
	e.mu.Unlock()

	dryRunLogger.Info().
		Time("timestamp", event.Timestamp).
		Int64("totalExcessBP", event.TotalExcess).
		Int64("treasuryBP", event.Treasury).
		Int("recorded", count).
		Msg("Dry run: rebalance event recorded, no transfers executed")

	return nil
}

// Events returns a copy of everything recorded so far, in fire order.
func (e *DryRunExecutor) Events() []types.RebalanceEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]types.RebalanceEvent, len(e.events))
	copy(out, e.events)
	return out
}

// Close is a no-op for the dry run executor.
func (e *DryRunExecutor) Close() error {
	return nil
}
