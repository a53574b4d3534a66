// snapshot.go - The single source of truth handed to presenters.
package engine

import (
	"github.com/warp/fiscal-engine/fiscal"
	"github.com/warp/fiscal-engine/treasury"
)

// Snapshot bundles the fiscal output, the monthly treasury projection
// and the granular operations used to build both. Presenters consume it
// read-only and never re-derive business figures.
type Snapshot struct {
	Output     *fiscal.Output                `json:"output"`
	Ledger     treasury.LedgerFinal          `json:"ledger"`
	Operations []fiscal.NormalizedOperation  `json:"operations"`
}

// ComputeSnapshot runs the full pipeline plus the treasury projection.
func ComputeSnapshot(entries []fiscal.Entry, ctx fiscal.Context, anchor treasury.Anchor) (*Snapshot, error) {
	out, ops, err := Compute(entries, ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Output:     out,
		Ledger:     treasury.Project(out, ops, anchor),
		Operations: ops,
	}, nil
}
