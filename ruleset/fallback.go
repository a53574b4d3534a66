// fallback.go - Safe fallback for unsupported (year, status) pairs.
//
// The pipeline never fails merely because a status is not modeled:
// bases and contributions come back zeroed, VAT is still computed from
// the qualified ledger, and the dispatcher records a diagnostic. The
// caller receives a complete, well-formed output.
package ruleset

import (
	"github.com/warp/fiscal-engine/fiscal"
)

// Fallback implements Ruleset with VAT-only semantics.
type Fallback struct {
	// FallbackYear echoes the requested year so output metadata stays
	// truthful about what was asked for.
	FallbackYear int
}

func (f Fallback) ID() string    { return "fallback-vat-only" }
func (f Fallback) Year() int     { return f.FallbackYear }
func (f Fallback) Revision() int { return 1 }

func (f Fallback) Params() map[string]any {
	return map[string]any{"fallback": true, "year": f.FallbackYear}
}

func (f Fallback) ComputeBases(ledger []fiscal.QualifiedOperation, ctx fiscal.Context) fiscal.ComputedBases {
	return fiscal.ComputedBases{VAT: vatBases(ledger)}
}

func (Fallback) ComputeSocial(fiscal.ComputedBases, fiscal.Context) []fiscal.TaxLineItem {
	return nil
}

func (Fallback) ComputePension(fiscal.ComputedBases, fiscal.Context) []fiscal.TaxLineItem {
	return nil
}

func (Fallback) ComputeIncomeTax(fiscal.ComputedBases, fiscal.Context) []fiscal.TaxLineItem {
	return nil
}

func (Fallback) ComputeVAT(ledger []fiscal.QualifiedOperation, ctx fiscal.Context) []fiscal.TaxLineItem {
	return computeVATLines(ledger, ctx)
}

func (Fallback) ComputeSchedule(lines []fiscal.TaxLineItem, ctx fiscal.Context) []fiscal.ScheduleItem {
	return buildSchedule(lines, ctx)
}

func (Fallback) ComputeAlerts(fiscal.ComputedBases, fiscal.Context) []fiscal.Alert {
	return nil
}
