/*
Package ruleset holds the jurisdiction/year/status rule modules.

PURPOSE:
  Each supported (jurisdiction, year, status) combination is one
  explicit variant implementing the Ruleset capability interface. The
  set is closed: selection is an exhaustive switch in ForContext, and
  the "no match" case is itself a variant (the VAT-only fallback),
  never a silent default.

CAPABILITIES:
  Every variant exposes the same pure functions over the qualified
  ledger and context: bases, social contributions, supplementary
  pension, income tax, VAT, payment schedule, alerts. The dispatcher
  invokes them in a fixed order and never calls anything else.

DETERMINISM:
  Params() returns the variant's complete numeric parameter set as a
  canonical map; its fingerprint is part of the fiscal hash, so any
  business-rule change changes every hash produced under that variant.

SEE ALSO:
  - artiste2025.go: artiste-auteur FR 2025 (primary variant)
  - micro2025.go: micro-entrepreneur BNC FR 2025
  - fallback.go: VAT-only safe fallback
*/
package ruleset

import (
	"github.com/warp/fiscal-engine/fiscal"
)

// Ruleset is the fixed capability interface every variant implements.
// All functions are pure: same inputs, same outputs, no external state.
type Ruleset interface {
	// ID identifies the variant, e.g. "fr-2025-artiste-auteur".
	ID() string
	Year() int
	Revision() int

	// Params returns the complete parameter set for fingerprinting.
	Params() map[string]any

	ComputeBases(ledger []fiscal.QualifiedOperation, ctx fiscal.Context) fiscal.ComputedBases
	ComputeSocial(bases fiscal.ComputedBases, ctx fiscal.Context) []fiscal.TaxLineItem
	ComputePension(bases fiscal.ComputedBases, ctx fiscal.Context) []fiscal.TaxLineItem
	ComputeIncomeTax(bases fiscal.ComputedBases, ctx fiscal.Context) []fiscal.TaxLineItem
	ComputeVAT(ledger []fiscal.QualifiedOperation, ctx fiscal.Context) []fiscal.TaxLineItem
	ComputeSchedule(lines []fiscal.TaxLineItem, ctx fiscal.Context) []fiscal.ScheduleItem
	ComputeAlerts(bases fiscal.ComputedBases, ctx fiscal.Context) []fiscal.Alert
}

// ForContext selects the variant for (year, status). The second return
// is false when the VAT-only fallback had to be substituted; the caller
// records the diagnostic but the pipeline never fails for an
// unsupported status.
func ForContext(ctx fiscal.Context) (Ruleset, bool) {
	switch {
	case ctx.Year == 2025 && ctx.Status == fiscal.StatusArtisteAuteur:
		return ArtisteAuteurFR2025{}, true
	case ctx.Year == 2025 && ctx.Status == fiscal.StatusMicroBNC:
		return MicroBNCFR2025{}, true
	default:
		return Fallback{FallbackYear: ctx.Year}, false
	}
}
