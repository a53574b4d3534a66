/*
Package engine is the dispatcher: it runs the full fiscal pipeline.

PURPOSE:
  One synchronous, side-effect-free call per computation:

    Normalize -> Qualify -> select ruleset -> bases -> social ->
    pension -> income tax -> VAT -> schedule -> alerts -> fingerprints

  The stage order is fixed. There is no feedback loop; the caller
  re-invokes Compute on any input change.

FINGERPRINTS:
  Three sub-fingerprints (ruleset params, context, sorted normalized
  ledger) feed the final fiscal hash together with the engine version
  and ruleset identity. Sorting happens in the normalizer, before
  fingerprinting, so two submissions differing only in entry order
  yield the same hash.

FALLBACK:
  An unsupported (year, status) pair substitutes the VAT-only fallback
  variant and logs a diagnostic; the pipeline never throws for an
  unknown status.

SEE ALSO:
  - ruleset/: the closed variant set
  - treasury/: projects the output into the monthly ledger
*/
package engine

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/fiscal-engine/canonical"
	"github.com/warp/fiscal-engine/fiscal"
	"github.com/warp/fiscal-engine/ruleset"
)

// Version identifies the engine build embedded in every fiscal hash.
const Version = "1.4.0"

// Compute validates the inputs, runs the pipeline and assembles the
// fingerprinted output plus the normalized ledger it was derived from.
func Compute(entries []fiscal.Entry, ctx fiscal.Context) (*fiscal.Output, []fiscal.NormalizedOperation, error) {
	if err := ctx.Validate(); err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, nil, err
		}
	}

	ops := fiscal.Normalize(entries, ctx)
	qualified := fiscal.QualifyAll(ops, ctx)

	rs, matched := ruleset.ForContext(ctx)
	if !matched {
		logrus.WithFields(logrus.Fields{
			"year":   ctx.Year,
			"status": ctx.Status,
		}).Warn(fiscal.ErrUnknownRuleset.Error() + ", using VAT-only fallback")
	}

	bases := rs.ComputeBases(qualified, ctx)

	var lines []fiscal.TaxLineItem
	lines = append(lines, rs.ComputeSocial(bases, ctx)...)
	lines = append(lines, rs.ComputePension(bases, ctx)...)
	lines = append(lines, rs.ComputeIncomeTax(bases, ctx)...)
	lines = append(lines, rs.ComputeVAT(qualified, ctx)...)

	schedule := rs.ComputeSchedule(lines, ctx)
	alerts := rs.ComputeAlerts(bases, ctx)

	meta, err := fingerprint(rs, ctx, ops)
	if err != nil {
		return nil, nil, err
	}
	meta.Mode = ctx.Mode()
	meta.ComputedAt = ctx.AsOf
	meta.Fallback = !matched

	byOrg := make(map[fiscal.Organization][]fiscal.TaxLineItem)
	for _, l := range lines {
		byOrg[l.Organization] = append(byOrg[l.Organization], l)
	}

	out := &fiscal.Output{
		Metadata: meta,
		Bases:    bases,
		Lines:    lines,
		ByOrg:    byOrg,
		VAT:      fiscal.NewVatSummary(bases.VAT.Collected(), bases.VAT.Deductible()),
		Schedule: schedule,
		Alerts:   alerts,
	}
	return out, ops, nil
}

// fingerprint derives the three sub-hashes and the final fiscal hash.
func fingerprint(rs ruleset.Ruleset, ctx fiscal.Context, ops []fiscal.NormalizedOperation) (fiscal.Metadata, error) {
	paramsHash, err := canonical.Fingerprint(rs.Params())
	if err != nil {
		return fiscal.Metadata{}, err
	}

	contextHash, err := canonical.Fingerprint(contextCanonical(ctx))
	if err != nil {
		return fiscal.Metadata{}, err
	}

	// The ledger arrives already sorted by (date, id) from the
	// normalizer; fingerprinting the sorted form is what makes the hash
	// insensitive to input entry order.
	ledger := make([]any, len(ops))
	for i, op := range ops {
		ledger[i] = op.AsCanonical()
	}
	ledgerHash, err := canonical.Fingerprint(ledger)
	if err != nil {
		return fiscal.Metadata{}, err
	}

	fiscalHash, err := canonical.Fingerprint(map[string]any{
		"engineVersion":      Version,
		"rulesetYear":        rs.Year(),
		"rulesetRevision":    rs.Revision(),
		"paramsFingerprint":  paramsHash,
		"contextFingerprint": contextHash,
		"ledgerFingerprint":  ledgerHash,
	})
	if err != nil {
		return fiscal.Metadata{}, err
	}

	return fiscal.Metadata{
		EngineVersion:   Version,
		RulesetID:       rs.ID(),
		RulesetYear:     rs.Year(),
		RulesetRevision: rs.Revision(),
		FiscalHash:      fiscalHash,
		ParamsHash:      paramsHash,
		ContextHash:     contextHash,
		LedgerHash:      ledgerHash,
	}, nil
}

func contextCanonical(ctx fiscal.Context) map[string]any {
	return map[string]any{
		"year":           ctx.Year,
		"asOf":           ctx.AsOf.UTC().Format(time.RFC3339),
		"status":         string(ctx.Status),
		"regime":         string(ctx.Regime),
		"vatRegime":      string(ctx.VATRegime),
		"householdParts": ctx.HouseholdParts,
		"options": map[string]any{
			"estimate":            ctx.Options.Estimate,
			"socialFrequency":     string(ctx.Options.SocialFrequency),
			"vatFrequency":        string(ctx.Options.VATFrequency),
			"defaultVatRate":      ctx.Options.DefaultVATRate,
			"taxAsCompanyExpense": ctx.Options.TaxAsCompanyExpense,
		},
	}
}
