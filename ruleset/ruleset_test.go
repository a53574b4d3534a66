package ruleset_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/fiscal-engine/fiscal"
	"github.com/warp/fiscal-engine/ruleset"
)

// =============================================================================
// DISPATCH
// =============================================================================

func TestForContext_KnownVariants(t *testing.T) {
	ctx := aaCtx()

	rs, ok := ruleset.ForContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "fr-2025-artiste-auteur", rs.ID())

	ctx.Status = fiscal.StatusMicroBNC
	rs, ok = ruleset.ForContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "fr-2025-micro-bnc", rs.ID())
}

func TestForContext_UnsupportedPairFallsBack(t *testing.T) {
	ctx := aaCtx()
	ctx.Year = 2023

	rs, ok := ruleset.ForContext(ctx)
	assert.False(t, ok)
	assert.Equal(t, "fallback-vat-only", rs.ID())
	assert.Equal(t, 2023, rs.Year(), "metadata keeps the requested year")
}

// =============================================================================
// FALLBACK SEMANTICS
// =============================================================================

func TestFallback_VATOnlyOutput(t *testing.T) {
	ctx := aaCtx()
	ctx.Year = 2023
	rs, _ := ruleset.ForContext(ctx)

	collected := fiscal.QualifiedOperation{
		NormalizedOperation: fiscal.NormalizedOperation{
			Date: time.Date(2023, time.March, 10, 0, 0, 0, 0, time.UTC),
			HT:   10_000, VAT: 2_000, TTC: 12_000,
			Kind: fiscal.KindRevenue, Scope: fiscal.ScopeProfessional,
		},
		Flags: fiscal.Flags{IsPro: true, VATCollectable: true},
	}

	bases := rs.ComputeBases([]fiscal.QualifiedOperation{collected}, ctx)
	assert.Equal(t, int64(0), bases.Revenue)
	assert.Equal(t, int64(0), bases.SocialBase)
	assert.Equal(t, int64(2_000), bases.VAT.Collected())

	assert.Empty(t, rs.ComputeSocial(bases, ctx))
	assert.Empty(t, rs.ComputePension(bases, ctx))
	assert.Empty(t, rs.ComputeIncomeTax(bases, ctx))
	assert.Empty(t, rs.ComputeAlerts(bases, ctx))

	vat := rs.ComputeVAT([]fiscal.QualifiedOperation{collected}, ctx)
	require.Len(t, vat, 1)
	assert.Equal(t, "TVA_03", vat[0].Code)
	assert.Equal(t, int64(2_000), vat[0].Amount)
}

// =============================================================================
// VAT LINES (shared by every variant)
// =============================================================================

func TestComputeVAT_FranchiseEmitsNothing(t *testing.T) {
	ctx := aaCtx()
	ctx.VATRegime = fiscal.VATFranchise

	collected := fiscal.QualifiedOperation{
		NormalizedOperation: fiscal.NormalizedOperation{
			Date: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
			VAT:  2_000,
			Kind: fiscal.KindRevenue, Scope: fiscal.ScopeProfessional,
		},
		Flags: fiscal.Flags{IsPro: true, VATCollectable: true},
	}
	assert.Empty(t, ruleset.ArtisteAuteurFR2025{}.ComputeVAT([]fiscal.QualifiedOperation{collected}, ctx))
}

func TestComputeVAT_OnlyPositiveMonthsEmitLines(t *testing.T) {
	// March collects 20.00, April deducts 30.00: only March emits a
	// line. The April credit surfaces in the VAT summary, never as a
	// negative liability line.
	mk := func(month time.Month, vat int64, flags fiscal.Flags) fiscal.QualifiedOperation {
		return fiscal.QualifiedOperation{
			NormalizedOperation: fiscal.NormalizedOperation{
				Date: time.Date(2025, month, 10, 0, 0, 0, 0, time.UTC),
				VAT:  vat,
			},
			Flags: flags,
		}
	}
	ledger := []fiscal.QualifiedOperation{
		mk(time.March, 2_000, fiscal.Flags{IsPro: true, VATCollectable: true}),
		mk(time.April, 3_000, fiscal.Flags{IsPro: true, VATDeductible: true}),
	}

	lines := ruleset.ArtisteAuteurFR2025{}.ComputeVAT(ledger, aaCtx())
	require.Len(t, lines, 1)
	assert.Equal(t, "TVA_03", lines[0].Code)
	assert.Equal(t, int64(2_000), lines[0].Amount)
	assert.Equal(t, "3", lines[0].Meta["month"])
}

// =============================================================================
// MICRO-BNC VARIANT
// =============================================================================

func TestMicro2025_SocialOnRevenueWithoutUplift(t *testing.T) {
	ctx := aaCtx()
	ctx.Status = fiscal.StatusMicroBNC
	rs := ruleset.MicroBNCFR2025{}

	revenue := fiscal.QualifiedOperation{
		NormalizedOperation: fiscal.NormalizedOperation{
			Date: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
			HT:   3_000_000,
			Kind: fiscal.KindRevenue, Scope: fiscal.ScopeProfessional,
		},
		Flags: fiscal.Flags{IsPro: true},
	}
	bases := rs.ComputeBases([]fiscal.QualifiedOperation{revenue}, ctx)

	// Micro-social applies to turnover, not to an uplifted profit.
	assert.Equal(t, int64(3_000_000), bases.SocialBase)
	assert.Equal(t, int64(1_980_000), bases.FiscalBase) // 34% abatement

	lines := rs.ComputeSocial(bases, ctx)
	require.Len(t, lines, 2)
	assert.Equal(t, int64(738_000), lineByCode(t, lines, "MICRO_SOCIAL").Amount) // 24.6%
	assert.Equal(t, int64(6_000), lineByCode(t, lines, "FORMATION_PRO").Amount)  // 0.2%

	assert.Empty(t, rs.ComputePension(bases, ctx), "retirement is folded into the micro-social rate")

	tax := rs.ComputeIncomeTax(bases, ctx)
	require.Len(t, tax, 1)
	assert.Equal(t, int64(66_000), tax[0].Amount) // 2.2% of revenue
}

func TestMicro2025_IncomeTaxRequiresEstimateOption(t *testing.T) {
	ctx := aaCtx()
	ctx.Status = fiscal.StatusMicroBNC
	ctx.Options.Estimate = false
	rs := ruleset.MicroBNCFR2025{}

	assert.Empty(t, rs.ComputeIncomeTax(fiscal.ComputedBases{Revenue: 3_000_000}, ctx))
}
