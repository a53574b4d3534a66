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
// TEST SETUP
// =============================================================================

func aaCtx() fiscal.Context {
	return fiscal.Context{
		Year:           2025,
		AsOf:           time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		Status:         fiscal.StatusArtisteAuteur,
		Regime:         fiscal.RegimeFlatRate,
		VATRegime:      fiscal.VATRegimeReal,
		HouseholdParts: 100,
		Options: fiscal.Options{
			Estimate:        true,
			SocialFrequency: fiscal.FrequencyMonthly,
			VATFrequency:    fiscal.FrequencyMonthly,
		},
	}
}

func artisticRevenue(ht int64) fiscal.QualifiedOperation {
	return fiscal.QualifiedOperation{
		NormalizedOperation: fiscal.NormalizedOperation{
			Date:      time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
			HT:        ht,
			TTC:       ht,
			Direction: fiscal.DirectionInflow,
			Scope:     fiscal.ScopeProfessional,
			Kind:      fiscal.KindRevenue,
			Category:  fiscal.CategoryDroitsAuteur,
		},
		Flags: fiscal.Flags{IsPro: true, IsArtistic: true, IsSocialBase: true},
	}
}

func deductibleExpense(ht int64) fiscal.QualifiedOperation {
	return fiscal.QualifiedOperation{
		NormalizedOperation: fiscal.NormalizedOperation{
			Date:      time.Date(2025, time.April, 5, 0, 0, 0, 0, time.UTC),
			HT:        ht,
			TTC:       ht,
			Direction: fiscal.DirectionOutflow,
			Scope:     fiscal.ScopeProfessional,
			Kind:      fiscal.KindExpense,
			Category:  "materiel",
		},
		Flags: fiscal.Flags{IsPro: true, FiscalDeductible: true},
	}
}

func lineByCode(t *testing.T, lines []fiscal.TaxLineItem, code string) fiscal.TaxLineItem {
	t.Helper()
	for _, l := range lines {
		if l.Code == code {
			return l
		}
	}
	t.Fatalf("no line with code %s", code)
	return fiscal.TaxLineItem{}
}

// =============================================================================
// BASES
// =============================================================================

func TestArtiste2025_Bases_FlatRateAbatement(t *testing.T) {
	// 10,000.00 revenue: 34% abatement (3,400.00) beats the 305.00
	// floor. Fiscal base 6,600.00; social base uplifted by 1.15.
	rs := ruleset.ArtisteAuteurFR2025{}
	bases := rs.ComputeBases([]fiscal.QualifiedOperation{artisticRevenue(1_000_000)}, aaCtx())

	assert.Equal(t, int64(1_000_000), bases.Revenue)
	assert.Equal(t, int64(660_000), bases.FiscalBase)
	assert.Equal(t, int64(759_000), bases.SocialBase)
}

func TestArtiste2025_Bases_MinimumAbatementFloor(t *testing.T) {
	// 500.00 revenue: 34% would be 170.00, so the 305.00 floor applies.
	rs := ruleset.ArtisteAuteurFR2025{}
	bases := rs.ComputeBases([]fiscal.QualifiedOperation{artisticRevenue(50_000)}, aaCtx())

	assert.Equal(t, int64(19_500), bases.FiscalBase)
	assert.Equal(t, int64(22_425), bases.SocialBase)
}

func TestArtiste2025_Bases_RealRegimeDeductsExpenses(t *testing.T) {
	ctx := aaCtx()
	ctx.Regime = fiscal.RegimeReal

	rs := ruleset.ArtisteAuteurFR2025{}
	bases := rs.ComputeBases([]fiscal.QualifiedOperation{
		artisticRevenue(8_000_000),
		deductibleExpense(2_000_000),
	}, ctx)

	assert.Equal(t, int64(8_000_000), bases.Revenue)
	assert.Equal(t, int64(2_000_000), bases.DeductibleExpenses)
	assert.Equal(t, int64(6_000_000), bases.FiscalBase)
	assert.Equal(t, int64(6_900_000), bases.SocialBase)
}

func TestArtiste2025_Bases_NeverNegative(t *testing.T) {
	ctx := aaCtx()
	ctx.Regime = fiscal.RegimeReal

	rs := ruleset.ArtisteAuteurFR2025{}
	bases := rs.ComputeBases([]fiscal.QualifiedOperation{
		artisticRevenue(100_000),
		deductibleExpense(300_000),
	}, ctx)

	assert.Equal(t, int64(0), bases.FiscalBase)
	assert.Equal(t, int64(0), bases.SocialBase)
}

// =============================================================================
// SOCIAL CONTRIBUTIONS
// =============================================================================

func TestArtiste2025_Social_FullLineSet(t *testing.T) {
	// Social base 7,590.00 from the 10,000.00 flat-rate scenario.
	rs := ruleset.ArtisteAuteurFR2025{}
	bases := rs.ComputeBases([]fiscal.QualifiedOperation{artisticRevenue(1_000_000)}, aaCtx())
	lines := rs.ComputeSocial(bases, aaCtx())

	require.Len(t, lines, 5)

	assert.Equal(t, int64(52_371), lineByCode(t, lines, "VIEILLESSE_PLAF").Amount)
	assert.Equal(t, int64(3_036), lineByCode(t, lines, "VIEILLESSE_DEPLAF").Amount)
	assert.Equal(t, int64(68_606), lineByCode(t, lines, "CSG").Amount)
	assert.Equal(t, int64(3_729), lineByCode(t, lines, "CRDS").Amount)
	assert.Equal(t, int64(2_657), lineByCode(t, lines, "FORMATION_PRO").Amount)

	for _, l := range lines {
		assert.Equal(t, fiscal.OrgURSSAF, l.Organization)
		assert.Equal(t, fiscal.CategorySocial, l.Category)
	}
}

func TestArtiste2025_Social_CSGIntermediateBaseRoundedFirst(t *testing.T) {
	// The 98.25% assiette is rounded to the cent before the CSG and CRDS
	// rates apply; the line's Base field carries that rounded value.
	// 759,000 * 0.9825 = 745,717.5 rounds half away from zero to 745,718.
	rs := ruleset.ArtisteAuteurFR2025{}
	bases := rs.ComputeBases([]fiscal.QualifiedOperation{artisticRevenue(1_000_000)}, aaCtx())
	lines := rs.ComputeSocial(bases, aaCtx())

	csg := lineByCode(t, lines, "CSG")
	crds := lineByCode(t, lines, "CRDS")
	assert.Equal(t, int64(745_718), csg.Base)
	assert.Equal(t, csg.Base, crds.Base, "CSG and CRDS share the rounded assiette")
}

func TestArtiste2025_Social_VieillessePlafonneeCappedAtPASS(t *testing.T) {
	ctx := aaCtx()
	ctx.Regime = fiscal.RegimeReal

	rs := ruleset.ArtisteAuteurFR2025{}
	bases := rs.ComputeBases([]fiscal.QualifiedOperation{
		artisticRevenue(8_000_000),
		deductibleExpense(2_000_000),
	}, ctx)
	require.Equal(t, int64(6_900_000), bases.SocialBase)

	plaf := lineByCode(t, rs.ComputeSocial(bases, ctx), "VIEILLESSE_PLAF")
	assert.Equal(t, int64(4_710_000), plaf.Base)
	assert.Equal(t, int64(324_990), plaf.Amount)
	assert.True(t, plaf.CapApplied)
	assert.Equal(t, "PASS", plaf.CapName)
	assert.Equal(t, int64(4_710_000), plaf.CapValue)

	// The uncapped line still uses the full base.
	deplaf := lineByCode(t, rs.ComputeSocial(bases, ctx), "VIEILLESSE_DEPLAF")
	assert.Equal(t, int64(6_900_000), deplaf.Base)
	assert.Equal(t, int64(27_600), deplaf.Amount)
}

func TestArtiste2025_Social_ZeroBaseProducesNothing(t *testing.T) {
	rs := ruleset.ArtisteAuteurFR2025{}
	assert.Empty(t, rs.ComputeSocial(fiscal.ComputedBases{}, aaCtx()))
}

// =============================================================================
// RAAP SUPPLEMENTARY PENSION
// =============================================================================

func TestArtiste2025_RAAP_AbsentBelowAffiliationFloor(t *testing.T) {
	// Social base 7,590.00 is under the 9,513.00 floor: no line at all,
	// not a zero-amount line.
	rs := ruleset.ArtisteAuteurFR2025{}
	bases := rs.ComputeBases([]fiscal.QualifiedOperation{artisticRevenue(1_000_000)}, aaCtx())
	require.Equal(t, int64(759_000), bases.SocialBase)

	assert.Empty(t, rs.ComputePension(bases, aaCtx()))
}

func TestArtiste2025_RAAP_EightPercentAboveFloor(t *testing.T) {
	// 20,000.00 revenue: social base 15,180.00, RAAP 8% = 1,214.40.
	rs := ruleset.ArtisteAuteurFR2025{}
	bases := rs.ComputeBases([]fiscal.QualifiedOperation{artisticRevenue(2_000_000)}, aaCtx())
	require.Equal(t, int64(1_518_000), bases.SocialBase)

	lines := rs.ComputePension(bases, aaCtx())
	require.Len(t, lines, 1)
	assert.Equal(t, "RAAP", lines[0].Code)
	assert.Equal(t, int64(121_440), lines[0].Amount)
	assert.Equal(t, fiscal.OrgIRCEC, lines[0].Organization)
	assert.False(t, lines[0].CapApplied)
}

func TestArtiste2025_RAAP_CappedAtThreePASS(t *testing.T) {
	ctx := aaCtx()
	ctx.Regime = fiscal.RegimeReal

	rs := ruleset.ArtisteAuteurFR2025{}
	bases := rs.ComputeBases([]fiscal.QualifiedOperation{
		artisticRevenue(20_000_000),
		deductibleExpense(2_000_000),
	}, ctx)
	require.Equal(t, int64(20_700_000), bases.SocialBase)

	lines := rs.ComputePension(bases, ctx)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(14_130_000), lines[0].Base)
	assert.Equal(t, int64(1_130_400), lines[0].Amount)
	assert.True(t, lines[0].CapApplied)
	assert.Equal(t, "3xPASS", lines[0].CapName)
}

// =============================================================================
// INCOME TAX
// =============================================================================

func TestArtiste2025_IncomeTax_VersementLiberatoireUnderFlatRate(t *testing.T) {
	rs := ruleset.ArtisteAuteurFR2025{}
	bases := fiscal.ComputedBases{Revenue: 1_000_000, FiscalBase: 660_000}

	lines := rs.ComputeIncomeTax(bases, aaCtx())
	require.Len(t, lines, 1)
	assert.Equal(t, "IR_VL", lines[0].Code)
	assert.Equal(t, int64(22_000), lines[0].Amount) // 2.2% of revenue
	assert.Equal(t, fiscal.OrgDGFIP, lines[0].Organization)
	assert.Equal(t, fiscal.CategoryFiscal, lines[0].Category)
}

func TestArtiste2025_IncomeTax_FlatRateWithoutEstimateUsesBareme(t *testing.T) {
	ctx := aaCtx()
	ctx.Options.Estimate = false
	rs := ruleset.ArtisteAuteurFR2025{}

	// Without the estimate option the flat-rate taxpayer is assessed on
	// the progressive schedule over the abated base, not the 2.2% VL.
	bases := rs.ComputeBases([]fiscal.QualifiedOperation{artisticRevenue(10_000_000)}, ctx)
	lines := rs.ComputeIncomeTax(bases, ctx)
	require.Len(t, lines, 1)
	assert.Equal(t, "IR_BAREME", lines[0].Code)
	assert.Equal(t, int64(6_600_000), lines[0].Base)
	assert.Equal(t, int64(1_296_548), lines[0].Amount)
}

func TestArtiste2025_IncomeTax_ProgressiveScheduleUnderRealRegime(t *testing.T) {
	ctx := aaCtx()
	ctx.Regime = fiscal.RegimeReal
	rs := ruleset.ArtisteAuteurFR2025{}

	// 30,000.00 base, one part: 0% up to 11,497.00, 11% to 29,315.00,
	// 30% on the rest.
	lines := rs.ComputeIncomeTax(fiscal.ComputedBases{FiscalBase: 3_000_000}, ctx)
	require.Len(t, lines, 1)
	assert.Equal(t, "IR_BAREME", lines[0].Code)
	assert.Equal(t, int64(216_548), lines[0].Amount)
}

func TestArtiste2025_IncomeTax_HouseholdPartsLowerTheQuotient(t *testing.T) {
	ctx := aaCtx()
	ctx.Regime = fiscal.RegimeReal
	ctx.HouseholdParts = 200
	rs := ruleset.ArtisteAuteurFR2025{}

	// Same 30,000.00 base over two parts: 15,000.00 each stays in the
	// 11% bracket, then scaled back by two.
	lines := rs.ComputeIncomeTax(fiscal.ComputedBases{FiscalBase: 3_000_000}, ctx)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(77_066), lines[0].Amount)
	assert.Equal(t, "2", lines[0].Meta["householdParts"])
}

func TestArtiste2025_IncomeTax_BelowFirstBracketIsNil(t *testing.T) {
	ctx := aaCtx()
	ctx.Regime = fiscal.RegimeReal
	rs := ruleset.ArtisteAuteurFR2025{}

	assert.Empty(t, rs.ComputeIncomeTax(fiscal.ComputedBases{FiscalBase: 1_000_000}, ctx))
}

// =============================================================================
// ALERTS
// =============================================================================

func TestArtiste2025_Alerts_Thresholds(t *testing.T) {
	ctx := aaCtx()
	ctx.VATRegime = fiscal.VATFranchise
	rs := ruleset.ArtisteAuteurFR2025{}

	alerts := rs.ComputeAlerts(fiscal.ComputedBases{
		Revenue:    8_000_000, // over both the micro ceiling and the franchise cap
		SocialBase: 1_000_000, // over the RAAP affiliation floor
	}, ctx)

	codes := make(map[string]fiscal.AlertLevel)
	for _, a := range alerts {
		codes[a.Code] = a.Level
	}
	assert.Equal(t, fiscal.AlertWarning, codes["REVENUE_CEILING"])
	assert.Equal(t, fiscal.AlertInfo, codes["VAT_FRANCHISE_THRESHOLD"])
	assert.Equal(t, fiscal.AlertInfo, codes["RAAP_AFFILIATION"])
}

func TestArtiste2025_Alerts_QuietUnderThresholds(t *testing.T) {
	rs := ruleset.ArtisteAuteurFR2025{}
	assert.Empty(t, rs.ComputeAlerts(fiscal.ComputedBases{Revenue: 1_000_000, SocialBase: 759_000}, aaCtx()))
}
