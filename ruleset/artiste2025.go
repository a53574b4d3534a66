/*
artiste2025.go - Artiste-auteur, France, fiscal year 2025.

PURPOSE:
  The primary variant: social contributions on artistic revenue with
  the 1.15 uplift, IRCEC supplementary pension above the affiliation
  threshold, income tax (versement liberatoire under flat rate,
  progressive schedule under real expenses), monthly VAT, URSSAF
  installments and jurisdiction threshold alerts.

RULE HIGHLIGHTS:
  - Flat-rate fiscal base: revenue - max(34% of revenue, 305.00 EUR).
  - Social base: fiscal base uplifted by 1.15.
  - CSG/CRDS use a two-step rounding: the 98.25% intermediate base is
    rounded first, the rate then applies to that rounded value. The two
    orders diverge at the cent level and the two-step form is the
    legally auditable one.
  - Vieillesse plafonnee is capped at the annual PASS; RAAP at 3x PASS
    with a 9,513.00 EUR affiliation floor.
*/
package ruleset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/warp/fiscal-engine/fiscal"
	"github.com/warp/fiscal-engine/money"
)

// Parameters, in cents and basis points.
const (
	aaAbatementBps    = 3400
	aaMinAbatement    = 30500 // 305.00 EUR
	aaUpliftBps       = 11500 // social base = fiscal base x 1.15

	aaPASS            = 4710000  // 47,100.00 EUR annual ceiling
	aaRAAPCeiling     = 14130000 // 3 x PASS
	aaRAAPFloor       = 951300   // 9,513.00 EUR affiliation threshold
	aaRAAPBps         = 800

	aaVieillessePlafBps   = 690
	aaVieillesseDeplafBps = 40
	aaCSGAssietteBps      = 9825
	aaCSGBps              = 920
	aaCRDSBps             = 50
	aaFormationBps        = 35

	aaVLBps           = 220     // versement liberatoire, flat-rate income tax
	aaRevenueCeiling  = 7770000 // micro-BNC revenue ceiling, 77,700.00 EUR
	aaVATFranchiseCap = 3750000 // VAT franchise threshold, 37,500.00 EUR
)

// Progressive income tax schedule 2025 (per household part, cents/bps).
var aaTaxBrackets = []struct {
	UpTo int64 // upper bound of the bracket, 0 = unbounded
	Bps  int64
}{
	{1149700, 0},
	{2931500, 1100},
	{8382300, 3000},
	{18029400, 4100},
	{0, 4500},
}

// ArtisteAuteurFR2025 implements Ruleset.
type ArtisteAuteurFR2025 struct{}

func (ArtisteAuteurFR2025) ID() string    { return "fr-2025-artiste-auteur" }
func (ArtisteAuteurFR2025) Year() int     { return 2025 }
func (ArtisteAuteurFR2025) Revision() int { return 3 }

func (ArtisteAuteurFR2025) Params() map[string]any {
	tiers := make([]any, len(aaTaxBrackets))
	for i, b := range aaTaxBrackets {
		tiers[i] = map[string]any{"upTo": b.UpTo, "bps": b.Bps}
	}
	return map[string]any{
		"abatementBps":        aaAbatementBps,
		"minAbatement":        aaMinAbatement,
		"upliftBps":           aaUpliftBps,
		"pass":                aaPASS,
		"raapCeiling":         aaRAAPCeiling,
		"raapFloor":           aaRAAPFloor,
		"raapBps":             aaRAAPBps,
		"vieillessePlafBps":   aaVieillessePlafBps,
		"vieillesseDeplafBps": aaVieillesseDeplafBps,
		"csgAssietteBps":      aaCSGAssietteBps,
		"csgBps":              aaCSGBps,
		"crdsBps":             aaCRDSBps,
		"formationBps":        aaFormationBps,
		"vlBps":               aaVLBps,
		"revenueCeiling":      aaRevenueCeiling,
		"vatFranchiseCap":     aaVATFranchiseCap,
		"taxBrackets":         tiers,
	}
}

// ComputeBases sums qualified artistic revenue and deductible expenses,
// then derives the fiscal and social bases per the active regime.
func (ArtisteAuteurFR2025) ComputeBases(ledger []fiscal.QualifiedOperation, ctx fiscal.Context) fiscal.ComputedBases {
	var revenue, deductible int64
	for _, op := range ledger {
		if op.Flags.IsSocialBase {
			revenue += op.HT
		}
		if op.Flags.FiscalDeductible && op.Direction == fiscal.DirectionOutflow {
			deductible += op.HT
		}
	}

	var fiscalBase int64
	if ctx.Regime == fiscal.RegimeReal {
		fiscalBase = money.Max(0, revenue-deductible)
	} else {
		abatement := money.Max(money.MulRate(revenue, aaAbatementBps), aaMinAbatement)
		fiscalBase = money.Max(0, revenue-abatement)
	}

	return fiscal.ComputedBases{
		Revenue:            revenue,
		DeductibleExpenses: deductible,
		FiscalBase:         fiscalBase,
		SocialBase:         money.MulRate(fiscalBase, aaUpliftBps),
		VAT:                vatBases(ledger),
	}
}

func (ArtisteAuteurFR2025) ComputeSocial(bases fiscal.ComputedBases, ctx fiscal.Context) []fiscal.TaxLineItem {
	base := bases.SocialBase
	if base <= 0 {
		return nil
	}
	conf := ctx.Confidence()

	plafBase := money.Min(base, aaPASS)
	plaf := fiscal.TaxLineItem{
		Code:         "VIEILLESSE_PLAF",
		Label:        "Assurance vieillesse plafonnee",
		Base:         plafBase,
		RateBps:      aaVieillessePlafBps,
		Amount:       money.MulRate(plafBase, aaVieillessePlafBps),
		Organization: fiscal.OrgURSSAF,
		Category:     fiscal.CategorySocial,
		Confidence:   conf,
		LegalRef:     "CSS art. L382-3",
	}
	if base > aaPASS {
		plaf.CapApplied = true
		plaf.CapName = "PASS"
		plaf.CapValue = aaPASS
	}

	// CSG/CRDS two-step rounding: the intermediate base is rounded
	// before the final rate applies. Not equivalent to a single-step
	// product.
	csgBase := money.MulRate(base, aaCSGAssietteBps)

	return []fiscal.TaxLineItem{
		plaf,
		{
			Code:         "VIEILLESSE_DEPLAF",
			Label:        "Assurance vieillesse deplafonnee",
			Base:         base,
			RateBps:      aaVieillesseDeplafBps,
			Amount:       money.MulRate(base, aaVieillesseDeplafBps),
			Organization: fiscal.OrgURSSAF,
			Category:     fiscal.CategorySocial,
			Confidence:   conf,
			LegalRef:     "CSS art. L382-3",
		},
		{
			Code:         "CSG",
			Label:        "Contribution sociale generalisee",
			Base:         csgBase,
			RateBps:      aaCSGBps,
			Amount:       money.MulRate(csgBase, aaCSGBps),
			Organization: fiscal.OrgURSSAF,
			Category:     fiscal.CategorySocial,
			Confidence:   conf,
			LegalRef:     "CSS art. L136-8",
			Meta:         map[string]string{"assietteBps": "9825"},
		},
		{
			Code:         "CRDS",
			Label:        "Contribution au remboursement de la dette sociale",
			Base:         csgBase,
			RateBps:      aaCRDSBps,
			Amount:       money.MulRate(csgBase, aaCRDSBps),
			Organization: fiscal.OrgURSSAF,
			Category:     fiscal.CategorySocial,
			Confidence:   conf,
			Meta:         map[string]string{"assietteBps": "9825"},
		},
		{
			Code:         "FORMATION_PRO",
			Label:        "Contribution formation professionnelle",
			Base:         base,
			RateBps:      aaFormationBps,
			Amount:       money.MulRate(base, aaFormationBps),
			Organization: fiscal.OrgURSSAF,
			Category:     fiscal.CategorySocial,
			Confidence:   conf,
		},
	}
}

// ComputePension emits the RAAP supplementary pension line, absent
// entirely below the affiliation floor.
func (ArtisteAuteurFR2025) ComputePension(bases fiscal.ComputedBases, ctx fiscal.Context) []fiscal.TaxLineItem {
	base := bases.SocialBase
	if base < aaRAAPFloor {
		return nil
	}

	capped := money.Min(base, aaRAAPCeiling)
	line := fiscal.TaxLineItem{
		Code:         "RAAP",
		Label:        "Retraite complementaire RAAP",
		Base:         capped,
		RateBps:      aaRAAPBps,
		Amount:       money.MulRate(capped, aaRAAPBps),
		Organization: fiscal.OrgIRCEC,
		Category:     fiscal.CategorySocial,
		Confidence:   ctx.Confidence(),
	}
	if base > aaRAAPCeiling {
		line.CapApplied = true
		line.CapName = "3xPASS"
		line.CapValue = aaRAAPCeiling
	}
	return []fiscal.TaxLineItem{line}
}

func (ArtisteAuteurFR2025) ComputeIncomeTax(bases fiscal.ComputedBases, ctx fiscal.Context) []fiscal.TaxLineItem {
	if ctx.Regime == fiscal.RegimeFlatRate && ctx.Options.Estimate {
		amount := money.MulRate(bases.Revenue, aaVLBps)
		if amount == 0 {
			return nil
		}
		return []fiscal.TaxLineItem{{
			Code:         "IR_VL",
			Label:        "Versement liberatoire de l'impot sur le revenu",
			Base:         bases.Revenue,
			RateBps:      aaVLBps,
			Amount:       amount,
			Organization: fiscal.OrgDGFIP,
			Category:     fiscal.CategoryFiscal,
			Confidence:   fiscal.ConfidenceEstimated,
		}}
	}

	amount := progressiveTax(bases.FiscalBase, ctx.HouseholdParts)
	if amount == 0 {
		return nil
	}
	return []fiscal.TaxLineItem{{
		Code:         "IR_BAREME",
		Label:        "Impot sur le revenu (bareme progressif)",
		Base:         bases.FiscalBase,
		Amount:       amount,
		Organization: fiscal.OrgDGFIP,
		Category:     fiscal.CategoryFiscal,
		Confidence:   fiscal.ConfidenceEstimated,
		Meta:         map[string]string{"householdParts": trimParts(ctx.HouseholdParts)},
	}}
}

func (ArtisteAuteurFR2025) ComputeVAT(ledger []fiscal.QualifiedOperation, ctx fiscal.Context) []fiscal.TaxLineItem {
	return computeVATLines(ledger, ctx)
}

func (ArtisteAuteurFR2025) ComputeSchedule(lines []fiscal.TaxLineItem, ctx fiscal.Context) []fiscal.ScheduleItem {
	return buildSchedule(lines, ctx)
}

func (ArtisteAuteurFR2025) ComputeAlerts(bases fiscal.ComputedBases, ctx fiscal.Context) []fiscal.Alert {
	var alerts []fiscal.Alert
	if bases.Revenue > aaRevenueCeiling {
		alerts = append(alerts, fiscal.Alert{
			Code:      "REVENUE_CEILING",
			Level:     fiscal.AlertWarning,
			Message:   "Le chiffre d'affaires depasse le plafond micro-BNC",
			Threshold: aaRevenueCeiling,
			Value:     bases.Revenue,
		})
	}
	if ctx.VATRegime == fiscal.VATFranchise && bases.Revenue > aaVATFranchiseCap {
		alerts = append(alerts, fiscal.Alert{
			Code:      "VAT_FRANCHISE_THRESHOLD",
			Level:     fiscal.AlertInfo,
			Message:   "Le seuil de franchise en base de TVA est depasse",
			Threshold: aaVATFranchiseCap,
			Value:     bases.Revenue,
		})
	}
	if bases.SocialBase >= aaRAAPFloor {
		alerts = append(alerts, fiscal.Alert{
			Code:      "RAAP_AFFILIATION",
			Level:     fiscal.AlertInfo,
			Message:   "Le seuil d'affiliation a la retraite complementaire est atteint",
			Threshold: aaRAAPFloor,
			Value:     bases.SocialBase,
		})
	}
	return alerts
}

// progressiveTax applies the per-part bracket schedule to the fiscal
// base divided by the household parts, then scales back.
func progressiveTax(fiscalBase, partsHundredths int64) int64 {
	if fiscalBase <= 0 || partsHundredths <= 0 {
		return 0
	}
	quotient := money.ScaleRatio(fiscalBase, 100, partsHundredths)

	var taxPerPart, lower int64
	for _, b := range aaTaxBrackets {
		upper := b.UpTo
		if upper == 0 || upper > quotient {
			upper = quotient
		}
		if upper > lower {
			taxPerPart += money.MulRate(upper-lower, b.Bps)
		}
		if b.UpTo == 0 || quotient <= b.UpTo {
			break
		}
		lower = b.UpTo
	}
	return money.ScaleRatio(taxPerPart, partsHundredths, 100)
}

// trimParts renders hundredths as a decimal string ("250" -> "2.5").
func trimParts(hundredths int64) string {
	if hundredths%100 == 0 {
		return strconv.FormatInt(hundredths/100, 10)
	}
	return strconv.FormatInt(hundredths/100, 10) + "." +
		strings.TrimRight(fmt.Sprintf("%02d", hundredths%100), "0")
}
