// micro2025.go - Micro-entrepreneur BNC, France, fiscal year 2025.
//
// The micro-social regime computes contributions directly on revenue
// (no uplift, no per-contribution breakdown): a single flat-rate line
// plus the training contribution. Income tax uses the versement
// liberatoire when the flat-rate regime is active.
package ruleset

import (
	"github.com/warp/fiscal-engine/fiscal"
	"github.com/warp/fiscal-engine/money"
)

const (
	mbAbatementBps   = 3400
	mbMinAbatement   = 30500
	mbMicroSocialBps = 2460 // micro-social BNC rate on revenue
	mbFormationBps   = 20
	mbVLBps          = 220
	mbRevenueCeiling = 7770000
)

// MicroBNCFR2025 implements Ruleset.
type MicroBNCFR2025 struct{}

func (MicroBNCFR2025) ID() string    { return "fr-2025-micro-bnc" }
func (MicroBNCFR2025) Year() int     { return 2025 }
func (MicroBNCFR2025) Revision() int { return 2 }

func (MicroBNCFR2025) Params() map[string]any {
	return map[string]any{
		"abatementBps":   mbAbatementBps,
		"minAbatement":   mbMinAbatement,
		"microSocialBps": mbMicroSocialBps,
		"formationBps":   mbFormationBps,
		"vlBps":          mbVLBps,
		"revenueCeiling": mbRevenueCeiling,
	}
}

// ComputeBases counts every professional revenue (micro-BNC is not
// limited to artistic categories). The social base IS the revenue:
// micro-social applies its rate to turnover, not to an uplifted profit.
func (MicroBNCFR2025) ComputeBases(ledger []fiscal.QualifiedOperation, ctx fiscal.Context) fiscal.ComputedBases {
	var revenue int64
	for _, op := range ledger {
		if op.Flags.IsPro && op.Kind == fiscal.KindRevenue {
			revenue += op.HT
		}
	}

	abatement := money.Max(money.MulRate(revenue, mbAbatementBps), mbMinAbatement)
	return fiscal.ComputedBases{
		Revenue:    revenue,
		FiscalBase: money.Max(0, revenue-abatement),
		SocialBase: revenue,
		VAT:        vatBases(ledger),
	}
}

func (MicroBNCFR2025) ComputeSocial(bases fiscal.ComputedBases, ctx fiscal.Context) []fiscal.TaxLineItem {
	if bases.SocialBase <= 0 {
		return nil
	}
	conf := ctx.Confidence()
	return []fiscal.TaxLineItem{
		{
			Code:         "MICRO_SOCIAL",
			Label:        "Cotisations micro-sociales BNC",
			Base:         bases.SocialBase,
			RateBps:      mbMicroSocialBps,
			Amount:       money.MulRate(bases.SocialBase, mbMicroSocialBps),
			Organization: fiscal.OrgURSSAF,
			Category:     fiscal.CategorySocial,
			Confidence:   conf,
			LegalRef:     "CSS art. L613-7",
		},
		{
			Code:         "FORMATION_PRO",
			Label:        "Contribution formation professionnelle",
			Base:         bases.SocialBase,
			RateBps:      mbFormationBps,
			Amount:       money.MulRate(bases.SocialBase, mbFormationBps),
			Organization: fiscal.OrgURSSAF,
			Category:     fiscal.CategorySocial,
			Confidence:   conf,
		},
	}
}

// ComputePension is empty: retirement is folded into the micro-social
// rate for this status.
func (MicroBNCFR2025) ComputePension(fiscal.ComputedBases, fiscal.Context) []fiscal.TaxLineItem {
	return nil
}

func (MicroBNCFR2025) ComputeIncomeTax(bases fiscal.ComputedBases, ctx fiscal.Context) []fiscal.TaxLineItem {
	if !ctx.Options.Estimate {
		return nil
	}
	amount := money.MulRate(bases.Revenue, mbVLBps)
	if amount == 0 {
		return nil
	}
	return []fiscal.TaxLineItem{{
		Code:         "IR_VL",
		Label:        "Versement liberatoire de l'impot sur le revenu",
		Base:         bases.Revenue,
		RateBps:      mbVLBps,
		Amount:       amount,
		Organization: fiscal.OrgDGFIP,
		Category:     fiscal.CategoryFiscal,
		Confidence:   fiscal.ConfidenceEstimated,
	}}
}

func (MicroBNCFR2025) ComputeVAT(ledger []fiscal.QualifiedOperation, ctx fiscal.Context) []fiscal.TaxLineItem {
	return computeVATLines(ledger, ctx)
}

func (MicroBNCFR2025) ComputeSchedule(lines []fiscal.TaxLineItem, ctx fiscal.Context) []fiscal.ScheduleItem {
	return buildSchedule(lines, ctx)
}

func (MicroBNCFR2025) ComputeAlerts(bases fiscal.ComputedBases, ctx fiscal.Context) []fiscal.Alert {
	if bases.Revenue > mbRevenueCeiling {
		return []fiscal.Alert{{
			Code:      "REVENUE_CEILING",
			Level:     fiscal.AlertWarning,
			Message:   "Le chiffre d'affaires depasse le plafond micro-BNC",
			Threshold: mbRevenueCeiling,
			Value:     bases.Revenue,
		}}
	}
	return nil
}
