// vat.go - Monthly VAT computation shared by every variant.
//
// VAT does not depend on the legal status, only on the VAT regime and
// the qualified ledger, so the fallback variant reuses this verbatim.
package ruleset

import (
	"fmt"
	"time"

	"github.com/warp/fiscal-engine/fiscal"
)

// vatBases buckets collectable and deductible VAT per calendar month.
func vatBases(ledger []fiscal.QualifiedOperation) fiscal.VATBases {
	var b fiscal.VATBases
	for _, op := range ledger {
		m := op.Month() - 1
		if op.Flags.VATCollectable {
			b.CollectedByMonth[m] += op.VAT
		}
		if op.Flags.VATDeductible {
			b.DeductibleByMonth[m] += op.VAT
		}
	}
	return b
}

// computeVATLines emits one line per month with a positive
// collected-minus-deductible balance. The month index rides along as
// traceability metadata. Exemption regime emits nothing.
func computeVATLines(ledger []fiscal.QualifiedOperation, ctx fiscal.Context) []fiscal.TaxLineItem {
	if ctx.VATRegime == fiscal.VATFranchise {
		return nil
	}

	bases := vatBases(ledger)
	var lines []fiscal.TaxLineItem
	for m := 0; m < 12; m++ {
		net := bases.CollectedByMonth[m] - bases.DeductibleByMonth[m]
		if net <= 0 {
			continue
		}
		lines = append(lines, fiscal.TaxLineItem{
			Code:         fmt.Sprintf("TVA_%02d", m+1),
			Label:        fmt.Sprintf("TVA nette %s", time.Month(m+1)),
			Base:         bases.CollectedByMonth[m],
			Amount:       net,
			Organization: fiscal.OrgDGFIP,
			Category:     fiscal.CategoryVAT,
			Confidence:   ctx.Confidence(),
			Meta: map[string]string{
				"month":      fmt.Sprintf("%d", m+1),
				"collected":  fmt.Sprintf("%d", bases.CollectedByMonth[m]),
				"deductible": fmt.Sprintf("%d", bases.DeductibleByMonth[m]),
			},
		})
	}
	return lines
}
