/*
Package treasury projects the fiscal output into a monthly ledger.

PURPOSE:
  Merges the normalized cashflow ledger with the payment schedule into
  12 month rows: cash in/out by category, VAT flows, provisions
  (accrued-but-unpaid liability) and a running treasury balance
  anchored to a caller-supplied reference point.

ANTI-DOUBLE-COUNTING:
  A manually entered cash payment for a liability category in a given
  month always suppresses the scheduled amount for that same
  category/month. The user's real payment wins over the plan.

ANCHOR RECONCILIATION:
  Anchor{AmountCents, MonthIndex}: index -1 means the amount IS the
  January 1 opening balance. Otherwise the anchor is the balance at the
  START of that month and the opening balance is back-solved as
  amount - sum(net cashflow of the months before it), which guarantees
  that replaying the 12 monthly net cashflows from the solved opening
  balance reproduces the anchor exactly.

SEE ALSO:
  - engine/: produces the Output this package consumes
  - dashboard/: summarizes the projection for display
*/
package treasury

import (
	"strconv"

	"github.com/warp/fiscal-engine/fiscal"
	"github.com/warp/fiscal-engine/money"
)

// Anchor ties the projection to a known treasury balance.
type Anchor struct {
	AmountCents int64 `json:"amountCents"`
	// MonthIndex is 0-based; -1 anchors the January 1 opening balance.
	MonthIndex int `json:"monthIndex"`
}

// LedgerMonth is one projected month row.
type LedgerMonth struct {
	Month int // 1-based

	Income           int64
	ExpensesPro      int64
	ExpensesPersonal int64
	ExpensesOther    int64 // transfers and unclassified outflows

	VATCollected  int64
	VATDeductible int64
	VATDue        int64 // liability accrued this month

	PaidSocial int64
	PaidFiscal int64
	PaidVAT    int64

	ProvisionSocial int64
	ProvisionFiscal int64
	ProvisionVAT    int64

	NetCashflow    int64
	ClosingBalance int64
}

// LedgerFinal is the reconciled 12-month projection.
type LedgerFinal struct {
	Months         [12]LedgerMonth
	InitialBalance int64
	FinalBalance   int64
	Anchor         Anchor
}

// paymentCategories maps manual tax-payment entry categories to the
// liability category their cash settles.
var paymentCategories = map[string]fiscal.LineCategory{
	fiscal.CategoryPaymentURSSAF: fiscal.CategorySocial,
	fiscal.CategoryPaymentIRCEC:  fiscal.CategorySocial,
	fiscal.CategoryPaymentImpot:  fiscal.CategoryFiscal,
	fiscal.CategoryPaymentTVA:    fiscal.CategoryVAT,
}

// Project builds the monthly ledger from the engine output, the
// normalized operations and the treasury anchor.
func Project(out *fiscal.Output, ops []fiscal.NormalizedOperation, anchor Anchor) LedgerFinal {
	year := out.Metadata.RulesetYear
	var final LedgerFinal
	final.Anchor = anchor

	for i := range final.Months {
		final.Months[i].Month = i + 1
	}

	// Manual cash payments suppress scheduled amounts for the same
	// category and month.
	manual := make(map[fiscal.LineCategory][12]bool)

	for _, op := range ops {
		m := op.Month() - 1
		row := &final.Months[m]

		switch op.Kind {
		case fiscal.KindRevenue:
			row.Income += op.TTC
			if op.Scope == fiscal.ScopeProfessional {
				row.VATCollected += op.VAT
			}
		case fiscal.KindExpense:
			if op.Scope == fiscal.ScopeProfessional {
				row.ExpensesPro += op.TTC
				row.VATDeductible += op.VAT
			} else {
				row.ExpensesPersonal += op.TTC
			}
		case fiscal.KindTaxPayment:
			cat, ok := paymentCategories[op.Category]
			if !ok {
				row.ExpensesOther += op.TTC
				continue
			}
			addPaid(row, cat, op.TTC)
			marks := manual[cat]
			marks[m] = true
			manual[cat] = marks
		case fiscal.KindTransfer:
			row.ExpensesOther += op.TTC
		}
	}

	// Scheduled payments land in their due month unless a manual
	// payment already covered that category/month.
	for _, item := range out.Schedule {
		if item.DueDate.Year() != year {
			continue
		}
		m := int(item.DueDate.Month()) - 1
		if manual[item.Category][m] {
			continue
		}
		addPaid(&final.Months[m], item.Category, item.Amount)
	}

	// Monthly VAT liability accrual, from the VAT lines' month metadata.
	for _, l := range out.Lines {
		if l.Category != fiscal.CategoryVAT {
			continue
		}
		if month, err := strconv.Atoi(l.Meta["month"]); err == nil && month >= 1 && month <= 12 {
			final.Months[month-1].VATDue += l.Amount
		}
	}

	// Provisions: total annual liability minus cumulative paid, floored
	// at zero per category.
	totals := liabilityTotals(out.Lines)
	var cumSocial, cumFiscal, cumVAT int64
	for i := range final.Months {
		row := &final.Months[i]
		cumSocial += row.PaidSocial
		cumFiscal += row.PaidFiscal
		cumVAT += row.PaidVAT
		row.ProvisionSocial = money.Max(0, totals[fiscal.CategorySocial]-cumSocial)
		row.ProvisionFiscal = money.Max(0, totals[fiscal.CategoryFiscal]-cumFiscal)
		row.ProvisionVAT = money.Max(0, totals[fiscal.CategoryVAT]-cumVAT)

		row.NetCashflow = row.Income - row.ExpensesPro - row.ExpensesPersonal -
			row.ExpensesOther - row.PaidSocial - row.PaidFiscal - row.PaidVAT
	}

	final.InitialBalance = solveInitialBalance(final.Months, anchor)

	balance := final.InitialBalance
	for i := range final.Months {
		balance += final.Months[i].NetCashflow
		final.Months[i].ClosingBalance = balance
	}
	final.FinalBalance = balance

	return final
}

func addPaid(row *LedgerMonth, cat fiscal.LineCategory, cents int64) {
	switch cat {
	case fiscal.CategorySocial:
		row.PaidSocial += cents
	case fiscal.CategoryFiscal:
		row.PaidFiscal += cents
	case fiscal.CategoryVAT:
		row.PaidVAT += cents
	}
}

func liabilityTotals(lines []fiscal.TaxLineItem) map[fiscal.LineCategory]int64 {
	totals := make(map[fiscal.LineCategory]int64)
	for _, l := range lines {
		totals[l.Category] += l.Amount
	}
	return totals
}

// solveInitialBalance back-solves the January 1 balance from the anchor.
func solveInitialBalance(months [12]LedgerMonth, anchor Anchor) int64 {
	if anchor.MonthIndex < 0 {
		return anchor.AmountCents
	}
	idx := anchor.MonthIndex
	if idx > 11 {
		idx = 11
	}
	var before int64
	for i := 0; i < idx; i++ {
		before += months[i].NetCashflow
	}
	return anchor.AmountCents - before
}
