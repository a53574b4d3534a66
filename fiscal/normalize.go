/*
normalize.go - Entry expansion into the dated operation ledger

PURPOSE:
  Expands canonical entries into a flat, one-operation-per-occurrence
  ledger for the fiscal year, with the HT/VAT/TTC split computed once
  per entry and reused for every occurrence.

EXPANSION RULES:
  monthly    one occurrence per month, anchor month through December
  quarterly  occurrences on Jan/Apr/Jul/Oct at or after the anchor month
  yearly / once / unspecified
             a single occurrence in the anchor month

  Each occurrence keeps the entry's original day-of-month (clamped to
  the target month's length; the 15th when the date is unparseable).
  Entries anchored before the fiscal year accrue from January; entries
  anchored after it produce nothing.

DETERMINISM:
  Output is sorted by (date, id) before being returned, so downstream
  hashing and projection never depend on input order. Zero-amount
  entries are skipped entirely.

SEE ALSO:
  - qualify.go: annotates the operations this file produces
  - money/: SplitGross guarantees net + tax == gross
*/
package fiscal

import (
	"fmt"
	"sort"
	"time"

	"github.com/warp/fiscal-engine/money"
)

// Normalize expands entries into the sorted operation ledger for the
// context's fiscal year.
func Normalize(entries []Entry, ctx Context) []NormalizedOperation {
	var ops []NormalizedOperation
	for _, e := range entries {
		ops = append(ops, expand(e, ctx)...)
	}

	sort.Slice(ops, func(i, j int) bool {
		if !ops[i].Date.Equal(ops[j].Date) {
			return ops[i].Date.Before(ops[j].Date)
		}
		return ops[i].ID < ops[j].ID
	})
	return ops
}

func expand(e Entry, ctx Context) []NormalizedOperation {
	if e.AmountTTC == 0 {
		// No zero-valued operation is ever emitted.
		return nil
	}

	kind := kindOf(e.Nature)
	scope := scopeOf(e, ctx)
	rate := resolveRate(e, scope, kind, ctx)
	ht, vat := money.SplitGross(e.AmountTTC, rate)

	anchorMonth, day, anchorYear := anchor(e)
	if anchorYear > ctx.Year {
		return nil
	}
	if anchorYear < ctx.Year {
		anchorMonth = 1
	}

	var months []int
	switch e.Periodicity {
	case PeriodicityMonthly:
		for m := anchorMonth; m <= 12; m++ {
			months = append(months, m)
		}
	case PeriodicityQuarterly:
		for _, m := range []int{1, 4, 7, 10} {
			if m >= anchorMonth {
				months = append(months, m)
			}
		}
	default: // yearly, once, unspecified
		months = []int{anchorMonth}
	}

	direction := DirectionOutflow
	if e.Nature == NatureIncome {
		direction = DirectionInflow
	}

	ops := make([]NormalizedOperation, 0, len(months))
	for _, m := range months {
		ops = append(ops, NormalizedOperation{
			ID:        fmt.Sprintf("%s-%02d", e.ID, m),
			EntryID:   e.ID,
			Date:      dateInMonth(ctx.Year, m, day),
			HT:        ht,
			VAT:       vat,
			TTC:       e.AmountTTC,
			VATRate:   rate,
			Direction: direction,
			Scope:     scope,
			Kind:      kind,
			Category:  e.Category,
			Label:     e.Label,
		})
	}
	return ops
}

func kindOf(n Nature) Kind {
	switch n {
	case NatureIncome:
		return KindRevenue
	case NatureTaxPayment:
		return KindTaxPayment
	case NatureTransfer:
		return KindTransfer
	default:
		return KindExpense
	}
}

// scopeOf derives the effective scope. Tax payments follow the
// tax-as-company-expense toggle; other natures keep the entry's scope.
func scopeOf(e Entry, ctx Context) Scope {
	if e.Nature == NatureTaxPayment {
		if ctx.Options.TaxAsCompanyExpense {
			return ScopeProfessional
		}
		return ScopePersonal
	}
	return e.Scope
}

func resolveRate(e Entry, scope Scope, kind Kind, ctx Context) int64 {
	// Tax payments and transfers never carry VAT.
	if kind == KindTaxPayment || kind == KindTransfer {
		return 0
	}
	if e.VATRate == VATRateUnset {
		if scope == ScopeProfessional {
			return ctx.Options.DefaultVATRate
		}
		return 0
	}
	return e.VATRate
}

// anchor extracts (month, day, year) from the entry date, with the
// documented fallback of the 15th of January when unparseable.
func anchor(e Entry) (month, day, year int) {
	t, err := time.Parse("2006-01-02", e.Date)
	if err != nil {
		return 1, 15, 0
	}
	return int(t.Month()), t.Day(), t.Year()
}

// dateInMonth clamps the day to the target month's length instead of
// letting time.Date roll into the next month.
func dateInMonth(year, month, day int) time.Time {
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	if day < 1 {
		day = 15
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
