/*
schedule.go - Payment schedule generation shared by the FR variants.

PURPOSE:
  Turns the annual tax line items into dated, payable obligations:

  URSSAF   recurring: 12 monthly installments (5th of each month) or 4
           quarterly installments (Jan/Apr/Jul/Oct 5th), per the
           context's social frequency. Even division; the remainder
           cents land on the last installment so the installments sum
           exactly to the annual total.
  IRCEC    annual: full amount on December 15 of the fiscal year.
  DGFIP    income tax: full amount on September 15 of the following
           year.
  VAT      monthly mode: month m is paid on the 20th of m+1, December
           rolls over to January 20 of the following year. Annual
           mode: full-year total paid May 3 of the following year.

TRACEABILITY:
  Every schedule item carries the codes of the line items it
  aggregates.
*/
package ruleset

import (
	"fmt"
	"strconv"
	"time"

	"github.com/warp/fiscal-engine/fiscal"
)

// Fixed schedule days.
const (
	urssafDueDay  = 5
	vatDueDay     = 20
	ircecDueDay   = 15 // December
	incomeDueDay  = 15 // September, following year
	vatAnnualDay  = 3  // May, following year
)

func buildSchedule(lines []fiscal.TaxLineItem, ctx fiscal.Context) []fiscal.ScheduleItem {
	var items []fiscal.ScheduleItem
	items = append(items, urssafInstallments(lines, ctx)...)
	items = append(items, annualOrgItem(lines, fiscal.OrgIRCEC, fiscal.CategorySocial,
		time.Date(ctx.Year, time.December, ircecDueDay, 0, 0, 0, 0, time.UTC), ctx)...)
	items = append(items, annualOrgItem(lines, fiscal.OrgDGFIP, fiscal.CategoryFiscal,
		time.Date(ctx.Year+1, time.September, incomeDueDay, 0, 0, 0, 0, time.UTC), ctx)...)
	items = append(items, vatSchedule(lines, ctx)...)
	return items
}

// urssafInstallments divides the annual URSSAF total evenly across the
// configured number of installments on fixed calendar dates.
func urssafInstallments(lines []fiscal.TaxLineItem, ctx fiscal.Context) []fiscal.ScheduleItem {
	total, codes := sumByOrg(lines, fiscal.OrgURSSAF, fiscal.CategorySocial)
	if total <= 0 {
		return nil
	}

	var months []time.Month
	if ctx.Options.SocialFrequency == fiscal.FrequencyQuarterly {
		months = []time.Month{time.January, time.April, time.July, time.October}
	} else {
		for m := time.January; m <= time.December; m++ {
			months = append(months, m)
		}
	}

	parts := splitEven(total, len(months))
	items := make([]fiscal.ScheduleItem, len(months))
	for i, m := range months {
		items[i] = fiscal.ScheduleItem{
			ID:           fmt.Sprintf("urssaf-%d-%02d", ctx.Year, int(m)),
			DueDate:      time.Date(ctx.Year, m, urssafDueDay, 0, 0, 0, 0, time.UTC),
			Amount:       parts[i],
			Organization: fiscal.OrgURSSAF,
			Category:     fiscal.CategorySocial,
			Type:         fiscal.SchedProvision,
			Status:       fiscal.SchedPending,
			Confidence:   ctx.Confidence(),
			SourceCodes:  codes,
		}
	}
	return items
}

// annualOrgItem emits a single year-end (or following-year) obligation
// for an annual-only organization.
func annualOrgItem(lines []fiscal.TaxLineItem, org fiscal.Organization, cat fiscal.LineCategory, due time.Time, ctx fiscal.Context) []fiscal.ScheduleItem {
	total, codes := sumByOrg(lines, org, cat)
	if total <= 0 {
		return nil
	}
	return []fiscal.ScheduleItem{{
		ID:           fmt.Sprintf("%s-%d-annual", org, ctx.Year),
		DueDate:      due,
		Amount:       total,
		Organization: org,
		Category:     cat,
		Type:         fiscal.SchedBalance,
		Status:       fiscal.SchedPending,
		Confidence:   ctx.Confidence(),
		SourceCodes:  codes,
	}}
}

// vatSchedule places VAT liabilities per the VAT payment frequency.
func vatSchedule(lines []fiscal.TaxLineItem, ctx fiscal.Context) []fiscal.ScheduleItem {
	var items []fiscal.ScheduleItem

	if ctx.Options.VATFrequency == fiscal.FrequencyAnnual {
		return annualVAT(lines, ctx)
	}

	for _, l := range lines {
		if l.Category != fiscal.CategoryVAT {
			continue
		}
		month, err := strconv.Atoi(l.Meta["month"])
		if err != nil || month < 1 || month > 12 {
			continue
		}
		// Month m is paid on the 20th of m+1; December rolls into
		// January of the following year.
		dueYear, dueMonth := ctx.Year, month+1
		if dueMonth > 12 {
			dueYear, dueMonth = ctx.Year+1, 1
		}
		items = append(items, fiscal.ScheduleItem{
			ID:           fmt.Sprintf("tva-%d-%02d", ctx.Year, month),
			DueDate:      time.Date(dueYear, time.Month(dueMonth), vatDueDay, 0, 0, 0, 0, time.UTC),
			Amount:       l.Amount,
			Organization: fiscal.OrgDGFIP,
			Category:     fiscal.CategoryVAT,
			Type:         fiscal.SchedProvision,
			Status:       fiscal.SchedPending,
			Confidence:   ctx.Confidence(),
			SourceCodes:  []string{l.Code},
		})
	}
	return items
}

func annualVAT(lines []fiscal.TaxLineItem, ctx fiscal.Context) []fiscal.ScheduleItem {
	var total int64
	var codes []string
	for _, l := range lines {
		if l.Category == fiscal.CategoryVAT {
			total += l.Amount
			codes = append(codes, l.Code)
		}
	}
	if total <= 0 {
		return nil
	}
	return []fiscal.ScheduleItem{{
		ID:           fmt.Sprintf("tva-%d-annual", ctx.Year),
		DueDate:      time.Date(ctx.Year+1, time.May, vatAnnualDay, 0, 0, 0, 0, time.UTC),
		Amount:       total,
		Organization: fiscal.OrgDGFIP,
		Category:     fiscal.CategoryVAT,
		Type:         fiscal.SchedBalance,
		Status:       fiscal.SchedPending,
		Confidence:   ctx.Confidence(),
		SourceCodes:  codes,
	}}
}

func sumByOrg(lines []fiscal.TaxLineItem, org fiscal.Organization, cat fiscal.LineCategory) (int64, []string) {
	var total int64
	var codes []string
	for _, l := range lines {
		if l.Organization == org && l.Category == cat {
			total += l.Amount
			codes = append(codes, l.Code)
		}
	}
	return total, codes
}

// splitEven divides cents across n parts; the remainder goes on the
// last part so the parts always sum to the total exactly.
func splitEven(total int64, n int) []int64 {
	base := total / int64(n)
	parts := make([]int64, n)
	for i := range parts {
		parts[i] = base
	}
	parts[n-1] += total - base*int64(n)
	return parts
}
