/*
Package dashboard compiles the read-only summary model for consumers.

PURPOSE:
  Derives KPIs, breakdowns, next-due payment and monthly cash-due
  buckets from a Snapshot. Strictly read-only: no new business logic,
  every figure is an exact regrouping of engine output.

INVARIANTS (hard, checked at construction):
  - sum(byOrganization amounts) == kpis.totalLoad
  - sum(byCategory amounts)     == kpis.totalLoad
  A model that fails reconciliation is never returned; the compiler
  errors instead, because silently-wrong numbers must not reach the
  user.

GOVERNANCE TRIPWIRE:
  SchemaVersion is an explicit literal. Any structural change to the
  model's field set is expected to bump it.
*/
package dashboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/warp/fiscal-engine/engine"
	"github.com/warp/fiscal-engine/fiscal"
)

// SchemaVersion is the dashboard model's schema literal.
const SchemaVersion = "dashboard.v2"

// Breakdown is one grouped amount slice.
type Breakdown struct {
	Key    string `json:"key"`
	Amount int64  `json:"amount"`
}

// NextPayment describes the next pending obligation.
type NextPayment struct {
	ID           string              `json:"id"`
	DueDate      time.Time           `json:"dueDate"`
	Amount       int64               `json:"amount"`
	Organization fiscal.Organization `json:"organization"`
	Confidence   fiscal.Confidence   `json:"confidence"`
}

// KPIs are the headline aggregates.
type KPIs struct {
	// TotalLoad is the sum of every tax line-item amount.
	TotalLoad int64 `json:"totalLoad"`
	// TotalCashDue sums pending schedule items due on or after the
	// reference instant.
	TotalCashDue int64 `json:"totalCashDue"`
}

// Model is the validated summary handed to presentation layers.
type Model struct {
	SchemaVersion string `json:"schemaVersion"`

	Year       int         `json:"year"`
	Mode       fiscal.Mode `json:"mode"`
	FiscalHash string      `json:"fiscalHash"`

	KPIs           KPIs              `json:"kpis"`
	ByOrganization []Breakdown       `json:"byOrganization"`
	ByCategory     []Breakdown       `json:"byCategory"`
	VAT            fiscal.VatSummary `json:"vat"`
	NextDue        *NextPayment      `json:"nextDue,omitempty"`

	// MonthlyCashDue buckets scheduled amounts falling inside the
	// fiscal year, by month.
	MonthlyCashDue [12]int64 `json:"monthlyCashDue"`

	ProjectedTreasury int64 `json:"projectedTreasury"`
}

// Compile builds the model from a snapshot, as of the reference
// instant. It fails rather than emit an inconsistent model.
func Compile(s *engine.Snapshot, ref time.Time) (*Model, error) {
	out := s.Output

	totalLoad := out.TotalLoad()
	byOrg := groupBy(out.Lines, func(l fiscal.TaxLineItem) string { return string(l.Organization) })
	byCat := groupBy(out.Lines, func(l fiscal.TaxLineItem) string { return string(l.Category) })

	if err := reconcile("byOrganization", byOrg, totalLoad); err != nil {
		return nil, err
	}
	if err := reconcile("byCategory", byCat, totalLoad); err != nil {
		return nil, err
	}

	m := &Model{
		SchemaVersion:     SchemaVersion,
		Year:              out.Metadata.RulesetYear,
		Mode:              out.Metadata.Mode,
		FiscalHash:        out.Metadata.FiscalHash,
		KPIs:              KPIs{TotalLoad: totalLoad},
		ByOrganization:    byOrg,
		ByCategory:        byCat,
		VAT:               out.VAT,
		ProjectedTreasury: s.Ledger.FinalBalance,
	}

	for _, item := range out.Schedule {
		pending := item.Status == fiscal.SchedPending && !item.DueDate.Before(ref)
		if pending {
			m.KPIs.TotalCashDue += item.Amount
		}
		if item.DueDate.Year() == m.Year {
			m.MonthlyCashDue[item.DueDate.Month()-1] += item.Amount
		}
	}

	m.NextDue = nextDue(out.Schedule, ref)
	return m, nil
}

// nextDue picks the earliest pending, positive obligation due on or
// after ref; ties prefer certified over estimated, then lower ID.
func nextDue(items []fiscal.ScheduleItem, ref time.Time) *NextPayment {
	var best *fiscal.ScheduleItem
	for i := range items {
		it := &items[i]
		if it.Status != fiscal.SchedPending || it.Amount <= 0 || it.DueDate.Before(ref) {
			continue
		}
		if best == nil || earlier(it, best) {
			best = it
		}
	}
	if best == nil {
		return nil
	}
	return &NextPayment{
		ID:           best.ID,
		DueDate:      best.DueDate,
		Amount:       best.Amount,
		Organization: best.Organization,
		Confidence:   best.Confidence,
	}
}

func earlier(a, b *fiscal.ScheduleItem) bool {
	if !a.DueDate.Equal(b.DueDate) {
		return a.DueDate.Before(b.DueDate)
	}
	if a.Confidence != b.Confidence {
		return a.Confidence == fiscal.ConfidenceCertified
	}
	return a.ID < b.ID
}

func groupBy(lines []fiscal.TaxLineItem, key func(fiscal.TaxLineItem) string) []Breakdown {
	sums := make(map[string]int64)
	for _, l := range lines {
		sums[key(l)] += l.Amount
	}
	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Breakdown, len(keys))
	for i, k := range keys {
		out[i] = Breakdown{Key: k, Amount: sums[k]}
	}
	return out
}

func reconcile(dim string, parts []Breakdown, total int64) error {
	var sum int64
	for _, p := range parts {
		sum += p.Amount
	}
	if sum != total {
		return fmt.Errorf("%w: %s sums to %d, total load is %d",
			fiscal.ErrInconsistentModel, dim, sum, total)
	}
	return nil
}
