/*
Package fiscal defines the core data model of the computation pipeline.

PURPOSE:
  This package owns the canonical records flowing through one
  computation call: Entry (input fact), NormalizedOperation (one dated
  occurrence), QualifiedOperation (occurrence + tax-relevance flags),
  Context (the fiscal situation), TaxLineItem / ScheduleItem / Alert
  (ruleset products), ComputedBases, VatSummary and Output.

KEY CONCEPTS:
  - Amounts are int64 cents, rates are int64 basis points. Always.
  - Records are immutable once built: every stage consumes values and
    returns new values, nothing is mutated in place.
  - Derived aggregates with cross-field invariants (VatSummary) are
    built by constructors that make inconsistent states unrepresentable.

DESIGN PRINCIPLES:
  1. Determinism: the normalized ledger is sorted by (date, id) before
     hashing or projection, regardless of input order.
  2. Traceability: line items carry cap metadata and juridical refs,
     schedule items carry the line codes they aggregate.
  3. Type safety: statuses, regimes, natures and categories are typed
     string enums, never bare strings.

SEE ALSO:
  - normalize.go: Entry -> NormalizedOperation expansion
  - qualify.go: NormalizedOperation -> QualifiedOperation
  - errors.go: sentinel and structured errors
*/
package fiscal

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// IDENTIFIERS AND ENUMS
// =============================================================================

type EntryID string

// Nature classifies the financial fact an Entry records.
type Nature string

const (
	NatureIncome       Nature = "income"
	NatureExpensePro   Nature = "expense_pro"
	NatureExpensePerso Nature = "expense_perso"
	NatureTaxPayment   Nature = "tax_payment"
	NatureTransfer     Nature = "transfer"
)

// Scope separates professional from personal operations.
type Scope string

const (
	ScopeProfessional Scope = "professional"
	ScopePersonal     Scope = "personal"
)

// Periodicity drives the normalizer's occurrence expansion.
type Periodicity string

const (
	PeriodicityMonthly   Periodicity = "monthly"
	PeriodicityQuarterly Periodicity = "quarterly"
	PeriodicityYearly    Periodicity = "yearly"
	PeriodicityOnce      Periodicity = "once"
)

// Kind is the normalized operation kind.
type Kind string

const (
	KindRevenue    Kind = "revenue"
	KindExpense    Kind = "expense"
	KindTaxPayment Kind = "tax_payment"
	KindTransfer   Kind = "transfer"
)

// Direction is the cash direction of a normalized operation.
type Direction string

const (
	DirectionInflow  Direction = "inflow"
	DirectionOutflow Direction = "outflow"
)

// Status is the legal/tax status of the worker.
type Status string

const (
	StatusArtisteAuteur Status = "artiste-auteur"
	StatusMicroBNC      Status = "micro-entrepreneur-bnc"
)

// Regime selects flat-rate abatement vs real deductible expenses.
type Regime string

const (
	RegimeFlatRate Regime = "micro"
	RegimeReal     Regime = "reel"
)

// VATRegime is the VAT situation for the year.
type VATRegime string

const (
	VATFranchise  VATRegime = "franchise"
	VATRegimeReal VATRegime = "reel"
)

// Frequency is used for both social installments and VAT payments.
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnual    Frequency = "annual"
)

// Organization is a collecting body a line item or payment belongs to.
type Organization string

const (
	OrgURSSAF Organization = "URSSAF"
	OrgIRCEC  Organization = "IRCEC"
	OrgDGFIP  Organization = "DGFIP"
)

// LineCategory groups line items for provisions and breakdowns.
type LineCategory string

const (
	CategorySocial LineCategory = "social"
	CategoryFiscal LineCategory = "fiscal"
	CategoryVAT    LineCategory = "vat"
)

// Confidence tells whether an amount is an estimate or a certified figure.
type Confidence string

const (
	ConfidenceEstimated Confidence = "estimated"
	ConfidenceCertified Confidence = "certified"
)

// Mode is the computation mode carried in output metadata.
type Mode string

const (
	ModeEstimated Mode = "ESTIMATED"
	ModeCertified Mode = "CERTIFIED"
)

// Revenue categories recognized as artistic/creative income.
const (
	CategoryDroitsAuteur  = "droits-auteur"
	CategoryVenteOeuvre   = "vente-oeuvre"
	CategoryCessionDroits = "cession-droits"
)

// CategoryOther is the non-deductible catch-all expense category.
const CategoryOther = "autre"

// Tax-payment categories map cash payments to their organization.
const (
	CategoryPaymentURSSAF = "urssaf"
	CategoryPaymentIRCEC  = "ircec"
	CategoryPaymentImpot  = "impot"
	CategoryPaymentTVA    = "tva"
)

// VATRateUnset marks an entry that did not specify a VAT rate; the
// normalizer substitutes the context's default rate for professional
// operations.
const VATRateUnset int64 = -1

// =============================================================================
// ENTRY - Canonical input record
// =============================================================================

// Entry is one recurring or one-off financial fact. Immutable once
// submitted to the pipeline for a given computation.
type Entry struct {
	ID          EntryID
	Nature      Nature
	Label       string
	AmountTTC   int64 // cents, tax included
	VATRate     int64 // bps, VATRateUnset if not specified
	Date        string // YYYY-MM-DD anchor date
	Scope       Scope
	Category    string
	Subcategory string
	Periodicity Periodicity
}

// =============================================================================
// FISCAL CONTEXT
// =============================================================================

// Options carries the feature toggles supplied with a context.
type Options struct {
	// Estimate mode: true produces ESTIMATED output, false CERTIFIED.
	Estimate bool

	// SocialFrequency is the URSSAF installment frequency.
	SocialFrequency Frequency

	// VATFrequency is monthly (paid month+1) or annual (paid next year).
	VATFrequency Frequency

	// DefaultVATRate in bps, applied to professional operations whose
	// entry left the rate unset.
	DefaultVATRate int64

	// TaxAsCompanyExpense treats tax payments as a professional outflow
	// rather than a personal withdrawal.
	TaxAsCompanyExpense bool
}

// Context is the fiscal situation for one computation call. Supplied
// once, immutable for the duration of the call.
type Context struct {
	Year      int
	AsOf      time.Time
	Status    Status
	Regime    Regime
	VATRegime VATRegime

	// HouseholdParts in hundredths (250 = 2.5 parts), so the quotient
	// familial stays in integer arithmetic.
	HouseholdParts int64

	Options Options
}

// Mode returns the output mode implied by the estimate toggle.
func (c Context) Mode() Mode {
	if c.Options.Estimate {
		return ModeEstimated
	}
	return ModeCertified
}

// Confidence returns the line-item confidence implied by the mode.
func (c Context) Confidence() Confidence {
	if c.Options.Estimate {
		return ConfidenceEstimated
	}
	return ConfidenceCertified
}

// =============================================================================
// NORMALIZED / QUALIFIED OPERATIONS
// =============================================================================

// NormalizedOperation is one dated occurrence derived from an Entry.
// Many operations can originate from one entry (12 from a monthly one).
type NormalizedOperation struct {
	ID        string
	EntryID   EntryID
	Date      time.Time // UTC midnight
	HT        int64
	VAT       int64
	TTC       int64
	VATRate   int64
	Direction Direction
	Scope     Scope
	Kind      Kind
	Category  string
	Label     string
}

// Month returns the 1-based calendar month of the occurrence.
func (o NormalizedOperation) Month() int { return int(o.Date.Month()) }

// AsCanonical returns the map representation used for ledger
// fingerprinting. Field names are stable; changing them changes every
// fiscal hash.
func (o NormalizedOperation) AsCanonical() map[string]any {
	return map[string]any{
		"id":        o.ID,
		"entryId":   string(o.EntryID),
		"date":      o.Date.Format("2006-01-02"),
		"ht":        o.HT,
		"vat":       o.VAT,
		"ttc":       o.TTC,
		"vatRate":   o.VATRate,
		"direction": string(o.Direction),
		"scope":     string(o.Scope),
		"kind":      string(o.Kind),
		"category":  o.Category,
	}
}

// Flags are the tax-relevance annotations added by the qualifier. They
// never mutate the underlying financial facts.
type Flags struct {
	IsPro            bool
	IsArtistic       bool
	IsSocialBase     bool
	VATCollectable   bool
	VATDeductible    bool
	FiscalDeductible bool
}

// QualifiedOperation is a NormalizedOperation plus its flags.
type QualifiedOperation struct {
	NormalizedOperation
	Flags Flags
}

// =============================================================================
// RULESET PRODUCTS
// =============================================================================

// TaxLineItem is one computed contribution or tax amount. Never mutated
// after production.
type TaxLineItem struct {
	Code         string
	Label        string
	Base         int64
	RateBps      int64
	Amount       int64
	Organization Organization
	Category     LineCategory
	Confidence   Confidence

	// Cap metadata, set when the base was clamped.
	CapApplied bool
	CapName    string
	CapValue   int64

	// LegalRef is the juridical basis reference, when known.
	LegalRef string

	// Meta carries traceability details (e.g. "month" for VAT lines).
	Meta map[string]string
}

// ScheduleType distinguishes the role of a payable obligation.
type ScheduleType string

const (
	SchedProvision      ScheduleType = "provision"
	SchedRegularization ScheduleType = "regularization"
	SchedBalance        ScheduleType = "balance"
)

// ScheduleStatus marks whether an obligation is still payable.
type ScheduleStatus string

const (
	SchedPending ScheduleStatus = "pending"
	SchedLocked  ScheduleStatus = "locked"
)

// ScheduleItem is one dated, payable obligation derived from line items.
type ScheduleItem struct {
	ID           string
	DueDate      time.Time
	Amount       int64
	Organization Organization
	Category     LineCategory
	Type         ScheduleType
	Status       ScheduleStatus
	Confidence   Confidence

	// SourceCodes lists the line-item codes this obligation aggregates.
	SourceCodes []string
}

// AlertLevel is the severity of an advisory alert.
type AlertLevel string

const (
	AlertInfo    AlertLevel = "info"
	AlertWarning AlertLevel = "warning"
)

// Alert is advisory only; it never affects computed amounts.
type Alert struct {
	Code      string
	Level     AlertLevel
	Message   string
	Threshold int64
	Value     int64
}

// =============================================================================
// COMPUTED BASES
// =============================================================================

// VATBases tracks per-month collectable and deductible VAT.
type VATBases struct {
	CollectedByMonth  [12]int64
	DeductibleByMonth [12]int64
}

// Collected sums collectable VAT over the year.
func (b VATBases) Collected() int64 {
	var total int64
	for _, v := range b.CollectedByMonth {
		total += v
	}
	return total
}

// Deductible sums deductible VAT over the year.
func (b VATBases) Deductible() int64 {
	var total int64
	for _, v := range b.DeductibleByMonth {
		total += v
	}
	return total
}

// ComputedBases are the taxable bases derived once per computation.
type ComputedBases struct {
	Revenue            int64 // qualified professional revenue, HT
	DeductibleExpenses int64 // qualified deductible expenses, HT
	FiscalBase         int64
	SocialBase         int64
	VAT                VATBases
}

// =============================================================================
// VAT SUMMARY - Invariant-checked by construction
// =============================================================================

// VATStatus is derived solely from the sign of collected - deductible.
type VATStatus string

const (
	VATNone   VATStatus = "none"
	VATDue    VATStatus = "due"
	VATCredit VATStatus = "credit"
)

// VatSummary is built only through NewVatSummary, so due and credit are
// mutually exclusive and status always matches the balance sign.
type VatSummary struct {
	Collected  int64
	Deductible int64
	Balance    int64
	Due        int64
	Credit     int64
	Status     VATStatus
}

// NewVatSummary derives due, credit and status together from the
// collected-minus-deductible balance.
func NewVatSummary(collected, deductible int64) VatSummary {
	balance := collected - deductible
	s := VatSummary{
		Collected:  collected,
		Deductible: deductible,
		Balance:    balance,
	}
	switch {
	case balance > 0:
		s.Due = balance
		s.Status = VATDue
	case balance < 0:
		s.Credit = -balance
		s.Status = VATCredit
	default:
		s.Status = VATNone
	}
	return s
}

// =============================================================================
// OUTPUT
// =============================================================================

// Metadata identifies exactly which engine, ruleset, context and ledger
// produced an output.
type Metadata struct {
	EngineVersion   string
	RulesetID       string
	RulesetYear     int
	RulesetRevision int
	FiscalHash      string
	ParamsHash      string
	ContextHash     string
	LedgerHash      string
	ComputedAt      time.Time
	Mode            Mode

	// Fallback is true when no ruleset matched (year, status) and the
	// VAT-only fallback produced this output.
	Fallback bool
}

// Output is the canonical, hashed result of one computation.
type Output struct {
	Metadata Metadata
	Bases    ComputedBases
	Lines    []TaxLineItem
	ByOrg    map[Organization][]TaxLineItem
	VAT      VatSummary
	Schedule []ScheduleItem
	Alerts   []Alert
}

// TotalLoad sums every line-item amount.
func (o Output) TotalLoad() int64 {
	var total int64
	for _, l := range o.Lines {
		total += l.Amount
	}
	return total
}

// =============================================================================
// PERSISTENCE COLLABORATOR INTERFACE
// =============================================================================

// EntryStore is the persistence collaborator contract. The core never
// touches storage; the API layer loads entries through this interface
// and hands the core a read-only snapshot.
type EntryStore interface {
	SaveEntry(ctx context.Context, e Entry) error
	ListEntries(ctx context.Context, year int) ([]Entry, error)
	DeleteEntry(ctx context.Context, id EntryID) error
}

// String implements a compact debug form used in logs.
func (e Entry) String() string {
	return fmt.Sprintf("%s[%s %s %d cents %s]", e.ID, e.Nature, e.Category, e.AmountTTC, e.Date)
}
