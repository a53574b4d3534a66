/*
errors.go - Centralized error types for the fiscal core

PURPOSE:
  All error types in one place. Boundary failures are structured lists
  of field-level issues; internal invariant violations are hard errors.

ERROR CATEGORIES:
  1. Boundary errors - malformed Entry or Context, rejected before the
     pipeline runs
  2. Invariant errors - engine output that does not reconcile (raised by
     the dashboard compiler)
  3. Dispatch diagnostics - unknown ruleset (non-fatal, fallback applies)

SEE ALSO:
  - types.go: the records these errors are about
  - dashboard/: raises ErrInconsistentModel on reconciliation failure
*/
package fiscal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownRuleset is the diagnostic recorded when no ruleset
	// matches (year, status). Non-fatal: the fallback module runs.
	ErrUnknownRuleset = errors.New("no ruleset for year/status")

	// ErrInvalidEntry is wrapped by boundary validation failures on
	// entry records.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrInvalidContext is wrapped by boundary validation failures on
	// the fiscal context.
	ErrInvalidContext = errors.New("invalid fiscal context")

	// ErrInconsistentModel marks a derived view model whose aggregates
	// do not reconcile with the engine output. Always a defect.
	ErrInconsistentModel = errors.New("inconsistent view model")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationIssue is one field-level problem found at the boundary.
type ValidationIssue struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError aggregates every issue found in one record, so the
// caller sees the full list rather than the first failure.
type ValidationError struct {
	Record string
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, iss := range e.Issues {
		parts[i] = iss.Field + ": " + iss.Message
	}
	return fmt.Sprintf("%s validation failed: %s", e.Record, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	if e.Record == "context" {
		return ErrInvalidContext
	}
	return ErrInvalidEntry
}

// =============================================================================
// BOUNDARY VALIDATION
// =============================================================================

var validNatures = map[Nature]bool{
	NatureIncome: true, NatureExpensePro: true, NatureExpensePerso: true,
	NatureTaxPayment: true, NatureTransfer: true,
}

var validPeriodicities = map[Periodicity]bool{
	PeriodicityMonthly: true, PeriodicityQuarterly: true,
	PeriodicityYearly: true, PeriodicityOnce: true, "": true,
}

// Validate rejects malformed entries with the full issue list. The
// pipeline is never invoked with partially valid data.
func (e Entry) Validate() error {
	var issues []ValidationIssue
	add := func(field, code, msg string) {
		issues = append(issues, ValidationIssue{Field: field, Code: code, Message: msg})
	}

	if e.ID == "" {
		add("id", "required", "entry id is required")
	}
	if !validNatures[e.Nature] {
		add("nature", "unknown_enum", fmt.Sprintf("unknown nature %q", e.Nature))
	}
	if e.Scope != ScopeProfessional && e.Scope != ScopePersonal {
		add("scope", "unknown_enum", fmt.Sprintf("unknown scope %q", e.Scope))
	}
	if !validPeriodicities[e.Periodicity] {
		add("periodicity", "unknown_enum", fmt.Sprintf("unknown periodicity %q", e.Periodicity))
	}
	if e.VATRate != VATRateUnset && (e.VATRate < 0 || e.VATRate > 10000) {
		add("vat_rate", "out_of_range", fmt.Sprintf("vat rate %d bps out of range", e.VATRate))
	}
	if e.Date != "" {
		if _, err := time.Parse("2006-01-02", e.Date); err != nil {
			add("date", "malformed", fmt.Sprintf("date %q is not YYYY-MM-DD", e.Date))
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Record: "entry " + string(e.ID), Issues: issues}
	}
	return nil
}

// Validate rejects malformed contexts before the pipeline runs.
func (c Context) Validate() error {
	var issues []ValidationIssue
	add := func(field, code, msg string) {
		issues = append(issues, ValidationIssue{Field: field, Code: code, Message: msg})
	}

	if c.Year < 2000 || c.Year > 2100 {
		add("year", "out_of_range", fmt.Sprintf("year %d out of range", c.Year))
	}
	if c.Regime != RegimeFlatRate && c.Regime != RegimeReal {
		add("regime", "unknown_enum", fmt.Sprintf("unknown regime %q", c.Regime))
	}
	if c.VATRegime != VATFranchise && c.VATRegime != VATRegimeReal {
		add("vat_regime", "unknown_enum", fmt.Sprintf("unknown VAT regime %q", c.VATRegime))
	}
	if c.HouseholdParts < 100 {
		add("household_parts", "out_of_range", "household parts must be at least 1.00")
	}
	switch c.Options.SocialFrequency {
	case FrequencyMonthly, FrequencyQuarterly:
	default:
		add("options.social_frequency", "unknown_enum",
			fmt.Sprintf("unknown social frequency %q", c.Options.SocialFrequency))
	}
	switch c.Options.VATFrequency {
	case FrequencyMonthly, FrequencyAnnual:
	default:
		add("options.vat_frequency", "unknown_enum",
			fmt.Sprintf("unknown VAT frequency %q", c.Options.VATFrequency))
	}
	if c.Options.DefaultVATRate < 0 || c.Options.DefaultVATRate > 10000 {
		add("options.default_vat_rate", "out_of_range",
			fmt.Sprintf("default VAT rate %d bps out of range", c.Options.DefaultVATRate))
	}

	if len(issues) > 0 {
		return &ValidationError{Record: "context", Issues: issues}
	}
	return nil
}

// IsBoundaryError reports whether err is a rejection at the input
// boundary (maps to HTTP 400 in the API layer).
func IsBoundaryError(err error) bool {
	return errors.Is(err, ErrInvalidEntry) || errors.Is(err, ErrInvalidContext)
}
