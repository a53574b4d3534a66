/*
dto.go - Data transfer objects for API requests and responses

PURPOSE:
  Decouples the wire contract from the core model. Monetary fields are
  decoded as json.Number so fractional cents are caught at the boundary
  (never coerced) and converted through the monetary kernel's guard.

VALIDATION:
  Two layers, both before the pipeline runs:
  1. Struct tags checked with go-playground/validator (enums, formats)
  2. Conversion through money.CentsFromJSON and the core Validate()
     constructors, producing field-level issue lists

SEE ALSO:
  - handlers.go: uses these types
  - fiscal/errors.go: ValidationIssue / ValidationError
*/
package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/warp/fiscal-engine/fiscal"
	"github.com/warp/fiscal-engine/money"
	"github.com/warp/fiscal-engine/treasury"
)

var validate = validator.New()

// =============================================================================
// REQUEST TYPES
// =============================================================================

// EntryDTO is the wire form of one entry.
type EntryDTO struct {
	ID          string       `json:"id"`
	Nature      string       `json:"nature" validate:"required,oneof=income expense_pro expense_perso tax_payment transfer"`
	Label       string       `json:"label"`
	AmountTTC   json.Number  `json:"amount_ttc" validate:"required"`
	VATRate     *json.Number `json:"vat_rate,omitempty"`
	Date        string       `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Scope       string       `json:"scope" validate:"required,oneof=professional personal"`
	Category    string       `json:"category"`
	Subcategory string       `json:"subcategory"`
	Periodicity string       `json:"periodicity" validate:"omitempty,oneof=monthly quarterly yearly once"`
}

// OptionsDTO mirrors fiscal.Options on the wire.
type OptionsDTO struct {
	Estimate            bool         `json:"estimate"`
	SocialFrequency     string       `json:"social_frequency" validate:"omitempty,oneof=monthly quarterly"`
	VATFrequency        string       `json:"vat_frequency" validate:"omitempty,oneof=monthly annual"`
	DefaultVATRate      *json.Number `json:"default_vat_rate,omitempty"`
	TaxAsCompanyExpense bool         `json:"tax_as_company_expense"`
}

// ContextDTO is the wire form of the fiscal context.
type ContextDTO struct {
	Year           int          `json:"year" validate:"required"`
	AsOf           string       `json:"as_of" validate:"omitempty,datetime=2006-01-02"`
	Status         string       `json:"status" validate:"required"`
	Regime         string       `json:"regime" validate:"required,oneof=micro reel"`
	VATRegime      string       `json:"vat_regime" validate:"required,oneof=franchise reel"`
	HouseholdParts *json.Number `json:"household_parts,omitempty"`
	Options        OptionsDTO   `json:"options"`
}

// AnchorDTO is the treasury anchor on the wire.
type AnchorDTO struct {
	AmountCents json.Number `json:"amount_cents"`
	MonthIndex  int         `json:"month_index" validate:"gte=-1,lte=11"`
}

// ComputeRequest is the full compute payload.
type ComputeRequest struct {
	Entries []EntryDTO `json:"entries" validate:"dive"`
	Context ContextDTO `json:"context" validate:"required"`
	Anchor  *AnchorDTO `json:"anchor,omitempty"`
}

// =============================================================================
// CONVERSION
// =============================================================================

// ToEntry converts the DTO, collecting issues instead of failing on the
// first one.
func (d EntryDTO) ToEntry() (fiscal.Entry, []fiscal.ValidationIssue) {
	var issues []fiscal.ValidationIssue

	amount, err := money.CentsFromJSON("amount_ttc", d.AmountTTC)
	if err != nil {
		issues = append(issues, fiscal.ValidationIssue{
			Field: "amount_ttc", Code: "non_integer", Message: err.Error(),
		})
	}

	rate := fiscal.VATRateUnset
	if d.VATRate != nil {
		rate, err = money.CentsFromJSON("vat_rate", *d.VATRate)
		if err != nil {
			issues = append(issues, fiscal.ValidationIssue{
				Field: "vat_rate", Code: "non_integer", Message: err.Error(),
			})
		}
	}

	e := fiscal.Entry{
		ID:          fiscal.EntryID(d.ID),
		Nature:      fiscal.Nature(d.Nature),
		Label:       d.Label,
		AmountTTC:   amount,
		VATRate:     rate,
		Date:        d.Date,
		Scope:       fiscal.Scope(d.Scope),
		Category:    d.Category,
		Subcategory: d.Subcategory,
		Periodicity: fiscal.Periodicity(d.Periodicity),
	}
	return e, issues
}

// ToContext converts the DTO with defaults applied.
func (d ContextDTO) ToContext() (fiscal.Context, []fiscal.ValidationIssue) {
	var issues []fiscal.ValidationIssue

	ctx := fiscal.Context{
		Year:           d.Year,
		Status:         fiscal.Status(d.Status),
		Regime:         fiscal.Regime(d.Regime),
		VATRegime:      fiscal.VATRegime(d.VATRegime),
		HouseholdParts: 100,
		Options: fiscal.Options{
			Estimate:            d.Options.Estimate,
			SocialFrequency:     fiscal.FrequencyMonthly,
			VATFrequency:        fiscal.FrequencyMonthly,
			TaxAsCompanyExpense: d.Options.TaxAsCompanyExpense,
		},
	}

	if d.AsOf != "" {
		ctx.AsOf = mustDate(d.AsOf)
	} else {
		ctx.AsOf = mustDate(fmt.Sprintf("%d-01-01", d.Year))
	}
	if d.Options.SocialFrequency != "" {
		ctx.Options.SocialFrequency = fiscal.Frequency(d.Options.SocialFrequency)
	}
	if d.Options.VATFrequency != "" {
		ctx.Options.VATFrequency = fiscal.Frequency(d.Options.VATFrequency)
	}

	if d.HouseholdParts != nil {
		parts, err := decimal.NewFromString(d.HouseholdParts.String())
		if err != nil {
			issues = append(issues, fiscal.ValidationIssue{
				Field: "household_parts", Code: "malformed", Message: "not a number",
			})
		} else {
			// Parts arrive as a decimal ("2.5"); the core keeps them in
			// hundredths.
			ctx.HouseholdParts = parts.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
		}
	}

	if d.Options.DefaultVATRate != nil {
		rate, err := money.CentsFromJSON("options.default_vat_rate", *d.Options.DefaultVATRate)
		if err != nil {
			issues = append(issues, fiscal.ValidationIssue{
				Field: "options.default_vat_rate", Code: "non_integer", Message: err.Error(),
			})
		} else {
			ctx.Options.DefaultVATRate = rate
		}
	}

	return ctx, issues
}

// ToAnchor defaults to a zero opening balance when absent.
func (d *AnchorDTO) ToAnchor() (treasury.Anchor, []fiscal.ValidationIssue) {
	if d == nil {
		return treasury.Anchor{AmountCents: 0, MonthIndex: -1}, nil
	}
	amount, err := money.CentsFromJSON("anchor.amount_cents", d.AmountCents)
	if err != nil {
		return treasury.Anchor{}, []fiscal.ValidationIssue{{
			Field: "anchor.amount_cents", Code: "non_integer", Message: err.Error(),
		}}
	}
	return treasury.Anchor{AmountCents: amount, MonthIndex: d.MonthIndex}, nil
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ErrorResponse is the structured error body.
type ErrorResponse struct {
	Error  string                   `json:"error"`
	Issues []fiscal.ValidationIssue `json:"issues,omitempty"`
}

// mustDate parses a tag-validated YYYY-MM-DD string.
func mustDate(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

// structIssues flattens validator tag failures into field issues.
func structIssues(err error) []fiscal.ValidationIssue {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []fiscal.ValidationIssue{{Field: "", Code: "invalid", Message: err.Error()}}
	}
	issues := make([]fiscal.ValidationIssue, len(verrs))
	for i, fe := range verrs {
		issues[i] = fiscal.ValidationIssue{
			Field:   fe.Namespace(),
			Code:    fe.Tag(),
			Message: fmt.Sprintf("failed %q validation", fe.Tag()),
		}
	}
	return issues
}
