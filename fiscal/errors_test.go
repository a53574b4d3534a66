package fiscal_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/fiscal-engine/fiscal"
)

func TestEntryValidate_CollectsEveryIssue(t *testing.T) {
	// GIVEN: An entry with three independent problems
	// THEN: All three are reported at once, not just the first

	e := fiscal.Entry{
		Nature:  "dividend",
		VATRate: 99999,
		Date:    "03/05/2025",
		Scope:   fiscal.ScopeProfessional,
	}
	err := e.Validate()
	require.Error(t, err)

	var verr *fiscal.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make(map[string]bool)
	for _, iss := range verr.Issues {
		fields[iss.Field] = true
	}
	assert.True(t, fields["id"])
	assert.True(t, fields["nature"])
	assert.True(t, fields["vat_rate"])
	assert.True(t, fields["date"])

	assert.True(t, errors.Is(err, fiscal.ErrInvalidEntry))
	assert.True(t, fiscal.IsBoundaryError(err))
}

func TestEntryValidate_ValidEntryPasses(t *testing.T) {
	e := incomeEntry("ok", "2025-01-10", 10000, fiscal.PeriodicityMonthly)
	assert.NoError(t, e.Validate())
}

func TestContextValidate_RejectsUnknownEnums(t *testing.T) {
	ctx := testCtx()
	ctx.Regime = "simplifie"
	ctx.Options.VATFrequency = "weekly"

	err := ctx.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, fiscal.ErrInvalidContext))
	assert.True(t, fiscal.IsBoundaryError(err))
}

func TestContextValidate_HouseholdPartsFloor(t *testing.T) {
	ctx := testCtx()
	ctx.HouseholdParts = 50 // half a part is not a legal household

	err := ctx.Validate()
	require.Error(t, err)

	ctx.HouseholdParts = 250
	assert.NoError(t, ctx.Validate())
}

func TestIsBoundaryError_InternalErrorsExcluded(t *testing.T) {
	assert.False(t, fiscal.IsBoundaryError(fiscal.ErrInconsistentModel))
	assert.False(t, fiscal.IsBoundaryError(errors.New("disk full")))
}
