package fiscal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/fiscal-engine/fiscal"
)

// =============================================================================
// VAT SUMMARY CONSTRUCTOR INVARIANTS
// =============================================================================

func TestNewVatSummary_Due(t *testing.T) {
	s := fiscal.NewVatSummary(70000, 50000)

	assert.Equal(t, int64(20000), s.Balance)
	assert.Equal(t, int64(20000), s.Due)
	assert.Equal(t, int64(0), s.Credit)
	assert.Equal(t, fiscal.VATDue, s.Status)
}

func TestNewVatSummary_Credit(t *testing.T) {
	// Deductible exceeds collected: a 200.00 credit, nothing due.
	s := fiscal.NewVatSummary(50000, 70000)

	assert.Equal(t, int64(-20000), s.Balance)
	assert.Equal(t, int64(0), s.Due)
	assert.Equal(t, int64(20000), s.Credit)
	assert.Equal(t, fiscal.VATCredit, s.Status)
}

func TestNewVatSummary_ExactZero(t *testing.T) {
	s := fiscal.NewVatSummary(30000, 30000)

	assert.Equal(t, int64(0), s.Due)
	assert.Equal(t, int64(0), s.Credit)
	assert.Equal(t, fiscal.VATNone, s.Status)
}

func TestNewVatSummary_DueAndCreditMutuallyExclusive(t *testing.T) {
	cases := []struct{ collected, deductible int64 }{
		{0, 0}, {1, 0}, {0, 1}, {100, 99}, {99, 100},
		{123456, 654321}, {654321, 123456}, {500000, 500000},
	}
	for _, c := range cases {
		s := fiscal.NewVatSummary(c.collected, c.deductible)
		assert.True(t, s.Due == 0 || s.Credit == 0,
			"due and credit both set for collected=%d deductible=%d", c.collected, c.deductible)
		assert.Equal(t, c.collected-c.deductible, s.Balance)
		assert.Equal(t, s.Balance, s.Due-s.Credit)
	}
}

// =============================================================================
// MODE AND CONFIDENCE
// =============================================================================

func TestContext_ModeFollowsEstimateToggle(t *testing.T) {
	ctx := testCtx()
	assert.Equal(t, fiscal.ModeEstimated, ctx.Mode())
	assert.Equal(t, fiscal.ConfidenceEstimated, ctx.Confidence())

	ctx.Options.Estimate = false
	assert.Equal(t, fiscal.ModeCertified, ctx.Mode())
	assert.Equal(t, fiscal.ConfidenceCertified, ctx.Confidence())
}

func TestOutput_TotalLoad(t *testing.T) {
	out := fiscal.Output{Lines: []fiscal.TaxLineItem{
		{Code: "A", Amount: 100},
		{Code: "B", Amount: 250},
		{Code: "C", Amount: -50},
	}}
	assert.Equal(t, int64(300), out.TotalLoad())
}
