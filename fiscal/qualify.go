// qualify.go - Tax-relevance annotation of normalized operations.
//
// Qualification is a pure function of (operation, context): no external
// state, no mutation of the underlying financial facts. Flags drive the
// ruleset's base and VAT computations downstream.
package fiscal

var artisticCategories = map[string]bool{
	CategoryDroitsAuteur:  true,
	CategoryVenteOeuvre:   true,
	CategoryCessionDroits: true,
}

// Qualify derives the tax-relevance flags for one operation.
func Qualify(op NormalizedOperation, ctx Context) QualifiedOperation {
	q := QualifiedOperation{NormalizedOperation: op}

	if op.Scope != ScopeProfessional {
		// Non-professional operations carry no tax relevance at all.
		return q
	}
	q.Flags.IsPro = true

	switch op.Kind {
	case KindRevenue:
		if artisticCategories[op.Category] {
			q.Flags.IsArtistic = true
			q.Flags.IsSocialBase = true
		}
		q.Flags.VATCollectable = op.VAT != 0

	case KindTaxPayment:
		// Tax and social payments reduce the fiscal base only under the
		// real-expense regime.
		q.Flags.FiscalDeductible = ctx.Regime == RegimeReal

	case KindExpense:
		q.Flags.VATDeductible = op.VAT != 0
		q.Flags.FiscalDeductible = ctx.Regime == RegimeReal && op.Category != CategoryOther
	}

	return q
}

// QualifyAll maps Qualify over a ledger, preserving order.
func QualifyAll(ops []NormalizedOperation, ctx Context) []QualifiedOperation {
	out := make([]QualifiedOperation, len(ops))
	for i, op := range ops {
		out[i] = Qualify(op, ctx)
	}
	return out
}
