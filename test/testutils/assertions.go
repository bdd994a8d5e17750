// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/lastcallsoftware/trackeats/internal/domain/nutrition"
	"github.com/stretchr/testify/require"
)

// Tolerance is the float slack allowed when comparing accumulated totals
const Tolerance = 1e-6

// AssertNutritionEqual fails with a field-by-field diff when two nutrition
// values differ by more than Tolerance
func AssertNutritionEqual(t testing.TB, want, got nutrition.Nutrition, msgAndArgs ...interface{}) {
	t.Helper()
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, Tolerance)); diff != "" {
		require.Fail(t, "nutrition mismatch (-want +got):\n"+diff, msgAndArgs...)
	}
}

// AssertLedgerConsistent recomputes a ledger's totals from its lines and
// checks them against the running totals. Ordinals must run 0..n-1.
func AssertLedgerConsistent(t testing.TB, cat *nutrition.Catalog, ledger *nutrition.Ledger) {
	t.Helper()

	var want nutrition.Nutrition
	var price, oz, g float64
	seen := make(map[nutrition.LineRef]bool)
	for i, line := range ledger.Lines() {
		require.Equal(t, i, line.Ordinal, "ordinals must be contiguous")

		ref := line.Ref()
		require.False(t, seen[ref], "duplicate line for %v", ref)
		seen[ref] = true

		var src nutrition.Nutrition
		var unitPrice, unitOz, unitG float64
		switch ref.Kind {
		case nutrition.SourceFood:
			f, ok := cat.Food(ref.SourceID)
			require.True(t, ok, "line %s references unknown food %d", line.ID, ref.SourceID)
			src, unitPrice, unitOz, unitG = f.Nutrition, f.PricePerServing(), f.SizeOz, f.SizeG
		case nutrition.SourceRecipe:
			r, ok := cat.Recipe(ref.SourceID)
			require.True(t, ok, "line %s references unknown recipe %d", line.ID, ref.SourceID)
			src, unitPrice, unitOz, unitG = r.Nutrition, r.Price, r.SizeOz, r.SizeG
		default:
			require.Fail(t, "line has no source", "line %s", line.ID)
		}

		nutrition.Accumulate(&want, src, line.Servings, line.Modifier)
		nutrition.AccumulatePrice(&price, unitPrice, line.Servings, line.Modifier)
		oz += unitOz * line.Servings * line.Modifier
		g += unitG * line.Servings * line.Modifier
	}

	got := ledger.Recipe()
	AssertNutritionEqual(t, want, got.Nutrition)
	require.InDelta(t, price, got.Price, Tolerance)
	require.InDelta(t, oz, got.SizeOz, Tolerance)
	require.InDelta(t, g, got.SizeG, Tolerance)
}
