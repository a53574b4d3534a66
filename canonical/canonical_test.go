package canonical_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/fiscal-engine/canonical"
)

func TestCanonicalize_SortsKeysAtEveryDepth(t *testing.T) {
	s, err := canonical.Canonicalize(map[string]any{
		"b": 2,
		"a": map[string]any{"z": 1, "y": []any{"c", "a"}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"y":["c","a"],"z":1},"b":2}`, s)
}

func TestCanonicalize_PreservesSliceOrder(t *testing.T) {
	a, err := canonical.Canonicalize([]int{1, 2, 3})
	require.NoError(t, err)
	b, err := canonical.Canonicalize([]int{3, 2, 1})
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "slice order is meaningful")
}

func TestCanonicalize_PreservesLargeIntegers(t *testing.T) {
	// Cents values can exceed float64's exact integer range; the literal
	// must survive the round trip untouched.
	s, err := canonical.Canonicalize(map[string]int64{"cents": 9007199254740993})
	require.NoError(t, err)
	assert.Equal(t, `{"cents":9007199254740993}`, s)
}

func TestDigest_Shape(t *testing.T) {
	d := canonical.Digest("")
	assert.Len(t, d, 64)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", d)
}

// shuffleValue rebuilds a value with map insertion order randomized at
// every nesting depth. Go maps do not guarantee iteration order, so the
// rebuild also permutes the order keys are inserted.
func shuffleValue(r *rand.Rand, v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		r.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
		out := make(map[string]any, len(t))
		for _, k := range keys {
			out[k] = shuffleValue(r, t[k])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = shuffleValue(r, e)
		}
		return out
	default:
		return v
	}
}

func TestDigest_OrderIndependent_1000Permutations(t *testing.T) {
	original := map[string]any{
		"engineVersion":   "1.4.0",
		"rulesetYear":     2025,
		"rulesetRevision": 3,
		"params": map[string]any{
			"abatementBps": 3400,
			"tiers":        []any{map[string]any{"upTo": 1000, "bps": 0}, map[string]any{"upTo": 2000, "bps": 1100}},
			"caps":         map[string]any{"pass": 4710000, "raap": 14130000},
		},
		"context": map[string]any{
			"year": 2025, "status": "artiste-auteur",
			"options": map[string]any{"estimate": true, "vatFreq": "monthly"},
		},
	}

	want, err := canonical.Fingerprint(original)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		got, err := canonical.Fingerprint(shuffleValue(r, original))
		require.NoError(t, err)
		require.Equal(t, want, got, "permutation %d diverged", i)
	}
}
