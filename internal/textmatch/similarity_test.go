package textmatch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bothModels = []Model{ModelLinear, ModelExponentialDecay}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"apple", "apples", 1},
		{"학교 가다", "학교 갔다", 1},
		{"학교 가다", "학교에 갔어요", 4},
		{"학교 가다", "집에 갔다", 3},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Distance(tc.a, tc.b), "Distance(%q, %q)", tc.a, tc.b)
	}
}

func TestDistance_CountsRunesNotBytes(t *testing.T) {
	// 가 and 갔 share their first two UTF-8 bytes.
	assert.Equal(t, 1, Distance("가", "갔"))
	assert.Equal(t, 2, Distance("학교", ""))
}

func TestSimilarity_IdenticalIsPerfect(t *testing.T) {
	for _, m := range bothModels {
		for _, s := range []string{"a", "hello world", "학교에 갔어요"} {
			assert.Equal(t, 100.0, Similarity(s, s, m, DefaultDecayFactor), "model %s, %q", m, s)
		}
	}
}

func TestSimilarity_EmptyStrings(t *testing.T) {
	for _, m := range bothModels {
		assert.Equal(t, 100.0, Similarity("", "", m, DefaultDecayFactor))
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"학교 가다", "학교에 갔어요"},
		{"", "abc"},
		{"Hello, World!", "hello world"},
	}
	for _, m := range bothModels {
		for _, p := range pairs {
			assert.Equal(t,
				Similarity(p[0], p[1], m, DefaultDecayFactor),
				Similarity(p[1], p[0], m, DefaultDecayFactor),
				"model %s, %q vs %q", m, p[0], p[1])
		}
	}
}

func TestSimilarity_Linear(t *testing.T) {
	assert.InDelta(t, 80.0, Similarity("학교 가다", "학교 갔다", ModelLinear, 0), 1e-9)
	assert.InDelta(t, 0.0, Similarity("", "abc", ModelLinear, 0), 1e-9)
}

func TestSimilarity_ExponentialDecay(t *testing.T) {
	got := Similarity("학교 가다", "학교 갔다", ModelExponentialDecay, 0.5)
	assert.InDelta(t, math.Exp(-1.0/2.5)*100, got, 1e-9)
	assert.InDelta(t, 67.032, got, 0.001)

	// Non-positive decay factors fall back to the default.
	assert.Equal(t, got, Similarity("학교 가다", "학교 갔다", ModelExponentialDecay, 0))
}

func TestSimilarity_LargerDecayIsMoreForgiving(t *testing.T) {
	a := "the quick brown fox jumps"
	b := "the quick brown fix jumps"
	assert.Greater(t,
		Similarity(a, b, ModelExponentialDecay, 1.0),
		Similarity(a, b, ModelExponentialDecay, DefaultDecayFactor))
}

func TestSimilarity_ExponentialKeepsScoreOnDistantStrings(t *testing.T) {
	// Linear reaches zero when nothing matches; decay never does.
	assert.InDelta(t, 0.0, Similarity("abcde", "vwxyz", ModelLinear, 0), 1e-9)
	assert.InDelta(t, math.Exp(-2)*100, Similarity("abcde", "vwxyz", ModelExponentialDecay, DefaultDecayFactor), 1e-9)
}

func TestSimilarity_InRange(t *testing.T) {
	for _, m := range bothModels {
		for _, f := range []float64{0.01, 0.5, 5} {
			got := Similarity("abc", "xyz123", m, f)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		}
	}
}

func TestParseModel(t *testing.T) {
	tests := []struct {
		in      string
		want    Model
		wantErr bool
	}{
		{"linear", ModelLinear, false},
		{"LINEAR", ModelLinear, false},
		{"exponentialDecay", ModelExponentialDecay, false},
		{"exponential_decay", ModelExponentialDecay, false},
		{"", ModelExponentialDecay, false},
		{"cosine", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseModel(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
