package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindBestMatch_Korean(t *testing.T) {
	candidates := []string{"학교에 갔어요", "학교 갔다", "집에 갔다"}

	res, err := FindBestMatch("학교 가다", candidates)
	require.NoError(t, err)

	assert.Equal(t, "학교 갔다", res.BestMatch)
	assert.InDelta(t, 67.032, res.Probability, 0.001)

	require.Len(t, res.Ranked, 3)
	assert.Equal(t, "학교 갔다", res.Ranked[0].Text)
	assert.Equal(t, "학교에 갔어요", res.Ranked[1].Text)
	assert.Equal(t, "집에 갔다", res.Ranked[2].Text)
	assert.InDelta(t, 31.891, res.Ranked[1].Probability, 0.001)
	assert.InDelta(t, 30.119, res.Ranked[2].Probability, 0.001)
}

func TestFindBestMatch_EmptyCandidates(t *testing.T) {
	_, err := FindBestMatch("anything", nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = FindBestMatch("anything", []string{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestFindBestMatch_TiesKeepCandidateOrder(t *testing.T) {
	// "cat" is one substitution away from each candidate.
	candidates := []string{"cut", "bat", "cot", "car"}

	res, err := FindBestMatch("cat", candidates)
	require.NoError(t, err)

	got := make([]string, len(res.Ranked))
	for i, c := range res.Ranked {
		got[i] = c.Text
	}
	assert.Equal(t, candidates, got)
	assert.Equal(t, "cut", res.BestMatch)
}

func TestFindBestMatch_Deterministic(t *testing.T) {
	candidates := []string{"go to school", "went to school", "go to the school", "goes to school"}

	first, err := FindBestMatch("go to scool", candidates)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := FindBestMatch("go to scool", candidates)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFindBestMatch_DoesNotReorderInput(t *testing.T) {
	candidates := []string{"zzz", "abc"}
	_, err := FindBestMatch("abc", candidates)
	require.NoError(t, err)
	assert.Equal(t, []string{"zzz", "abc"}, candidates)
}

func TestFindBestMatch_Options(t *testing.T) {
	res, err := FindBestMatch("학교 가다", []string{"학교 갔다"}, WithModel(ModelLinear))
	require.NoError(t, err)
	assert.InDelta(t, 80.0, res.Probability, 1e-9)

	loose, err := FindBestMatch("학교 가다", []string{"학교 갔다"}, WithDecayFactor(2))
	require.NoError(t, err)
	assert.Greater(t, loose.Probability, 67.1)
}
