package itemsource

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/vocabdrill/internal/quiz"
)

func TestLoadFile(t *testing.T) {
	for _, name := range []string{"lesson2.yaml", "lesson2.json"} {
		t.Run(name, func(t *testing.T) {
			items, err := LoadFile(filepath.Join("testdata", name))
			require.NoError(t, err)
			require.Len(t, items, 3)

			assert.Equal(t, "101", items[0].ID)
			assert.Equal(t, quiz.KindVocabulary, items[0].Kind)
			assert.Equal(t, []string{"갔다"}, items[0].Answers)

			assert.Equal(t, "lesson2#2", items[1].ID)
			assert.Equal(t, quiz.KindSentence, items[1].Kind)
			assert.Equal(t, []string{"학교에 갔어요", "학교 갔다"}, items[1].Answers)
			assert.Equal(t, "학교", items[1].Hint)
			assert.Equal(t, 1, items[1].Level)
			assert.Equal(t, 2, items[1].Lesson)

			assert.Equal(t, "greet-1", items[2].ID)
			assert.Equal(t, 3, items[2].Lesson)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "nope.yaml"))
	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_RejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty document", ``},
		{"no items key", `level: 1`},
		{"empty answers", "items:\n  - prompt: hi\n    answers: []\n"},
		{"blank answer", "items:\n  - prompt: hi\n    answers: [\"\"]\n"},
		{"missing prompt", "items:\n  - answers: [a]\n"},
		{"unknown kind", "items:\n  - prompt: hi\n    answers: [a]\n    kind: essay\n"},
		{"unknown field", "items:\n  - prompt: hi\n    answers: [a]\n    score: 3\n"},
		{"fractional id", "items:\n  - id: 1.5\n    prompt: hi\n    answers: [a]\n"},
		{"duplicate ids", "items:\n  - {id: a, prompt: x, answers: [a]}\n  - {id: a, prompt: y, answers: [b]}\n"},
		{"not yaml", "items: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc), FormatYAML, "t")
			assert.Error(t, err)
		})
	}
}

func TestLoad_JSONSyntaxError(t *testing.T) {
	_, err := Load(strings.NewReader(`{"items": [`), FormatJSON, "t")
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestLoadedItemsStartSession(t *testing.T) {
	items, err := LoadFile(filepath.Join("testdata", "lesson2.yaml"))
	require.NoError(t, err)

	s, err := quiz.NewSession(items)
	require.NoError(t, err)
	require.NoError(t, s.Start())
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromPath("a/b.JSON"))
	assert.Equal(t, FormatYAML, FormatFromPath("a/b.yml"))
	assert.Equal(t, FormatYAML, FormatFromPath("items"))
}

func TestFilter(t *testing.T) {
	items := []quiz.Item{
		{ID: "a", Level: 1, Lesson: 1},
		{ID: "b", Level: 1, Lesson: 2},
		{ID: "c", Level: 2, Lesson: 2},
	}
	ids := func(in []quiz.Item) []string {
		var out []string
		for _, it := range in {
			out = append(out, it.ID)
		}
		return out
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids(Filter(items, 0, 0)))
	assert.Equal(t, []string{"a", "b"}, ids(Filter(items, 1, 0)))
	assert.Equal(t, []string{"b", "c"}, ids(Filter(items, 0, 2)))
	assert.Equal(t, []string{"c"}, ids(Filter(items, 2, 2)))
	assert.Empty(t, Filter(items, 3, 0))
}
