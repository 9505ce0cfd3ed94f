package scenes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reel-pipeline/types"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want []string
	}{
		{"empty", "", 5, nil},
		{"only blanks", "\n  \n\t\n", 5, nil},
		{"under cap", "a\nb\nc", 5, []string{"a", "b", "c"}},
		{"over cap", "a\nb\nc\nd\ne\nf\ng", 5, []string{"a", "b", "c", "d", "e"}},
		{"trims and drops blanks", "  a  \n\n b\n   \nc  ", 2, []string{"a", "b"}},
		{"no cap", "a\nb\nc", 0, []string{"a", "b", "c"}},
		{"windows line endings", "a\r\nb\r\n", 5, []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.text, tt.max))
		})
	}
}

func TestSplit_MinOfLinesAndCap(t *testing.T) {
	lines := []string{"पहली", "दूसरी", "तीसरी", "चौथी", "पाँचवीं", "छठी"}
	text := ""
	for _, l := range lines {
		text += "  " + l + "  \n\n"
	}

	for limit := 1; limit <= 8; limit++ {
		got := Split(text, limit)
		want := limit
		if want > len(lines) {
			want = len(lines)
		}
		require.Len(t, got, want)
		assert.Equal(t, lines[:want], got)
	}
}

func TestSceneID_Deterministic(t *testing.T) {
	a := SceneID(types.CategoryFinance, "money_mindset", "बचत करो")
	b := SceneID(types.CategoryFinance, "money_mindset", "बचत करो")
	assert.Equal(t, a, b)
	assert.Len(t, a, 12)
}

func TestSceneID_EveryFieldMatters(t *testing.T) {
	corpus := []struct {
		cat     types.Category
		emotion string
		text    string
	}{
		{types.CategoryFinance, "money_mindset", "बचत करो"},
		{types.CategorySpiritual, "money_mindset", "बचत करो"},
		{types.CategoryFinance, "financial_discipline", "बचत करो"},
		{types.CategoryFinance, "money_mindset", "निवेश करो"},
		{types.CategoryLifeLessons, "motivation", "उठो और चलो"},
		{types.CategoryLifeLessons, "aspiration", "उठो और चलो"},
		{types.CategoryLifeLessons, "aspiration", "उठो और चलो "},
	}

	seen := make(map[string]int)
	for i, c := range corpus {
		id := SceneID(c.cat, c.emotion, c.text)
		if j, dup := seen[id]; dup {
			t.Fatalf("collision between corpus[%d] and corpus[%d]", j, i)
		}
		seen[id] = i
	}
}

func TestBuild(t *testing.T) {
	lines := []string{"मेहनत ही रास्ता है", "सपने देखो"}
	got := Build(types.CategoryLifeLessons, lines)

	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, "discipline", got[0].Emotion)
	assert.Equal(t, SceneID(types.CategoryLifeLessons, "discipline", lines[0]), got[0].ID)
	assert.Equal(t, 1, got[1].Index)
	assert.Equal(t, "aspiration", got[1].Emotion)
}
