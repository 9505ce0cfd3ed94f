package scenes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"reel-pipeline/types"
)

func TestInferEmotion(t *testing.T) {
	tests := []struct {
		category types.Category
		text     string
		want     string
	}{
		{types.CategoryFinance, "पैसा सब कुछ नहीं", "financial_anxiety"},
		{types.CategoryFinance, "कर्ज से आज़ादी", "financial_anxiety"},
		{types.CategoryFinance, "हर महीने बचत करो", "financial_discipline"},
		// first rule wins when both match
		{types.CategoryFinance, "धन की बचत", "financial_anxiety"},
		{types.CategoryFinance, "सोच बदलो", "money_mindset"},

		{types.CategorySpiritual, "कर्म करते रहो", "peace"},
		{types.CategorySpiritual, "भीतर की रोशनी", "faith"},

		{types.CategoryLifeLessons, "अनुशासन सबसे बड़ी ताकत", "discipline"},
		{types.CategoryLifeLessons, "थक गए हो?", "struggle"},
		{types.CategoryLifeLessons, "संघर्ष में मेहनत", "discipline"},
		{types.CategoryLifeLessons, "उठो और आगे बढ़ो", "aspiration"},
		{types.CategoryLifeLessons, "आज से शुरुआत", "motivation"},

		// unknown categories fall back to the life lessons table
		{types.Category("travel"), "सपने पूरे करो", "aspiration"},
		{types.Category("travel"), "plain text", "motivation"},
	}

	for _, tt := range tests {
		t.Run(string(tt.category)+"/"+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, InferEmotion(tt.category, tt.text))
		})
	}
}

func TestRuleTable_CaseInsensitive(t *testing.T) {
	table := RuleTable{
		Rules:   []Rule{{Keywords: []string{"Focus"}, Label: "focus"}},
		Default: "none",
	}
	assert.Equal(t, "focus", table.Classify("stay FOCUSED"))
	assert.Equal(t, "none", table.Classify("drift"))
}
