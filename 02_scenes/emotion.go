package scenes

import (
	"strings"

	"reel-pipeline/types"
)

// Rule maps any of its keywords to a label
type Rule struct {
	Keywords []string
	Label    string
}

// RuleTable is evaluated top to bottom; the first matching rule wins
type RuleTable struct {
	Rules   []Rule
	Default string
}

// Classify returns the label of the first rule with a keyword in text
func (t RuleTable) Classify(text string) string {
	lower := strings.ToLower(text)
	for _, r := range t.Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return r.Label
			}
		}
	}
	return t.Default
}

var emotionTables = map[types.Category]RuleTable{
	types.CategoryFinance: {
		Rules: []Rule{
			{Keywords: []string{"पैसा", "धन", "गरीबी", "कर्ज"}, Label: "financial_anxiety"},
			{Keywords: []string{"बचत", "निवेश", "योजना"}, Label: "financial_discipline"},
		},
		Default: "money_mindset",
	},
	types.CategorySpiritual: {
		Rules: []Rule{
			{Keywords: []string{"शांति", "आस्था", "भगवान", "कर्म"}, Label: "peace"},
		},
		Default: "faith",
	},
	types.CategoryLifeLessons: lifeLessons,
}

var lifeLessons = RuleTable{
	Rules: []Rule{
		{Keywords: []string{"अनुशासन", "मेहनत"}, Label: "discipline"},
		{Keywords: []string{"थक", "मुश्किल", "संघर्ष"}, Label: "struggle"},
		{Keywords: []string{"सपने", "उठो", "भागो"}, Label: "aspiration"},
	},
	Default: "motivation",
}

// TableFor returns the rule table of a category; unknown categories use life lessons
func TableFor(category types.Category) RuleTable {
	if t, ok := emotionTables[category]; ok {
		return t
	}
	return lifeLessons
}

// InferEmotion labels a scene line for the given category
func InferEmotion(category types.Category, text string) string {
	return TableFor(category).Classify(text)
}
