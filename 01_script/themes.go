package script

import (
	"strings"

	"reel-pipeline/types"
)

var categoryThemes = map[types.Category]string{
	types.CategoryLifeLessons: "struggle, discipline, consistency, self-growth",
	types.CategoryFinance:     "money mindset, savings, investment, financial discipline",
	types.CategorySpiritual:   "karma, peace, faith, inner strength",
}

var categoryHashtags = map[types.Category][]string{
	types.CategoryLifeLessons: {"#अनुशासन", "#सपने", "#संघर्ष", "#जीवन"},
	types.CategoryFinance:     {"#पैसा", "#बचत", "#निवेश", "#धन"},
	types.CategorySpiritual:   {"#कर्म", "#शांति", "#आस्था", "#भक्ति"},
}

// Theme returns the theme words embedded in the prompt for a category
func Theme(category types.Category) string {
	if t, ok := categoryThemes[category]; ok {
		return t
	}
	return "motivation and personal transformation"
}

// ThemeWords splits a category theme into individual phrases
func ThemeWords(category types.Category) []string {
	var words []string
	for _, w := range strings.Split(Theme(category), ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// DefaultHashtags are used when the model does not supply any
func DefaultHashtags(category types.Category) []string {
	if h, ok := categoryHashtags[category]; ok {
		return append([]string(nil), h...)
	}
	return []string{"#motivation", "#reels"}
}
