package upload

import (
	"strings"

	"reel-pipeline/types"
)

const maxTags = 30

// VideoMetadata is what the YouTube insert call needs
type VideoMetadata struct {
	Title       string
	Description string
	Tags        []string
}

// BuildMetadata derives YouTube fields from the script: the hook line as the
// title, the caption as description, hashtags (sans #) as tags
func BuildMetadata(script *types.Script, titleMax int) VideoMetadata {
	title := script.Category.Title()
	if len(script.Lines) > 0 {
		title = script.Lines[0]
	}
	title = strings.TrimSpace(title) + " #Shorts"
	if titleMax > 3 {
		if r := []rune(title); len(r) > titleMax {
			title = string(r[:titleMax-3]) + "..."
		}
	}

	var tags []string
	seen := map[string]bool{}
	for _, h := range script.Hashtags {
		t := strings.TrimSpace(strings.TrimPrefix(h, "#"))
		if t == "" || seen[strings.ToLower(t)] || len(tags) == maxTags-1 {
			continue
		}
		seen[strings.ToLower(t)] = true
		tags = append(tags, t)
	}
	if !seen["shorts"] {
		tags = append(tags, "Shorts")
	}

	return VideoMetadata{
		Title:       title,
		Description: script.FullCaption(),
		Tags:        tags,
	}
}
