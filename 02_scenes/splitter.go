package scenes

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"reel-pipeline/types"
)

// Split breaks script text into scene lines: trimmed, non-empty, at most max
// of them. max <= 0 keeps every line.
func Split(text string, max int) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, l)
		if max > 0 && len(lines) == max {
			break
		}
	}
	return lines
}

// SceneID is the stable cache key for a scene
func SceneID(category types.Category, emotion, text string) string {
	sum := sha1.Sum([]byte(string(category) + "|" + emotion + "|" + text))
	return hex.EncodeToString(sum[:])[:12]
}

// Build classifies every line and assigns its identifier
func Build(category types.Category, lines []string) []types.Scene {
	scenes := make([]types.Scene, 0, len(lines))
	for i, line := range lines {
		emotion := InferEmotion(category, line)
		scenes = append(scenes, types.Scene{
			Index:   i,
			Text:    line,
			Emotion: emotion,
			ID:      SceneID(category, emotion, line),
		})
	}
	return scenes
}
