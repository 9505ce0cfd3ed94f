package audio

import (
	"log"
	"os"

	"reel-pipeline/config"
	"reel-pipeline/types"
)

// MusicMatcher picks the background track for a category
type MusicMatcher struct {
	cfg config.MusicConfig
}

// NewMusicMatcher creates a new MusicMatcher
func NewMusicMatcher(cfg config.MusicConfig) *MusicMatcher {
	return &MusicMatcher{cfg: cfg}
}

// Pick returns the category track, then the default track, or "" when
// music is off or neither file exists
func (m *MusicMatcher) Pick(category types.Category) string {
	if !m.cfg.Enabled {
		log.Println("[audio] Background music disabled in config, skipping")
		return ""
	}

	candidates := []string{m.cfg.ByCategory[string(category)], m.cfg.Default}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			log.Printf("[audio] Music file not found: %s", path)
			continue
		}
		log.Printf("[audio] 🎵 Background music: %s", path)
		return path
	}
	return ""
}
