package upload

import (
	"context"
	"fmt"
	"log"

	"reel-pipeline/config"
	"reel-pipeline/types"
)

// Publisher pushes a finished reel to one platform
type Publisher interface {
	Name() string
	Publish(ctx context.Context, videoPath string, script *types.Script) (types.PublishResult, error)
}

// NewPublishers builds the publishers listed in upload.targets
func NewPublishers(cfg *config.Config) ([]Publisher, error) {
	var pubs []Publisher
	for _, target := range cfg.Upload.Targets {
		switch target {
		case "facebook":
			pubs = append(pubs, NewFacebook(cfg.Facebook))
		case "youtube":
			pubs = append(pubs, NewYouTube(cfg.YouTube))
		default:
			return nil, fmt.Errorf("unknown upload target %q", target)
		}
	}
	return pubs, nil
}

// PublishAll tries every publisher and returns the successes plus the first
// failure, if any
func PublishAll(ctx context.Context, pubs []Publisher, videoPath string, script *types.Script) ([]types.PublishResult, error) {
	var results []types.PublishResult
	var firstErr error
	for _, p := range pubs {
		log.Printf("[upload] 🚀 Uploading reel to %s...", p.Name())
		res, err := p.Publish(ctx, videoPath, script)
		if err != nil {
			log.Printf("[upload] ❌ %s upload failed: %v", p.Name(), err)
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", p.Name(), err)
			}
			continue
		}
		log.Printf("[upload] ✅ Uploaded to %s (id: %s)", p.Name(), res.ID)
		results = append(results, res)
	}
	return results, firstErr
}
