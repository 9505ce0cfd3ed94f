package visuals

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"reel-pipeline/config"
	"reel-pipeline/types"
)

const baseStyle = `Minimalist 2D illustration.
Flat vector style.
Cinematic lighting.
High contrast.
Emotional and motivational mood.
Human silhouette only (no face details).
Clean background.
Vertical composition (9:16).`

// BuildPrompt turns a script line into an image prompt. The line itself is
// never meant to appear as text in the picture.
func BuildPrompt(sceneText string) string {
	return baseStyle + "\nScene idea (do not add text in image):\n" + sceneText
}

// ImageName is the on-disk name and cache key for a scene image
func ImageName(category types.Category, scene types.Scene) string {
	return fmt.Sprintf("%s_%s_%s.png", category, scene.Emotion, scene.ID)
}

// Assembler acquires one still image per scene, reusing cached images
type Assembler struct {
	cfg       *config.Config
	generator ImageGenerator
	store     Store
	now       func() time.Time
}

// NewAssembler creates an image Assembler
func NewAssembler(cfg *config.Config, generator ImageGenerator, store Store) *Assembler {
	return &Assembler{cfg: cfg, generator: generator, store: store, now: time.Now}
}

// Run returns images in scene order. When the generator fails, it stops and
// returns what it has so far with Stopped set.
func (a *Assembler) Run(ctx context.Context, category types.Category, scenes []types.Scene) (*types.AcquireResult, error) {
	log.Printf("[visuals] Preparing %d images (%s)...", len(scenes), a.generator.Name())

	dir := a.cfg.Paths.Images
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	res := &types.AcquireResult{}
	for i, scene := range scenes {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		name := ImageName(category, scene)
		path := filepath.Join(dir, name)

		if a.cached(ctx, name, path) {
			log.Printf("[visuals] ♻️ Scene %d/%d: using cached image %s", i+1, len(scenes), path)
			res.Paths = append(res.Paths, path)
			continue
		}

		log.Printf("[visuals] 🎨 Scene %d/%d (emotion: %s)", i+1, len(scenes), scene.Emotion)
		data, err := a.generator.Generate(ctx, BuildPrompt(scene.Text))
		if err != nil {
			log.Printf("[visuals] ⚠️ Image generation failed for scene %d: %v. Stopping further generation for this run.", i+1, err)
			res.Stopped = fmt.Errorf("scene %d: %w", i+1, err)
			return res, nil
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return res, fmt.Errorf("write %s: %w", path, err)
		}
		log.Printf("[visuals] ✅ Saved: %s", path)
		res.Paths = append(res.Paths, path)

		entry := types.CacheEntry{
			ID:          name,
			Path:        path,
			Category:    string(category),
			Emotion:     scene.Emotion,
			ScriptLine:  scene.Text,
			Style:       a.cfg.Images.Style,
			Status:      types.StatusUsable,
			CreatedFrom: a.generator.Name(),
			CreatedAt:   a.now().Format("2006-01-02"),
		}
		if err := a.store.Put(ctx, entry); err != nil {
			log.Printf("[visuals] Warning: could not record %s in image cache: %v", name, err)
		}
	}

	log.Printf("[visuals] ✅ %d/%d images ready", len(res.Paths), len(scenes))
	return res, nil
}

// cached reports a usable entry whose file is still on disk
func (a *Assembler) cached(ctx context.Context, name, path string) bool {
	entry, ok, err := a.store.Get(ctx, name)
	if err != nil {
		log.Printf("[visuals] Warning: image cache lookup failed for %s: %v", name, err)
		return false
	}
	if !ok || !entry.Usable() {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
