package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	script "reel-pipeline/01_script"
	scenes "reel-pipeline/02_scenes"
	visuals "reel-pipeline/03_visuals"
	audio "reel-pipeline/04_audio"
	subtitles "reel-pipeline/05_subtitles"
	render "reel-pipeline/06_render"
	upload "reel-pipeline/07_upload"
	"reel-pipeline/config"
	"reel-pipeline/media"
	"reel-pipeline/types"
)

// Stage contracts. The real implementations live in the numbered packages;
// tests plug in fakes.
type (
	scriptStage interface {
		Run(ctx context.Context, category types.Category) (*types.Script, error)
	}
	imageStage interface {
		Run(ctx context.Context, category types.Category, scenes []types.Scene) (*types.AcquireResult, error)
	}
	stockStage interface {
		Run(ctx context.Context, category types.Category, clipCount int) (*types.AcquireResult, error)
	}
	narrationStage interface {
		Run(ctx context.Context, s *types.Script) (*types.AudioTrack, error)
	}
	subtitleStage interface {
		Run(ctx context.Context, track *types.AudioTrack) ([]types.SubtitleSegment, error)
	}
	musicPicker interface {
		Pick(category types.Category) string
	}
	renderStage interface {
		Run(ctx context.Context, in render.Input) (*types.RenderResult, error)
	}
)

// Pipeline runs the stages in order for one reel
type Pipeline struct {
	cfg        *config.Config
	writer     scriptStage
	images     imageStage
	stock      stockStage
	narrator   narrationStage
	subtitles  subtitleStage
	music      musicPicker
	renderer   renderStage
	publishers []upload.Publisher
}

// buildPipeline wires the real stage implementations from the config
func buildPipeline(cfg *config.Config) (*Pipeline, error) {
	ff := media.New(cfg.Render.FFmpegBin, cfg.Render.FFprobeBin)
	if err := ff.CheckInstalled(); err != nil {
		return nil, err
	}

	llm, err := script.NewOpenAILLM(cfg.OpenAIAPIKey, cfg.Script.Model, cfg.Script.Temperature)
	if err != nil {
		return nil, err
	}
	writer := script.New(cfg, llm)
	if cfg.Inspiration.Enabled {
		src, err := script.NewRedditSource(cfg.Inspiration)
		if err != nil {
			log.Printf("⚠️  Inspiration disabled: %v", err)
		} else {
			writer.WithInspiration(src)
		}
	}

	synth, err := audio.NewSynthesizer(cfg)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:       cfg,
		writer:    writer,
		narrator:  audio.New(cfg, synth, ff),
		subtitles: subtitles.New(cfg, subtitles.NewWhisperCLI(cfg.Subtitles.WhisperBin, cfg.Subtitles.WhisperModel, cfg.Paths.Metadata)),
		music:     audio.NewMusicMatcher(cfg.Music),
		renderer:  render.New(cfg, ff),
	}

	switch cfg.Mode {
	case config.ModeStock:
		p.stock = visuals.NewStockFetcher(cfg, nil)
	default:
		gen, err := visuals.NewGenerator(cfg)
		if err != nil {
			return nil, err
		}
		store, err := visuals.NewStore(cfg)
		if err != nil {
			return nil, err
		}
		p.images = visuals.NewAssembler(cfg, gen, store)
	}

	if cfg.Upload.Enabled {
		if p.publishers, err = upload.NewPublishers(cfg); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// pickCategory returns the requested category or a random configured one
func pickCategory(cfg *config.Config, requested string, rng *rand.Rand) types.Category {
	if requested != "" {
		return types.Category(requested)
	}
	return types.Category(cfg.Categories[rng.Intn(len(cfg.Categories))])
}

// Run executes one full pass. The returned state is always non-nil and, once
// the run directory exists, is also saved there.
func (p *Pipeline) Run(ctx context.Context, category types.Category) (*types.PipelineState, error) {
	cfg := p.cfg
	runID := uuid.NewString()[:8]
	runDir := filepath.Join(cfg.Paths.Metadata, "runs", runID)

	state := &types.PipelineState{
		RunID:     runID,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
		Mode:      cfg.Mode,
		Category:  category,
	}
	if err := os.MkdirAll(runDir, 0755); err != nil {
		err = fmt.Errorf("create run dir: %w", err)
		state.Error = err.Error()
		state.CompletedAt = time.Now().UTC().Format(time.RFC3339)
		return state, err
	}

	log.Printf("🎬 Reel Pipeline starting — Run ID: %s", runID)
	log.Printf("📁 Run dir: %s (mode: %s, category: %s)", runDir, cfg.Mode, category)

	err := p.run(ctx, state, runDir)
	if err != nil {
		state.Error = err.Error()
	}
	state.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	saveJSON(filepath.Join(runDir, "pipeline_state.json"), state)
	return state, err
}

func (p *Pipeline) run(ctx context.Context, state *types.PipelineState, runDir string) error {
	cfg := p.cfg
	category := state.Category

	// ─────────────────────────────────────────────
	// STAGE 1: Script
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 1: Script ━━━")
	sc, err := p.writer.Run(ctx, category)
	if err != nil {
		return fmt.Errorf("Stage 1 Script: %w", err)
	}
	state.Script = sc
	saveJSON(filepath.Join(runDir, "script.json"), sc)
	saveText(filepath.Join(cfg.Paths.Output, "latest_script.txt"), sc.Text())
	saveText(filepath.Join(cfg.Paths.Output, "latest_caption.txt"), sc.FullCaption())

	// ─────────────────────────────────────────────
	// STAGE 2: Scenes
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 2: Scenes ━━━")
	state.Scenes = scenes.Build(category, scenes.Split(sc.Text(), cfg.Script.MaxScenes))
	if len(state.Scenes) == 0 {
		return fmt.Errorf("Stage 2 Scenes: %w", types.ErrEmptyScript)
	}
	for _, s := range state.Scenes {
		log.Printf("[scenes] %d. [%s] %s", s.Index+1, s.Emotion, s.Text)
	}
	saveJSON(filepath.Join(runDir, "scenes.json"), state.Scenes)

	// ─────────────────────────────────────────────
	// STAGES 3-4: Visuals + Narration
	// Stock clips are sized to the narration, so narration goes first there.
	// ─────────────────────────────────────────────
	if cfg.Mode == config.ModeStock {
		if err := p.narrate(ctx, state, 3); err != nil {
			return err
		}
		log.Println("\n━━━ STAGE 4: Stock Visuals ━━━")
		clipCount := visuals.ClipCount(cfg.Stock, state.Audio.DurationSec)
		res, err := p.stock.Run(ctx, category, clipCount)
		if err != nil {
			return fmt.Errorf("Stage 4 Visuals: %w", err)
		}
		state.Visuals = res
	} else {
		log.Println("\n━━━ STAGE 3: Images ━━━")
		res, err := p.images.Run(ctx, category, state.Scenes)
		if err != nil {
			return fmt.Errorf("Stage 3 Visuals: %w", err)
		}
		if res.Stopped != nil {
			log.Printf("⚠️  Image generation stopped early: %v — continuing with %d image(s)", res.Stopped, len(res.Paths))
		}
		state.Visuals = res
		if len(res.Paths) == 0 {
			return fmt.Errorf("Stage 3 Visuals: %w", types.ErrNoVisuals)
		}
		if err := p.narrate(ctx, state, 4); err != nil {
			return err
		}
	}
	saveJSON(filepath.Join(runDir, "visuals.json"), state.Visuals)
	if len(state.Visuals.Paths) == 0 {
		return fmt.Errorf("Stage 4 Visuals: %w", types.ErrNoVisuals)
	}

	// ─────────────────────────────────────────────
	// STAGE 5: Subtitles
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 5: Subtitles ━━━")
	var segments []types.SubtitleSegment
	if cfg.Subtitles.Enabled {
		segments, err = p.subtitles.Run(ctx, state.Audio)
		if err != nil {
			log.Printf("⚠️  Stage 5 Subtitles failed: %v — falling back to a static caption", err)
			segments = nil
		}
	} else {
		log.Println("[subtitles] Disabled in config — static caption only")
	}
	state.Subtitles = len(segments)

	// ─────────────────────────────────────────────
	// STAGE 6: Render
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 6: Rendering ━━━")
	video, err := p.renderer.Run(ctx, render.Input{
		Mode:     cfg.Mode,
		Visuals:  state.Visuals.Paths,
		Audio:    state.Audio,
		Music:    p.music.Pick(category),
		Segments: segments,
		Caption:  sc.Lines[0],
	})
	if err != nil {
		return fmt.Errorf("Stage 6 Render: %w", err)
	}
	state.Video = video

	// ─────────────────────────────────────────────
	// STAGE 7: Upload
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 7: Upload ━━━")
	if len(p.publishers) == 0 {
		log.Println("[upload] No upload targets enabled — skipping")
		return nil
	}
	published, err := upload.PublishAll(ctx, p.publishers, video.Path, sc)
	state.Published = published
	if err != nil {
		return fmt.Errorf("Stage 7 Upload: %w", err)
	}
	return nil
}

func (p *Pipeline) narrate(ctx context.Context, state *types.PipelineState, stage int) error {
	log.Printf("\n━━━ STAGE %d: Narration ━━━", stage)
	track, err := p.narrator.Run(ctx, state.Script)
	if err != nil {
		return fmt.Errorf("Stage %d Narration: %w", stage, err)
	}
	state.Audio = track
	return nil
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func saveJSON(path string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("Warning: could not marshal JSON for %s: %v", path, err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("Warning: could not save %s: %v", path, err)
	}
}

func saveText(path, text string) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Printf("Warning: could not create %s: %v", filepath.Dir(path), err)
		return
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		log.Printf("Warning: could not save %s: %v", path, err)
	}
}

// exitCode maps a run error to the process exit status
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}
