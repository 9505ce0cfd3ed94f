package render

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"reel-pipeline/config"
	"reel-pipeline/media"
	"reel-pipeline/types"
)

// Input is everything the composer needs for one reel
type Input struct {
	// Mode is config.ModeImages (stills with Ken Burns) or config.ModeStock (clips)
	Mode     string
	Visuals  []string
	Audio    *types.AudioTrack
	Music    string
	Segments []types.SubtitleSegment
	// Caption is shown for the whole video when there are no segments
	Caption string
}

// Renderer assembles the final video from all prepared assets
type Renderer struct {
	cfg  *config.Config
	tool media.Tool
	now  func() time.Time
}

// New creates a new Renderer
func New(cfg *config.Config, tool media.Tool) *Renderer {
	return &Renderer{cfg: cfg, tool: tool, now: time.Now}
}

// Run builds the final video. Its duration is the narration's, whatever the
// number of visuals.
func (r *Renderer) Run(ctx context.Context, in Input) (*types.RenderResult, error) {
	log.Println("[render] Starting final video assembly...")

	if len(in.Visuals) == 0 {
		return nil, types.ErrNoVisuals
	}
	duration, err := r.narrationDuration(ctx, in.Audio)
	if err != nil {
		return nil, err
	}

	workDir, err := os.MkdirTemp("", "reel-render-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(workDir)

	result := &types.RenderResult{}

	// Step 1: bring every visual to WxH at the target fps
	clips := r.normalize(ctx, in, duration, workDir, result)
	if len(clips) == 0 {
		return nil, fmt.Errorf("%w: all %d visuals failed to normalize", types.ErrNoVisuals, len(in.Visuals))
	}

	// Step 2: one silent base track, looped/trimmed to the narration
	base, err := r.assemble(ctx, clips, duration, workDir)
	if err != nil {
		return nil, fmt.Errorf("assemble base video: %w", err)
	}
	result.Layers = append(result.Layers, types.Layer{
		Kind:  types.LayerBase,
		Label: fmt.Sprintf("%s x%d", modeName(in.Mode), len(clips)),
		Start: 0,
		End:   duration,
	})

	// Step 3: audio mix, text layers, watermark, encode
	if err := os.MkdirAll(r.cfg.Paths.Output, 0755); err != nil {
		return nil, err
	}
	out := filepath.Join(r.cfg.Paths.Output, fmt.Sprintf("final_reel_%s.mp4", r.now().Format("20060102_150405")))
	layers, err := r.overlay(ctx, in, base, duration, workDir, out)
	if err != nil {
		return nil, fmt.Errorf("overlay: %w", err)
	}
	result.Layers = append(result.Layers, layers...)
	result.Path = out

	result.DurationSec = duration
	if got, err := r.tool.Duration(ctx, out); err != nil {
		log.Printf("[render] Warning: could not probe output duration: %v", err)
	} else {
		result.DurationSec = got
		if frame := 1 / float64(r.cfg.Render.FPS); math.Abs(got-duration) > frame {
			log.Printf("[render] Warning: output is %.3fs, narration is %.3fs", got, duration)
		}
	}

	log.Printf("[render] ✅ Final video ready: %s (%.2fs, %d layers)", out, result.DurationSec, len(result.Layers))
	return result, nil
}

func (r *Renderer) narrationDuration(ctx context.Context, audio *types.AudioTrack) (float64, error) {
	if audio == nil || audio.Path == "" {
		return 0, types.ErrNoNarration
	}
	if audio.DurationSec > 0 {
		return audio.DurationSec, nil
	}
	d, err := r.tool.Duration(ctx, audio.Path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", types.ErrNoNarration, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: zero-length narration", types.ErrNoNarration)
	}
	return d, nil
}

// normalize encodes each visual to a uniform clip. Failures are recorded as
// skips and the clip is left out.
func (r *Renderer) normalize(ctx context.Context, in Input, duration float64, workDir string, result *types.RenderResult) []string {
	rc := r.cfg.Render
	perClip := duration / float64(len(in.Visuals))
	log.Printf("[render] Normalizing %d visual(s) (%s)...", len(in.Visuals), modeName(in.Mode))

	var clips []string
	for i, src := range in.Visuals {
		out := filepath.Join(workDir, fmt.Sprintf("clip_%03d.mp4", i))

		var args []string
		if in.Mode == config.ModeStock {
			args = []string{
				"-i", src,
				"-vf", stockFilter(rc, r.cfg.Stock),
				"-an",
			}
		} else {
			frames := framesFor(perClip, rc.FPS)
			args = []string{
				"-i", src,
				"-vf", kenBurnsFilter(rc, frames),
				"-frames:v", strconv.Itoa(frames),
			}
		}
		args = append(args,
			"-r", strconv.Itoa(rc.FPS),
			"-c:v", rc.VideoCodec,
			"-preset", "veryfast",
			"-pix_fmt", "yuv420p",
			out,
		)

		if err := r.tool.Run(ctx, args...); err != nil {
			log.Printf("[render] Warning: skipping %s: %v", src, err)
			result.Skipped = append(result.Skipped, types.Skip{Item: src, Reason: err.Error()})
			continue
		}
		clips = append(clips, out)
	}
	return clips
}

// assemble concatenates the clips, looping them when they run short
func (r *Renderer) assemble(ctx context.Context, clips []string, duration float64, workDir string) (string, error) {
	log.Printf("[render] Concatenating %d clip(s) to %.2fs...", len(clips), duration)

	lines := make([]string, len(clips))
	for i, c := range clips {
		lines[i] = media.ConcatLine(c)
	}
	listFile := filepath.Join(workDir, "visuals_concat.txt")
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		return "", err
	}

	rc := r.cfg.Render
	out := filepath.Join(workDir, "visuals_raw.mp4")
	err := r.tool.Run(ctx,
		"-stream_loop", "-1",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-t", media.Seconds(duration),
		"-r", strconv.Itoa(rc.FPS),
		"-c:v", rc.VideoCodec,
		"-preset", "veryfast",
		"-pix_fmt", "yuv420p",
		"-an",
		out,
	)
	if err != nil {
		return "", err
	}
	return out, nil
}

// overlay runs the single final encode and reports the layers it stacked
func (r *Renderer) overlay(ctx context.Context, in Input, base string, duration float64, workDir, out string) ([]types.Layer, error) {
	rc := r.cfg.Render
	sc := r.cfg.Subtitles
	wc := r.cfg.Watermark

	args := []string{"-i", base, "-i", in.Audio.Path}
	nextInput := 2

	musicInput := -1
	if in.Music != "" {
		if _, err := os.Stat(in.Music); err == nil {
			args = append(args, "-stream_loop", "-1", "-i", in.Music)
			musicInput = nextInput
			nextInput++
		} else {
			log.Printf("[render] Music file not found, narration only: %s", in.Music)
		}
	}

	logoInput := -1
	if wc.LogoPath != "" {
		if _, err := os.Stat(wc.LogoPath); err == nil {
			args = append(args, "-loop", "1", "-i", wc.LogoPath)
			logoInput = nextInput
			nextInput++
		}
	}

	var layers []types.Layer
	var parts []string
	label := "0:v"
	step := 0

	// text layers
	wrap := maxRunesPerLine(rc.Width, sc.FontSize)
	segments := subtitleLayers(in.Segments, duration)
	if len(segments) > 0 {
		log.Printf("[render] Adding %d subtitle layer(s)", len(segments))
		for i, s := range in.Segments {
			end := math.Min(s.End, duration)
			if s.Start >= end {
				continue
			}
			tf, err := writeTextFile(workDir, fmt.Sprintf("sub_%03d.txt", i), wrapText(s.Text, wrap))
			if err != nil {
				return nil, err
			}
			step++
			label = chainVideo(&parts, label, step, drawtext(sc, textOverlay{TextFile: tf, Start: s.Start, End: end}))
		}
		layers = append(layers, segments...)
	} else if caption := strings.TrimSpace(in.Caption); caption != "" {
		log.Println("[render] No subtitles, using a static caption")
		tf, err := writeTextFile(workDir, "caption.txt", wrapText(caption, wrap))
		if err != nil {
			return nil, err
		}
		step++
		label = chainVideo(&parts, label, step, drawtext(sc, textOverlay{TextFile: tf, Always: true}))
		layers = append(layers, types.Layer{Kind: types.LayerCaption, Label: layerLabel(caption), Start: 0, End: duration})
	}

	// watermark
	switch {
	case logoInput >= 0:
		parts = append(parts, fmt.Sprintf("[%d:v]%s[wm]", logoInput, watermarkFilter(rc, wc)))
		step++
		next := fmt.Sprintf("v%d", step)
		parts = append(parts, fmt.Sprintf("[%s][wm]overlay=W-w:H-h:shortest=1[%s]", label, next))
		label = next
		layers = append(layers, types.Layer{Kind: types.LayerWatermark, Label: filepath.Base(wc.LogoPath), Start: 0, End: duration})
	case wc.Text != "":
		step++
		label = chainVideo(&parts, label, step, watermarkText(wc, sc.Font))
		layers = append(layers, types.Layer{Kind: types.LayerWatermark, Label: wc.Text, Start: 0, End: duration})
	default:
		log.Println("[render] No logo or watermark text configured, skipping watermark")
	}

	parts = append(parts, fmt.Sprintf("[%s]format=yuv420p[vout]", label))
	parts = append(parts, audioChain(rc, r.cfg.Music, musicInput, duration))

	args = append(args,
		"-filter_complex", strings.Join(parts, ";"),
		"-map", "[vout]",
		"-map", "[a]",
		"-c:v", rc.VideoCodec,
		"-preset", rc.Preset,
		"-threads", strconv.Itoa(rc.Threads),
		"-r", strconv.Itoa(rc.FPS),
		"-c:a", rc.AudioCodec,
		"-b:a", "192k",
		"-movflags", "+faststart",
		"-t", media.Seconds(duration),
		out,
	)

	log.Println("[render] Encoding final video...")
	if err := r.tool.Run(ctx, args...); err != nil {
		return nil, err
	}
	return layers, nil
}

func modeName(mode string) string {
	if mode == config.ModeStock {
		return "stock clips"
	}
	return "images"
}
