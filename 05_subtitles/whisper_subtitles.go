package subtitles

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"reel-pipeline/config"
	"reel-pipeline/types"
)

// ErrNoSpeech is returned when transcription yields no usable segment
var ErrNoSpeech = errors.New("transcript is empty")

// Transcriber turns narration audio into timed segments
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) ([]types.SubtitleSegment, error)
}

// WhisperCLI runs the openai-whisper command line tool
type WhisperCLI struct {
	bin    string
	model  string
	outDir string
}

// NewWhisperCLI writes whisper output under outDir
func NewWhisperCLI(bin, model, outDir string) *WhisperCLI {
	if bin == "" {
		bin = "whisper"
	}
	return &WhisperCLI{bin: bin, model: model, outDir: outDir}
}

func (w *WhisperCLI) Transcribe(ctx context.Context, audioPath, language string) ([]types.SubtitleSegment, error) {
	if _, err := exec.LookPath(w.bin); err != nil {
		return nil, fmt.Errorf("whisper not found (%s): %w", w.bin, err)
	}
	if err := os.MkdirAll(w.outDir, 0755); err != nil {
		return nil, err
	}

	// whisper audio.mp3 --model small --language hi --output_format srt --output_dir /path/
	cmd := exec.CommandContext(ctx,
		w.bin,
		audioPath,
		"--model", w.model,
		"--language", language,
		"--task", "transcribe",
		"--output_format", "srt",
		"--output_dir", w.outDir,
		"--fp16", "False",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("whisper failed: %w", err)
	}

	// Whisper saves as <audioFilename>.srt
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return ParseSRTFile(filepath.Join(w.outDir, base+".srt"))
}

// Generator produces the cleaned, merged subtitle track for the narration
type Generator struct {
	cfg         *config.Config
	transcriber Transcriber
}

// New creates a new subtitle Generator
func New(cfg *config.Config, transcriber Transcriber) *Generator {
	return &Generator{cfg: cfg, transcriber: transcriber}
}

// Run transcribes the narration and writes the final SRT next to it.
// Any error means the caller should fall back to a static caption.
func (g *Generator) Run(ctx context.Context, audio *types.AudioTrack) ([]types.SubtitleSegment, error) {
	log.Println("[subtitles] Running Whisper transcription...")

	raw, err := g.transcriber.Transcribe(ctx, audio.Path, g.cfg.Subtitles.Language)
	if err != nil {
		return nil, err
	}

	// gaps are measured on the transcript timings, before the lead-in shift
	segments := Merge(Clean(raw, 0), g.cfg.Subtitles.MergeGapSec)
	segments = Clean(segments, g.cfg.Subtitles.LeadSec)
	if len(segments) == 0 {
		return nil, ErrNoSpeech
	}
	log.Printf("[subtitles] %d raw segments → %d on screen", len(raw), len(segments))

	srtFile := strings.TrimSuffix(audio.Path, filepath.Ext(audio.Path)) + ".srt"
	if err := WriteSRTFile(srtFile, segments); err != nil {
		log.Printf("[subtitles] Warning: could not write %s: %v", srtFile, err)
	} else {
		log.Printf("[subtitles] ✅ SRT generated: %s", srtFile)
	}
	return segments, nil
}
