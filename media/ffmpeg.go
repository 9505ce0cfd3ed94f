// Package media wraps the ffmpeg and ffprobe binaries.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Tool is the slice of ffmpeg the pipeline needs. Tests swap in a fake.
type Tool interface {
	// Run executes ffmpeg with the given arguments
	Run(ctx context.Context, args ...string) error
	// Duration returns the length of a media file in seconds
	Duration(ctx context.Context, path string) (float64, error)
}

// FFmpeg shells out to the real binaries
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	Stdout      io.Writer
	Stderr      io.Writer

	mu    sync.RWMutex
	cache map[string]float64
}

// New creates an FFmpeg tool; empty paths fall back to $PATH lookup
func New(ffmpegPath, ffprobePath string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = strings.Replace(ffmpegPath, "ffmpeg", "ffprobe", 1)
	}
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		cache:       make(map[string]float64),
	}
}

// CheckInstalled verifies ffmpeg is available
func (f *FFmpeg) CheckInstalled() error {
	if err := exec.Command(f.ffmpegPath, "-version").Run(); err != nil {
		return fmt.Errorf("ffmpeg not found at %s: %w", f.ffmpegPath, err)
	}
	return nil
}

// Run executes ffmpeg; -y is always prepended so outputs are overwritten
func (f *FFmpeg) Run(ctx context.Context, args ...string) error {
	full := append([]string{"-y", "-hide_banner", "-loglevel", "error"}, args...)
	cmd := exec.CommandContext(ctx, f.ffmpegPath, full...)
	cmd.Stdout = f.Stdout
	cmd.Stderr = f.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

// Duration asks ffprobe for the container duration. Results are cached per path.
func (f *FFmpeg) Duration(ctx context.Context, path string) (float64, error) {
	f.mu.RLock()
	d, ok := f.cache[path]
	f.mu.RUnlock()
	if ok {
		return d, nil
	}

	out, err := exec.CommandContext(ctx, f.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_entries", "format=duration",
		path,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	d, err = parseProbeDuration(out)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	f.mu.Lock()
	f.cache[path] = d
	f.mu.Unlock()
	return d, nil
}

func parseProbeDuration(out []byte) (float64, error) {
	var result struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &result); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if result.Format.Duration == "" {
		return 0, fmt.Errorf("no duration reported")
	}
	d, err := strconv.ParseFloat(result.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", result.Format.Duration, err)
	}
	return d, nil
}
