package main

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	render "reel-pipeline/06_render"
	upload "reel-pipeline/07_upload"
	"reel-pipeline/config"
	"reel-pipeline/types"
)

type fakeWriter struct {
	script *types.Script
	err    error
}

func (f fakeWriter) Run(_ context.Context, c types.Category) (*types.Script, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := *f.script
	s.Category = c
	return &s, nil
}

type fakeImages struct {
	paths  []string
	called bool
}

func (f *fakeImages) Run(_ context.Context, _ types.Category, sc []types.Scene) (*types.AcquireResult, error) {
	f.called = true
	n := len(f.paths)
	if n > len(sc) {
		n = len(sc)
	}
	return &types.AcquireResult{Paths: f.paths[:n]}, nil
}

type fakeStock struct {
	gotCount int
}

func (f *fakeStock) Run(_ context.Context, _ types.Category, n int) (*types.AcquireResult, error) {
	f.gotCount = n
	res := &types.AcquireResult{}
	for i := 0; i < n; i++ {
		res.Paths = append(res.Paths, "clip.mp4")
	}
	return res, nil
}

type fakeNarrator struct {
	dur   float64
	calls *[]string
}

func (f fakeNarrator) Run(context.Context, *types.Script) (*types.AudioTrack, error) {
	*f.calls = append(*f.calls, "narrate")
	return &types.AudioTrack{Path: "voice.mp3", DurationSec: f.dur}, nil
}

type fakeSubs struct {
	err error
}

func (f fakeSubs) Run(context.Context, *types.AudioTrack) ([]types.SubtitleSegment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []types.SubtitleSegment{{Start: 0, End: 1, Text: "x"}}, nil
}

type noMusic struct{}

func (noMusic) Pick(types.Category) string { return "" }

type fakeRenderer struct {
	got render.Input
}

func (f *fakeRenderer) Run(_ context.Context, in render.Input) (*types.RenderResult, error) {
	f.got = in
	if len(in.Visuals) == 0 {
		return nil, types.ErrNoVisuals
	}
	return &types.RenderResult{Path: "final_reel.mp4", DurationSec: in.Audio.DurationSec}, nil
}

type fakePublisher struct {
	err error
}

func (fakePublisher) Name() string { return "fake" }

func (f fakePublisher) Publish(context.Context, string, *types.Script) (types.PublishResult, error) {
	return types.PublishResult{Target: "fake", ID: "1"}, f.err
}

func testPipeline(t *testing.T, mode string) (*Pipeline, *[]string) {
	cfg := config.Default()
	cfg.Mode = mode
	dir := t.TempDir()
	cfg.Paths.Output = filepath.Join(dir, "output")
	cfg.Paths.Metadata = filepath.Join(dir, "metadata")

	var calls []string
	return &Pipeline{
		cfg: cfg,
		writer: fakeWriter{script: &types.Script{
			Lines:    []string{"पहली", "दूसरी", "तीसरी"},
			Caption:  "caption",
			Hashtags: []string{"#a"},
		}},
		images:    &fakeImages{paths: []string{"a.png", "b.png", "c.png"}},
		stock:     &fakeStock{},
		narrator:  fakeNarrator{dur: 20, calls: &calls},
		subtitles: fakeSubs{},
		music:     noMusic{},
		renderer:  &fakeRenderer{},
	}, &calls
}

func TestPipeline_ImagesMode(t *testing.T) {
	p, _ := testPipeline(t, config.ModeImages)
	p.publishers = []upload.Publisher{fakePublisher{}}

	state, err := p.Run(context.Background(), types.CategoryFinance)
	require.NoError(t, err)

	assert.Len(t, state.Scenes, 3)
	assert.Len(t, state.Visuals.Paths, 3)
	assert.Equal(t, 1, state.Subtitles)
	assert.Equal(t, "final_reel.mp4", state.Video.Path)
	require.Len(t, state.Published, 1)
	assert.Empty(t, state.Error)

	r := p.renderer.(*fakeRenderer)
	assert.Equal(t, "पहली", r.got.Caption)
	assert.Len(t, r.got.Segments, 1)

	data, err := os.ReadFile(filepath.Join(p.cfg.Paths.Output, "latest_caption.txt"))
	require.NoError(t, err)
	assert.Equal(t, "caption\n\n#a", string(data))

	statePath := filepath.Join(p.cfg.Paths.Metadata, "runs", state.RunID, "pipeline_state.json")
	assert.FileExists(t, statePath)
}

func TestPipeline_StockModeSizesClipsToNarration(t *testing.T) {
	p, calls := testPipeline(t, config.ModeStock)

	state, err := p.Run(context.Background(), types.CategorySpiritual)
	require.NoError(t, err)

	// 20s narration at 6s per clip
	assert.Equal(t, 4, p.stock.(*fakeStock).gotCount)
	assert.Len(t, state.Visuals.Paths, 4)
	assert.False(t, p.images.(*fakeImages).called)
	assert.Equal(t, []string{"narrate"}, *calls)
}

func TestPipeline_SubtitleFailureFallsBackToCaption(t *testing.T) {
	p, _ := testPipeline(t, config.ModeImages)
	p.subtitles = fakeSubs{err: errors.New("whisper not found")}

	state, err := p.Run(context.Background(), types.CategoryLifeLessons)
	require.NoError(t, err)
	assert.Zero(t, state.Subtitles)
	assert.Empty(t, p.renderer.(*fakeRenderer).got.Segments)
}

func TestPipeline_FatalErrors(t *testing.T) {
	p, _ := testPipeline(t, config.ModeImages)
	p.writer = fakeWriter{err: &types.ContentFormatError{Raw: "nope", Err: errors.New("bad json")}}
	state, err := p.Run(context.Background(), types.CategoryFinance)
	require.Error(t, err)
	assert.True(t, types.IsFatal(err))
	assert.Contains(t, state.Error, "Stage 1 Script")
	assert.Equal(t, 1, exitCode(err))

	p, calls := testPipeline(t, config.ModeImages)
	p.images = &fakeImages{}
	_, err = p.Run(context.Background(), types.CategoryFinance)
	assert.ErrorIs(t, err, types.ErrNoVisuals)
	assert.Empty(t, *calls, "no narration without visuals")
}

func TestPipeline_UploadFailureIsReported(t *testing.T) {
	p, _ := testPipeline(t, config.ModeImages)
	p.publishers = []upload.Publisher{fakePublisher{err: errors.New("HTTP 400")}}

	state, err := p.Run(context.Background(), types.CategoryFinance)
	require.Error(t, err)
	assert.Contains(t, state.Error, "Stage 7 Upload")
	assert.NotNil(t, state.Video)
}

func TestPipeline_RunDirFailureStillReturnsState(t *testing.T) {
	p, calls := testPipeline(t, config.ModeImages)
	blocker := filepath.Join(t.TempDir(), "metadata")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	p.cfg.Paths.Metadata = blocker

	state, err := p.Run(context.Background(), types.CategoryFinance)
	require.Error(t, err)
	require.NotNil(t, state)
	assert.Contains(t, state.Error, "create run dir")
	assert.Equal(t, types.CategoryFinance, state.Category)
	assert.Empty(t, *calls)
}

func TestPickCategory(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, types.CategoryFinance, pickCategory(cfg, "finance", nil))

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		got := pickCategory(cfg, "", rng)
		assert.Contains(t, cfg.Categories, string(got))
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 130, exitCode(context.Canceled))
	assert.Equal(t, 1, exitCode(errors.New("x")))
}
