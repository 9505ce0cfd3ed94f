package visuals

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reel-pipeline/config"
	"reel-pipeline/types"
)

type fakeGenerator struct {
	calls   int
	failAt  int // 1-based call number that fails; 0 never
	prompts []string
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(_ context.Context, prompt string) ([]byte, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.failAt > 0 && f.calls == f.failAt {
		return nil, errors.New("quota exceeded")
	}
	return []byte("png-bytes"), nil
}

func testScenes() []types.Scene {
	return []types.Scene{
		{Index: 0, Text: "पहला", Emotion: "motivation", ID: "aaa"},
		{Index: 1, Text: "दूसरा", Emotion: "struggle", ID: "bbb"},
		{Index: 2, Text: "तीसरा", Emotion: "aspiration", ID: "ccc"},
	}
}

func assemblerConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Paths.Images = filepath.Join(dir, "images")
	cfg.Paths.ImageCache = filepath.Join(dir, "metadata", "images.json")
	return cfg
}

func TestAssembler_GeneratesAndRecords(t *testing.T) {
	cfg := assemblerConfig(t)
	gen := &fakeGenerator{}
	store := NewFileStore(cfg.Paths.ImageCache)

	res, err := NewAssembler(cfg, gen, store).Run(context.Background(), types.CategoryLifeLessons, testScenes())
	require.NoError(t, err)
	require.NoError(t, res.Stopped)

	require.Len(t, res.Paths, 3)
	assert.Equal(t, filepath.Join(cfg.Paths.Images, "life_lessons_motivation_aaa.png"), res.Paths[0])
	for _, p := range res.Paths {
		assert.FileExists(t, p)
	}

	for _, prompt := range gen.prompts {
		assert.Contains(t, prompt, "Scene idea (do not add text in image):")
	}
	assert.True(t, strings.HasSuffix(gen.prompts[1], "दूसरा"))

	entry, ok, err := store.Get(context.Background(), "life_lessons_struggle_bbb.png")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.StatusUsable, entry.Status)
	assert.Equal(t, "fake", entry.CreatedFrom)
	assert.Equal(t, "दूसरा", entry.ScriptLine)
}

func TestAssembler_ReusesCache(t *testing.T) {
	cfg := assemblerConfig(t)
	store := NewFileStore(cfg.Paths.ImageCache)

	first := &fakeGenerator{}
	_, err := NewAssembler(cfg, first, store).Run(context.Background(), types.CategoryLifeLessons, testScenes())
	require.NoError(t, err)
	require.Equal(t, 3, first.calls)

	second := &fakeGenerator{}
	res, err := NewAssembler(cfg, second, store).Run(context.Background(), types.CategoryLifeLessons, testScenes())
	require.NoError(t, err)
	assert.Equal(t, 0, second.calls)
	assert.Len(t, res.Paths, 3)
}

func TestAssembler_UnusableOrMissingFileRegenerates(t *testing.T) {
	cfg := assemblerConfig(t)
	store := NewFileStore(cfg.Paths.ImageCache)
	scenes := testScenes()[:2]

	_, err := NewAssembler(cfg, &fakeGenerator{}, store).Run(context.Background(), types.CategoryFinance, scenes)
	require.NoError(t, err)

	// first image marked unusable, second deleted from disk
	name0 := ImageName(types.CategoryFinance, scenes[0])
	entry, _, _ := store.Get(context.Background(), name0)
	entry.Status = types.StatusUnusable
	require.NoError(t, store.Put(context.Background(), entry))
	require.NoError(t, os.Remove(filepath.Join(cfg.Paths.Images, ImageName(types.CategoryFinance, scenes[1]))))

	gen := &fakeGenerator{}
	res, err := NewAssembler(cfg, gen, store).Run(context.Background(), types.CategoryFinance, scenes)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
	assert.Len(t, res.Paths, 2)
}

func TestAssembler_StopsOnFailure(t *testing.T) {
	cfg := assemblerConfig(t)
	gen := &fakeGenerator{failAt: 2}

	res, err := NewAssembler(cfg, gen, NewFileStore(cfg.Paths.ImageCache)).
		Run(context.Background(), types.CategorySpiritual, testScenes())
	require.NoError(t, err)

	assert.Len(t, res.Paths, 1)
	assert.Error(t, res.Stopped)
	assert.Equal(t, 2, gen.calls, "no call after the failure")
}

func TestAssembler_FailureOnFirstSceneYieldsNothing(t *testing.T) {
	cfg := assemblerConfig(t)
	res, err := NewAssembler(cfg, &fakeGenerator{failAt: 1}, NewFileStore(cfg.Paths.ImageCache)).
		Run(context.Background(), types.CategorySpiritual, testScenes())
	require.NoError(t, err)
	assert.Empty(t, res.Paths)
	assert.Error(t, res.Stopped)
}
