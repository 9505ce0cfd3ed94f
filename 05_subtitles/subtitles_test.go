package subtitles

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

const sample = `1
00:00:00,000 --> 00:00:02,500
पहली लाइन

2
00:00:02,900 --> 00:00:04,000
दूसरी
लाइन

3
00:00:05,200 --> 00:00:07,010
तीसरी
`

func TestParseSRT(t *testing.T) {
	got, err := ParseSRT(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, types.SubtitleSegment{Start: 0, End: 2.5, Text: "पहली लाइन"}, got[0])
	assert.Equal(t, "दूसरी लाइन", got[1].Text)
	assert.InDelta(t, 2.9, got[1].Start, 1e-9)
	assert.InDelta(t, 7.01, got[2].End, 1e-9)
}

func TestParseSRT_SkipsMalformedBlocks(t *testing.T) {
	in := "x\n00:00:00,000 --> 00:00:01,000\nno index\n\n2\nnot a time\ntext\n\n3\n00:00:01.000 --> 00:00:02.000\nok\n"
	got, err := ParseSRT(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].Text)
}

func TestTimestampRoundTrip(t *testing.T) {
	for _, sec := range []float64{0, 0.05, 1.5, 59.999, 61.25, 3725.125} {
		assert.InDelta(t, sec, ParseTimestamp(FormatTimestamp(sec)), 0.0005)
	}
	assert.Equal(t, "01:02:05,125", FormatTimestamp(3725.125))
	assert.Equal(t, "00:00:00,000", FormatTimestamp(-3))
}

func TestFormatSRT_Renumbers(t *testing.T) {
	out := FormatSRT([]types.SubtitleSegment{{Start: 1, End: 2, Text: "a"}, {Start: 3, End: 4, Text: "b"}})
	assert.Equal(t, "1\n00:00:01,000 --> 00:00:02,000\na\n\n2\n00:00:03,000 --> 00:00:04,000\nb\n", out)
}

func TestClean(t *testing.T) {
	got := Clean([]types.SubtitleSegment{
		{Start: 0.02, End: 1, Text: "  a "},
		{Start: 1, End: 2, Text: "   "},
		{Start: 2, End: 3, Text: "b"},
	}, 0.05)

	require.Len(t, got, 2)
	assert.Equal(t, types.SubtitleSegment{Start: 0, End: 1, Text: "a"}, got[0])
	assert.InDelta(t, 1.95, got[1].Start, 1e-9)
}

func TestMerge(t *testing.T) {
	segs := []types.SubtitleSegment{
		{Start: 0, End: 1, Text: "a"},
		{Start: 1.25, End: 2, Text: "b"}, // gap 0.25 → merge
		{Start: 2.5, End: 3, Text: "c"},  // gap exactly 0.5 → keep
		{Start: 3.25, End: 4, Text: "d"}, // gap 0.25 → merge
	}

	got := Merge(segs, 0.5)
	require.Len(t, got, 2)
	assert.Equal(t, types.SubtitleSegment{Start: 0, End: 2, Text: "a b"}, got[0])
	assert.Equal(t, types.SubtitleSegment{Start: 2.5, End: 4, Text: "c d"}, got[1])

	// input untouched
	assert.Equal(t, "a", segs[0].Text)
}

func TestMerge_Disabled(t *testing.T) {
	segs := []types.SubtitleSegment{{Start: 0, End: 1, Text: "a"}, {Start: 1, End: 2, Text: "b"}}
	assert.Equal(t, segs, Merge(segs, 0))
	assert.Nil(t, Merge(nil, 0.8))
}

func TestMerge_Property(t *testing.T) {
	// merged output never has a gap below the threshold and keeps all text
	segs := []types.SubtitleSegment{}
	start := 0.0
	for i, gap := range []float64{0, 0.3, 1.2, 0.79, 0.81, 2, 0.1, 0.8} {
		start += gap
		segs = append(segs, types.SubtitleSegment{Start: start, End: start + 0.5, Text: string(rune('a' + i))})
		start += 0.5
	}

	got := Merge(segs, 0.8)
	var words []string
	for i, s := range got {
		if i > 0 {
			assert.GreaterOrEqual(t, s.Start-got[i-1].End, 0.8-1e-9)
		}
		words = append(words, strings.Fields(s.Text)...)
	}
	assert.Len(t, words, len(segs))
}

type fakeTranscriber struct {
	segs []types.SubtitleSegment
	err  error
	lang string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _, language string) ([]types.SubtitleSegment, error) {
	f.lang = language
	return f.segs, f.err
}

func TestGenerator_Run(t *testing.T) {
	dir := t.TempDir()
	audio := &types.AudioTrack{Path: filepath.Join(dir, "voice_abc.mp3"), DurationSec: 5}
	tr := &fakeTranscriber{segs: []types.SubtitleSegment{
		{Start: 0.5, End: 1.5, Text: "उठो"},
		{Start: 1.7, End: 2.5, Text: "चलो"},
		{Start: 4, End: 5, Text: "जीतो"},
	}}

	got, err := New(config.Default(), tr).Run(context.Background(), audio)
	require.NoError(t, err)
	assert.Equal(t, "hi", tr.lang)
	require.Len(t, got, 2)
	assert.Equal(t, "उठो चलो", got[0].Text)
	assert.InDelta(t, 0.45, got[0].Start, 1e-9)

	data, err := os.ReadFile(filepath.Join(dir, "voice_abc.srt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "जीतो")
}

func TestGenerator_GapMeasuredBeforeLeadIn(t *testing.T) {
	audio := &types.AudioTrack{Path: filepath.Join(t.TempDir(), "v.mp3")}
	cfg := config.Default()
	cfg.Subtitles.MergeGapSec = 0.8
	cfg.Subtitles.LeadSec = 0.05

	tr := &fakeTranscriber{segs: []types.SubtitleSegment{
		{Start: 1.0, End: 2.0, Text: "पहला"},
		{Start: 2.82, End: 4.0, Text: "दूसरा"},
	}}
	got, err := New(cfg, tr).Run(context.Background(), audio)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDelta(t, 0.95, got[0].Start, 1e-9)
	assert.InDelta(t, 2.77, got[1].Start, 1e-9)

	// a gap below the threshold still merges
	tr.segs[1].Start = 2.5
	got, err = New(cfg, tr).Run(context.Background(), audio)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "पहला दूसरा", got[0].Text)
}

func TestGenerator_Failures(t *testing.T) {
	audio := &types.AudioTrack{Path: filepath.Join(t.TempDir(), "v.mp3")}

	boom := errors.New("model weights missing")
	_, err := New(config.Default(), &fakeTranscriber{err: boom}).Run(context.Background(), audio)
	assert.ErrorIs(t, err, boom)

	_, err = New(config.Default(), &fakeTranscriber{segs: []types.SubtitleSegment{{Text: " "}}}).Run(context.Background(), audio)
	assert.ErrorIs(t, err, ErrNoSpeech)
}
