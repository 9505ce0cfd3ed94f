package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProbeDuration(t *testing.T) {
	d, err := parseProbeDuration([]byte(`{"format": {"duration": "12.480000"}}`))
	require.NoError(t, err)
	assert.InDelta(t, 12.48, d, 1e-9)

	_, err = parseProbeDuration([]byte(`{"format": {}}`))
	assert.Error(t, err)

	_, err = parseProbeDuration([]byte(`not json`))
	assert.Error(t, err)

	_, err = parseProbeDuration([]byte(`{"format": {"duration": "N/A"}}`))
	assert.Error(t, err)
}

func TestNew_DerivesProbePath(t *testing.T) {
	f := New("/usr/local/bin/ffmpeg", "")
	assert.Equal(t, "/usr/local/bin/ffprobe", f.ffprobePath)

	f = New("", "")
	assert.Equal(t, "ffmpeg", f.ffmpegPath)
	assert.Equal(t, "ffprobe", f.ffprobePath)
}

func TestEscaping(t *testing.T) {
	assert.Equal(t, `C\:/media/it\'s.srt`, EscapeFilterPath(`C:\media\it's.srt`))
	assert.Equal(t, `50\% off\: now`, EscapeText("50% off: now"))
	assert.Equal(t, "1.500", Seconds(1.5))
	assert.Equal(t, `file 'a'\''b.mp4'`, ConcatLine("a'b.mp4"))
}
