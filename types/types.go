package types

import "strings"

// Category is the theme a reel is produced for
type Category string

const (
	CategoryLifeLessons Category = "life_lessons"
	CategoryFinance     Category = "finance"
	CategorySpiritual   Category = "spiritual"
)

// Title renders a category for humans: "life_lessons" → "Life Lessons"
func (c Category) Title() string {
	words := strings.Split(string(c), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Script is the narration plus the caption that goes with the upload
type Script struct {
	Category Category `json:"category"`
	Lines    []string `json:"lines"`
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}

// Text joins the script lines the way they are narrated
func (s *Script) Text() string {
	return strings.Join(s.Lines, "\n")
}

// FullCaption is the caption followed by a blank line and the hashtags
func (s *Script) FullCaption() string {
	if len(s.Hashtags) == 0 {
		return s.Caption
	}
	return s.Caption + "\n\n" + strings.Join(s.Hashtags, " ")
}

// Scene is one script line that gets its own visual
type Scene struct {
	Index   int    `json:"index"`
	Text    string `json:"text"`
	Emotion string `json:"emotion"`
	ID      string `json:"id"`
}

// Cache entry statuses
const (
	StatusUsable   = "usable"
	StatusUnusable = "unusable"
)

// CacheEntry records one generated image that may be reused by later runs
type CacheEntry struct {
	ID          string `json:"id"`
	Path        string `json:"path"`
	Category    string `json:"category"`
	Emotion     string `json:"emotion"`
	ScriptLine  string `json:"script_line"`
	Style       string `json:"style"`
	Status      string `json:"status"`
	CreatedFrom string `json:"created_from"`
	CreatedAt   string `json:"created_at"`
}

// Usable reports whether the entry may be reused
func (e CacheEntry) Usable() bool {
	return e.Status == StatusUsable
}

// AudioTrack is the narration file; DurationSec is 0 when it could not be measured
type AudioTrack struct {
	Path        string  `json:"path"`
	DurationSec float64 `json:"duration_sec"`
}

// SubtitleSegment is one caption with its on-screen interval in seconds
type SubtitleSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Skip is an item a stage dropped without aborting the run
type Skip struct {
	Item   string `json:"item"`
	Reason string `json:"reason"`
}

// AcquireResult is what a visual acquirer hands to the composer
type AcquireResult struct {
	Paths   []string `json:"paths"`
	Skipped []Skip   `json:"skipped,omitempty"`
	// Stopped is set when acquisition halted before the last item
	Stopped error `json:"-"`
}

// Skip records a dropped item
func (r *AcquireResult) Skip(item string, reason error) {
	r.Skipped = append(r.Skipped, Skip{Item: item, Reason: reason.Error()})
}

// LayerKind identifies an entry of the composite overlay list
type LayerKind string

const (
	LayerBase      LayerKind = "base"
	LayerSubtitle  LayerKind = "subtitle"
	LayerCaption   LayerKind = "caption"
	LayerWatermark LayerKind = "watermark"
)

// Layer is one element stacked onto the final video
type Layer struct {
	Kind  LayerKind `json:"kind"`
	Label string    `json:"label"`
	Start float64   `json:"start"`
	End   float64   `json:"end"`
}

// RenderResult describes the composited output file
type RenderResult struct {
	Path        string  `json:"path"`
	DurationSec float64 `json:"duration_sec"`
	Layers      []Layer `json:"layers"`
	Skipped     []Skip  `json:"skipped,omitempty"`
}

// PublishResult is what a publisher reports back
type PublishResult struct {
	Target string `json:"target"`
	ID     string `json:"id,omitempty"`
	URL    string `json:"url,omitempty"`
	Status int    `json:"status,omitempty"`
}

// PipelineState tracks the full state of one pipeline run
type PipelineState struct {
	RunID       string          `json:"run_id"`
	StartedAt   string          `json:"started_at"`
	CompletedAt string          `json:"completed_at"`
	Mode        string          `json:"mode"`
	Category    Category        `json:"category"`
	Script      *Script         `json:"script"`
	Scenes      []Scene         `json:"scenes"`
	Visuals     *AcquireResult  `json:"visuals"`
	Audio       *AudioTrack     `json:"audio"`
	Subtitles   int             `json:"subtitle_segments"`
	Video       *RenderResult   `json:"video"`
	Published   []PublishResult `json:"published"`
	Error       string          `json:"error,omitempty"`
}
