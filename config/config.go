package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Visual modes
const (
	ModeImages = "images"
	ModeStock  = "stock"
)

type Config struct {
	OpenAIAPIKey string `yaml:"openai_api_key"`
	PexelsAPIKey string `yaml:"pexels_api_key"`

	Mode        string            `yaml:"mode"`
	Categories  []string          `yaml:"categories"`
	Script      ScriptConfig      `yaml:"script"`
	Inspiration InspirationConfig `yaml:"inspiration"`
	Images      ImagesConfig      `yaml:"images"`
	Stock       StockConfig       `yaml:"stock"`
	Audio       AudioConfig       `yaml:"audio"`
	Music       MusicConfig       `yaml:"music"`
	Subtitles   SubtitlesConfig   `yaml:"subtitles"`
	Render      RenderConfig      `yaml:"render"`
	Watermark   WatermarkConfig   `yaml:"watermark"`
	Facebook    FacebookConfig    `yaml:"facebook"`
	YouTube     YouTubeConfig     `yaml:"youtube"`
	Upload      UploadConfig      `yaml:"upload"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
	Paths       PathsConfig       `yaml:"paths"`
}

type ScriptConfig struct {
	Model          string   `yaml:"model"`
	Format         string   `yaml:"format"` // json | text
	Language       string   `yaml:"language"`
	LineCount      int      `yaml:"line_count"`
	MaxScenes      int      `yaml:"max_scenes"`
	Temperature    float64  `yaml:"temperature"`
	DefaultCaption string   `yaml:"default_caption"`
	BrandHashtags  []string `yaml:"brand_hashtags"`
}

type InspirationConfig struct {
	Enabled    bool                `yaml:"enabled"`
	Subreddits map[string][]string `yaml:"subreddits"` // category → subreddits
	Limit      int                 `yaml:"limit"`
	TopTime    string              `yaml:"top_time"`
}

type ImagesConfig struct {
	Provider     string `yaml:"provider"` // openai | pollinations
	Model        string `yaml:"model"`
	Size         string `yaml:"size"`
	Quality      string `yaml:"quality"`
	Style        string `yaml:"style"`
	CacheBackend string `yaml:"cache_backend"` // file | redis
	RedisAddr    string `yaml:"redis_addr"`
	RedisKey     string `yaml:"redis_key"`
}

type StockConfig struct {
	Orientation    string  `yaml:"orientation"`
	PerPage        int     `yaml:"per_page"`
	ClipCount      int     `yaml:"clip_count"`
	MaxClips       int     `yaml:"max_clips"`
	SecondsPerClip float64 `yaml:"seconds_per_clip"`
	Stylize        bool    `yaml:"stylize"`
	BlurRadius     int     `yaml:"blur_radius"`
	Dim            float64 `yaml:"dim"`
}

type AudioConfig struct {
	Engine     string   `yaml:"engine"` // openai | edge-tts
	Model      string   `yaml:"model"`
	Voice      string   `yaml:"voice"`
	EdgeVoice  string   `yaml:"edge_voice"`
	UseIntro   bool     `yaml:"use_intro"`
	IntroLines []string `yaml:"intro_lines"`
}

type MusicConfig struct {
	Enabled    bool              `yaml:"enabled"`
	Default    string            `yaml:"default"`
	ByCategory map[string]string `yaml:"by_category"`
	Volume     float64           `yaml:"volume"`
	FadeSec    float64           `yaml:"fade_sec"`
}

type SubtitlesConfig struct {
	Enabled      bool    `yaml:"enabled"`
	WhisperBin   string  `yaml:"whisper_bin"`
	WhisperModel string  `yaml:"whisper_model"`
	Language     string  `yaml:"language"`
	MergeGapSec  float64 `yaml:"merge_gap_sec"`
	LeadSec      float64 `yaml:"lead_sec"`
	Font         string  `yaml:"font"`
	FontSize     int     `yaml:"font_size"`
	Color        string  `yaml:"color"`
	StrokeColor  string  `yaml:"stroke_color"`
	StrokeWidth  int     `yaml:"stroke_width"`
	Position     string  `yaml:"position"` // lower | center
	YRatio       float64 `yaml:"y_ratio"`
	FadeSec      float64 `yaml:"fade_sec"`
}

type RenderConfig struct {
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
	FPS          int     `yaml:"fps"`
	ZoomFactor   float64 `yaml:"zoom_factor"`
	VideoCodec   string  `yaml:"video_codec"`
	AudioCodec   string  `yaml:"audio_codec"`
	Preset       string  `yaml:"preset"`
	Threads      int     `yaml:"threads"`
	VoiceFadeSec float64 `yaml:"voice_fade_sec"`
	FFmpegBin    string  `yaml:"ffmpeg_bin"`
	FFprobeBin   string  `yaml:"ffprobe_bin"`
}

type WatermarkConfig struct {
	LogoPath       string  `yaml:"logo_path"`
	Text           string  `yaml:"text"`
	WidthRatio     float64 `yaml:"width_ratio"`
	MarginLeft     int     `yaml:"margin_left"`
	MarginTop      int     `yaml:"margin_top"`
	MarginRight    int     `yaml:"margin_right"`
	MarginBottom   int     `yaml:"margin_bottom"`
	BackingOpacity float64 `yaml:"backing_opacity"`
	FontSize       int     `yaml:"font_size"`
}

type FacebookConfig struct {
	PageID          string `yaml:"page_id"`
	PageAccessToken string `yaml:"page_access_token"`
	GraphVersion    string `yaml:"graph_version"`
	BaseURL         string `yaml:"base_url"`
}

type YouTubeConfig struct {
	CategoryID      string `yaml:"category_id"`
	Visibility      string `yaml:"visibility"`
	MadeForKids     bool   `yaml:"made_for_kids"`
	DefaultLanguage string `yaml:"default_language"`
	TitleMaxChars   int    `yaml:"title_max_chars"`
}

type UploadConfig struct {
	Enabled bool     `yaml:"enabled"`
	Targets []string `yaml:"targets"` // facebook | youtube
}

type ScheduleConfig struct {
	Cron string `yaml:"cron"`
}

type PathsConfig struct {
	Output           string `yaml:"output"`
	Images           string `yaml:"images"`
	Metadata         string `yaml:"metadata"`
	ImageCache       string `yaml:"image_cache"`
	BackgroundVideos string `yaml:"background_videos"`
}

// Load reads config.yaml, fills in defaults and applies environment overrides
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML bytes into a ready-to-use Config
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in settings used for any key missing from the file
func Default() *Config {
	return &Config{
		Mode:       ModeImages,
		Categories: []string{"life_lessons", "finance", "spiritual"},
		Script: ScriptConfig{
			Model:          "gpt-4o-mini",
			Format:         "json",
			Language:       "hindi",
			LineCount:      5,
			MaxScenes:      5,
			Temperature:    0.9,
			DefaultCaption: "सपनों के लिए रोज़ थोड़ा आगे बढ़ो।",
		},
		Inspiration: InspirationConfig{
			Limit:   5,
			TopTime: "week",
		},
		Images: ImagesConfig{
			Provider:     "openai",
			Model:        "gpt-image-1",
			Size:         "1024x1536",
			Quality:      "medium",
			Style:        "minimalist_2d",
			CacheBackend: "file",
			RedisAddr:    "localhost:6379",
			RedisKey:     "reel:images",
		},
		Stock: StockConfig{
			Orientation:    "portrait",
			PerPage:        1,
			ClipCount:      3,
			MaxClips:       8,
			SecondsPerClip: 6,
			BlurRadius:     4,
			Dim:            0.15,
		},
		Audio: AudioConfig{
			Engine:    "openai",
			Model:     "gpt-4o-mini-tts",
			Voice:     "alloy",
			EdgeVoice: "hi-IN-MadhurNeural",
		},
		Music: MusicConfig{
			Enabled: true,
			Default: "assets/music/soft_motivation.mp3",
			Volume:  0.12,
			FadeSec: 1.0,
		},
		Subtitles: SubtitlesConfig{
			Enabled:      true,
			WhisperBin:   "whisper",
			WhisperModel: "small",
			Language:     "hi",
			MergeGapSec:  0.8,
			LeadSec:      0.05,
			Font:         "fonts/Mukta-Bold.ttf",
			FontSize:     88,
			Color:        "white",
			StrokeColor:  "black",
			StrokeWidth:  6,
			Position:     "lower",
			YRatio:       0.76,
			FadeSec:      0.12,
		},
		Render: RenderConfig{
			Width:        1080,
			Height:       1920,
			FPS:          30,
			ZoomFactor:   1.08,
			VideoCodec:   "libx264",
			AudioCodec:   "aac",
			Preset:       "medium",
			Threads:      4,
			VoiceFadeSec: 0.15,
			FFmpegBin:    "ffmpeg",
			FFprobeBin:   "ffprobe",
		},
		Watermark: WatermarkConfig{
			LogoPath:       "assets/logo/logo.png",
			WidthRatio:     0.18,
			MarginLeft:     18,
			MarginTop:      12,
			MarginRight:    40,
			MarginBottom:   60,
			BackingOpacity: 0.30,
			FontSize:       42,
		},
		Facebook: FacebookConfig{
			GraphVersion: "v17.0",
			BaseURL:      "https://graph.facebook.com",
		},
		YouTube: YouTubeConfig{
			CategoryID:      "22",
			Visibility:      "public",
			DefaultLanguage: "hi",
			TitleMaxChars:   100,
		},
		Upload: UploadConfig{
			Enabled: true,
			Targets: []string{"facebook"},
		},
		Schedule: ScheduleConfig{
			Cron: "0 9 * * *",
		},
		Paths: PathsConfig{
			Output:           "data/output",
			Images:           "data/images",
			Metadata:         "data/metadata",
			ImageCache:       "data/metadata/images.json",
			BackgroundVideos: "data/background_videos",
		},
	}
}

// applyEnv lets secrets live in the environment (or .env) instead of the YAML file
func (c *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	override(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	override(&c.PexelsAPIKey, "PEXELS_API_KEY")
	override(&c.Facebook.PageID, "FACEBOOK_PAGE_ID")
	override(&c.Facebook.PageAccessToken, "FACEBOOK_PAGE_ACCESS_TOKEN")
	override(&c.Images.RedisAddr, "REDIS_URL")
}

// Validate rejects settings the pipeline cannot act on
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeImages, ModeStock:
	default:
		return fmt.Errorf("config: unknown mode %q (want %q or %q)", c.Mode, ModeImages, ModeStock)
	}
	switch c.Script.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: unknown script.format %q", c.Script.Format)
	}
	switch c.Images.CacheBackend {
	case "file", "redis":
	default:
		return fmt.Errorf("config: unknown images.cache_backend %q", c.Images.CacheBackend)
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("config: at least one category is required")
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 || c.Render.FPS <= 0 {
		return fmt.Errorf("config: render width, height and fps must be positive")
	}
	return nil
}
