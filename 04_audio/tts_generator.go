package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"reel-pipeline/config"
	"reel-pipeline/types"
)

// Synthesizer writes spoken audio for text to outPath
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

// Prober measures media duration in seconds
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// NewSynthesizer picks the TTS engine named in the config
func NewSynthesizer(cfg *config.Config) (Synthesizer, error) {
	switch cfg.Audio.Engine {
	case "edge-tts":
		return NewEdgeTTS(cfg.Audio.EdgeVoice)
	case "openai", "":
		return NewOpenAISpeech(cfg.OpenAIAPIKey, cfg.Audio.Model, cfg.Audio.Voice)
	default:
		return nil, fmt.Errorf("unknown tts engine %q", cfg.Audio.Engine)
	}
}

// OpenAISpeech uses the OpenAI speech endpoint, mp3 output
type OpenAISpeech struct {
	client openai.Client
	model  string
	voice  string
}

// NewOpenAISpeech creates the OpenAI TTS engine
func NewOpenAISpeech(apiKey, model, voice string, opts ...option.RequestOption) (*OpenAISpeech, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key missing; set openai_api_key or OPENAI_API_KEY")
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAISpeech{
		client: openai.NewClient(opts...),
		model:  model,
		voice:  voice,
	}, nil
}

func (o *OpenAISpeech) Synthesize(ctx context.Context, text, outPath string) error {
	resp, err := o.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModel(o.model),
		Voice:          openai.AudioSpeechNewParamsVoice(o.voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return fmt.Errorf("OpenAI speech error: %w", err)
	}
	defer resp.Body.Close()

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(outPath)
		return fmt.Errorf("write speech: %w", err)
	}
	return f.Close()
}

// EdgeTTS shells out to the edge-tts CLI (pip install edge-tts)
type EdgeTTS struct {
	bin   string
	voice string
}

// NewEdgeTTS fails when edge-tts is not on PATH
func NewEdgeTTS(voice string) (*EdgeTTS, error) {
	bin, err := exec.LookPath("edge-tts")
	if err != nil {
		return nil, fmt.Errorf("edge-tts not found, install it with: pip install edge-tts")
	}
	return &EdgeTTS{bin: bin, voice: voice}, nil
}

func (e *EdgeTTS) Synthesize(ctx context.Context, text, outPath string) error {
	cmd := exec.CommandContext(ctx, e.bin,
		"--voice", e.voice,
		"--text", text,
		"--write-media", outPath,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Generator narrates a whole script into one audio file
type Generator struct {
	cfg    *config.Config
	engine Synthesizer
	probe  Prober
	rng    *rand.Rand
}

// New creates a narration Generator. probe may be nil.
func New(cfg *config.Config, engine Synthesizer, probe Prober) *Generator {
	return &Generator{
		cfg:    cfg,
		engine: engine,
		probe:  probe,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run synthesizes the narration. A failed duration probe is logged and
// leaves DurationSec at 0.
func (g *Generator) Run(ctx context.Context, script *types.Script) (*types.AudioTrack, error) {
	text := NarrationText(script)
	if strings.TrimSpace(text) == "" {
		return nil, types.ErrEmptyScript
	}
	if intro := g.intro(); intro != "" {
		log.Printf("[audio] Intro: %s", intro)
		text = intro + "\n" + text
	}

	if err := os.MkdirAll(g.cfg.Paths.Output, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	out := filepath.Join(g.cfg.Paths.Output, fmt.Sprintf("voice_%s.mp3", uuid.New().String()[:8]))

	log.Println("[audio] 🎙 Generating narration...")
	if err := g.engine.Synthesize(ctx, text, out); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrNoNarration, err)
	}
	if fi, err := os.Stat(out); err != nil || fi.Size() == 0 {
		return nil, fmt.Errorf("%w: %s is missing or empty", types.ErrNoNarration, out)
	}

	track := &types.AudioTrack{Path: out}
	if g.probe != nil {
		dur, err := g.probe.Duration(ctx, out)
		if err != nil {
			log.Printf("[audio] Warning: could not measure narration duration: %v", err)
		} else {
			track.DurationSec = dur
		}
	}

	log.Printf("[audio] ✅ Narration: %s (%.1fs)", out, track.DurationSec)
	return track, nil
}

// NarrationText is the script as it is spoken: one line per sentence
func NarrationText(script *types.Script) string {
	if script == nil {
		return ""
	}
	return script.Text()
}

func (g *Generator) intro() string {
	lines := g.cfg.Audio.IntroLines
	if !g.cfg.Audio.UseIntro || len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[g.rng.Intn(len(lines))])
}
