package script

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"reel-pipeline/config"
	"reel-pipeline/types"
)

const systemPrompt = "You generate high-retention Hindi reel content."

// scriptJSON is the structured answer requested from the model
type scriptJSON struct {
	Script   []string `json:"script" jsonschema_description:"The narration, one short cinematic line per entry"`
	Caption  string   `json:"caption" jsonschema_description:"2-3 short emotional lines that encourage reflection or sharing"`
	Hashtags []string `json:"hashtags" jsonschema_description:"4-6 hashtags matching the category"`
}

var scriptSchema = GenerateSchema[scriptJSON]()

// ThemeSource supplies extra trending themes for a category
type ThemeSource interface {
	Themes(ctx context.Context, category types.Category) ([]string, error)
}

// Writer generates reel scripts through a language model
type Writer struct {
	cfg         *config.Config
	llm         LLMClient
	inspiration ThemeSource
}

// New creates a new script Writer
func New(cfg *config.Config, llm LLMClient) *Writer {
	return &Writer{cfg: cfg, llm: llm}
}

// WithInspiration enables trending-theme hints in the prompt
func (w *Writer) WithInspiration(src ThemeSource) *Writer {
	w.inspiration = src
	return w
}

// Run asks the model for a script in the given category
func (w *Writer) Run(ctx context.Context, category types.Category) (*types.Script, error) {
	log.Printf("[script] Generating reel script + caption for %q (format: %s)...", category, w.cfg.Script.Format)

	var trending []string
	if w.inspiration != nil {
		themes, err := w.inspiration.Themes(ctx, category)
		if err != nil {
			log.Printf("[script] Warning: inspiration unavailable: %v", err)
		} else {
			trending = themes
			log.Printf("[script] Using %d trending theme(s) as inspiration", len(trending))
		}
	}

	prompt := Prompt{
		System: systemPrompt,
		User:   buildUserPrompt(w.cfg.Script, category, trending),
	}
	if w.cfg.Script.Format == "json" {
		prompt.Schema = &Schema{
			Name:        "reel_script",
			Description: "Reel narration script with caption and hashtags",
			Definition:  scriptSchema,
		}
	}

	raw, err := w.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("llm request: %w", err)
	}

	var script *types.Script
	if w.cfg.Script.Format == "json" {
		script, err = ParseJSON(raw)
		if err != nil {
			return nil, err
		}
		if n := w.cfg.Script.LineCount; n > 0 && len(script.Lines) != n {
			log.Printf("[script] Warning: asked for %d lines, model returned %d", n, len(script.Lines))
		}
	} else {
		script, err = ParseText(raw)
		if err != nil {
			return nil, err
		}
		script.Caption = w.cfg.Script.DefaultCaption
	}

	script.Category = category
	if len(script.Hashtags) == 0 {
		script.Hashtags = DefaultHashtags(category)
	}
	script.Hashtags = appendMissing(script.Hashtags, w.cfg.Script.BrandHashtags)

	log.Printf("[script] ✅ Script ready: %d lines", len(script.Lines))
	for _, l := range script.Lines {
		log.Printf("[script]   %s", l)
	}
	return script, nil
}

// ParseJSON decodes the strict JSON answer. Anything unparsable is a
// ContentFormatError; there is no repair.
func ParseJSON(raw string) (*types.Script, error) {
	content := cleanJSON(raw)

	var parsed scriptJSON
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, &types.ContentFormatError{Raw: raw, Err: err}
	}

	lines := trimLines(parsed.Script)
	if len(lines) == 0 {
		return nil, &types.ContentFormatError{Raw: raw, Err: types.ErrEmptyScript}
	}

	return &types.Script{
		Lines:    lines,
		Caption:  strings.TrimSpace(parsed.Caption),
		Hashtags: trimLines(parsed.Hashtags),
	}, nil
}

// ParseText treats the answer as free-form narration, one line per row
func ParseText(raw string) (*types.Script, error) {
	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "```") {
			continue
		}
		lines = append(lines, l)
	}
	if len(lines) == 0 {
		return nil, types.ErrEmptyScript
	}
	return &types.Script{Lines: lines}, nil
}

func buildUserPrompt(cfg config.ScriptConfig, category types.Category, trending []string) string {
	var sb strings.Builder

	language := cfg.Language
	if strings.EqualFold(language, "hindi") || language == "" {
		sb.WriteString("You are a top 1M-subscriber Hindi motivational reel creator.\n\n")
		sb.WriteString("Create content in PURE Hindi (Devanagari).\n")
	} else {
		sb.WriteString("You are a top 1M-subscriber motivational reel creator.\n\n")
		sb.WriteString(fmt.Sprintf("Create content in %s.\n", language))
	}

	lineCount := cfg.LineCount
	if lineCount <= 0 {
		lineCount = 5
	}

	if cfg.Format == "json" {
		sb.WriteString("Return ONLY valid JSON. No explanations.\n\n")
		sb.WriteString("JSON format (strict):\n")
		sb.WriteString(`{"script": ["line 1", "..."], "caption": "...", "hashtags": ["#...", "..."]}`)
		sb.WriteString("\n\n")
	} else {
		sb.WriteString("Return ONLY the script lines, one per line. No numbering, no explanations.\n\n")
	}

	sb.WriteString("Rules for SCRIPT:\n")
	sb.WriteString(fmt.Sprintf("- EXACTLY %d lines\n", lineCount))
	sb.WriteString("- Line 1 is a strong emotional hook, the last line a powerful ending\n")
	sb.WriteString("- Each line under 8-10 words\n")
	sb.WriteString("- No paragraphs, no stories\n")
	sb.WriteString("- Cinematic & emotional\n\n")

	if cfg.Format == "json" {
		sb.WriteString("Rules for CAPTION:\n")
		sb.WriteString("- 2-3 short lines that emotionally match the script\n")
		sb.WriteString("- No emojis\n")
		sb.WriteString("- Encourage save/share\n\n")
		sb.WriteString("Rules for HASHTAGS:\n")
		sb.WriteString("- 4-6 hashtags\n")
		sb.WriteString(fmt.Sprintf("- Must match category: %s\n\n", category))
	}

	sb.WriteString("Theme focus:\n")
	sb.WriteString(Theme(category))
	sb.WriteString("\n")

	if len(trending) > 0 {
		sb.WriteString("\nTrending themes people are talking about (use as inspiration, never quote them):\n")
		for _, t := range trending {
			sb.WriteString("- " + t + "\n")
		}
	}
	return sb.String()
}

// cleanJSON strips markdown fences if the model wraps its answer in ```json ... ```
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func trimLines(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func appendMissing(tags, extra []string) []string {
	have := make(map[string]bool, len(tags))
	for _, t := range tags {
		have[t] = true
	}
	for _, t := range extra {
		if !have[t] {
			tags = append(tags, t)
			have[t] = true
		}
	}
	return tags
}
