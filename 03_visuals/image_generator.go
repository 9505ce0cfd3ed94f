package visuals

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"reel-pipeline/config"
)

// ImageGenerator turns a prompt into encoded image bytes
type ImageGenerator interface {
	Name() string
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// NewGenerator picks the image provider named in the config
func NewGenerator(cfg *config.Config) (ImageGenerator, error) {
	switch cfg.Images.Provider {
	case "pollinations":
		return NewPollinationsFetcher(cfg.Render.Width, cfg.Render.Height), nil
	case "openai", "":
		return NewOpenAIImages(cfg.OpenAIAPIKey, cfg.Images)
	default:
		return nil, fmt.Errorf("unknown image provider %q", cfg.Images.Provider)
	}
}

// OpenAIImages generates images through the OpenAI Images API
type OpenAIImages struct {
	client  openai.Client
	model   string
	size    string
	quality string
}

// NewOpenAIImages creates the OpenAI-backed generator
func NewOpenAIImages(apiKey string, cfg config.ImagesConfig, opts ...option.RequestOption) (*OpenAIImages, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key missing; set openai_api_key or OPENAI_API_KEY")
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIImages{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		size:    cfg.Size,
		quality: cfg.Quality,
	}, nil
}

func (o *OpenAIImages) Name() string { return "openai" }

func (o *OpenAIImages) Generate(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := o.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:  prompt,
		Model:   openai.ImageModel(o.model),
		Size:    openai.ImageGenerateParamsSize(o.size),
		Quality: openai.ImageGenerateParamsQuality(o.quality),
		N:       openai.Int(1),
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI images error: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, errors.New("openai: no image data in response")
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	return data, nil
}
