package script

import (
	"context"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// LLMClient is the text-completion backend. Swappable for tests.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// Prompt is one system+user exchange
type Prompt struct {
	System string
	User   string
	// Schema, when set, asks the model for JSON matching it
	Schema *Schema
}

// Schema is a named JSON schema for structured output
type Schema struct {
	Name        string
	Description string
	Definition  interface{}
}

// GenerateSchema reflects a JSON schema from a Go type, in the subset
// structured outputs accept
func GenerateSchema[T any]() interface{} {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// OpenAILLM implements LLMClient with the official openai-go SDK
type OpenAILLM struct {
	client      openai.Client
	model       string
	temperature float64
}

// NewOpenAILLM builds a chat-completions client
func NewOpenAILLM(apiKey, model string, temperature float64, opts ...option.RequestOption) (*OpenAILLM, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key missing; set openai_api_key or OPENAI_API_KEY")
	}
	if model == "" {
		return nil, errors.New("llm model is required")
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAILLM{
		client:      openai.NewClient(opts...),
		model:       model,
		temperature: temperature,
	}, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
	}
	if o.temperature > 0 {
		params.Temperature = openai.Float(o.temperature)
	}
	if prompt.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        prompt.Schema.Name,
					Description: openai.String(prompt.Schema.Description),
					Schema:      prompt.Schema.Definition,
					Strict:      openai.Bool(true),
				},
			},
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("openai returned empty response. Finish reason: %s", resp.Choices[0].FinishReason)
	}
	return content, nil
}
