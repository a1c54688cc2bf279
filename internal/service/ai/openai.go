package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
)

// OpenAIProvider implements Provider for the OpenAI API and compatible servers.
type OpenAIProvider struct {
	client      openai.Client
	name        string
	model       string
	endpoint    string // "responses" or "chat/completions"
	temperature float64
	maxTokens   int64
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg Config, name string) (*OpenAIProvider, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = EndpointChat
	}
	if endpoint != EndpointChat && endpoint != EndpointResponses {
		return nil, fmt.Errorf("unsupported endpoint %q", endpoint)
	}

	return &OpenAIProvider{
		client:      openai.NewClient(opts...),
		name:        name,
		model:       cfg.Model,
		endpoint:    endpoint,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Complete generates a response without streaming.
func (p *OpenAIProvider) Complete(ctx context.Context, systemPrompt, content string) (string, error) {
	var (
		text string
		err  error
	)
	if p.endpoint == EndpointResponses {
		text, err = p.completeWithResponses(ctx, systemPrompt, content)
	} else {
		text, err = p.completeWithChat(ctx, systemPrompt, content)
	}
	if err != nil {
		return "", wrapOpenAIError(err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (p *OpenAIProvider) completeWithChat(ctx context.Context, systemPrompt, content string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(content))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.model),
		Messages:    messages,
		Temperature: openai.Float(p.temperature),
		MaxTokens:   openai.Int(p.maxTokens),
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) completeWithResponses(ctx context.Context, systemPrompt, content string) (string, error) {
	inputItems := []responses.ResponseInputItemUnionParam{}
	if systemPrompt != "" {
		inputItems = append(inputItems, responses.ResponseInputItemParamOfMessage(systemPrompt, responses.EasyInputMessageRoleSystem))
	}
	inputItems = append(inputItems, responses.ResponseInputItemParamOfMessage(content, responses.EasyInputMessageRoleUser))

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(p.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam(inputItems),
		},
		Temperature:     openai.Float(p.temperature),
		MaxOutputTokens: openai.Int(p.maxTokens),
	}

	resp, err := p.client.Responses.New(ctx, params)
	if err != nil {
		return "", err
	}

	var result strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		msg := item.AsMessage()
		for _, part := range msg.Content {
			if part.Type == "output_text" {
				result.WriteString(part.Text)
			}
		}
	}
	return result.String(), nil
}

func wrapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if sentinel := classifyStatus(apiErr.StatusCode); sentinel != nil {
			return fmt.Errorf("%w: %v", sentinel, err)
		}
	}
	return err
}
