package extraction

import (
	"context"
	"errors"
	"fmt"

	"newsdesk/apperr"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI calls any OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
	topP        float32
}

// NewOpenAI builds an OpenAI backend. baseURL is optional and lets the same
// client talk to compatible gateways such as DashScope's compatible mode.
func NewOpenAI(apiKey, baseURL, model string, temperature, topP float64) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is missing")
	}
	var c *openai.Client
	if baseURL != "" {
		cc := openai.DefaultConfig(apiKey)
		cc.BaseURL = baseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(apiKey)
	}
	return &OpenAI{client: c, model: model, temperature: float32(temperature), topP: float32(topP)}, nil
}

func (o *OpenAI) Name() string { return "openai/" + o.model }

func (o *OpenAI) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: o.temperature,
		TopP:        o.topP,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", apperr.New(apperr.KindUpstreamModel, "openai", o.model,
				fmt.Errorf("status %d: %s", apiErr.HTTPStatusCode, apiErr.Message))
		}
		return "", apperr.New(apperr.KindUpstreamModel, "openai", o.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
