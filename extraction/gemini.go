package extraction

import (
	"context"
	"errors"
	"fmt"

	"newsdesk/apperr"

	"google.golang.org/genai"
)

// Gemini calls Google's Gemini API in JSON response mode.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
	topP        float32
}

// NewGemini builds a Gemini backend.
func NewGemini(ctx context.Context, apiKey, baseURL, model string, temperature, topP float64) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions.BaseURL = baseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model, temperature: float32(temperature), topP: float32(topP)}, nil
}

func (g *Gemini) Name() string { return "gemini/" + g.model }

func (g *Gemini) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(user), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
		TopP:              genai.Ptr(g.topP),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", apperr.New(apperr.KindUpstreamModel, "gemini", g.model,
				fmt.Errorf("status %d: %s", apiErr.Code, apiErr.Message))
		}
		return "", apperr.New(apperr.KindUpstreamModel, "gemini", g.model, err)
	}
	return resp.Text(), nil
}
