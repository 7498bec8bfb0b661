package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"newsdesk/apperr"

	"github.com/go-resty/resty/v2"
)

// DefaultDashScopeURL is the native DashScope text-generation endpoint.
const DefaultDashScopeURL = "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation"

// DashScope calls Qwen models through the native DashScope HTTP API.
type DashScope struct {
	client      *resty.Client
	endpoint    string
	model       string
	temperature float64
	topP        float64
}

type dashScopeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type dashScopeRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []dashScopeMessage `json:"messages"`
	} `json:"input"`
	Parameters struct {
		ResultFormat string  `json:"result_format"`
		Temperature  float64 `json:"temperature"`
		TopP         float64 `json:"top_p"`
	} `json:"parameters"`
}

type dashScopeResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Output    struct {
		Text    string `json:"text"`
		Choices []struct {
			Message dashScopeMessage `json:"message"`
		} `json:"choices"`
	} `json:"output"`
}

// NewDashScope builds a DashScope backend. An empty endpoint uses DefaultDashScopeURL.
func NewDashScope(apiKey, endpoint, model string, temperature, topP float64) (*DashScope, error) {
	if strings.TrimSpace(apiKey) == "" || strings.HasPrefix(apiKey, "sk-xxxx") {
		return nil, fmt.Errorf("dashscope api key is missing")
	}
	if endpoint == "" {
		endpoint = DefaultDashScopeURL
	}
	c := resty.New().
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")
	return &DashScope{client: c, endpoint: endpoint, model: model, temperature: temperature, topP: topP}, nil
}

func (d *DashScope) Name() string { return "dashscope/" + d.model }

func (d *DashScope) Complete(ctx context.Context, system, user string) (string, error) {
	var req dashScopeRequest
	req.Model = d.model
	req.Input.Messages = []dashScopeMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
	req.Parameters.ResultFormat = "message"
	req.Parameters.Temperature = d.temperature
	req.Parameters.TopP = d.topP

	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(req).
		Post(d.endpoint)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", apperr.New(apperr.KindUpstreamModel, "dashscope", d.model, err)
	}

	var out dashScopeResponse
	decodeErr := json.Unmarshal(resp.Body(), &out)

	if resp.IsError() {
		msg := out.Message
		if msg == "" {
			msg = out.Code
		}
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return "", apperr.New(apperr.KindUpstreamModel, "dashscope", d.model,
			fmt.Errorf("status %d: %s", resp.StatusCode(), msg))
	}
	if decodeErr != nil {
		return "", apperr.New(apperr.KindUpstreamModel, "dashscope", d.model,
			fmt.Errorf("decode response: %w", decodeErr))
	}
	// DashScope can report failures inside a 200 body.
	if out.Code != "" && out.Code != "200" && out.Message != "" {
		return "", apperr.New(apperr.KindUpstreamModel, "dashscope", d.model,
			fmt.Errorf("%s: %s", out.Code, out.Message))
	}

	if len(out.Output.Choices) > 0 {
		return out.Output.Choices[0].Message.Content, nil
	}
	return out.Output.Text, nil
}
