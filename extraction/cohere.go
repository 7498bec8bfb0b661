package extraction

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"

	"newsdesk/apperr"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// Cohere calls the Cohere chat endpoint.
type Cohere struct {
	client      *cohereclient.Client
	model       string
	temperature float64
}

// NewCohere builds a Cohere backend.
func NewCohere(apiKey, model string, temperature float64) (*Cohere, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("cohere api key is missing")
	}
	// Force HTTP/1.1; the Cohere edge has been flaky over HTTP/2.
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &Cohere{client: client, model: model, temperature: temperature}, nil
}

func (c *Cohere) Name() string { return "cohere/" + c.model }

func (c *Cohere) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message:     user,
		Model:       cohere.String(c.model),
		Preamble:    cohere.String(system),
		Temperature: cohere.Float64(c.temperature),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", apperr.New(apperr.KindUpstreamModel, "cohere", c.model, err)
	}
	return resp.Text, nil
}
