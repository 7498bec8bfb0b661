package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"newsdesk/apperr"
	"newsdesk/config"
	"newsdesk/types"
)

type fakeCompleter struct {
	reply  string
	err    error
	delay  time.Duration
	system string
	user   string
}

func (f *fakeCompleter) Name() string { return "fake" }

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

func newTestClient(model Completer, timeout time.Duration, policy string) *Client {
	c := New(model, config.ExtractionConfig{Timeout: timeout, BrandPolicy: policy}, nil)
	c.now = func() time.Time { return time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC) }
	return c
}

func TestExtractSuccess(t *testing.T) {
	model := &fakeCompleter{reply: "```json\n{\"title\":\"丰田发布新车\",\"brand\":\"Toyota\",\"type\":\"New Car Launch\",\"sentiment\":\"positive\"}\n```"}
	c := newTestClient(model, time.Second, "")

	rec, err := c.Extract(context.Background(), "  Toyota unveils a new SUV in Dubai.  ", []string{"Toyota 丰田", "Nissan 日产"})
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if rec.Brand != "Toyota 丰田" || rec.Type != types.NewsLaunch || rec.Date != "2025-03-10" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if model.user != "News Text: Toyota unveils a new SUV in Dubai." {
		t.Fatalf("user message = %q", model.user)
	}
	for _, want := range []string{"Toyota 丰田, Nissan 日产, Other", "Policy & Regulation", "positive, neutral, negative", "ONLY a single JSON object", "default: 2025-03-10"} {
		if !strings.Contains(model.system, want) {
			t.Fatalf("prompt missing %q:\n%s", want, model.system)
		}
	}
}

func TestExtractErrorKinds(t *testing.T) {
	upstream := apperr.New(apperr.KindUpstreamModel, "fake", "m", errors.New("quota exceeded"))
	tests := []struct {
		name     string
		model    *fakeCompleter
		wantKind apperr.Kind
		wantErr  error
	}{
		{"timeout", &fakeCompleter{reply: "{}", delay: time.Second}, apperr.KindTimeout, apperr.ErrTimeout},
		{"upstream", &fakeCompleter{err: upstream}, apperr.KindUpstreamModel, nil},
		{"unclassified transport", &fakeCompleter{err: errors.New("connection refused")}, apperr.KindUpstreamModel, nil},
		{"empty", &fakeCompleter{reply: "  \n"}, apperr.KindModelOutputInvalid, apperr.ErrEmptyContent},
		{"prose", &fakeCompleter{reply: "No news found."}, apperr.KindModelOutputInvalid, apperr.ErrUnparsableOutput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(tt.model, 50*time.Millisecond, "")
			_, err := c.Extract(context.Background(), "text", nil)
			if apperr.KindOf(err) != tt.wantKind {
				t.Fatalf("kind = %q (err %v); want %q", apperr.KindOf(err), err, tt.wantKind)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v; want wrapping %v", err, tt.wantErr)
			}
		})
	}
}

func TestExtractRejectsEmptyText(t *testing.T) {
	model := &fakeCompleter{reply: "{}"}
	c := newTestClient(model, time.Second, "")
	if _, err := c.Extract(context.Background(), "   ", nil); apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("err = %v", err)
	}
	if model.system != "" {
		t.Fatalf("model should not be called")
	}
}

func TestExtractBrandPolicy(t *testing.T) {
	model := &fakeCompleter{reply: `{"brand":"Zeekr"}`}
	known := []string{"Toyota 丰田"}

	rec, err := newTestClient(model, time.Second, config.BrandPolicyOther).Extract(context.Background(), "text", known)
	if err != nil || rec.Brand != types.BrandOther {
		t.Fatalf("other policy: %+v, %v", rec, err)
	}
	rec, err = newTestClient(model, time.Second, "").Extract(context.Background(), "text", known)
	if err != nil || rec.Brand != "Zeekr" {
		t.Fatalf("preserve policy: %+v, %v", rec, err)
	}
}
