// Package sink publishes promoted news records to downstream consumers.
package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"newsdesk/config"
	"newsdesk/logging"
	"newsdesk/types"

	"go.uber.org/zap"
)

// Event is the message emitted when a pending entry is promoted.
type Event struct {
	ID         string                  `json:"id"`
	Kind       string                  `json:"kind"`
	Source     string                  `json:"source"`
	PromotedAt time.Time               `json:"promoted_at"`
	News       types.ExtractedNewsData `json:"news"`
}

// Sink delivers events to one destination.
type Sink interface {
	Publish(ctx context.Context, evt Event) error
	Name() string
	Close() error
}

// Publisher fans an event out to every configured sink.
type Publisher struct {
	sinks []Sink
	log   *zap.Logger
}

// NewPublisher wraps sinks. A Publisher with no sinks accepts and drops events.
func NewPublisher(log *zap.Logger, sinks ...Sink) *Publisher {
	return &Publisher{sinks: sinks, log: logging.OrNop(log)}
}

// Open builds the sinks enabled in cfg.
func Open(ctx context.Context, cfg config.SinksConfig, log *zap.Logger) (*Publisher, error) {
	var sinks []Sink
	if len(cfg.Kafka.Brokers) > 0 {
		k, err := NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, fmt.Errorf("kafka sink: %w", err)
		}
		sinks = append(sinks, k)
	}
	if cfg.SQS.QueueURL != "" {
		q, err := NewSQS(ctx, cfg.SQS)
		if err != nil {
			for _, s := range sinks {
				_ = s.Close()
			}
			return nil, fmt.Errorf("sqs sink: %w", err)
		}
		sinks = append(sinks, q)
	}
	p := NewPublisher(log, sinks...)
	names := make([]string, len(sinks))
	for i, s := range sinks {
		names[i] = s.Name()
	}
	p.log.Info("promotion sinks ready", zap.Strings("sinks", names))
	return p, nil
}

// Len returns the number of sinks.
func (p *Publisher) Len() int { return len(p.sinks) }

// Publish sends evt to every sink and joins their errors.
func (p *Publisher) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, s := range p.sinks {
		if err := s.Publish(ctx, evt); err != nil {
			p.log.Error("publish failed", zap.String("sink", s.Name()), zap.String("id", evt.ID), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		p.log.Debug("published", zap.String("sink", s.Name()), zap.String("id", evt.ID))
	}
	return errors.Join(errs...)
}

func (p *Publisher) Close() error {
	var errs []error
	for _, s := range p.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
