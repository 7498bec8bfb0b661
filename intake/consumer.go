// Package intake consumes work requests from Kafka and feeds them into the
// pipeline.
package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"newsdesk/logging"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// MessageHandler processes one message value. shouldMark controls whether
// the offset is committed. Returning false rewinds the partition to that
// message and ends the claim, so it is redelivered when the session rejoins.
type MessageHandler interface {
	HandleMessage(ctx context.Context, message []byte) (shouldMark bool, err error)
}

// DefaultRetryBackoff is how long a claim waits after an unmarked message
// before giving the partition back.
const DefaultRetryBackoff = 5 * time.Second

// Consumer runs a consumer group over one topic.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	topic   string
	groupID string
	backoff time.Duration
	log     *zap.Logger
}

// ConsumerConfig holds Kafka consumer configuration
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Handler MessageHandler
	// RetryBackoff defaults to DefaultRetryBackoff.
	RetryBackoff time.Duration
}

// NewConsumer joins the consumer group.
func NewConsumer(cfg ConsumerConfig, log *zap.Logger) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, err
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = DefaultRetryBackoff
	}
	return &Consumer{
		group:   group,
		handler: cfg.Handler,
		topic:   cfg.Topic,
		groupID: cfg.GroupID,
		backoff: backoff,
		log:     logging.OrNop(log),
	}, nil
}

// Start consumes in the background until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	h := &groupHandler{handler: c.handler, backoff: c.backoff, log: c.log}
	go func() {
		for {
			if err := c.group.Consume(ctx, []string{c.topic}, h); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) || errors.Is(err, context.Canceled) {
					return
				}
				c.log.Error("kafka consume", zap.Error(err))
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
	go func() {
		for err := range c.group.Errors() {
			c.log.Error("kafka consumer error", zap.Error(err))
		}
	}()
	c.log.Info("kafka consumer started", zap.String("group", c.groupID), zap.String("topic", c.topic))
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

// groupHandler implements sarama.ConsumerGroupHandler.
type groupHandler struct {
	handler MessageHandler
	backoff time.Duration
	log     *zap.Logger
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}
			h.log.Debug("kafka message",
				zap.Int32("partition", message.Partition),
				zap.Int64("offset", message.Offset),
				zap.ByteString("key", message.Key))

			shouldMark, err := h.handler.HandleMessage(session.Context(), message.Value)
			if err != nil {
				h.log.Warn("message handling failed", zap.Int64("offset", message.Offset), zap.Error(err))
			}
			if shouldMark {
				session.MarkMessage(message, "")
				continue
			}
			// A later MarkMessage on this partition would commit past the
			// failed offset. Rewind and stop; sarama ends the session when a
			// claim returns and the next Consume resumes from here.
			session.ResetOffset(message.Topic, message.Partition, message.Offset, "")
			h.wait(session.Context())
			if err == nil {
				err = errors.New("message not marked")
			}
			return fmt.Errorf("partition %d offset %d left for redelivery: %w", message.Partition, message.Offset, err)
		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *groupHandler) wait(ctx context.Context) {
	if h.backoff <= 0 {
		return
	}
	t := time.NewTimer(h.backoff)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// TypedMessageHandler decodes JSON messages into T before processing.
type TypedMessageHandler[T any] struct {
	// Validate rejects messages that should not be processed.
	Validate func(msg *T) bool
	Process  func(ctx context.Context, msg *T) error
	// AlwaysMark commits undecodable or invalid messages so they are not redelivered.
	AlwaysMark bool
}

func (h *TypedMessageHandler[T]) HandleMessage(ctx context.Context, message []byte) (bool, error) {
	var msg T
	if err := json.Unmarshal(message, &msg); err != nil {
		return h.AlwaysMark, err
	}
	if h.Validate != nil && !h.Validate(&msg) {
		return h.AlwaysMark, nil
	}
	if err := h.Process(ctx, &msg); err != nil {
		return false, err
	}
	return true, nil
}
