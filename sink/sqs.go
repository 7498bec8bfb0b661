package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"newsdesk/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSAPI is the subset of the SQS client used by the sender.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQS publishes events to a queue.
type SQS struct {
	queueURL string
	client   SQSAPI
}

// NewSQS loads AWS config. Static credentials are used when both keys are
// set; otherwise the default chain applies.
func NewSQS(ctx context.Context, cfg config.SQSConfig) (*SQS, error) {
	if cfg.QueueURL == "" {
		return nil, fmt.Errorf("sqs queue url is required")
	}
	opts := []func(*awscfg.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awscfg.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		opts = append(opts, awscfg.WithCredentialsProvider(creds))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSQSWithClient(sqs.NewFromConfig(awsCfg), cfg.QueueURL), nil
}

// NewSQSWithClient wraps an existing client.
func NewSQSWithClient(client SQSAPI, queueURL string) *SQS {
	return &SQS{queueURL: queueURL, client: client}
}

func (s *SQS) Name() string { return "sqs" }

func (s *SQS) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	attrs := map[string]sqstypes.MessageAttributeValue{}
	for name, v := range map[string]string{"kind": evt.Kind, "brand": evt.News.Brand} {
		if v != "" {
			attrs[name] = sqstypes.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
		}
	}
	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(s.queueURL),
		MessageBody:       aws.String(string(payload)),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("send message to sqs: %w", err)
	}
	return nil
}

func (s *SQS) Close() error { return nil }
