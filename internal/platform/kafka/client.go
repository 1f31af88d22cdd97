// Package kafka builds the franz-go client used for notifications and
// provisions its topic.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"efile/internal/platform/config"
)

// New returns a producer client for cfg. Records are acknowledged by all
// in-sync replicas and produced idempotently.
func New(cfg config.KafkaConfig, opts ...kgo.Opt) (*kgo.Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	base := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.NotificationTopic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(5 * time.Millisecond),
		kgo.RecordRetries(5),
	}
	cl, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return cl, nil
}

// Ping checks that at least one broker answers.
func Ping(ctx context.Context, cl *kgo.Client) error {
	if err := cl.Ping(ctx); err != nil {
		return fmt.Errorf("kafka ping: %w", err)
	}
	return nil
}

// ProvisionResult reports what EnsureTopic did.
type ProvisionResult struct {
	Topic   string `json:"topic"`
	Created bool   `json:"created"`
}

// EnsureTopic creates the notification topic unless it already exists.
func EnsureTopic(ctx context.Context, cl *kgo.Client, cfg config.KafkaConfig) (ProvisionResult, error) {
	res := ProvisionResult{Topic: cfg.NotificationTopic}
	adm := kadm.NewClient(cl)
	resp, err := adm.CreateTopic(ctx, cfg.Partitions, cfg.ReplicationFactor, nil, cfg.NotificationTopic)
	if err != nil {
		return res, fmt.Errorf("create topic %s: %w", cfg.NotificationTopic, err)
	}
	switch {
	case resp.Err == nil:
		res.Created = true
	case errors.Is(resp.Err, kerr.TopicAlreadyExists):
	default:
		return res, fmt.Errorf("create topic %s: %w", cfg.NotificationTopic, resp.Err)
	}
	return res, nil
}
