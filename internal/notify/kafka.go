package notify

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer is the subset of *kgo.Client the dispatcher uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaDispatcher publishes messages as JSON records keyed by filing id, so
// notifications for one filing stay ordered within a partition.
type KafkaDispatcher struct {
	producer Producer
	topic    string
}

func NewKafkaDispatcher(producer Producer, topic string) *KafkaDispatcher {
	return &KafkaDispatcher{producer: producer, topic: topic}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, msg Message) error {
	msg = stamp(ctx, msg)
	value, err := encode(msg)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	rec := &kgo.Record{
		Topic: d.topic,
		Key:   []byte(msg.FilingID.String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "template", Value: []byte(msg.Template)},
		},
	}
	if err := d.producer.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce notification to %s: %w", d.topic, err)
	}
	return nil
}
