// Package kafka wraps the franz-go producer used for protocol event
// publishing.
package kafka

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer publishes records to a single topic.
type Producer struct {
	client *kgo.Client
	topic  string
}

// NewProducer connects to the brokers and ensures the topic exists.
// Returns nil if no brokers are configured (Kafka not enabled).
func NewProducer(ctx context.Context, brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	if _, err := adm.CreateTopic(ctx, 1, 1, nil, topic); err != nil {
		// Topic may already exist; only fail on connectivity problems.
		if _, pingErr := adm.ListTopics(ctx, topic); pingErr != nil {
			client.Close()
			return nil, fmt.Errorf("ensure topic %s: %w", topic, pingErr)
		}
	}

	return &Producer{client: client, topic: topic}, nil
}

// Publish produces one record asynchronously. The callback runs on the
// producer's network goroutine when the broker acks or the produce fails.
func (p *Producer) Publish(ctx context.Context, key, value []byte, onDone func(error)) {
	rec := &kgo.Record{Topic: p.topic, Key: key, Value: value}
	p.client.Produce(ctx, rec, func(_ *kgo.Record, err error) {
		if onDone != nil {
			onDone(err)
		}
	})
}

// PublishSync produces one record and waits for the broker ack.
func (p *Producer) PublishSync(ctx context.Context, key, value []byte) error {
	rec := &kgo.Record{Topic: p.topic, Key: key, Value: value}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes buffered records and releases the client.
func (p *Producer) Close() {
	p.client.Close()
}
