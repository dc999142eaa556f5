// Package events streams accepted region changes to Kafka for downstream
// analytics. Publishing is best-effort: a broker hiccup is logged and the
// record dropped, never surfaced to the monitor.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"roam/internal/monitor"
)

// RegionChangeRecord is the wire form of one accepted region change.
type RegionChangeRecord struct {
	ID             string    `json:"id"`
	PreviousRegion string    `json:"previousRegion,omitempty"`
	Region         string    `json:"region"`
	Timestamp      time.Time `json:"timestamp"`
}

// Publisher produces region-change records to a single topic.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// New connects to the brokers and ensures the topic exists. An existing topic
// is not an error.
func New(ctx context.Context, brokers []string, topic string, opts ...Option) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	p := &Publisher{
		client: client,
		topic:  topic,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := p.ensureTopic(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return p, nil
}

func (p *Publisher) ensureTopic(ctx context.Context) error {
	adm := kadm.NewClient(p.client)
	resp, err := adm.CreateTopics(ctx, 1, 1, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", p.topic, r.Err)
		}
	}
	return nil
}

// PublishRegionChange produces one record, keyed by region so per-region
// ordering is preserved across partitions if the topic ever grows.
func (p *Publisher) PublishRegionChange(ctx context.Context, change monitor.RegionChange) error {
	record := RegionChangeRecord{
		ID:             uuid.NewString(),
		PreviousRegion: change.Previous,
		Region:         change.Region,
		Timestamp:      change.Timestamp,
	}
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal region change: %w", err)
	}

	res := p.client.ProduceSync(ctx, &kgo.Record{
		Topic: p.topic,
		Key:   []byte(change.Region),
		Value: value,
	})
	if err := res.FirstErr(); err != nil {
		return fmt.Errorf("produce region change: %w", err)
	}
	return nil
}

// Close flushes and releases the client.
func (p *Publisher) Close() {
	p.client.Close()
}
