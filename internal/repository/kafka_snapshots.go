// Package repository contains infrastructure-backed implementations of
// the domain repository interfaces.
package repository

import (
	"context"
	"fmt"
	"time"

	"DerivPulse/internal/domain/models"
	"DerivPulse/pkg/kafka"
)

// KafkaSnapshots publishes finished aggregation cycles to a Kafka topic.
// Messages are keyed by data kind so the backfill consumer sees each
// kind's snapshots in order.
type KafkaSnapshots struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaSnapshots creates the snapshot publisher.
func NewKafkaSnapshots(producer *kafka.Producer, topic string) (*KafkaSnapshots, error) {
	if topic == "" {
		return nil, fmt.Errorf("snapshot topic is required")
	}
	return &KafkaSnapshots{producer: producer, topic: topic}, nil
}

type snapshotEnvelope struct {
	Kind      models.Kind               `json:"kind"`
	Timestamp time.Time                 `json:"timestamp"`
	Data      []models.NormalizedRecord `json:"data"`
	Health    []models.SourceHealth     `json:"health"`
}

// PublishSnapshot sends one cycle's result to the snapshot topic.
func (s *KafkaSnapshots) PublishSnapshot(ctx context.Context, kind models.Kind, res *models.AggregationResult) error {
	env := snapshotEnvelope{
		Kind:      kind,
		Timestamp: time.Now().UTC(),
		Data:      res.Data,
		Health:    res.Health,
	}
	if err := s.producer.Publish(ctx, s.topic, []byte(kind), env); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// Close closes the underlying producer.
func (s *KafkaSnapshots) Close() error {
	return s.producer.Close()
}
