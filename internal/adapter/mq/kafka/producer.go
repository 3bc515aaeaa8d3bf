package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"sweeps-casino/config"
	"sweeps-casino/internal/core/ports"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

// Producer implements ports.EventPublisher on a sarama sync producer.
// Settlement events are keyed by round id so replays for one round stay on
// one partition.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	log      zerolog.Logger
}

// NewProducer connects a sync producer to the configured brokers.
func NewProducer(cfg config.KafkaConfig, log zerolog.Logger) (*Producer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 3
	saramaCfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Msg("Kafka producer established")

	return &Producer{producer: producer, topic: cfg.Topic, log: log}, nil
}

// newProducerWith wires an existing sarama producer (tests).
func newProducerWith(producer sarama.SyncProducer, topic string, log zerolog.Logger) *Producer {
	return &Producer{producer: producer, topic: topic, log: log}
}

// PublishRoundSettled emits one settlement event.
func (p *Producer) PublishRoundSettled(_ context.Context, event ports.RoundSettledEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal settlement event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.RoundID.String()),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send settlement event: %w", err)
	}

	p.log.Debug().
		Str("round_id", event.RoundID.String()).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("settlement event published")

	return nil
}

// Close shuts the underlying producer down.
func (p *Producer) Close() error {
	return p.producer.Close()
}
