// Package events publishes recognition outcomes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"audiora/internal/observability/logging"
	"audiora/internal/observability/metrics"
)

// RecognitionEvent describes one upload handled by the gateway.
type RecognitionEvent struct {
	ID         string    `json:"id"`
	Song       string    `json:"song,omitempty"`
	Error      string    `json:"error,omitempty"`
	Bytes      int       `json:"bytes"`
	DurationMs int64     `json:"duration_ms"`
	At         time.Time `json:"at"`
}

// Config holds Kafka publisher configuration.
type Config struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes recognition events to a single topic, or only logs them
// when Kafka is disabled.
type Publisher struct {
	writer  messageWriter
	topic   string
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func New(cfg Config, m *metrics.Metrics) *Publisher {
	logger := logging.WithComponent("events")
	p := &Publisher{topic: cfg.Topic, metrics: m, logger: logger}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		logger.Info().Msg("Kafka disabled, using log-only mode")
		return p
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    &kafka.Transport{Dial: dialer.DialFunc},
	}

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Msg("Kafka publisher initialized")
	return p
}

// Enabled reports whether events reach Kafka.
func (p *Publisher) Enabled() bool {
	return p.writer != nil
}

// Publish writes event keyed by its id.
func (p *Publisher) Publish(ctx context.Context, event RecognitionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("topic", p.topic).Msg("failed to marshal event")
		return err
	}

	p.logger.Debug().
		Str("topic", p.topic).
		Str("key", event.ID).
		RawJSON("payload", payload).
		Msg("publishing recognition event")

	if p.writer == nil {
		p.metrics.RecordPublish(p.topic, nil)
		return nil
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte("recognition")},
		},
	})
	p.metrics.RecordPublish(p.topic, err)
	if err != nil {
		p.logger.Error().Err(err).Str("topic", p.topic).Str("key", event.ID).Msg("failed to write to Kafka")
		return err
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
