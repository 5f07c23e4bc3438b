package cdc

import (
	"context"
	"errors"
	"fmt"

	"helfy-server/internal/shared/retry"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Consumer reads CDC messages from a Kafka topic and re-emits each one as
// a structured JSON log line. Processing is at-least-once and log-only;
// offsets are committed by the client library defaults.
type Consumer struct {
	reader *kafka.Reader
	log    *zap.Logger
}

// NewConsumer builds a consumer for the configured topic.
func NewConsumer(cfg *Config, log *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})

	return &Consumer{
		reader: reader,
		log:    log.Named("cdc"),
	}
}

// WaitForBroker blocks until a broker accepts a connection, bounded by the
// configured attempts and interval.
func WaitForBroker(ctx context.Context, cfg *Config) error {
	return retry.Do(ctx, retry.Config{
		Attempts: cfg.ConnectAttempts,
		Interval: cfg.ConnectInterval,
	}, func(ctx context.Context) error {
		conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers[0])
		if err != nil {
			return fmt.Errorf("broker not reachable: %w", err)
		}
		return conn.Close()
	})
}

// Run consumes until the context is cancelled. Normalization is total, so
// a malformed message produces a raw-wrapped log line instead of ending
// the loop; only reader-level errors stop consumption.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		record := Normalize(msg.Value)
		c.log.Info("cdc event", record.Fields()...)
	}
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
