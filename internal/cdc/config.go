package cdc

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds the Kafka consumer configuration.
type Config struct {
	Brokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	Topic   string   `env:"KAFKA_TOPIC" envDefault:"helfy.cdc"`
	GroupID string   `env:"KAFKA_GROUP_ID" envDefault:"helfy-cdc-logger"`

	// Broker readiness gate
	ConnectAttempts int           `env:"KAFKA_CONNECT_ATTEMPTS" envDefault:"10"`
	ConnectInterval time.Duration `env:"KAFKA_CONNECT_INTERVAL" envDefault:"3s"`
}

// LoadConfig loads consumer configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load consumer configuration: " + err.Error())
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka_brokers must not be empty")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka_topic must not be empty")
	}
	return cfg, nil
}
