package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"helfy-server/internal/cdc"
	"helfy-server/internal/shared/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	appLogger := logger.NewLogger().WithComponent("cdc_consumer")

	cfg, err := cdc.LoadConfig()
	if err != nil {
		appLogger.Fatalf("Failed to load consumer configuration: %v", err)
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		appLogger.Fatalf("Failed to create event logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cdc.WaitForBroker(ctx, cfg); err != nil {
		appLogger.Fatalf("Kafka broker unreachable: %v", err)
	}
	appLogger.Infof("Connected to Kafka, consuming topic %s", cfg.Topic)

	consumer := cdc.NewConsumer(cfg, zapLogger)
	defer consumer.Close()

	if err := consumer.Run(ctx); err != nil {
		appLogger.Fatalf("Consumer stopped with error: %v", err)
	}
	appLogger.Info("Consumer stopped")
}
