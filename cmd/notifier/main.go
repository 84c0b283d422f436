package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"microbus/internal/notifier"
	"microbus/pkg/client"
	"microbus/pkg/config"
	"microbus/pkg/kafka"
	kafka_config "microbus/pkg/kafka/config"
)

const ServiceName = "notifier"

func main() {
	cfg := config.LoadWorker(ServiceName)

	cfg.Log.Info("Starting Notifier worker", "gateway", cfg.NotifierURL)

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	dispatcher := notifier.NewDispatcher(client.NewHttpClient(cfg.NotifierURL), cfg.Log)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.NotificationsTopic,
		cfg.NotifierConsumerGroup,
		cfg.NotificationsDLQTopic,
		dispatcher.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Consuming notifications",
		"topic", cfg.NotificationsTopic,
		"group", cfg.NotifierConsumerGroup,
	)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}

	cfg.Log.Info("Notifier worker stopped")
}
