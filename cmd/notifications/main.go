package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"roombook/internal/bookings/notifier"
	"roombook/pkg/config"
	"roombook/pkg/kafka"
	kafka_config "roombook/pkg/kafka/config"
	kafka_middleware "roombook/pkg/kafka/middleware"
)

const ServiceName = "notifications"

// The notifications worker consumes booking events and delivers the
// confirmations. Delivery here is the structured log line; a real channel
// plugs in as another notifier.Notifier.
func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	dispatcher := notifier.NewDispatcher(notifier.NewLogNotifier(cfg.Log), cfg.Log)
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.KafkaBookingsTopic,
		cfg.KafkaConsumerGroup,
		cfg.KafkaBookingsDLQTopic,
		dispatcher.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	metrics := &kafka_middleware.Metrics{}
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(metrics.ConsumerMiddleware())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting notifications worker",
		"topic", cfg.KafkaBookingsTopic,
		"group", cfg.KafkaConsumerGroup,
	)
	runErr := consumer.Start(ctx)

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		// Exit non-zero so the supervisor restarts us and the uncommitted
		// message is fetched again.
		cfg.Log.Fatal("Consumer stopped with error", "error", runErr, "metrics", metrics)
	}
	cfg.Log.Info("Notifications worker stopped", "metrics", metrics)
}
