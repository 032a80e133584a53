package main

import (
	"roombook/internal/bookings/handler"
	"roombook/internal/bookings/notifier"
	"roombook/internal/bookings/repository"
	"roombook/internal/bookings/service"
	"roombook/internal/bookings/validator"
	"roombook/pkg/app"
	"roombook/pkg/clock"
	"roombook/pkg/config"
	"roombook/pkg/kafka"
	kafka_config "roombook/pkg/kafka/config"
	kafka_middleware "roombook/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	// Log all configuration values
	cfg.LogConfiguration()

	if cfg.NeedsMongo() {
		cfg.SetMongo()
	}
	if cfg.NeedsRedis() {
		cfg.SetRedis()
	}

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg)

	bookingValidator := validator.NewBookingValidator(cfg.Log)
	store := initStore(cfg, bookingValidator)
	bookingNotifier := initNotifier(cfg, serverApp)
	bookingService := service.NewBookingService(
		store,
		initLocker(cfg),
		bookingNotifier,
		clock.System{},
		cfg,
	)

	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, bookingValidator, cfg.Log),
		handler.NewHealthHandler(store, cfg.Log),
	)
	serverApp.OnShutdown(cfg.GracefulShutdown)
	serverApp.Run()
}

func initStore(cfg *config.Config, v *validator.BookingValidator) repository.RoomStore {
	if cfg.StoreBackend == config.StoreMongo {
		cfg.Log.Info("Room store initialized", "backend", cfg.StoreBackend, "database", cfg.MongoDatabaseName)
		return repository.NewMongoRoomStore(cfg)
	}

	rooms, err := repository.LoadRoomSeeds(cfg.RoomsSeedFile, v)
	if err != nil {
		cfg.Log.Fatal("Failed to load room seeds", "file", cfg.RoomsSeedFile, "error", err)
	}
	cfg.Log.Info("Room store initialized", "backend", cfg.StoreBackend, "rooms", len(rooms))
	return repository.NewMemoryRoomStore(rooms...)
}

func initLocker(cfg *config.Config) repository.RoomLocker {
	cfg.Log.Info("Room locker initialized", "backend", cfg.LockBackend, "ttl", cfg.RoomLockTTL, "wait", cfg.RoomLockWait)

	switch cfg.LockBackend {
	case config.LockRedis:
		return repository.NewRedisRoomLocker(cfg.Client.Redis, "", cfg.RoomLockTTL, cfg.RoomLockWait, cfg.Log)
	case config.LockMongo:
		return repository.NewMongoRoomLocker(cfg)
	case config.LockNone:
		cfg.Log.Warn("Room locking disabled, relying on versioned saves only")
		return repository.NewNoopRoomLocker()
	default:
		return repository.NewLocalRoomLocker()
	}
}

func initNotifier(cfg *config.Config, serverApp *app.Application) notifier.Notifier {
	if cfg.NotifierBackend != config.NotifierKafka {
		return notifier.NewLogNotifier(cfg.Log)
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaBookingsTopic, cfg.KafkaBookingsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	metrics := &kafka_middleware.Metrics{}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(metrics.ProducerMiddleware())
	}

	serverApp.OnShutdown(func() {
		cfg.Log.Info("Kafka producer metrics", "metrics", metrics)
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	cfg.Log.Info("Booking events published to Kafka", "topic", cfg.KafkaBookingsTopic)
	// Log as well so a broker outage never hides a confirmation entirely.
	return notifier.Multi{
		notifier.NewKafkaNotifier(producer, ServiceName, cfg.NotifyTimeout),
		notifier.NewLogNotifier(cfg.Log),
	}
}
