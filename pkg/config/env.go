package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort       = "PORT"
	EnvLogLevel   = "LOG_LEVEL"
	EnvLogFormat  = "LOG_FORMAT"
	EnvLogBackend = "LOG_BACKEND"

	EnvStoreBackend  = "STORE_BACKEND"
	EnvRoomsSeedFile = "ROOMS_SEED_FILE"

	EnvLockBackend   = "LOCK_BACKEND"
	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"
	EnvRoomLockTTL   = "ROOM_LOCK_TTL"
	EnvRoomLockWait  = "ROOM_LOCK_WAIT"

	EnvBookingMaxRetries = "BOOKING_MAX_RETRIES"

	EnvNotifierBackend       = "NOTIFIER_BACKEND"
	EnvKafkaBookingsTopic    = "KAFKA_BOOKINGS_TOPIC"
	EnvKafkaBookingsDLQTopic = "KAFKA_BOOKINGS_DLQ_TOPIC"
	EnvKafkaConsumerGroup    = "KAFKA_NOTIFICATIONS_GROUP"
	EnvNotifyTimeout         = "NOTIFY_TIMEOUT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout     = "REQUEST_TIMEOUT"
	EnvIdempotencyBackend = "IDEMPOTENCY_BACKEND"
	EnvIdempotencyTTL     = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize     = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
