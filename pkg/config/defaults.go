package config

import "time"

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	LockLocal = "local"
	LockRedis = "redis"
	LockMongo = "mongo"
	LockNone  = "none"

	NotifierKafka = "kafka"
	NotifierLog   = "log"

	IdempotencyMemory = "memory"
	IdempotencyRedis  = "redis"
)

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "roombook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort       = "8080"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	DefaultLogBackend = "std"

	DefaultStoreBackend  = StoreMongo
	DefaultRoomsSeedFile = "rooms.yaml"

	DefaultLockBackend  = LockLocal
	DefaultRedisAddr    = "localhost:6379"
	DefaultRedisDB      = 0
	DefaultRoomLockTTL  = 10 * time.Second
	DefaultRoomLockWait = 2 * time.Second

	DefaultBookingMaxRetries = 3

	DefaultNotifierBackend       = NotifierLog
	DefaultKafkaBookingsTopic    = "room-bookings"
	DefaultKafkaBookingsDLQTopic = "dlq-room-bookings"
	DefaultKafkaConsumerGroup    = "roombook-notifications"
	DefaultNotifyTimeout         = 3 * time.Second

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout     = 30 * time.Second
	DefaultIdempotencyBackend = IdempotencyMemory
	DefaultIdempotencyTTL     = 24 * time.Hour
	DefaultMaxRequestSize     = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
