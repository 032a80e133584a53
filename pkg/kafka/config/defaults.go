package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"

	// Book and CancelBooking publish inline after the room is saved, so the
	// batch timeout is request latency. kafka-go's own default is a second.
	DefaultProducerBatchTimeout = 5 * time.Millisecond
	DefaultProducerMaxAttempts  = 3
	// A confirmation that only reached the leader can vanish on failover.
	DefaultProducerRequireAcks = -1
	// Events are a few hundred bytes of JSON, sent one at a time.
	DefaultProducerCompression = "none"

	// A fresh consumer group must not replay the topic and resend every
	// confirmation ever issued.
	DefaultConsumerStartOffset = "newest"
	DefaultConsumerMaxWait     = 250 * time.Millisecond
	// Backoff doubles from 100ms, so three retries finish within a second.
	DefaultConsumerMaxRetries = 3

	DefaultEnableMiddleware = true
)
