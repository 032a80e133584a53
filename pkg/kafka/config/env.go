package kafka_config

// Environment variables read by Load. Anything not listed here is fixed in
// the producer and consumer because booking events are small and steady.
const (
	EnvKafkaBrokers = "KAFKA_BROKERS"

	// Booking service side: one event per committed booking or cancellation.
	EnvKafkaProducerMaxAttempts  = "KAFKA_PRODUCER_MAX_ATTEMPTS"
	EnvKafkaProducerBatchTimeout = "KAFKA_PRODUCER_BATCH_TIMEOUT"
	EnvKafkaProducerRequireAcks  = "KAFKA_PRODUCER_REQUIRE_ACKS"
	EnvKafkaProducerCompression  = "KAFKA_PRODUCER_COMPRESSION"

	// Notifications worker side.
	EnvKafkaConsumerStartOffset = "KAFKA_CONSUMER_START_OFFSET" // "newest" or "oldest"
	EnvKafkaConsumerMaxWait     = "KAFKA_CONSUMER_MAX_WAIT"
	EnvKafkaConsumerMaxRetries  = "KAFKA_CONSUMER_MAX_RETRIES"

	EnvKafkaEnableMiddleware = "KAFKA_ENABLE_MIDDLEWARE"
)
