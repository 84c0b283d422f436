package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "microbus"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultTokenTTL       = 24 * time.Hour
	DefaultPinBucketWidth = 5 * time.Minute
	DefaultCORSOrigin     = "http://localhost:5173"

	DefaultNotifierURL           = "http://localhost:8083"
	DefaultNotificationsTopic    = "notifications"
	DefaultNotificationsDLQTopic = "notifications-dlq"
	DefaultNotifierConsumerGroup = "notifier"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultAccessLogLimit = 20
)
