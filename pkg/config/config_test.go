package config

import (
	"strings"
	"testing"
	"time"
)

func serverConfig() *Config {
	return &Config{
		MongoURI:          "mongodb://localhost:27017",
		MongoDatabaseName: "microbus",
		MongoConnTimeout:  10 * time.Second,
		Port:              "8080",
		JWTSecret:         "test-secret",
		TokenTTL:          24 * time.Hour,
		PinBucketWidth:    5 * time.Minute,
		RateLimitRequests: 10,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    30 * time.Second,
		IdempotencyTTL:    24 * time.Hour,
		MaxRequestSize:    1024,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   30 * time.Second,
		AccessLogLimit:    20,
	}
}

func TestValidate_AcceptsCompleteServerConfig(t *testing.T) {
	if err := serverConfig().Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestValidate_RequiresJWTSecret(t *testing.T) {
	cfg := serverConfig()
	cfg.JWTSecret = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing JWT secret")
	}
	if !strings.Contains(err.Error(), EnvJWTSecret) {
		t.Errorf("error %q does not name %s", err.Error(), EnvJWTSecret)
	}
}

func TestValidate_RejectsBadMongoURI(t *testing.T) {
	cfg := serverConfig()
	cfg.MongoURI = "http://localhost:27017"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-mongodb URI")
	}
}

func TestValidateWorker_DoesNotRequireServerSettings(t *testing.T) {
	// The worker has no HTTP surface and no Mongo client, so it must start
	// without JWT_SECRET, Mongo or server timeouts.
	cfg := &Config{
		NotifierURL:           "http://localhost:8083",
		NotificationsTopic:    "notifications",
		NotificationsDLQTopic: "notifications-dlq",
		NotifierConsumerGroup: "notifier",
	}

	if err := cfg.ValidateWorker(); err != nil {
		t.Fatalf("ValidateWorker returned error: %v", err)
	}
}

func TestValidateWorker_RequiresGatewayAndTopics(t *testing.T) {
	cfg := &Config{}

	err := cfg.ValidateWorker()
	if err == nil {
		t.Fatal("expected error for empty worker config")
	}
	for _, want := range []string{"NotifierURL", "NotificationsTopic", "NotificationsDLQTopic", "NotifierConsumerGroup"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %s", want)
		}
	}
}
