package config

import (
	"os"
	"strings"
	"time"

	platformstrings "donorlift/pkg/platform/strings"
)

// Config captures process-level configuration. All knobs come from the
// environment so main stays lean and containers stay 12-factor.
type Config struct {
	Addr          string
	DatabaseURL   string
	RedisURL      string
	KafkaBrokers  []string
	KafkaTopic    string
	JWTSigningKey string

	ShutdownTimeout time.Duration
}

// FromEnv builds a Config from environment variables, applying development
// defaults where a value is absent.
func FromEnv() Config {
	addr := os.Getenv("DONORLIFT_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if topic == "" {
		topic = "audit.events"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = platformstrings.DedupeAndTrim(strings.Split(raw, ","))
	}

	return Config{
		Addr:            addr,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		KafkaBrokers:    brokers,
		KafkaTopic:      topic,
		JWTSigningKey:   jwtSigningKey,
		ShutdownTimeout: 10 * time.Second,
	}
}
