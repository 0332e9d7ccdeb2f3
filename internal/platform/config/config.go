package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration so main stays lean. Stores are
// selected by presence: an empty PostgresDSN means in-memory stores, an empty
// RedisURL disables the score cache, empty KafkaBrokers disables the Kafka
// audit sink.
type Server struct {
	Addr            string
	JWTSigningKey   string
	JWTIssuer       string
	PostgresDSN     string
	RedisURL        string
	KafkaBrokers    []string
	AuditTopic      string
	ScoreCacheTTL   time.Duration
	ShutdownTimeout time.Duration
}

// RedisConfig tunes the optional Redis connection.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:            envOr("REPUTE_ADDR", ":8080"),
		JWTSigningKey:   envOr("REPUTE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:       envOr("REPUTE_JWT_ISSUER", "repute"),
		PostgresDSN:     os.Getenv("REPUTE_POSTGRES_DSN"),
		RedisURL:        os.Getenv("REPUTE_REDIS_URL"),
		AuditTopic:      envOr("REPUTE_AUDIT_TOPIC", "repute.audit"),
		ScoreCacheTTL:   30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
	if brokers := os.Getenv("REPUTE_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

// Redis derives the Redis connection settings from the server config.
func (s Server) Redis() RedisConfig {
	return RedisConfig{
		URL:          s.RedisURL,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
