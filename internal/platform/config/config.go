package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. Values come from the
// environment so main stays lean; defaults suit local development.
type Server struct {
	Addr          string
	DatabaseURL   string
	Redis         RedisConfig
	KafkaBrokers  []string
	AuditTopic    string
	JWTSigningKey string

	// LockWaitBudget bounds the sequence generator's wait for the per-day
	// counter row. Exceeding it surfaces as a transient concurrency_timeout.
	LockWaitBudget time.Duration
	// DispatchBudget bounds the whole dispatch transaction (number +
	// protocol + module record).
	DispatchBudget time.Duration
	// SLARefreshInterval drives the background overdue recomputation loop.
	SLARefreshInterval time.Duration
	// WorkflowCacheTTL bounds staleness of cached workflow definitions.
	WorkflowCacheTTL time.Duration
}

// RedisConfig configures the optional workflow definition cache.
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
		Addr:               envDefault("CIVICDESK_ADDR", ":8080"),
		DatabaseURL:        os.Getenv("CIVICDESK_DATABASE_URL"),
		AuditTopic:         envDefault("CIVICDESK_AUDIT_TOPIC", "civicdesk.protocol-events"),
		JWTSigningKey:      envDefault("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		LockWaitBudget:     envDuration("CIVICDESK_LOCK_WAIT_BUDGET", 10*time.Second),
		DispatchBudget:     envDuration("CIVICDESK_DISPATCH_BUDGET", 30*time.Second),
		SLARefreshInterval: envDuration("CIVICDESK_SLA_REFRESH_INTERVAL", 15*time.Minute),
		WorkflowCacheTTL:   envDuration("CIVICDESK_WORKFLOW_CACHE_TTL", 5*time.Minute),
		Redis: RedisConfig{
			URL:          os.Getenv("CIVICDESK_REDIS_URL"),
			PoolSize:     envInt("CIVICDESK_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("CIVICDESK_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("CIVICDESK_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("CIVICDESK_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("CIVICDESK_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
	if brokers := os.Getenv("CIVICDESK_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
