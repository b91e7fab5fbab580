package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	AuditFile       string        `env:"AUDIT_FILE"`

	Database Database
	Poll     Poll
	RabbitMQ RabbitMQ
	Redis    Redis
}

// Database holds database configuration.
type Database struct {
	// Driver is database/sql driver name, postgres (lib/pq) or pgx.
	Driver       string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	URL          string `env:"DATABASE_URL,required"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	EnsureSchema bool   `env:"DATABASE_ENSURE_SCHEMA" envDefault:"false"`
}

// Poll holds external dataset poller configuration.
type Poll struct {
	DatasetURL string `env:"POLL_DATASET_URL,required"`
	APIToken   string `env:"POLL_API_TOKEN"`
	// Interval of scheduled polls, scheduling is disabled when zero.
	Interval          time.Duration `env:"POLL_INTERVAL" envDefault:"0s"`
	HTTPTimeout       time.Duration `env:"POLL_HTTP_TIMEOUT" envDefault:"10s"`
	Timeout           time.Duration `env:"POLL_TIMEOUT" envDefault:"2m"`
	RunTTL            time.Duration `env:"POLL_RUN_TTL" envDefault:"15m"`
	RequestsPerMinute int           `env:"POLL_REQUESTS_PER_MINUTE" envDefault:"30"`
}

// RabbitMQ holds RabbitMQ configuration. Poll commands aren't consumed when URL is empty.
type RabbitMQ struct {
	URL        string `env:"RABBITMQ_URL"`
	Exchange   string `env:"RABBITMQ_EXCHANGE" envDefault:"webhook-ingest-ex"`
	Queue      string `env:"RABBITMQ_QUEUE" envDefault:"webhook-ingest.commands"`
	RoutingKey string `env:"RABBITMQ_ROUTING_KEY" envDefault:"webhook-ingest.poll"`
}

// Redis holds Redis audit configuration. Payloads aren't recorded in Redis when Addr is empty.
type Redis struct {
	Addr        string        `env:"REDIS_ADDR"`
	AuditPrefix string        `env:"REDIS_AUDIT_PREFIX" envDefault:"webhook-ingest:audit:"`
	AuditTTL    time.Duration `env:"REDIS_AUDIT_TTL" envDefault:"24h"`
}

// Load loads optional dotenv files (.env by default) into environment and parses Config from it.
// Variables already present in environment aren't overridden.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("can't load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("can't parse env variables: %w", err)
	}

	return cfg, nil
}
