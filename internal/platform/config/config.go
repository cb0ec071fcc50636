// Package config loads process configuration from environment variables so
// main stays lean. A missing JWT signing key is fatal: the process refuses to
// start rather than sign tokens with a default secret.
package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr string `env:"ZONEGATE_ADDR" envDefault:":8080"`

	JWT      JWT      `envPrefix:"JWT_"`
	Zones    Zones    `envPrefix:"ZONE_"`
	Redis    Redis    `envPrefix:"REDIS_"`
	Postgres Postgres `envPrefix:"DB_"`
	Audit    Audit    `envPrefix:"AUDIT_"`
}

// JWT configures token signing and claim metadata.
type JWT struct {
	SigningKey string `env:"SIGNING_KEY"`
	Issuer     string `env:"ISSUER" envDefault:"zonegate"`
	Audience   string `env:"AUDIENCE" envDefault:"zonegate"`
}

// Zones carries the deployment knobs of the zone guard and resolver.
type Zones struct {
	// EnforceOnboarding bounces app-zone requests with unfinished
	// onboarding back into the onboarding flow. Off by default.
	EnforceOnboarding bool `env:"ENFORCE_ONBOARDING" envDefault:"false"`
	// DenylistEnabled turns on the out-of-band revocation check for
	// bearer tokens. Requires Redis. Off by default.
	DenylistEnabled bool `env:"DENYLIST_ENABLED" envDefault:"false"`
}

// Redis configures the optional Redis backend for web sessions and the
// denylist. An empty URL means Redis is not configured and in-memory stores
// are used instead.
type Redis struct {
	URL          string        `env:"URL"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
}

// Postgres configures the optional identity database. An empty URL falls back
// to the in-memory identity store.
type Postgres struct {
	URL string `env:"URL"`
}

// Audit configures the optional Kafka audit sink. No brokers means audit
// events stay in the in-memory store only.
type Audit struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"KAFKA_TOPIC" envDefault:"zonegate.audit"`
}

// Load builds a Server config from the environment, reading a .env file first
// when present. Validation failures here are configuration faults surfaced at
// startup, never per-request.
func Load() (Server, error) {
	// Missing .env is fine; real deployments set variables directly.
	_ = godotenv.Load()

	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, err
	}
	if cfg.JWT.SigningKey == "" {
		return Server{}, errors.New("JWT_SIGNING_KEY is required")
	}
	return cfg, nil
}
