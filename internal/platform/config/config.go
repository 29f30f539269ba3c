// Package config builds runtime configuration from environment variables so
// main stays lean. Every knob has a development default; production deploys
// override through the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"railguard/pkg/domain"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
}

// Postgres holds the ledger database configuration. An empty DSN selects the
// in-memory ledger (development and tests).
type Postgres struct {
	DSN string
}

// Redis holds the kill-switch marker cache configuration. An empty URL
// disables the cache.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka holds audit stream configuration. Empty brokers disable publishing;
// outbox rows then accumulate until a publisher is attached.
type Kafka struct {
	Brokers    []string
	AuditTopic string
}

// Gateway holds Stellar contract gateway configuration. Disabled when the
// signer seed is empty; ledger operations then settle locally only.
type Gateway struct {
	HorizonURL        string
	NetworkPassphrase string
	SignerSeed        string
	ConfirmInterval   time.Duration
	ConfirmTimeout    time.Duration
}

// FeeSchedule configures how rail fees are computed. The schedule is
// configuration, never a hard-coded constant.
type FeeSchedule struct {
	FeeBps         domain.BasisPoints
	MinFee         domain.Amount
	StakerShareBps domain.BasisPoints
}

// StakeLimits bound the spending limit accepted by the stake ledger.
type StakeLimits struct {
	Min domain.Amount
	Max domain.Amount
}

// Config is the root configuration object.
type Config struct {
	Server      Server
	Postgres    Postgres
	Redis       Redis
	Kafka       Kafka
	Gateway     Gateway
	FeeSchedule FeeSchedule
	StakeLimits StakeLimits
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:          envOr("RAILGUARD_ADDR", ":8080"),
			JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     envOr("JWT_ISSUER", "railguard"),
		},
		Postgres: Postgres{
			DSN: os.Getenv("POSTGRES_DSN"),
		},
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers:    splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: envOr("KAFKA_AUDIT_TOPIC", "railguard.audit"),
		},
		Gateway: Gateway{
			HorizonURL:        envOr("HORIZON_URL", "https://horizon-testnet.stellar.org"),
			NetworkPassphrase: envOr("NETWORK_PASSPHRASE", "Test SDF Network ; September 2015"),
			SignerSeed:        os.Getenv("GATEWAY_SIGNER_SEED"),
			ConfirmInterval:   envDuration("GATEWAY_CONFIRM_INTERVAL", time.Second),
			ConfirmTimeout:    envDuration("GATEWAY_CONFIRM_TIMEOUT", 30*time.Second),
		},
		FeeSchedule: FeeSchedule{
			FeeBps:         domain.BasisPoints(envInt("FEE_BPS", 10)),
			MinFee:         domain.Amount(envInt64("MIN_FEE", 8_800_000)),
			StakerShareBps: domain.BasisPoints(envInt("STAKER_SHARE_BPS", 8800)),
		},
		StakeLimits: StakeLimits{
			Min: domain.Amount(envInt64("STAKE_LIMIT_MIN", 1_000_000)),
			Max: domain.Amount(envInt64("STAKE_LIMIT_MAX", 100_000_000)),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
