package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	liststr "callguard/pkg/platform/strings"
)

const (
	DefaultAddr                    = ":8080"
	DefaultCarrierScreeningTimeout = 2000 * time.Millisecond
	DefaultScreeningDeadline       = 4500 * time.Millisecond
	DefaultPipelineTimeout         = 5000 * time.Millisecond
	DefaultDecisionsTopic          = "callguard.filter-decisions"
)

// Server captures HTTP server level configuration. ServiceTokenKey checks
// inbound tokens; ScreenerTokenKey signs outbound screener requests and must
// differ from it.
type Server struct {
	Addr             string
	ServiceTokenKey  string
	ScreenerTokenKey string
	LogLevel         string
	LogFormat        string

	Screening  Screening
	Postgres   PostgresConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Identities string
}

// Screening holds the filtering time budgets and feature switches.
type Screening struct {
	CarrierTimeout       time.Duration
	Deadline             time.Duration
	PipelineTimeout      time.Duration
	EnhancedCallBlocking bool
}

type PostgresConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers        []string
	DecisionsTopic string
	ClientID       string
}

// FromEnv builds a Server config from environment variables so main stays
// lean. Unparseable values fall back to defaults; each fallback is reported
// in the returned warnings so main can log them once a logger exists.
func FromEnv() (Server, []string) {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	cfg := Server{
		Addr:             envOr("CALLGUARD_ADDR", DefaultAddr),
		ServiceTokenKey:  os.Getenv("SERVICE_TOKEN_SIGNING_KEY"),
		ScreenerTokenKey: os.Getenv("SCREENER_TOKEN_SIGNING_KEY"),
		LogLevel:         envOr("LOG_LEVEL", "info"),
		LogFormat:        envOr("LOG_FORMAT", "json"),
		Identities:       os.Getenv("SCREENER_IDENTITIES_FILE"),
	}

	if cfg.ScreenerTokenKey != "" && cfg.ScreenerTokenKey == cfg.ServiceTokenKey {
		warn("SCREENER_TOKEN_SIGNING_KEY must differ from SERVICE_TOKEN_SIGNING_KEY; screener requests will be unsigned")
		cfg.ScreenerTokenKey = ""
	}

	cfg.Screening = Screening{
		CarrierTimeout:       durationEnv("CARRIER_SCREENING_TIMEOUT", DefaultCarrierScreeningTimeout, warn),
		Deadline:             durationEnv("SCREENING_DEADLINE", DefaultScreeningDeadline, warn),
		PipelineTimeout:      durationEnv("PIPELINE_TIMEOUT", DefaultPipelineTimeout, warn),
		EnhancedCallBlocking: boolEnv("ENHANCED_CALL_BLOCKING", true, warn),
	}
	if cfg.Screening.Deadline <= cfg.Screening.CarrierTimeout {
		warn("SCREENING_DEADLINE (%s) must exceed CARRIER_SCREENING_TIMEOUT (%s); using defaults",
			cfg.Screening.Deadline, cfg.Screening.CarrierTimeout)
		cfg.Screening.CarrierTimeout = DefaultCarrierScreeningTimeout
		cfg.Screening.Deadline = DefaultScreeningDeadline
	}

	cfg.Postgres = PostgresConfig{
		URL:          os.Getenv("DATABASE_URL"),
		MaxOpenConns: intEnv("DATABASE_MAX_OPEN_CONNS", 10, warn),
		MaxIdleConns: intEnv("DATABASE_MAX_IDLE_CONNS", 5, warn),
	}

	cfg.Redis = RedisConfig{
		URL:          os.Getenv("REDIS_URL"),
		PoolSize:     intEnv("REDIS_POOL_SIZE", 10, warn),
		MinIdleConns: intEnv("REDIS_MIN_IDLE_CONNS", 2, warn),
		DialTimeout:  durationEnv("REDIS_DIAL_TIMEOUT", 2*time.Second, warn),
		ReadTimeout:  durationEnv("REDIS_READ_TIMEOUT", 500*time.Millisecond, warn),
		WriteTimeout: durationEnv("REDIS_WRITE_TIMEOUT", 500*time.Millisecond, warn),
	}

	cfg.Kafka = KafkaConfig{
		Brokers:        liststr.SplitList(os.Getenv("KAFKA_BROKERS")),
		DecisionsTopic: envOr("KAFKA_DECISIONS_TOPIC", DefaultDecisionsTopic),
		ClientID:       envOr("KAFKA_CLIENT_ID", "callguard"),
	}

	return cfg, warnings
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration, warn func(string, ...any)) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		warn("invalid %s %q; using %s", key, raw, fallback)
		return fallback
	}
	return d
}

func intEnv(key string, fallback int, warn func(string, ...any)) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		warn("invalid %s %q; using %d", key, raw, fallback)
		return fallback
	}
	return n
}

func boolEnv(key string, fallback bool, warn func(string, ...any)) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		warn("invalid %s %q; using %t", key, raw, fallback)
		return fallback
	}
	return b
}
