package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"CALLGUARD_ADDR", "CARRIER_SCREENING_TIMEOUT", "SCREENING_DEADLINE",
		"PIPELINE_TIMEOUT", "ENHANCED_CALL_BLOCKING", "KAFKA_BROKERS", "KAFKA_DECISIONS_TOPIC",
	} {
		t.Setenv(key, "")
	}

	cfg, warnings := FromEnv()

	assert.Empty(t, warnings)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 2000*time.Millisecond, cfg.Screening.CarrierTimeout)
	assert.Equal(t, 4500*time.Millisecond, cfg.Screening.Deadline)
	assert.Equal(t, 5000*time.Millisecond, cfg.Screening.PipelineTimeout)
	assert.True(t, cfg.Screening.EnhancedCallBlocking)
	assert.Nil(t, cfg.Kafka.Brokers)
	assert.Equal(t, "callguard.filter-decisions", cfg.Kafka.DecisionsTopic)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("CARRIER_SCREENING_TIMEOUT", "1s")
	t.Setenv("SCREENING_DEADLINE", "3s")
	t.Setenv("ENHANCED_CALL_BLOCKING", "false")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, warnings := FromEnv()

	assert.Empty(t, warnings)
	assert.Equal(t, time.Second, cfg.Screening.CarrierTimeout)
	assert.Equal(t, 3*time.Second, cfg.Screening.Deadline)
	assert.False(t, cfg.Screening.EnhancedCallBlocking)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestFromEnv_DeadlineMustExceedCarrierTimeout(t *testing.T) {
	t.Setenv("CARRIER_SCREENING_TIMEOUT", "5s")
	t.Setenv("SCREENING_DEADLINE", "4s")

	cfg, warnings := FromEnv()

	assert.Len(t, warnings, 1)
	assert.Equal(t, DefaultCarrierScreeningTimeout, cfg.Screening.CarrierTimeout)
	assert.Equal(t, DefaultScreeningDeadline, cfg.Screening.Deadline)
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("PIPELINE_TIMEOUT", "soon")
	t.Setenv("ENHANCED_CALL_BLOCKING", "maybe")
	t.Setenv("REDIS_POOL_SIZE", "-3")

	cfg, warnings := FromEnv()

	assert.Len(t, warnings, 3)
	assert.Equal(t, DefaultPipelineTimeout, cfg.Screening.PipelineTimeout)
	assert.True(t, cfg.Screening.EnhancedCallBlocking)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}

func TestFromEnv_ScreenerKeyMustDifferFromServiceKey(t *testing.T) {
	t.Setenv("SERVICE_TOKEN_SIGNING_KEY", "same-key")
	t.Setenv("SCREENER_TOKEN_SIGNING_KEY", "same-key")

	cfg, warnings := FromEnv()

	assert.Len(t, warnings, 1)
	assert.Equal(t, "same-key", cfg.ServiceTokenKey)
	assert.Empty(t, cfg.ScreenerTokenKey)

	t.Setenv("SCREENER_TOKEN_SIGNING_KEY", "screener-key")
	cfg, warnings = FromEnv()

	assert.Empty(t, warnings)
	assert.Equal(t, "screener-key", cfg.ScreenerTokenKey)
}
