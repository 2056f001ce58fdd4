package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvDefaults(t *testing.T) {
	t.Setenv("FTX_EMPTY", "")
	assert.Equal(t, "fallback", GetEnv("FTX_EMPTY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("FTX_MISSING_KEY", "fallback"))

	t.Setenv("FTX_SET", "value")
	assert.Equal(t, "value", GetEnv("FTX_SET", "fallback"))
}

func TestTypedGetters(t *testing.T) {
	t.Setenv("FTX_INT", "42")
	t.Setenv("FTX_BAD_INT", "forty")
	t.Setenv("FTX_DUR", "90s")

	assert.Equal(t, 42, GetIntEnv("FTX_INT", 1))
	assert.Equal(t, 1, GetIntEnv("FTX_BAD_INT", 1))
	assert.Equal(t, 90*time.Second, GetDurationEnv("FTX_DUR", time.Minute))
	assert.Equal(t, time.Minute, GetDurationEnv("FTX_NO_DUR", time.Minute))
}

func TestGetListEnv(t *testing.T) {
	t.Setenv("FTX_BROKERS", "kafka-1:9092, ,kafka-2:9092")
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, GetListEnv("FTX_BROKERS"))
	assert.Nil(t, GetListEnv("FTX_NO_BROKERS"))
}

func TestLoad(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("STATS_CACHE", "redis")
	t.Setenv("PROFIT_JOB_INTERVAL", "15m")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "redis", cfg.StatsCache)
	assert.Equal(t, 15*time.Minute, cfg.ProfitJobInterval)
	assert.Equal(t, "3000", cfg.Port)
}
