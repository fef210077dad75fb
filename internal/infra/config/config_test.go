package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payflow-labs/payflow/internal/infra/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "memory", cfg.Storage)
	assert.True(t, cfg.HistoryEnabled)
	assert.Equal(t, 100, cfg.MaxHistorySize)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.RetryBaseDelay)
	assert.False(t, cfg.DisableSettlement)
	assert.Equal(t, "1000000", cfg.AmountCeiling)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PAYFLOW_HTTP_ADDR", ":9999")
	t.Setenv("PAYFLOW_STORAGE", "sqlite")
	t.Setenv("PAYFLOW_HANDLER_RETRIES", "5")
	t.Setenv("PAYFLOW_HANDLER_RETRY_DELAY", "250ms")
	t.Setenv("PAYFLOW_DISABLE_SETTLEMENT", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.Storage)
	assert.Equal(t, 5, cfg.RetryAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryBaseDelay)
	assert.True(t, cfg.DisableSettlement)
}

func TestLoad_RejectsBadBounds(t *testing.T) {
	t.Setenv("PAYFLOW_EVENT_HISTORY_SIZE", "0")
	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_RejectsZeroRetries(t *testing.T) {
	t.Setenv("PAYFLOW_HANDLER_RETRIES", "0")
	_, err := config.Load()
	require.Error(t, err)
}
