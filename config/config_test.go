package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("CRON_KEY", "topsecret")
	t.Setenv("JWT_SECRET", "jwtsecret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, PolicyPerPlan, cfg.AccrualPolicy)
	assert.True(t, cfg.InterestRate.Equal(decimal.RequireFromString("3.53")))
	assert.Equal(t, 1, cfg.AccrualWorkers)
	assert.Equal(t, 200, cfg.AccrualBatchSize)
	assert.Equal(t, 10*time.Second, cfg.AccountTimeout)
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.R2Configured())
}

func TestLoad_FlatRateDefaultRate(t *testing.T) {
	setRequired(t)
	t.Setenv("ACCRUAL_POLICY", "flat_rate")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, PolicyFlatRate, cfg.AccrualPolicy)
	assert.True(t, cfg.InterestRate.Equal(decimal.RequireFromString("4.0")))
}

func TestLoad_ExplicitRateOverridesDefault(t *testing.T) {
	setRequired(t)
	t.Setenv("INTEREST_RATE", "2.75")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.InterestRate.Equal(decimal.RequireFromString("2.75")))
}

func TestLoad_RejectsUnknownPolicy(t *testing.T) {
	setRequired(t)
	t.Setenv("ACCRUAL_POLICY", "hourly")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsBadRate(t *testing.T) {
	setRequired(t)

	t.Setenv("INTEREST_RATE", "lots")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("INTEREST_RATE", "-1")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_RequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwtsecret")
	t.Setenv("CRON_KEY", "")

	_, err := Load()
	assert.Error(t, err)

	// Test environment skips the requirement.
	t.Setenv("ENV", "test")
	_, err = Load()
	assert.NoError(t, err)
}
