package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ahorro-api/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 372, cfg.Ledger.SettlementCap)
	assert.Equal(t, int64(300), cfg.Ledger.CardFee)
	assert.Equal(t, int64(2), cfg.Ledger.TransferNumerator)
	assert.Equal(t, int64(3), cfg.Ledger.TransferDenominator)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.False(t, cfg.DB.ForceIPv4)
	assert.Equal(t, 5000, cfg.DB.LockTimeoutMS)
	assert.Equal(t, "ahorro-api", cfg.DB.AppName)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("LEDGER_SETTLEMENT_CAP", "10")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_FORCE_IPV4", "true")
	t.Setenv("DB_LOCK_TIMEOUT_MS", "0")
	t.Setenv("APP_VERSION", "1.4.2")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Ledger.SettlementCap)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.True(t, cfg.DB.ForceIPv4)
	assert.Zero(t, cfg.DB.LockTimeoutMS)
	assert.Equal(t, "1.4.2", cfg.App.Version)
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := config.Load()
	assert.Error(t, err)
}
