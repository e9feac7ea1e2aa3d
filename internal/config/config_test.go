package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/concord/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, 30*time.Minute, c.Server.PageTTL)
	assert.True(t, c.Server.Metrics)
	assert.Equal(t, "http://localhost:5001/api/guidance", c.Guidance.Endpoint)
	assert.Equal(t, config.ProviderHeuristic, c.Advisor.Provider)
	assert.Equal(t, config.BackendNone, c.History.Backend)
	assert.Equal(t, "concord:history:", c.History.Redis.Prefix)
}

func TestLoad_FileEnvAndOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultFile), []byte(`
log:
  level: debug
server:
  addr: ":9000"
  page_ttl: 5m
history:
  backend: redis
  redis:
    db: 2
  pii_fields: ["conflict.*"]
`), 0o644))
	t.Setenv("CONCORD_GUIDANCE_TIMEOUT", "3s")
	t.Setenv("CONCORD_SERVER_ADDR", ":9100")

	c, err := config.Load("", map[string]any{"log.level": "warn"})
	require.NoError(t, err)

	assert.Equal(t, "warn", c.Log.Level)
	assert.Equal(t, ":9100", c.Server.Addr)
	assert.Equal(t, 5*time.Minute, c.Server.PageTTL)
	assert.Equal(t, 3*time.Second, c.Guidance.Timeout)
	assert.Equal(t, config.BackendRedis, c.History.Backend)
	assert.Equal(t, 2, c.History.Redis.DB)
	assert.Equal(t, []string{"conflict.*"}, c.History.PIIFields)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownValues(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := config.Load("", map[string]any{"history.backend": "postgres"})
	assert.ErrorIs(t, err, config.ErrUnknownBackend)

	_, err = config.Load("", map[string]any{"advisor.provider": "oracle"})
	assert.ErrorIs(t, err, config.ErrUnknownProvider)
}

func TestKeysFromEnv(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	t.Setenv("TEST_HISTORY_KEY", "a2V5")

	assert.Equal(t, "sk-test", config.AdvisorConfig{APIKeyEnv: "TEST_OPENAI_KEY"}.APIKey())
	assert.Empty(t, config.AdvisorConfig{}.APIKey())
	assert.Equal(t, "a2V5", config.HistoryConfig{EncryptionKeyEnv: "TEST_HISTORY_KEY"}.EncryptionKey())
}
