package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":8080", cfg.App.HTTPAddr)
	assert.Equal(t, "data/db/goals.db", cfg.Store.GoalsDB)
	assert.Equal(t, 60, cfg.AI.TimeoutSeconds)
	assert.Equal(t, "prompts", cfg.Prompt.Dir)
	assert.True(t, cfg.Dashboard.Enabled)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app:
  log_level: debug
  http_addr: ":9000"
store:
  goals_db: /tmp/goals.db
dashboard:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, ":9000", cfg.App.HTTPAddr)
	assert.Equal(t, "/tmp/goals.db", cfg.Store.GoalsDB)
	// 显式写 false 不应被默认值 true 覆盖
	assert.False(t, cfg.Dashboard.Enabled)
	// 未写的键仍然取默认值
	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, "data/db/ai_calls.db", cfg.Store.AICallLogDB)
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  log_level: loud\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
