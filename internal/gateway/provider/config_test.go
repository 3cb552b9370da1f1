package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OPENROUTER_BASE_URL", "")
	t.Setenv("OPENROUTER_MODEL_TEXT", "")
	t.Setenv("OPENROUTER_MODEL_VISION", "")
	t.Setenv("AI_TEMPERATURE", "")
	t.Setenv("AI_MAX_TOKENS", "")

	cfg := ConfigFromEnv()
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.BaseURL)
	assert.Equal(t, "google/gemini-2.0-flash", cfg.ModelText)
	assert.Equal(t, "google/gemini-2.0-flash", cfg.ModelVision)
	assert.Equal(t, "Goaly", cfg.AppName)
	assert.ErrorIs(t, cfg.RequireAPIKey(), ErrAPIKeyMissing)
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "  sk-live  ")
	t.Setenv("OPENROUTER_BASE_URL", "https://example.com/v1/")
	t.Setenv("OPENROUTER_MODEL_TEXT", "openai/gpt-4o-mini")

	cfg := ConfigFromEnv()
	assert.Equal(t, "sk-live", cfg.APIKey)
	assert.Equal(t, "https://example.com/v1/", cfg.BaseURL)
	assert.Equal(t, "openai/gpt-4o-mini", cfg.ModelText)
	assert.NoError(t, cfg.RequireAPIKey())
}

// 解析永不失败：非法数值回落到默认配置，但 API Key 仍然生效。
func TestConfigFromEnvBadValuesFallBack(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-live")
	t.Setenv("AI_TEMPERATURE", "not-a-number")

	cfg := ConfigFromEnv()
	assert.Equal(t, "sk-live", cfg.APIKey)
	assert.Equal(t, 0.4, cfg.Temperature)
	assert.Equal(t, 800, cfg.MaxTokens)
}

func TestCompletionsURLNormalization(t *testing.T) {
	assert.Equal(t, "https://openrouter.ai/api/v1/chat/completions", completionsURL(""))
	assert.Equal(t, "https://x.dev/v1/chat/completions", completionsURL("https://x.dev/v1/"))
	assert.Equal(t, "https://x.dev/v1/chat/completions", completionsURL("https://x.dev/v1/chat/completions"))
}
