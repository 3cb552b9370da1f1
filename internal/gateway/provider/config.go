package provider

import (
	"errors"
	"os"
	"strings"

	"github.com/caarlos0/env/v9"

	"goaly/internal/logger"
)

// 中文说明：
// OpenRouter（OpenAI 兼容）连接配置，全部来自进程环境变量。
// 解析永不失败：环境变量非法时退回默认值，缺少 API Key 由 RequireAPIKey 单独把关，
// 这样配置层零副作用，网络调用前才会暴露凭证问题。

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "google/gemini-2.0-flash"
)

// ErrAPIKeyMissing 表示环境中没有 OPENROUTER_API_KEY。
var ErrAPIKeyMissing = errors.New("OPENROUTER_API_KEY is not set; set it in the environment to enable AI features")

type Config struct {
	APIKey      string  `env:"OPENROUTER_API_KEY"`
	BaseURL     string  `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	ModelText   string  `env:"OPENROUTER_MODEL_TEXT" envDefault:"google/gemini-2.0-flash"`
	ModelVision string  `env:"OPENROUTER_MODEL_VISION" envDefault:"google/gemini-2.0-flash"`
	SiteURL     string  `env:"OPENROUTER_SITE_URL"`
	AppName     string  `env:"OPENROUTER_APP_NAME" envDefault:"Goaly"`
	Temperature float64 `env:"AI_TEMPERATURE" envDefault:"0.4"`
	MaxTokens   int     `env:"AI_MAX_TOKENS" envDefault:"800"`
}

// ConfigFromEnv 读取环境变量，非法值告警后使用默认配置。
func ConfigFromEnv() Config {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		logger.Warnf("解析 OpenRouter 环境配置失败，使用默认值: %v", err)
		cfg = defaultConfig()
		cfg.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	cfg.trim()
	return cfg
}

func defaultConfig() Config {
	return Config{
		BaseURL:     defaultBaseURL,
		ModelText:   defaultModel,
		ModelVision: defaultModel,
		AppName:     "Goaly",
		Temperature: 0.4,
		MaxTokens:   800,
	}
}

func (c *Config) trim() {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	c.ModelText = strings.TrimSpace(c.ModelText)
	c.ModelVision = strings.TrimSpace(c.ModelVision)
	c.SiteURL = strings.TrimSpace(c.SiteURL)
	c.AppName = strings.TrimSpace(c.AppName)
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.ModelText == "" {
		c.ModelText = defaultModel
	}
	if c.ModelVision == "" {
		c.ModelVision = defaultModel
	}
}

// RequireAPIKey 在任何网络请求之前同步校验凭证。
func (c Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return ErrAPIKeyMissing
	}
	return nil
}
