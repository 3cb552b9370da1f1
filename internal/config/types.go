package config

// Config 是 Goaly 的主配置载体。
type Config struct {
	App       AppConfig       `toml:"app"`
	Store     StoreConfig     `toml:"store"`
	AI        AIConfig        `toml:"ai"`
	Prompt    PromptConfig    `toml:"prompt"`
	Dashboard DashboardConfig `toml:"dashboard"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
	LLMLog   string `toml:"llm_log_path"`
	LLMDump  bool   `toml:"llm_dump_payload"`
}

type StoreConfig struct {
	GoalsDB     string `toml:"goals_db"`
	AICallLogDB string `toml:"ai_call_log_db"`
	EvidenceDir string `toml:"evidence_dir"`
}

// AIConfig 只覆盖应用侧参数；OpenRouter 凭证与模型始终来自环境变量。
type AIConfig struct {
	TimeoutSeconds int  `toml:"timeout_seconds"`
	TraceLog       bool `toml:"trace_log"`
}

type PromptConfig struct {
	Dir string `toml:"dir"`
}

type DashboardConfig struct {
	Enabled bool `toml:"enabled"`
}
