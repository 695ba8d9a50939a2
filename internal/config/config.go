package config

// Config represents the full application configuration.
type Config struct {
	Providers     map[string]ProviderConfig `yaml:"providers"`
	HTTP          HTTPConfig                `yaml:"http"`
	Pipeline      PipelineConfig            `yaml:"pipeline"`
	Sandbox       SandboxConfig             `yaml:"sandbox"`
	Judge         JudgeConfig               `yaml:"judge"`
	Checkpoint    CheckpointConfig          `yaml:"checkpoint"`
	Prompts       PromptsConfig             `yaml:"prompts"`
	Journal       JournalConfig             `yaml:"journal"`
	Output        OutputConfig              `yaml:"output"`
	Store         StoreConfig               `yaml:"store"`
	Observability ObservabilityConfig       `yaml:"observability"`
}

// ProviderConfig configures a single LLM provider.
type ProviderConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"apiKey"`
	Temperature float64 `yaml:"temperature"`

	// HTTP overrides (optional, use global HTTP config if not set)
	Timeout        *string `yaml:"timeout,omitempty"`
	MaxRetries     *int    `yaml:"maxRetries,omitempty"`
	InitialBackoff *string `yaml:"initialBackoff,omitempty"`
	MaxBackoff     *string `yaml:"maxBackoff,omitempty"`
}

// HTTPConfig holds global HTTP client settings.
type HTTPConfig struct {
	Timeout           string  `yaml:"timeout"`
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// PipelineConfig tunes the per-file iteration loop.
type PipelineConfig struct {
	MaxIterations int    `yaml:"maxIterations"` // iteration cap per file (default: 10)
	Extension     string `yaml:"extension"`     // candidate file extension (default: ".py")
	TestTimeout   string `yaml:"testTimeout"`   // wall-clock budget per subprocess (default: "30s")
}

// SandboxConfig pins the write-containment root. Empty means the target
// directory itself is the root.
type SandboxConfig struct {
	Root string `yaml:"root"`
}

// JudgeConfig tunes validation behavior.
type JudgeConfig struct {
	PassThreshold float64 `yaml:"passThreshold"` // minimum pylint score for PASS (default: 8.0)
	GenerateTests bool    `yaml:"generateTests"` // generate a pytest file when none exists
}

// CheckpointConfig configures git commits after applied fixes.
type CheckpointConfig struct {
	Enabled bool `yaml:"enabled"`
}

// PromptsConfig points at optional prompt template overrides.
type PromptsConfig struct {
	Path string `yaml:"path"`
}

// JournalConfig configures the experiment journal.
type JournalConfig struct {
	Path string `yaml:"path"`
}

type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// StoreConfig configures the persistence layer.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures request/response logging.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Level         string `yaml:"level"`         // debug, info, error
	Format        string `yaml:"format"`        // json, human
	RedactAPIKeys bool   `yaml:"redactAPIKeys"` // Redact API keys in logs
}

// Merge combines multiple configuration instances, prioritising the latter ones.
func Merge(configs ...Config) Config {
	result := Config{}
	for _, cfg := range configs {
		result = merge(result, cfg)
	}
	return result
}

func merge(base, overlay Config) Config {
	result := base

	result.HTTP = chooseHTTP(base.HTTP, overlay.HTTP)
	result.Pipeline = choosePipeline(base.Pipeline, overlay.Pipeline)
	result.Sandbox = chooseSandbox(base.Sandbox, overlay.Sandbox)
	result.Judge = chooseJudge(base.Judge, overlay.Judge)
	result.Checkpoint = chooseCheckpoint(base.Checkpoint, overlay.Checkpoint)
	result.Prompts = choosePrompts(base.Prompts, overlay.Prompts)
	result.Journal = chooseJournal(base.Journal, overlay.Journal)
	result.Output = chooseOutput(base.Output, overlay.Output)
	result.Store = chooseStore(base.Store, overlay.Store)
	result.Observability = chooseObservability(base.Observability, overlay.Observability)
	result.Providers = mergeProviders(base.Providers, overlay.Providers)

	return result
}

func mergeProviders(base, overlay map[string]ProviderConfig) map[string]ProviderConfig {
	if len(base) == 0 && len(overlay) == 0 {
		return nil
	}
	result := make(map[string]ProviderConfig, len(base)+len(overlay))
	for key, value := range base {
		result[key] = value
	}
	for key, value := range overlay {
		result[key] = value
	}
	return result
}

func chooseOutput(base, overlay OutputConfig) OutputConfig {
	if overlay.Directory != "" {
		return overlay
	}
	return base
}

func chooseHTTP(base, overlay HTTPConfig) HTTPConfig {
	if overlay.Timeout != "" || overlay.MaxRetries != 0 || overlay.InitialBackoff != "" || overlay.MaxBackoff != "" || overlay.BackoffMultiplier != 0 {
		return overlay
	}
	return base
}

func choosePipeline(base, overlay PipelineConfig) PipelineConfig {
	if overlay.MaxIterations != 0 || overlay.Extension != "" || overlay.TestTimeout != "" {
		return overlay
	}
	return base
}

func chooseSandbox(base, overlay SandboxConfig) SandboxConfig {
	if overlay.Root != "" {
		return overlay
	}
	return base
}

func chooseJudge(base, overlay JudgeConfig) JudgeConfig {
	if overlay.PassThreshold != 0 || overlay.GenerateTests {
		return overlay
	}
	return base
}

func chooseCheckpoint(base, overlay CheckpointConfig) CheckpointConfig {
	if overlay.Enabled {
		return overlay
	}
	return base
}

func choosePrompts(base, overlay PromptsConfig) PromptsConfig {
	if overlay.Path != "" {
		return overlay
	}
	return base
}

func chooseJournal(base, overlay JournalConfig) JournalConfig {
	if overlay.Path != "" {
		return overlay
	}
	return base
}

func chooseStore(base, overlay StoreConfig) StoreConfig {
	if overlay.Enabled || overlay.Path != "" {
		return overlay
	}
	return base
}

func chooseObservability(base, overlay ObservabilityConfig) ObservabilityConfig {
	result := base
	if overlay.Logging.Enabled || overlay.Logging.Level != "" || overlay.Logging.Format != "" {
		result.Logging = overlay.Logging
	}
	return result
}
