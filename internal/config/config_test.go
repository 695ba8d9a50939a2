package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bkyoung/code-refactor/internal/config"
)

func TestMergePrioritizesLaterConfigs(t *testing.T) {
	base := config.Config{
		Output: config.OutputConfig{Directory: "default"},
	}
	file := config.Config{
		Output: config.OutputConfig{Directory: "file"},
	}
	final := config.Config{
		Output: config.OutputConfig{Directory: "env"},
	}

	merged := config.Merge(base, file, final)

	if merged.Output.Directory != "env" {
		t.Fatalf("expected env directory to win, got %s", merged.Output.Directory)
	}
}

func TestMergeKeepsBaseWhenOverlayEmpty(t *testing.T) {
	base := config.Config{
		Pipeline: config.PipelineConfig{MaxIterations: 10, Extension: ".py", TestTimeout: "30s"},
		Judge:    config.JudgeConfig{PassThreshold: 8.0},
	}

	merged := config.Merge(base, config.Config{})

	if merged.Pipeline.MaxIterations != 10 {
		t.Fatalf("expected base maxIterations to survive, got %d", merged.Pipeline.MaxIterations)
	}
	if merged.Judge.PassThreshold != 8.0 {
		t.Fatalf("expected base passThreshold to survive, got %f", merged.Judge.PassThreshold)
	}
}

func TestMergeSandboxRoot(t *testing.T) {
	base := config.Config{
		Sandbox: config.SandboxConfig{Root: "/work"},
	}

	merged := config.Merge(base, config.Config{})
	if merged.Sandbox.Root != "/work" {
		t.Fatalf("expected base sandbox root to survive, got %s", merged.Sandbox.Root)
	}

	merged = config.Merge(base, config.Config{Sandbox: config.SandboxConfig{Root: "/other"}})
	if merged.Sandbox.Root != "/other" {
		t.Fatalf("expected overlay sandbox root to win, got %s", merged.Sandbox.Root)
	}
}

func TestMergeProvidersCombines(t *testing.T) {
	base := config.Config{
		Providers: map[string]config.ProviderConfig{
			"groq": {Enabled: true, Model: "llama-3.3-70b-versatile"},
		},
	}
	overlay := config.Config{
		Providers: map[string]config.ProviderConfig{
			"static": {Enabled: true, Model: "static-v1"},
		},
	}

	merged := config.Merge(base, overlay)

	if len(merged.Providers) != 2 {
		t.Fatalf("expected both providers, got %d", len(merged.Providers))
	}
	if merged.Providers["groq"].Model != "llama-3.3-70b-versatile" {
		t.Fatalf("unexpected groq model %s", merged.Providers["groq"].Model)
	}
}

func TestLoadReadsFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "rf.yaml")
	if err := os.WriteFile(file, []byte("output:\n  directory: file\n"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("RF_OUTPUT_DIRECTORY", "env")

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: []string{dir},
		FileName:    "rf",
		EnvPrefix:   "RF",
	})
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	if cfg.Output.Directory != "env" {
		t.Fatalf("expected env override, got %s", cfg.Output.Directory)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "rf.yaml")
	content := "pipeline:\n  maxIterations: 3\njudge:\n  passThreshold: 9.5\n  generateTests: true\n"
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: []string{dir},
		FileName:    "rf",
		EnvPrefix:   "RF",
	})
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	if cfg.Pipeline.MaxIterations != 3 {
		t.Fatalf("expected maxIterations 3, got %d", cfg.Pipeline.MaxIterations)
	}
	if cfg.Judge.PassThreshold != 9.5 {
		t.Fatalf("expected passThreshold 9.5, got %f", cfg.Judge.PassThreshold)
	}
	if !cfg.Judge.GenerateTests {
		t.Fatal("expected generateTests to be enabled")
	}
}

func TestObservabilityConfigDefaults(t *testing.T) {
	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: []string{},
		FileName:    "nonexistent",
		EnvPrefix:   "RF",
	})
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	// Verify default observability settings
	if !cfg.Observability.Logging.Enabled {
		t.Error("expected logging to be enabled by default")
	}
	if cfg.Observability.Logging.Level != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.Logging.Level)
	}
	if cfg.Observability.Logging.Format != "human" {
		t.Errorf("expected default log format 'human', got %s", cfg.Observability.Logging.Format)
	}
	if !cfg.Observability.Logging.RedactAPIKeys {
		t.Error("expected API key redaction to be enabled by default")
	}
}
