package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnvString(t *testing.T) {
	// Set test environment variables
	os.Setenv("TEST_API_KEY", "secret-key-123")
	os.Setenv("TEST_PATH", "/path/to/data")
	defer os.Unsetenv("TEST_API_KEY")
	defer os.Unsetenv("TEST_PATH")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "expand ${VAR} syntax",
			input:    "${TEST_API_KEY}",
			expected: "secret-key-123",
		},
		{
			name:     "expand $VAR syntax",
			input:    "$TEST_API_KEY",
			expected: "secret-key-123",
		},
		{
			name:     "expand in middle of string",
			input:    "key:${TEST_API_KEY}:end",
			expected: "key:secret-key-123:end",
		},
		{
			name:     "expand multiple variables",
			input:    "${TEST_API_KEY}:${TEST_PATH}",
			expected: "secret-key-123:/path/to/data",
		},
		{
			name:     "leave non-existent var unchanged",
			input:    "${NONEXISTENT_VAR}",
			expected: "${NONEXISTENT_VAR}",
		},
		{
			name:     "handle empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "handle string without variables",
			input:    "plain-text",
			expected: "plain-text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvString(tt.input))
		})
	}
}

func TestExpandEnvVarsResolvesProviderSecrets(t *testing.T) {
	os.Setenv("TEST_GROQ_KEY", "gsk-test-123")
	defer os.Unsetenv("TEST_GROQ_KEY")

	cfg := Config{
		Providers: map[string]ProviderConfig{
			"groq": {Enabled: true, Model: "llama-3.3-70b-versatile", APIKey: "${TEST_GROQ_KEY}"},
		},
		Journal: JournalConfig{Path: "${TEST_JOURNAL_UNSET}"},
	}

	expanded := expandEnvVars(cfg)

	assert.Equal(t, "gsk-test-123", expanded.Providers["groq"].APIKey)
	// Unset variables stay literal so misconfiguration is visible.
	assert.Equal(t, "${TEST_JOURNAL_UNSET}", expanded.Journal.Path)
}

func TestExpandEnvVarsResolvesPaths(t *testing.T) {
	os.Setenv("TEST_DATA_DIR", "/data")
	defer os.Unsetenv("TEST_DATA_DIR")

	cfg := Config{
		Output:  OutputConfig{Directory: "${TEST_DATA_DIR}/reports"},
		Store:   StoreConfig{Path: "${TEST_DATA_DIR}/refactor.db"},
		Journal: JournalConfig{Path: "${TEST_DATA_DIR}/journal.jsonl"},
	}

	expanded := expandEnvVars(cfg)

	assert.Equal(t, "/data/reports", expanded.Output.Directory)
	assert.Equal(t, "/data/refactor.db", expanded.Store.Path)
	assert.Equal(t, "/data/journal.jsonl", expanded.Journal.Path)
}

func TestSetDefaultsCoversPipeline(t *testing.T) {
	cfg, err := Load(LoaderOptions{FileName: "nonexistent-rf-config", EnvPrefix: "RFTEST"})
	assert.NoError(t, err)

	assert.Equal(t, 10, cfg.Pipeline.MaxIterations)
	assert.Equal(t, ".py", cfg.Pipeline.Extension)
	assert.Equal(t, "30s", cfg.Pipeline.TestTimeout)
	assert.Equal(t, 8.0, cfg.Judge.PassThreshold)
	assert.False(t, cfg.Judge.GenerateTests)
	assert.Equal(t, "experiment_data.jsonl", cfg.Journal.Path)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Providers["groq"].Model)
}
