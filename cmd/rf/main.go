package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bkyoung/code-refactor/internal/adapter/agent"
	"github.com/bkyoung/code-refactor/internal/adapter/checkpoint"
	"github.com/bkyoung/code-refactor/internal/adapter/cli"
	"github.com/bkyoung/code-refactor/internal/adapter/journal"
	"github.com/bkyoung/code-refactor/internal/adapter/llm/groq"
	"github.com/bkyoung/code-refactor/internal/adapter/llm/httpx"
	"github.com/bkyoung/code-refactor/internal/adapter/llm/static"
	"github.com/bkyoung/code-refactor/internal/adapter/observability"
	jsonout "github.com/bkyoung/code-refactor/internal/adapter/output/json"
	"github.com/bkyoung/code-refactor/internal/adapter/output/markdown"
	"github.com/bkyoung/code-refactor/internal/adapter/runner"
	"github.com/bkyoung/code-refactor/internal/adapter/store/sqlite"
	"github.com/bkyoung/code-refactor/internal/config"
	"github.com/bkyoung/code-refactor/internal/domain"
	"github.com/bkyoung/code-refactor/internal/prompt"
	"github.com/bkyoung/code-refactor/internal/render"
	"github.com/bkyoung/code-refactor/internal/sandbox"
	"github.com/bkyoung/code-refactor/internal/scan"
	"github.com/bkyoung/code-refactor/internal/syntax"
	"github.com/bkyoung/code-refactor/internal/usecase/pipeline"
	"github.com/bkyoung/code-refactor/internal/version"
)

func main() {
	if err := run(); err != nil {
		// Redact API keys from URLs in error messages before logging.
		log.Println(httpx.RedactURLSecrets(err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// Cancellable context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "rf",
		EnvPrefix:   "RF",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	templates, err := prompt.Load(cfg.Prompts.Path)
	if err != nil {
		return fmt.Errorf("load prompt templates: %w", err)
	}

	llmLogger := buildLogger(cfg.Observability)
	client := buildChatClient(cfg, llmLogger)

	application := &app{
		cfg:       cfg,
		templates: templates,
		client:    client,
		logger:    observability.NewPipelineLogger(llmLogger),
	}

	root := cli.NewRootCommand(cli.Dependencies{
		Runner:               application,
		DefaultMaxIterations: cfg.Pipeline.MaxIterations,
		DefaultOutput:        cfg.Output.Directory,
		Version:              version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// app wires the pipeline for one run request. Construction happens per
// request because the sandbox root and iteration cap come from the CLI.
type app struct {
	cfg       config.Config
	templates prompt.Templates
	client    agent.ChatClient
	logger    pipeline.Logger
}

// RunPipeline implements cli.PipelineRunner.
func (a *app) RunPipeline(ctx context.Context, req cli.RunRequest) (domain.RunSummary, error) {
	guard := sandbox.NewGuard(sandboxRoot(a.cfg.Sandbox, req.TargetDir))
	scanner := scan.NewScanner(a.cfg.Pipeline.Extension)
	validator := syntax.NewPythonValidator()

	journalWriter, err := journal.Open(a.cfg.Journal.Path)
	if err != nil {
		return domain.RunSummary{}, fmt.Errorf("open journal %s: %w", a.cfg.Journal.Path, err)
	}
	defer journalWriter.Close()

	store := buildStore(a.cfg.Store)
	if store != nil {
		defer store.Close()
	}

	var checkpointer pipeline.Checkpointer
	if a.cfg.Checkpoint.Enabled {
		checkpointer = checkpoint.NewCommitter(req.TargetDir)
	}

	testTimeout := parseDuration(a.cfg.Pipeline.TestTimeout, 30*time.Second)
	cmdRunner := runner.NewRunner(req.TargetDir, testTimeout)

	auditor := agent.NewAuditor(a.client, a.templates, journalWriter, a.logger)
	fixer := agent.NewFixer(a.client, a.templates, guard, validator, journalWriter, a.logger)
	judge := agent.NewJudge(cmdRunner, a.client, a.templates, guard, validator, journalWriter, a.logger, agent.JudgeConfig{
		PassThreshold: a.cfg.Judge.PassThreshold,
		GenerateTests: a.cfg.Judge.GenerateTests,
	})

	iterations := pipeline.NewIterationController(auditor, fixer, judge, a.logger, checkpointer, req.MaxIterations)
	controller := pipeline.NewController(guard, scanner, iterations, &journalBridge{writer: journalWriter}, a.logger, storePort(store))

	summary, _, err := controller.Run(ctx, req.TargetDir)
	if err != nil {
		return domain.RunSummary{}, err
	}

	render.Print(summary)
	a.writeReports(ctx, req.OutputDir, summary)

	return summary, nil
}

func (a *app) writeReports(ctx context.Context, outputDir string, summary domain.RunSummary) {
	now := func() string {
		return time.Now().UTC().Format("20060102T150405Z")
	}

	writers := []struct {
		kind  string
		write func() (string, error)
	}{
		{"markdown", func() (string, error) { return markdown.NewWriter(now).Write(ctx, outputDir, summary) }},
		{"json", func() (string, error) { return jsonout.NewWriter(now).Write(ctx, outputDir, summary) }},
	}
	for _, w := range writers {
		path, err := w.write()
		if err != nil {
			a.logger.LogWarning(ctx, "failed to write run report", map[string]interface{}{
				"format": w.kind, "output_dir": outputDir, "error": err.Error(),
			})
			continue
		}
		a.logger.LogInfo(ctx, "run report written", map[string]interface{}{
			"format": w.kind, "path": path,
		})
	}
}

// journalBridge adapts the journal adapter to the pipeline's journal port.
type journalBridge struct {
	writer *journal.Writer
}

func (b *journalBridge) Record(agentName, model string, action pipeline.JournalAction, status string, details map[string]interface{}) error {
	return b.writer.Record(agentName, model, journal.ActionKind(action), status, details)
}

// buildChatClient selects the Groq HTTP client when an API key resolved, and
// the deterministic static client otherwise.
func buildChatClient(cfg config.Config, logger httpx.Logger) agent.ChatClient {
	provider, ok := cfg.Providers["groq"]
	if ok && provider.Enabled && resolvedSecret(provider.APIKey) {
		client := groq.NewHTTPClient(provider.APIKey, provider.Model)
		client.SetTemperature(provider.Temperature)
		client.SetTimeout(providerTimeout(provider, cfg.HTTP))
		client.SetRetryConfig(retryConfig(provider, cfg.HTTP))
		if logger != nil {
			client.SetLogger(logger)
		}
		return client
	}

	log.Println("groq: no API key provided, using static client")
	return static.NewClient()
}

// sandboxRoot resolves the write-containment root. When sandbox.root is not
// configured, the target directory doubles as the root; configuring a wider
// root lets the pre-flight check reject a target that lies outside it.
func sandboxRoot(cfg config.SandboxConfig, targetDir string) string {
	if cfg.Root != "" {
		return cfg.Root
	}
	return targetDir
}

// resolvedSecret reports whether a config secret actually expanded. Unset
// environment references stay literal, e.g. "${GROQ_API_KEY}".
func resolvedSecret(value string) bool {
	return value != "" && !strings.Contains(value, "${")
}

func providerTimeout(provider config.ProviderConfig, httpCfg config.HTTPConfig) time.Duration {
	timeout := parseDuration(httpCfg.Timeout, 60*time.Second)
	if provider.Timeout != nil {
		timeout = parseDuration(*provider.Timeout, timeout)
	}
	return timeout
}

func retryConfig(provider config.ProviderConfig, httpCfg config.HTTPConfig) httpx.RetryConfig {
	retry := httpx.DefaultRetryConfig()
	if httpCfg.MaxRetries > 0 {
		retry.MaxRetries = httpCfg.MaxRetries
	}
	retry.InitialBackoff = parseDuration(httpCfg.InitialBackoff, retry.InitialBackoff)
	retry.MaxBackoff = parseDuration(httpCfg.MaxBackoff, retry.MaxBackoff)
	if httpCfg.BackoffMultiplier > 0 {
		retry.Multiplier = httpCfg.BackoffMultiplier
	}
	if provider.MaxRetries != nil {
		retry.MaxRetries = *provider.MaxRetries
	}
	if provider.InitialBackoff != nil {
		retry.InitialBackoff = parseDuration(*provider.InitialBackoff, retry.InitialBackoff)
	}
	if provider.MaxBackoff != nil {
		retry.MaxBackoff = parseDuration(*provider.MaxBackoff, retry.MaxBackoff)
	}
	return retry
}

// buildStore opens the run-history store. Failures are non-fatal: the
// pipeline runs without history rather than refusing to start.
func buildStore(cfg config.StoreConfig) *sqlite.Store {
	if !cfg.Enabled {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		log.Printf("warning: failed to create store directory: %v", err)
		return nil
	}
	store, err := sqlite.NewStore(cfg.Path)
	if err != nil {
		log.Printf("warning: failed to initialize store: %v", err)
		return nil
	}
	return store
}

// storePort converts a possibly-nil concrete store into the pipeline port
// without producing a non-nil interface around a nil pointer.
func storePort(store *sqlite.Store) pipeline.Store {
	if store == nil {
		return nil
	}
	return store
}

func buildLogger(cfg config.ObservabilityConfig) httpx.Logger {
	level := httpx.LogLevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = httpx.LogLevelDebug
	case "error":
		level = httpx.LogLevelError
	}
	if !cfg.Logging.Enabled {
		level = httpx.LogLevelError
	}

	format := httpx.LogFormatHuman
	if cfg.Logging.Format == "json" {
		format = httpx.LogFormatJSON
	}

	return httpx.NewDefaultLogger(level, format, cfg.Logging.RedactAPIKeys)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("warning: invalid duration %q, using %s", value, fallback)
		return fallback
	}
	return parsed
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "rf"))
	}
	return paths
}

// Compile-time interface compliance checks
var _ cli.PipelineRunner = (*app)(nil)
var _ pipeline.Auditor = (*agent.Auditor)(nil)
var _ pipeline.Fixer = (*agent.Fixer)(nil)
var _ pipeline.Judge = (*agent.Judge)(nil)
var _ pipeline.Guard = (*sandbox.Guard)(nil)
var _ pipeline.Scanner = (*scan.Scanner)(nil)
var _ pipeline.Store = (*sqlite.Store)(nil)
var _ pipeline.Checkpointer = (*checkpoint.Committer)(nil)
var _ pipeline.Journal = (*journalBridge)(nil)
var _ agent.ChatClient = (*groq.HTTPClient)(nil)
var _ agent.ChatClient = (*static.Client)(nil)
var _ agent.CommandRunner = (*runner.Runner)(nil)
var _ agent.Journal = (*journal.Writer)(nil)
