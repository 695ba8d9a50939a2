package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bkyoung/code-refactor/internal/domain"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// RunRequest captures the resolved inputs for a refactor run.
type RunRequest struct {
	TargetDir     string
	MaxIterations int
	OutputDir     string
}

// PipelineRunner defines the dependency required to run the run command.
type PipelineRunner interface {
	RunPipeline(ctx context.Context, req RunRequest) (domain.RunSummary, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Runner               PipelineRunner
	Args                 Arguments
	DefaultMaxIterations int
	DefaultOutput        string
	Version              string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "rf",
		Short: "Iterative LLM-driven Python refactor CLI",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(runCommand(deps.Runner, deps.DefaultMaxIterations, deps.DefaultOutput))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func runCommand(runner PipelineRunner, defaultMaxIterations int, defaultOutput string) *cobra.Command {
	var maxIterations int
	var outputDir string

	cmd := &cobra.Command{
		Use:   "run [target-dir]",
		Short: "Audit, fix, and validate every Python file in a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetDir := "."
			if len(args) > 0 {
				targetDir = args[0]
			}

			abs, err := filepath.Abs(targetDir)
			if err != nil {
				return fmt.Errorf("resolve target directory %s: %w", targetDir, err)
			}
			info, err := os.Stat(abs)
			if err != nil {
				return fmt.Errorf("target directory %s: %w", targetDir, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("target %s is not a directory", targetDir)
			}

			resolved := resolveMaxIterations(cmd, maxIterations, defaultMaxIterations)

			_, err = runner.RunPipeline(cmd.Context(), RunRequest{
				TargetDir:     abs,
				MaxIterations: resolved,
				OutputDir:     outputDir,
			})
			return err
		},
	}

	if defaultMaxIterations <= 0 {
		defaultMaxIterations = 10
	}
	if defaultOutput == "" {
		defaultOutput = "out"
	}
	cmd.Flags().IntVar(&maxIterations, "max-iterations", defaultMaxIterations, "Maximum audit/fix/validate iterations per file")
	cmd.Flags().StringVar(&outputDir, "output", defaultOutput, "Directory to write run reports")

	return cmd
}

// resolveMaxIterations returns the flag value when explicitly set and valid,
// otherwise the config default.
func resolveMaxIterations(cmd *cobra.Command, cliValue, configDefault int) int {
	if !cmd.Flags().Changed("max-iterations") {
		return configDefault
	}
	if cliValue <= 0 {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: --max-iterations must be positive, using default %d\n", configDefault)
		return configDefault
	}
	return cliValue
}
