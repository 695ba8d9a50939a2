// Package render prints the end-of-run summary to the terminal. Styled
// output is used when stdout is a TTY, plain text otherwise so piped output
// stays grep-friendly.
package render

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/bkyoung/code-refactor/internal/domain"
)

const summaryRounding = 10 * time.Millisecond

var (
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	dim     = lipgloss.Color("#6B7280") // muted gray

	titleStyle = lipgloss.NewStyle().Bold(true)
	passStyle  = lipgloss.NewStyle().Foreground(success)
	failStyle  = lipgloss.NewStyle().Foreground(danger)
	skipStyle  = lipgloss.NewStyle().Foreground(warning)
	dimStyle   = lipgloss.NewStyle().Foreground(dim)
)

// IsTTY reports whether the given file descriptor is a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// Summary renders the run summary. styled selects lipgloss colors; pass
// IsTTY(os.Stdout.Fd()) in production code.
func Summary(summary domain.RunSummary, styled bool) string {
	var b strings.Builder

	writeLine := func(style lipgloss.Style, text string) {
		if styled {
			text = style.Render(text)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	writeLine(titleStyle, fmt.Sprintf("Refactoring run: %s", summary.TargetDir))
	writeLine(dimStyle, fmt.Sprintf("%d file(s), %.0f%% success, elapsed %s",
		summary.TotalFiles, summary.SuccessRate()*100, summary.Elapsed.Round(summaryRounding)))
	b.WriteString("\n")

	for _, result := range summary.Results {
		style, marker := statusDecor(result.Status)
		line := fmt.Sprintf("  %s %-20s %s (%d iteration(s)", marker, result.Status, result.File, result.Iterations)
		if result.FinalScore > 0 {
			line += fmt.Sprintf(", score %.2f", result.FinalScore)
		}
		line += ")"
		writeLine(style, line)
	}

	if summary.TotalFiles == 0 {
		writeLine(dimStyle, "  no candidate files found")
	}
	return b.String()
}

// Print writes the summary to stdout with styling decided by TTY detection.
func Print(summary domain.RunSummary) {
	fmt.Print(Summary(summary, IsTTY(os.Stdout.Fd())))
}

func statusDecor(status domain.Status) (lipgloss.Style, string) {
	switch status {
	case domain.StatusSuccess, domain.StatusClean:
		return passStyle, "✓"
	case domain.StatusSkipped:
		return skipStyle, "-"
	default:
		return failStyle, "✗"
	}
}
