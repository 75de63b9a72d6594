// Package render formats run results for the terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/engine/pipeline"
	"go.trai.ch/sift/internal/ui/style"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(style.Iris)
	stageStyle  = lipgloss.NewStyle().Width(10)
	cachedStyle = lipgloss.NewStyle().Foreground(style.Slate)
	freshStyle  = lipgloss.NewStyle().Foreground(style.Green)
	failStyle   = lipgloss.NewStyle().Foreground(style.Red)
	warnStyle   = lipgloss.NewStyle().Foreground(style.Yellow)
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

// Summary writes a human-readable report of a pipeline run.
func Summary(w io.Writer, summary *pipeline.Summary) {
	fmt.Fprintln(w, headerStyle.Render("Run summary"))

	for _, report := range summary.Reports {
		fmt.Fprintln(w, stageLine(report))
		for _, itemErr := range report.ItemErrors {
			fmt.Fprintf(w, "      %s %s: %s\n", style.Cross, itemErr.Path, itemErr.Message)
		}
	}

	if summary.Moves != nil {
		renderMoves(w, summary.Moves)
	}

	fmt.Fprintln(w, faintStyle.Render(fmt.Sprintf(
		"%d files, finished in %s",
		summary.FileCount,
		humanElapsed(summary),
	)))
}

func stageLine(report pipeline.StageReport) string {
	var icon, status string
	switch report.Status {
	case domain.StatusCached:
		icon = cachedStyle.Render(style.Circle)
		status = cachedStyle.Render("cached")
	case domain.StatusComputed:
		icon = freshStyle.Render(style.Check)
		status = freshStyle.Render("computed")
	case domain.StatusFailed:
		icon = failStyle.Render(style.Cross)
		status = failStyle.Render("failed")
	default:
		icon = style.Dot
		status = strings.ToLower(string(report.Status))
	}

	line := fmt.Sprintf("  %s %s %s", icon, stageStyle.Render(string(report.Stage)), status)
	if report.Hits+report.Misses > 1 {
		line += faintStyle.Render(fmt.Sprintf(" (%d cached, %d computed)", report.Hits, report.Misses))
	}
	if len(report.ItemErrors) > 0 {
		line += warnStyle.Render(fmt.Sprintf(" %s %d failed", style.Warning, len(report.ItemErrors)))
	}
	line += faintStyle.Render(" " + report.Elapsed.Round(time.Millisecond).String())
	return line
}

func renderMoves(w io.Writer, moves *domain.MoveResult) {
	if moves.DryRun {
		fmt.Fprintln(w, headerStyle.Render("Planned moves (dry run)"))
	} else {
		fmt.Fprintln(w, headerStyle.Render("Moves"))
	}
	for _, m := range moves.Moves {
		if m.From == m.To {
			fmt.Fprintf(w, "  %s %s\n", style.Dot, faintStyle.Render(m.From+" (already in place)"))
			continue
		}
		fmt.Fprintf(w, "  %s %s %s %s\n", style.Dot, m.From, style.Arrow, m.To)
	}
}

func humanElapsed(summary *pipeline.Summary) string {
	if summary.Elapsed < time.Minute {
		return summary.Elapsed.Round(time.Millisecond).String()
	}
	now := time.Now()
	return strings.TrimSpace(humanize.RelTime(now.Add(-summary.Elapsed), now, "", ""))
}
