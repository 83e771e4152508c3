// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/huyxdang/doc-tracker-backend/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSummary outputs the change counts of a comparison run.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSummary(summary types.ChangeSummary) {
	if summary.Total == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO CHANGES FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total changes: %d\n\n", summary.Total))
	sb.WriteString(fmt.Sprintf("By impact:  %d critical  %d medium  %d low",
		summary.Critical, summary.Medium, summary.Low))

	p.printBox("CHANGE SUMMARY", sb.String())
}

// PrintChanges outputs the top N classified changes with impact indicators.
func (p *Printer) PrintChanges(changes []types.ClassifiedChange) {
	if len(changes) == 0 {
		return
	}

	var sb strings.Builder

	count := min(len(changes), maxItemsToShow)
	for i := 0; i < count; i++ {
		change := changes[i]
		sb.WriteString(fmt.Sprintf("#%d  %s %s (%s)\n",
			change.ChangeID, impactIcon(change.Impact), change.Location, change.ChangeType))

		reasoning := change.Reasoning
		if len([]rune(reasoning)) > 50 {
			reasoning = string([]rune(reasoning)[:47]) + "..."
		}
		sb.WriteString(fmt.Sprintf("    %s\n", reasoning))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(changes) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more changes", len(changes)-maxItemsToShow))
	}

	p.printBox("CLASSIFIED CHANGES", sb.String())
}

// PrintTiming outputs the per-stage timing breakdown.
func (p *Printer) PrintTiming(timing types.TimingBreakdown) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Parsing:         %6d ms\n", timing.ParsingMS))
	sb.WriteString(fmt.Sprintf("Diffing:         %6d ms\n", timing.DiffingMS))
	sb.WriteString(fmt.Sprintf("Classification:  %6d ms (LLM: %d ms)\n",
		timing.ClassificationMS, timing.ServiceMS))
	sb.WriteString(fmt.Sprintf("Annotation:      %6d ms\n", timing.AnnotationMS))
	sb.WriteString(fmt.Sprintf("Total:           %6d ms", timing.TotalMS))

	p.printBox("TIMING", sb.String())
}

func impactIcon(impact types.ImpactLevel) string {
	switch impact {
	case types.ImpactCritical:
		return "🔴"
	case types.ImpactMedium:
		return "🟡"
	default:
		return "⚪"
	}
}
