// Package observability provides logging, metrics and formatted CLI output.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-rag/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer renders human-readable summaries for the CLI.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRanked outputs a ranked result list with scores.
func (p *Printer) PrintRanked(title string, results []types.ScoredText) {
	if len(results) == 0 {
		p.printBox(title, "No results")
		return
	}

	var sb strings.Builder
	for i, r := range results {
		sb.WriteString(fmt.Sprintf("#%d  %.3f  %s", i+1, r.Score, clip(r.Text, boxWidth-18)))
		if i < len(results)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox(title, sb.String())
}

// PrintSelection outputs line budget, gaps and the first bullets of each section.
func (p *Printer) PrintSelection(resp *types.SelectionResponse) {
	if resp == nil {
		return
	}
	resume := resp.SelectedResume
	if resume == nil {
		resume = resp.OptimizedResume
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Lines: %d / %d (fits one page: %t)\n", resp.TotalLineCount, resp.MaxLines, resp.FitsOnePage))
	if len(resp.Gaps) > 0 {
		sb.WriteString(fmt.Sprintf("Gaps:  %s\n", strings.Join(resp.Gaps, ", ")))
	}

	if resume != nil {
		for _, group := range resume.BulletGroups() {
			count := min(len(group), maxItemsToShow)
			for i := 0; i < count; i++ {
				b := group[i]
				sb.WriteString(fmt.Sprintf("\n• [%.3f] %s", b.RelevanceScore, b.Text))
			}
		}
	}

	p.printBox(strings.ToUpper(resp.Mode)+" RESULT", sb.String())
}

// PrintRAGResponse outputs rewrites, gaps and suggestions of the flat flow.
func (p *Printer) PrintRAGResponse(resp *types.RAGResponse) {
	if resp == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Retrieved %d points in %.2fs\n", len(resp.RetrievedPoints), resp.ProcessingTime))

	count := min(len(resp.RewrittenPoints), maxItemsToShow)
	for i := 0; i < count; i++ {
		rp := resp.RewrittenPoints[i]
		sb.WriteString(fmt.Sprintf("\n- %s\n+ %s\n  similarity %.3f", rp.Original, rp.Rewritten, rp.SimilarityScore))
	}
	if len(resp.RewrittenPoints) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(resp.RewrittenPoints)-maxItemsToShow))
	}
	if len(resp.Gaps) > 0 {
		sb.WriteString(fmt.Sprintf("\n\nGaps: %s", strings.Join(resp.Gaps, ", ")))
	}
	for _, nb := range resp.NewBulletSuggestions {
		sb.WriteString(fmt.Sprintf("\nNew: %s", nb))
	}

	p.printBox("OPTIMIZED POINTS", sb.String())
}

func clip(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}
