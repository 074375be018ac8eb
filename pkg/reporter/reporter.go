package reporter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/amosWeiskopf/sitescribe/internal/models"
	"github.com/amosWeiskopf/sitescribe/pkg/utils"
)

const maxReasonLength = 80

// Reporter renders run summaries in various formats
type Reporter struct {
	style table.Style
}

// New creates a new Reporter instance
func New() *Reporter {
	style := table.StyleLight
	style.Format.Footer = text.FormatDefault
	return &Reporter{style: style}
}

// Formats lists the supported report formats.
func Formats() []string {
	return []string{"json", "markdown", "table"}
}

// Generate renders summary in the given format
func (r *Reporter) Generate(summary *models.RunSummary, format string) (string, error) {
	if summary == nil {
		return "", fmt.Errorf("no summary to report")
	}

	switch strings.ToLower(format) {
	case "json":
		return r.generateJSON(summary)
	case "markdown", "md":
		return r.generateMarkdown(summary), nil
	case "table":
		return r.generateTable(summary), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func (r *Reporter) generateJSON(summary *models.RunSummary) (string, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}

func (r *Reporter) generateTable(summary *models.RunSummary) string {
	t := r.outcomeTable(summary)
	t.SetTitle("Run %s  %s -> %s", shortID(summary.RunID), summary.Seed, summary.OutputFile)
	return t.Render()
}

func (r *Reporter) generateMarkdown(summary *models.RunSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Crawl report: %s\n\n", summary.Seed)
	fmt.Fprintf(&b, "- **Run:** %s\n", summary.RunID)
	fmt.Fprintf(&b, "- **Output file:** %s\n", summary.OutputFile)
	fmt.Fprintf(&b, "- **Started:** %s\n", summary.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Duration:** %s\n\n", summary.Elapsed().Round(time.Millisecond))

	b.WriteString("## Links\n\n")
	fmt.Fprintf(&b, "| Discovered | Same domain | Unique |\n|---|---|---|\n| %d | %d | %d |\n\n",
		summary.Discovered, summary.Filtered, summary.Unique)

	b.WriteString("## Outcomes\n\n")
	b.WriteString(r.outcomeTable(summary).RenderMarkdown())
	b.WriteString("\n")

	return b.String()
}

func (r *Reporter) outcomeTable(summary *models.RunSummary) table.Writer {
	t := table.NewWriter()
	t.SetStyle(r.style)
	t.AppendHeader(table.Row{"#", "URL", "Status", "Bytes", "Duration", "Reason"})
	for i, o := range summary.Outcomes {
		t.AppendRow(table.Row{
			i + 1,
			o.URL,
			string(o.Status),
			o.Bytes,
			o.Duration.Round(time.Millisecond).String(),
			utils.TruncateText(utils.CleanText(o.Reason), maxReasonLength),
		})
	}
	t.AppendFooter(table.Row{
		"", fmt.Sprintf("%d unique of %d discovered", summary.Unique, summary.Discovered),
		fmt.Sprintf("%d ok / %d failed / %d skipped", summary.Succeeded, summary.Failed, summary.Skipped),
		"", summary.Elapsed().Round(time.Millisecond).String(), "",
	})
	return t
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
