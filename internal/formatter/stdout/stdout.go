package stdout

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jacoelho/lq/internal/formatter"
	"github.com/jacoelho/lq/internal/report"
	"github.com/jacoelho/lq/internal/results"
	"github.com/jacoelho/lq/internal/sanitizer"
)

const separator = "--------------------------------------------------------------------------------"

// Formatter implements stdout-based output formatting.
type Formatter struct {
	writer io.Writer
}

// New creates a new stdout formatter that outputs to stdout.
func New() formatter.Formatter {
	return &Formatter{
		writer: os.Stdout,
	}
}

// NewWithWriter creates a new stdout formatter with a custom writer.
// This is useful for testing or redirecting output to files.
func NewWithWriter(writer io.Writer) formatter.Formatter {
	return &Formatter{
		writer: writer,
	}
}

// Reports prints each report as a status line followed by the described elements.
func (f *Formatter) Reports(reports ...*report.Report) error {
	for i, r := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(f.writer, separator); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(f.writer, Render(r)); err != nil {
			return err
		}
	}
	return nil
}

// Render returns the text block for one report.
func Render(r *report.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Locator: %s (%s)\n", r.Locator, r.Kind)

	switch {
	case !r.OK():
		fmt.Fprintf(&b, "Error: %s\n", r.Error)
		return b.String()
	case r.Count == 0:
		b.WriteString("No elements found\n")
		return b.String()
	}

	plural := ""
	if r.Count > 1 {
		plural = "s"
	}
	fmt.Fprintf(&b, "Found %d element%s\n", r.Count, plural)

	if len(r.Elements) > 0 {
		b.WriteString("\nElements:\n")
		b.WriteString(details(r))
		b.WriteString("\n")
	}
	return b.String()
}

func details(r *report.Report) string {
	entries := make([]string, 0, len(r.Elements)+1)
	for _, el := range r.Elements {
		entries = append(entries, element(el))
	}
	if n := r.Remaining(); n > 0 {
		entries = append(entries, fmt.Sprintf("... and %d more elements", n))
	}
	return strings.Join(entries, "\n\n")
}

func element(el report.Element) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. <%s", el.Index, el.Tag)
	if el.ID != "" {
		fmt.Fprintf(&b, " id=\"%s\"", el.ID)
	}
	if len(el.Classes) > 0 {
		fmt.Fprintf(&b, " class=\"%s\"", strings.Join(el.Classes, " "))
	}
	for _, attr := range el.Attributes {
		fmt.Fprintf(&b, " %s=\"%s\"", attr.Name, sanitizer.Line(attr.Value))
	}
	b.WriteString(">")

	if el.Text != "" {
		fmt.Fprintf(&b, "\n   Text: \"%s\"", sanitizer.Line(el.Text))
	}
	return b.String()
}

// Format automatically determines whether to format as single or aggregated results
// based on the number of summaries provided.
func (f *Formatter) Format(summaries ...*results.Summary) error {
	if len(summaries) > 1 {
		return f.formatAggregated(summaries)
	} else if len(summaries) == 1 {
		return f.formatSingle(summaries[0])
	}
	return nil
}

// formatSingle formats a single suite summary in stdout format.
func (f *Formatter) formatSingle(s *results.Summary) error {
	for _, c := range s.CaseResults {
		status := "Success"
		if c.Error != nil {
			status = fmt.Sprintf("Failed: %v", c.Error)
		}
		_, err := fmt.Fprintf(f.writer, "%s: %s (%d match(es) in %d ms)\n",
			caseLabel(s.Suite, c), status, c.Matched, c.Duration.Milliseconds())
		if err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(f.writer, separator); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(f.writer, "Executed cases:    %d\n", s.ExecutedCases); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Matched elements:  %d\n", s.MatchedElements); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Succeeded cases:   %d (%.1f%%)\n", s.SucceededCases, s.SuccessPercentage()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Failed cases:      %d (%.1f%%)\n", s.FailedCases, s.FailurePercentage()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Duration:          %d ms\n", s.TotalDuration.Milliseconds()); err != nil {
		return err
	}

	return nil
}

func caseLabel(suite string, c results.CaseResult) string {
	name := c.Name
	if name == "" {
		name = c.Locator
	}
	if suite == "" {
		return name
	}
	return suite + " > " + name
}

// formatAggregated formats results from multiple suites in stdout format.
func (f *Formatter) formatAggregated(summaries []*results.Summary) error {
	for _, s := range summaries {
		if err := f.formatSingle(s); err != nil {
			return err
		}
	}

	stats := results.CalculateAggregatedStats(summaries)

	if err := f.printSuiteSummary(summaries); err != nil {
		return err
	}

	return f.printAggregatedSummary(stats)
}

func (f *Formatter) printSuiteSummary(summaries []*results.Summary) error {
	if _, err := fmt.Fprintln(f.writer, "================================================================================"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(f.writer, "SUITE RESULTS:"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(f.writer, "================================================================================"); err != nil {
		return err
	}

	for _, s := range summaries {
		status := "SUCCESS"
		if s.Failed() {
			status = "FAILED"
		}

		_, err := fmt.Fprintf(f.writer, "%s: %s (%d cases, %d matches, %d ms)\n",
			s.Suite, status, s.ExecutedCases, s.MatchedElements, s.TotalDuration.Milliseconds())
		if err != nil {
			return err
		}
	}

	return nil
}

func (f *Formatter) printAggregatedSummary(stats results.AggregatedStats) error {
	if _, err := fmt.Fprintln(f.writer, "================================================================================"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(f.writer, "AGGREGATED RESULTS:"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(f.writer, "================================================================================"); err != nil {
		return err
	}

	successRate := stats.SuccessRate()

	if _, err := fmt.Fprintf(f.writer, "Total suites:          %d\n", stats.SuiteCount); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Successful suites:     %d (%.1f%%)\n", stats.SuccessfulSuites, successRate); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Failed suites:         %d (%.1f%%)\n", stats.SuiteCount-stats.SuccessfulSuites, 100-successRate); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Total executed cases:  %d\n", stats.TotalExecutedCases); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Total matched elements: %d\n", stats.TotalMatchedElements); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Total succeeded cases: %d\n", stats.TotalSucceededCases); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Total failed cases:    %d\n", stats.TotalFailedCases); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Total duration:        %d ms\n", stats.TotalDuration.Milliseconds()); err != nil {
		return err
	}

	return nil
}
