// Package structured writes reports and suite summaries as JSON or YAML documents.
package structured

import (
	"encoding/json"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/jacoelho/lq/internal/formatter"
	"github.com/jacoelho/lq/internal/report"
	"github.com/jacoelho/lq/internal/results"
)

type encodeFunc func(w io.Writer, v any) error

// Formatter encodes values with a fixed document encoding.
type Formatter struct {
	writer io.Writer
	encode encodeFunc
}

// NewJSON creates a JSON formatter writing to w, or stdout when w is nil.
func NewJSON(w io.Writer) formatter.Formatter {
	return &Formatter{writer: orStdout(w), encode: encodeJSON}
}

// NewYAML creates a YAML formatter writing to w, or stdout when w is nil.
func NewYAML(w io.Writer) formatter.Formatter {
	return &Formatter{writer: orStdout(w), encode: encodeYAML}
}

func orStdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func encodeYAML(w io.Writer, v any) error {
	return yaml.NewEncoder(w).Encode(v)
}

// Reports writes a single report as an object and several as a list.
func (f *Formatter) Reports(reports ...*report.Report) error {
	switch len(reports) {
	case 0:
		return nil
	case 1:
		return f.encode(f.writer, reports[0])
	default:
		return f.encode(f.writer, reports)
	}
}

type caseView struct {
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Locator    string `json:"locator" yaml:"locator"`
	Matched    int    `json:"matched" yaml:"matched"`
	DurationMS int64  `json:"duration_ms" yaml:"duration_ms"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

type summaryView struct {
	Suite           string     `json:"suite" yaml:"suite"`
	Cases           []caseView `json:"cases" yaml:"cases"`
	ExecutedCases   int        `json:"executed_cases" yaml:"executed_cases"`
	MatchedElements int        `json:"matched_elements" yaml:"matched_elements"`
	SucceededCases  int        `json:"succeeded_cases" yaml:"succeeded_cases"`
	FailedCases     int        `json:"failed_cases" yaml:"failed_cases"`
	DurationMS      int64      `json:"duration_ms" yaml:"duration_ms"`
}

type aggregatedView struct {
	Suites           []summaryView `json:"suites" yaml:"suites"`
	SuiteCount       int           `json:"suite_count" yaml:"suite_count"`
	SuccessfulSuites int           `json:"successful_suites" yaml:"successful_suites"`
	ExecutedCases    int           `json:"executed_cases" yaml:"executed_cases"`
	MatchedElements  int           `json:"matched_elements" yaml:"matched_elements"`
	FailedCases      int           `json:"failed_cases" yaml:"failed_cases"`
	DurationMS       int64         `json:"duration_ms" yaml:"duration_ms"`
}

func newSummaryView(s *results.Summary) summaryView {
	v := summaryView{
		Suite:           s.Suite,
		Cases:           make([]caseView, 0, len(s.CaseResults)),
		ExecutedCases:   s.ExecutedCases,
		MatchedElements: s.MatchedElements,
		SucceededCases:  s.SucceededCases,
		FailedCases:     s.FailedCases,
		DurationMS:      s.TotalDuration.Milliseconds(),
	}
	for _, c := range s.CaseResults {
		cv := caseView{
			Name:       c.Name,
			Locator:    c.Locator,
			Matched:    c.Matched,
			DurationMS: c.Duration.Milliseconds(),
		}
		if c.Error != nil {
			cv.Error = c.Error.Error()
		}
		v.Cases = append(v.Cases, cv)
	}
	return v
}

// Format writes one summary object, or an aggregate holding every summary.
func (f *Formatter) Format(summaries ...*results.Summary) error {
	switch len(summaries) {
	case 0:
		return nil
	case 1:
		return f.encode(f.writer, newSummaryView(summaries[0]))
	}

	stats := results.CalculateAggregatedStats(summaries)
	v := aggregatedView{
		Suites:           make([]summaryView, 0, len(summaries)),
		SuiteCount:       stats.SuiteCount,
		SuccessfulSuites: stats.SuccessfulSuites,
		ExecutedCases:    stats.TotalExecutedCases,
		MatchedElements:  stats.TotalMatchedElements,
		FailedCases:      stats.TotalFailedCases,
		DurationMS:       stats.TotalDuration.Milliseconds(),
	}
	for _, s := range summaries {
		v.Suites = append(v.Suites, newSummaryView(s))
	}
	return f.encode(f.writer, v)
}
