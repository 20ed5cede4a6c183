package stdout

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jacoelho/lq/internal/report"
	"github.com/jacoelho/lq/internal/results"
)

func TestFormatter_Reports(t *testing.T) {
	tests := []struct {
		name     string
		report   *report.Report
		expected string
	}{
		{
			name:     "error",
			report:   &report.Report{Locator: "div:has(", Kind: "smart", Error: "locator: parse error: missing closing parenthesis for :has( in \"div:has(\""},
			expected: "Locator: div:has( (smart)\nError: locator: parse error: missing closing parenthesis for :has( in \"div:has(\"\n",
		},
		{
			name:     "no_elements",
			report:   &report.Report{Locator: "table", Kind: "smart", Elements: []report.Element{}},
			expected: "Locator: table (smart)\nNo elements found\n",
		},
		{
			name: "single_element",
			report: &report.Report{
				Locator: "#go",
				Kind:    "css",
				Count:   1,
				Elements: []report.Element{
					{
						Index:      1,
						Tag:        "button",
						ID:         "go",
						Classes:    []string{"btn", "primary"},
						Attributes: []report.Attribute{{Name: "type", Value: "submit"}},
						Text:       "Go now",
					},
				},
			},
			expected: "Locator: #go (css)\nFound 1 element\n\nElements:\n" +
				"1. <button id=\"go\" class=\"btn primary\" type=\"submit\">\n   Text: \"Go now\"\n",
		},
		{
			name: "remaining_elements",
			report: &report.Report{
				Locator: "li",
				Kind:    "smart",
				Count:   4,
				Elements: []report.Element{
					{Index: 1, Tag: "li"},
					{Index: 2, Tag: "li", ID: "b"},
				},
			},
			expected: "Locator: li (smart)\nFound 4 elements\n\nElements:\n" +
				"1. <li>\n\n2. <li id=\"b\">\n\n... and 2 more elements\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewWithWriter(&buf).Reports(tt.report); err != nil {
				t.Fatalf("Reports() error = %v", err)
			}
			if got := buf.String(); got != tt.expected {
				t.Errorf("Reports() =\n%s\nwant\n%s", got, tt.expected)
			}
		})
	}
}

func TestFormatter_Reports_Separated(t *testing.T) {
	var buf bytes.Buffer
	reports := []*report.Report{
		{Locator: "a", Kind: "smart"},
		{Locator: "b", Kind: "smart"},
	}
	if err := NewWithWriter(&buf).Reports(reports...); err != nil {
		t.Fatalf("Reports() error = %v", err)
	}
	if got := strings.Count(buf.String(), separator); got != 1 {
		t.Errorf("separators = %d, want 1 in:\n%s", got, buf.String())
	}
}

func TestFormatter_Format_SingleSummary(t *testing.T) {
	tests := []struct {
		name     string
		summary  *results.Summary
		expected []string
	}{
		{
			name: "successful_case",
			summary: &results.Summary{
				Suite: "shop.yaml",
				CaseResults: []results.CaseResult{
					{Name: "buttons", Locator: "button", Matched: 3, Duration: 2 * time.Millisecond},
				},
				ExecutedCases:   1,
				MatchedElements: 3,
				SucceededCases:  1,
				TotalDuration:   5 * time.Millisecond,
			},
			expected: []string{
				"shop.yaml > buttons: Success (3 match(es) in 2 ms)",
				"Executed cases:    1",
				"Matched elements:  3",
				"Succeeded cases:   1 (100.0%)",
				"Failed cases:      0 (0.0%)",
				"Duration:          5 ms",
			},
		},
		{
			name: "failed_case_without_name",
			summary: &results.Summary{
				Suite: "shop.yaml",
				CaseResults: []results.CaseResult{
					{Locator: "a:visible", Error: errors.New("count: expected 1, got 0")},
				},
				ExecutedCases: 1,
				FailedCases:   1,
			},
			expected: []string{
				"shop.yaml > a:visible: Failed: count: expected 1, got 0 (0 match(es) in 0 ms)",
				"Failed cases:      1 (100.0%)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewWithWriter(&buf).Format(tt.summary); err != nil {
				t.Fatalf("Format() error = %v", err)
			}

			output := buf.String()
			for _, expected := range tt.expected {
				if !strings.Contains(output, expected) {
					t.Errorf("Expected output to contain %q, but got:\n%s", expected, output)
				}
			}
		})
	}
}

func TestFormatter_Format_MultipleSummaries(t *testing.T) {
	summaries := []*results.Summary{
		{Suite: "a.yaml", ExecutedCases: 2, MatchedElements: 4, SucceededCases: 2, TotalDuration: 10 * time.Millisecond},
		{Suite: "b.yaml", ExecutedCases: 1, SucceededCases: 0, FailedCases: 1, TotalDuration: 20 * time.Millisecond},
	}

	var buf bytes.Buffer
	if err := NewWithWriter(&buf).Format(summaries...); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	for _, expected := range []string{
		"SUITE RESULTS:",
		"a.yaml: SUCCESS (2 cases, 4 matches, 10 ms)",
		"b.yaml: FAILED (1 cases, 0 matches, 20 ms)",
		"AGGREGATED RESULTS:",
		"Total suites:          2",
		"Successful suites:     1 (50.0%)",
		"Failed suites:         1 (50.0%)",
		"Total executed cases:  3",
		"Total matched elements: 4",
		"Total duration:        30 ms",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("Expected output to contain %q, but got:\n%s", expected, output)
		}
	}
}

func TestFormatter_Format_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWithWriter(&buf).Format(); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Format() wrote %q, want nothing", buf.String())
	}
}
