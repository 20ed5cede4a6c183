package results

import (
	"time"
)

// CaseResult is the outcome of one suite case.
type CaseResult struct {
	Name     string
	Locator  string
	Matched  int
	Duration time.Duration
	Error    error
}

type CaseResultBuilder struct {
	name     string
	locator  string
	matched  int
	duration time.Duration
	err      error
}

func NewCaseResultBuilder(name string) *CaseResultBuilder {
	return &CaseResultBuilder{
		name: name,
	}
}

func (b *CaseResultBuilder) WithLocator(locator string) *CaseResultBuilder {
	b.locator = locator
	return b
}

func (b *CaseResultBuilder) WithMatched(count int) *CaseResultBuilder {
	b.matched = count
	return b
}

func (b *CaseResultBuilder) WithDuration(duration time.Duration) *CaseResultBuilder {
	b.duration = duration
	return b
}

func (b *CaseResultBuilder) WithError(err error) *CaseResultBuilder {
	b.err = err
	return b
}

func (b *CaseResultBuilder) Build() CaseResult {
	return CaseResult{
		Name:     b.name,
		Locator:  b.locator,
		Matched:  b.matched,
		Duration: b.duration,
		Error:    b.err,
	}
}

// Summary collects the case results of one suite file.
type Summary struct {
	Suite           string
	CaseResults     []CaseResult
	ExecutedCases   int
	MatchedElements int
	SucceededCases  int
	FailedCases     int
	TotalDuration   time.Duration
}

func NewSummary(suite string, expectedCases int) *Summary {
	return &Summary{
		Suite:       suite,
		CaseResults: make([]CaseResult, 0, expectedCases),
	}
}

func (s *Summary) Add(builder *CaseResultBuilder) {
	result := builder.Build()

	s.CaseResults = append(s.CaseResults, result)
	s.ExecutedCases++
	s.MatchedElements += result.Matched

	if result.Error != nil {
		s.FailedCases++
	} else {
		s.SucceededCases++
	}
}

func (s *Summary) SetTotalDuration(duration time.Duration) {
	s.TotalDuration = duration
}

func (s *Summary) SuccessPercentage() float64 {
	if s.ExecutedCases == 0 {
		return 0
	}
	return (float64(s.SucceededCases) / float64(s.ExecutedCases)) * 100
}

func (s *Summary) FailurePercentage() float64 {
	if s.ExecutedCases == 0 {
		return 0
	}
	return (float64(s.FailedCases) / float64(s.ExecutedCases)) * 100
}

// Failed reports whether any case failed.
func (s *Summary) Failed() bool {
	return s.FailedCases > 0
}

type AggregatedStats struct {
	SuiteCount           int
	SuccessfulSuites     int
	TotalExecutedCases   int
	TotalMatchedElements int
	TotalSucceededCases  int
	TotalFailedCases     int
	TotalDuration        time.Duration
}

func CalculateAggregatedStats(summaries []*Summary) AggregatedStats {
	var stats AggregatedStats
	stats.SuiteCount = len(summaries)

	for _, s := range summaries {
		stats.TotalExecutedCases += s.ExecutedCases
		stats.TotalMatchedElements += s.MatchedElements
		stats.TotalSucceededCases += s.SucceededCases
		stats.TotalFailedCases += s.FailedCases
		stats.TotalDuration += s.TotalDuration

		if s.FailedCases == 0 {
			stats.SuccessfulSuites++
		}
	}

	return stats
}

// SuccessRate is the percentage of suites without failed cases.
func (a AggregatedStats) SuccessRate() float64 {
	if a.SuiteCount == 0 {
		return 0
	}
	return float64(a.SuccessfulSuites) / float64(a.SuiteCount) * 100
}
