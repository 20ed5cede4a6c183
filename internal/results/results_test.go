package results

import (
	"errors"
	"testing"
	"time"
)

func TestSummaryAdd(t *testing.T) {
	t.Parallel()

	s := NewSummary("checkout.yaml", 3)
	s.Add(NewCaseResultBuilder("buttons").WithLocator("button").WithMatched(3).WithDuration(2 * time.Millisecond))
	s.Add(NewCaseResultBuilder("links").WithLocator("a").WithMatched(0).WithError(errors.New("count: expected 1")))
	s.Add(NewCaseResultBuilder("inputs").WithLocator("input").WithMatched(2))
	s.SetTotalDuration(10 * time.Millisecond)

	if s.ExecutedCases != 3 || s.SucceededCases != 2 || s.FailedCases != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1", s.ExecutedCases, s.SucceededCases, s.FailedCases)
	}
	if s.MatchedElements != 5 {
		t.Errorf("MatchedElements = %d, want 5", s.MatchedElements)
	}
	if !s.Failed() {
		t.Error("Failed() = false, want true")
	}
	if got := s.CaseResults[0].Locator; got != "button" {
		t.Errorf("CaseResults[0].Locator = %q", got)
	}

	if got, want := s.FailurePercentage(), 100.0/3; got != want {
		t.Errorf("FailurePercentage() = %v, want %v", got, want)
	}
}

func TestSummaryPercentagesEmpty(t *testing.T) {
	t.Parallel()

	s := NewSummary("empty.yaml", 0)
	if s.SuccessPercentage() != 0 || s.FailurePercentage() != 0 {
		t.Errorf("percentages of an empty summary = %v/%v, want 0/0", s.SuccessPercentage(), s.FailurePercentage())
	}
}

func TestCalculateAggregatedStats(t *testing.T) {
	t.Parallel()

	summaries := []*Summary{
		{ExecutedCases: 2, MatchedElements: 4, SucceededCases: 2, TotalDuration: time.Second},
		{ExecutedCases: 3, MatchedElements: 1, SucceededCases: 1, FailedCases: 2, TotalDuration: 2 * time.Second},
	}

	got := CalculateAggregatedStats(summaries)
	want := AggregatedStats{
		SuiteCount:           2,
		SuccessfulSuites:     1,
		TotalExecutedCases:   5,
		TotalMatchedElements: 5,
		TotalSucceededCases:  3,
		TotalFailedCases:     2,
		TotalDuration:        3 * time.Second,
	}
	if got != want {
		t.Errorf("CalculateAggregatedStats() = %+v, want %+v", got, want)
	}
	if got.SuccessRate() != 50 {
		t.Errorf("SuccessRate() = %v, want 50", got.SuccessRate())
	}
}
