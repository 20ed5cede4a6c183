package suite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jacoelho/lq/internal/dom"
	"github.com/jacoelho/lq/internal/locator"
	"github.com/jacoelho/lq/internal/report"
	"github.com/jacoelho/lq/internal/results"
	"github.com/theory/jsonpath"
)

// ErrAssertion marks a case whose report did not satisfy its asserts.
var ErrAssertion = errors.New("assertion failed")

// Run evaluates every case of s against doc in order and summarizes the outcome.
// Focus and pressed state set by a case are cleared before the next one.
// Cases left when ctx is done are not executed.
func Run(ctx context.Context, s *Suite, doc *dom.Document) *results.Summary {
	summary := results.NewSummary(s.Name, len(s.Cases))
	engine := locator.New(doc)
	start := time.Now()

	for _, c := range s.Cases {
		if ctx.Err() != nil {
			break
		}

		caseStart := time.Now()
		rep, err := runCase(engine, doc, c)

		builder := results.NewCaseResultBuilder(c.Label()).
			WithLocator(c.Locator).
			WithDuration(time.Since(caseStart))
		if rep != nil {
			builder.WithMatched(rep.Count)
		}
		if err == nil {
			err = Check(c.Asserts, rep)
		}
		summary.Add(builder.WithError(err))
	}

	summary.SetTotalDuration(time.Since(start))
	return summary
}

func runCase(engine *locator.Engine, doc *dom.Document, c Case) (*report.Report, error) {
	defer func() {
		doc.Focus(nil)
		doc.Press(nil)
	}()

	kind, err := locator.ParseKind(c.Kind)
	if err != nil {
		return nil, err
	}

	scope, err := engine.First(c.Scope)
	if err != nil {
		return nil, fmt.Errorf("scope: %w", err)
	}
	if c.Focus != "" {
		n, err := engine.First(c.Focus)
		if err != nil {
			return nil, fmt.Errorf("focus: %w", err)
		}
		doc.Focus(n)
	}
	if c.Press != "" {
		n, err := engine.First(c.Press)
		if err != nil {
			return nil, fmt.Errorf("press: %w", err)
		}
		doc.Focus(n)
		doc.Press(n)
	}

	res := engine.Find(kind, c.Locator, scope)
	return report.Build(res, report.Options{Locator: c.Locator, Kind: kind, Limit: -1}), nil
}

// Check evaluates asserts against a report.
// A locator error fails the case unless error assertions expect one.
func Check(a Asserts, rep *report.Report) error {
	return check(a, rep, reportDocument)
}

func check(a Asserts, rep *report.Report, encode func(*report.Report) (any, error)) error {
	if !rep.OK() && len(a.Error) == 0 {
		return fmt.Errorf("%w: locator error: %s", ErrAssertion, rep.Error)
	}

	var errs []error
	for _, p := range a.Count {
		if err := expect("count", p, rep.Count); err != nil {
			errs = append(errs, err)
		}
	}
	for _, p := range a.Error {
		if err := expect("error", p, rep.Error); err != nil {
			errs = append(errs, err)
		}
	}

	if len(a.JSONPath) > 0 {
		doc, err := encode(rep)
		if err != nil {
			errs = append(errs, fmt.Errorf("jsonpath: %w", err))
			return errors.Join(errs...)
		}
		for _, j := range a.JSONPath {
			path, err := jsonpath.Parse(j.Path)
			if err != nil {
				errs = append(errs, fmt.Errorf("jsonpath %s: %w", j.Path, err))
				continue
			}

			var actual any
			if selected := path.Select(doc); len(selected) > 0 {
				actual = selected[0]
			}
			if err := expect("jsonpath "+j.Path, j.Predicate, actual); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

func expect(subject string, p Predicate, actual any) error {
	ok, err := p.Evaluate(actual)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrAssertion, subject, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s: expected %s, got %v", ErrAssertion, subject, p, actual)
	}
	return nil
}

// reportDocument is the generic JSON value of rep that JSONPath selects from.
func reportDocument(rep *report.Report) (any, error) {
	data, err := json.Marshal(rep)
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return doc, nil
}
