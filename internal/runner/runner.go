package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/jacoelho/lq/internal/config"
	"github.com/jacoelho/lq/internal/dom"
	"github.com/jacoelho/lq/internal/exit"
	"github.com/jacoelho/lq/internal/formatter"
	"github.com/jacoelho/lq/internal/formatter/stdout"
	"github.com/jacoelho/lq/internal/formatter/structured"
	"github.com/jacoelho/lq/internal/inspect"
	"github.com/jacoelho/lq/internal/locator"
	"github.com/jacoelho/lq/internal/report"
	"github.com/jacoelho/lq/internal/results"
	"github.com/jacoelho/lq/internal/suite"
	"golang.org/x/net/html"
)

// kindCommand switches the kind of subsequent interactive locators.
const kindCommand = ":kind "

// Runner evaluates locators, suites and interactive sessions for one invocation.
type Runner struct {
	config    *config.Config
	formatter formatter.Formatter
	stdin     io.Reader
	stderr    io.Writer
	documents map[string]*dom.Document
}

// New creates a new Runner writing to the process standard streams.
// If creation fails, returns nil runner and exit result.
func New(cfg *config.Config) (*Runner, *exit.Result) {
	return NewWithIO(cfg, os.Stdin, os.Stdout, os.Stderr)
}

// NewWithIO creates a Runner with custom streams.
func NewWithIO(cfg *config.Config, stdin io.Reader, out, errOut io.Writer) (*Runner, *exit.Result) {
	f, err := newFormatter(cfg.Format, out)
	if err != nil {
		return nil, exit.Errorf("Error creating runner: %v\n", err)
	}

	return &Runner{
		config:    cfg,
		formatter: f,
		stdin:     stdin,
		stderr:    errOut,
		documents: make(map[string]*dom.Document),
	}, nil
}

func newFormatter(format config.Format, w io.Writer) (formatter.Formatter, error) {
	switch format {
	case config.FormatText, "":
		return stdout.NewWithWriter(w), nil
	case config.FormatJSON:
		return structured.NewJSON(w), nil
	case config.FormatYAML:
		return structured.NewYAML(w), nil
	default:
		return nil, fmt.Errorf("%w, got: %s", config.ErrInvalidFormat, format)
	}
}

// Run executes locators, then suites, then the interactive session, and
// returns the process exit code.
func (r *Runner) Run(ctx context.Context) int {
	code := exit.CodeSuccess

	if len(r.config.Locators) > 0 {
		code = max(code, r.runLocators(ctx))
	}

	if len(r.config.Suites) > 0 && ctx.Err() == nil {
		code = max(code, r.runSuites(ctx))
	}

	if r.config.Interactive && ctx.Err() == nil {
		code = max(code, r.runInteractive(ctx))
	}

	if ctx.Err() != nil {
		fmt.Fprintln(r.stderr, "\nInterrupted")
		return exit.CodeFailure
	}
	return code
}

// document parses an HTML file once per runner; StdinDocument reads stdin.
func (r *Runner) document(path string) (*dom.Document, error) {
	if doc, ok := r.documents[path]; ok {
		return doc, nil
	}

	var src io.Reader = r.stdin
	if path != config.StdinDocument {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open document %s: %w", path, err)
		}
		defer f.Close()
		src = f
	}

	doc, err := dom.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", path, err)
	}
	r.documents[path] = doc
	return doc, nil
}

// prepare applies -focus and -press to doc and resolves -scope.
func (r *Runner) prepare(engine *locator.Engine, doc *dom.Document) (*html.Node, error) {
	if r.config.Focus != "" {
		n, err := engine.First(r.config.Focus)
		if err != nil {
			return nil, fmt.Errorf("focus: %w", err)
		}
		doc.Focus(n)
	}
	if r.config.Press != "" {
		n, err := engine.First(r.config.Press)
		if err != nil {
			return nil, fmt.Errorf("press: %w", err)
		}
		doc.Focus(n)
		doc.Press(n)
	}

	scope, err := engine.First(r.config.Scope)
	if err != nil {
		return nil, fmt.Errorf("scope: %w", err)
	}
	return scope, nil
}

// session opens the configured document and an inspection session over it.
func (r *Runner) session() (*inspect.Session, *html.Node, error) {
	doc, err := r.document(r.config.Document)
	if err != nil {
		return nil, nil, err
	}

	engine := locator.New(doc)
	scope, err := r.prepare(engine, doc)
	if err != nil {
		return nil, nil, err
	}

	s := inspect.New(engine, inspect.Options{
		Details:   r.config.Details,
		RateLimit: r.config.RateLimit,
	})
	return s, scope, nil
}

// runLocators reports every -locator. A locator error fails the run, an empty match does not.
func (r *Runner) runLocators(ctx context.Context) int {
	s, scope, err := r.session()
	if err != nil {
		fmt.Fprintf(r.stderr, "Error: %v\n", err)
		return exit.CodeFailure
	}

	code := exit.CodeSuccess
	reports := make([]*report.Report, 0, len(r.config.Locators))
	for _, loc := range r.config.Locators {
		rep, err := s.Inspect(ctx, inspect.Request{Locator: loc, Kind: r.config.Kind, Scope: scope})
		if err != nil {
			fmt.Fprintf(r.stderr, "Error: %v\n", err)
			return exit.CodeFailure
		}
		if !rep.OK() {
			code = exit.CodeFailure
		}
		reports = append(reports, rep)
	}

	if err := r.formatter.Reports(reports...); err != nil {
		fmt.Fprintf(r.stderr, "Error formatting results: %v\n", err)
		return exit.CodeFailure
	}
	return code
}

func (r *Runner) runSuites(ctx context.Context) int {
	summaries := make([]*results.Summary, 0, len(r.config.Suites))

	for _, path := range r.config.Suites {
		if ctx.Err() != nil {
			break
		}
		summaries = append(summaries, r.runSuite(ctx, path))
	}

	if err := r.formatter.Format(summaries...); err != nil {
		fmt.Fprintf(r.stderr, "Error formatting results: %v\n", err)
		return exit.CodeFailure
	}

	for _, s := range summaries {
		if s.Failed() {
			return exit.CodeFailure
		}
	}
	return exit.CodeSuccess
}

// runSuite never fails outright: load errors are recorded as a failed case.
func (r *Runner) runSuite(ctx context.Context, path string) *results.Summary {
	failed := func(err error) *results.Summary {
		s := results.NewSummary(path, 1)
		s.Add(results.NewCaseResultBuilder("load").WithError(err))
		return s
	}

	s, err := suite.Load(path)
	if err != nil {
		return failed(err)
	}

	docPath := s.Document
	if docPath == "" {
		docPath = r.config.Document
	}
	if docPath == "" {
		return failed(fmt.Errorf("%s: %w", path, config.ErrNoDocument))
	}

	doc, err := r.document(docPath)
	if err != nil {
		return failed(err)
	}
	return suite.Run(ctx, s, doc)
}

// runInteractive evaluates stdin lines as they arrive. Reports of lines
// superseded before their evaluation finished are dropped.
func (r *Runner) runInteractive(ctx context.Context) int {
	s, scope, err := r.session()
	if err != nil {
		fmt.Fprintf(r.stderr, "Error: %v\n", err)
		return exit.CodeFailure
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	responses := make(chan inspect.Response)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for resp := range responses {
			r.print(ctx, resp)
		}
	}()

	var wg sync.WaitGroup
	kind := r.config.Kind

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}

			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if name, found := strings.CutPrefix(line, kindCommand); found {
				k, err := locator.ParseKind(name)
				if err != nil {
					fmt.Fprintf(r.stderr, "Error: %v\n", err)
					continue
				}
				kind = k
				continue
			}

			ch := s.Submit(ctx, inspect.Request{Locator: line, Kind: kind, Scope: scope})
			wg.Add(1)
			go func() {
				defer wg.Done()
				for resp := range ch {
					responses <- resp
				}
			}()
		}
	}

	wg.Wait()
	close(responses)
	<-printed

	select {
	case err := <-readErr:
		if err != nil {
			fmt.Fprintf(r.stderr, "Error reading locators: %v\n", err)
			return exit.CodeFailure
		}
	default:
	}
	return exit.CodeSuccess
}

func (r *Runner) print(ctx context.Context, resp inspect.Response) {
	if resp.Err != nil {
		if errors.Is(resp.Err, inspect.ErrStale) || ctx.Err() != nil {
			return
		}
		fmt.Fprintf(r.stderr, "Error: %v\n", resp.Err)
		return
	}
	if err := r.formatter.Reports(resp.Report); err != nil {
		fmt.Fprintf(r.stderr, "Error formatting results: %v\n", err)
	}
}
