package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jacoelho/lq/internal/exit"
	"github.com/jacoelho/lq/internal/locator"
	"github.com/jacoelho/lq/internal/pathing"
	"github.com/jacoelho/lq/internal/report"
)

// StdinDocument is the document argument that reads HTML from standard input.
const StdinDocument = pathing.Stdin

var (
	ErrNoArguments      = errors.New("no arguments provided")
	ErrNoDocument       = errors.New("no HTML document specified")
	ErrTooManyDocuments = errors.New("only one HTML document can be inspected")
	ErrNothingToDo      = errors.New("at least one of -locator, -suite or -interactive is required")
	ErrStdinConflict    = errors.New("-interactive reads locators from stdin and cannot read the document from it")
	ErrInvalidFormat    = errors.New("format must be one of text, json, yaml")
	ErrEmptyLocator     = errors.New("locator cannot be empty")
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w, got: %s", ErrInvalidFormat, s)
	}
}

// Config represents the complete configuration for the lq tool.
type Config struct {
	// Document is the HTML file to inspect, StdinDocument for standard input.
	// Suites may name their own document, in which case it can be empty.
	Document string

	// Locator evaluation
	Locators []string
	Kind     locator.Kind
	Scope    string // Locator whose first match becomes the match scope
	Focus    string // Locator whose first match becomes the active element
	Press    string // Locator whose first match is focused and pressed

	// Output
	Format  Format
	Details int // Elements described per report (negative = all)

	// Suites and live inspection
	Suites      []string
	Interactive bool
	RateLimit   float64 // Evaluations per second in interactive mode (0 = unlimited)
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if len(c.Locators) == 0 && len(c.Suites) == 0 && !c.Interactive {
		return ErrNothingToDo
	}

	if c.Document == "" && (len(c.Locators) > 0 || c.Interactive) {
		return ErrNoDocument
	}

	if c.Interactive && c.Document == StdinDocument {
		return ErrStdinConflict
	}

	if c.Document != "" && c.Document != StdinDocument {
		if _, err := os.Stat(c.Document); err != nil {
			return fmt.Errorf("document %s not found: %w", c.Document, err)
		}
	}

	for _, file := range c.Suites {
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("suite file %s not found: %w", file, err)
		}
	}

	if _, err := ParseFormat(string(c.Format)); err != nil {
		return err
	}

	return nil
}

// locatorsFlag implements flag.Value for parsing multiple -locator flags.
type locatorsFlag []string

// String returns a string representation of the locators flag for flag.Value interface.
func (l *locatorsFlag) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(*l, ", ")
}

// Set appends a locator for flag.Value interface.
func (l *locatorsFlag) Set(value string) error {
	if strings.TrimSpace(value) == "" {
		return ErrEmptyLocator
	}
	*l = append(*l, value)
	return nil
}

// filesFlag implements flag.Value for parsing multiple -suite flags.
type filesFlag []string

func (f *filesFlag) String() string {
	if f == nil {
		return ""
	}
	return strings.Join(*f, ",")
}

func (f *filesFlag) Set(value string) error {
	for _, file := range strings.Split(value, ",") {
		if file = strings.TrimSpace(file); file != "" {
			*f = append(*f, file)
		}
	}
	return nil
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Usagef("Error: %v\n\n%s", ErrNoArguments, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)

	// Suppress the default usage output since we handle it ourselves
	fs.Usage = func() {}
	// Suppress error output since we handle it ourselves
	fs.SetOutput(io.Discard)

	var (
		locators    locatorsFlag
		suites      filesFlag
		kind        locator.Kind
		scope       = fs.String("scope", "", "Locator whose first match is used as the match scope")
		focus       = fs.String("focus", "", "Locator whose first match becomes the active element")
		press       = fs.String("press", "", "Locator whose first match is focused and pressed")
		format      = fs.String("format", string(FormatText), "Output format: text, json or yaml")
		details     = fs.Int("details", report.DefaultLimit, "Number of matched elements to describe (negative for all)")
		interactive = fs.Bool("interactive", false, "Read locators from stdin, one per line")
		rateLimit   = fs.Float64("rate-limit", 0, "Interactive evaluations per second (0 for unlimited)")
	)

	fs.Var(&locators, "locator", "Locator to evaluate (can be used multiple times)")
	fs.Var(&suites, "suite", "Suite file to run (can be used multiple times or comma separated)")
	fs.TextVar(&kind, "kind", locator.KindAuto, "Locator kind: "+strings.Join(locator.Kinds(), ", "))

	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Usagef("Error: failed to parse arguments: %v\n\n%s", err, Usage())
	}

	var document string
	switch rest := fs.Args(); len(rest) {
	case 0:
	case 1:
		document = pathing.Normalize(rest[0])
	default:
		return nil, exit.Usagef("Error: %v, got: %s\n\n%s", ErrTooManyDocuments, strings.Join(rest, " "), Usage())
	}

	outputFormat, err := ParseFormat(*format)
	if err != nil {
		return nil, exit.Usagef("Error: %v\n\n%s", err, Usage())
	}

	config := &Config{
		Document:    document,
		Locators:    locators,
		Kind:        kind,
		Scope:       *scope,
		Focus:       *focus,
		Press:       *press,
		Format:      outputFormat,
		Details:     *details,
		Suites:      suites,
		Interactive: *interactive,
		RateLimit:   *rateLimit,
	}

	if err := config.Validate(); err != nil {
		return nil, exit.Usagef("Error: %v\n\n%s", err, Usage())
	}

	return config, nil
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `lq - locator query tool for HTML documents

Usage: lq [options] <document.html | ->

Options:
  --locator LOCATOR       Locator to evaluate (can be used multiple times)
  --kind KIND             Locator kind: auto, smart, css, xpath, playwright, regex (default: auto)
  --scope LOCATOR         Evaluate locators inside the first match of LOCATOR
  --focus LOCATOR         Make the first match of LOCATOR the active element
  --press LOCATOR         Focus and press the first match of LOCATOR (:active)
  --format FORMAT         Output format: text, json, yaml (default: text)
  --details N             Number of matched elements to describe (default: 5, negative for all)
  --suite FILE            Suite file to run (can be used multiple times)
  --interactive           Read locators from stdin, one per line
  --rate-limit N          Interactive evaluations per second (0 for unlimited)
  -h, --help              Show this help message

Examples:
  lq --locator 'li:has-text("Apple")' page.html
  lq --locator '//ul/li[2]' --format json page.html
  lq --locator 'getByRole("button")' --details -1 page.html
  lq --locator 'form >> input:visible' --scope '#checkout' page.html
  lq --kind regex --locator '/total: \d+/i' page.html
  curl -s https://example.com | lq --locator 'a' -
  lq --suite locators.yaml page.html
  lq --interactive --rate-limit 5 page.html`
}
