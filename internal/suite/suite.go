// Package suite loads YAML files of locator cases and checks each case's
// match report against count, error and JSONPath assertions.
package suite

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	yaml "github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/jacoelho/lq/internal/locator"
	"github.com/jacoelho/lq/internal/pathing"
	"github.com/theory/jsonpath"
)

// ErrSuite is the sentinel error for malformed suite files.
var ErrSuite = errors.New("suite error")

// Suite is a named list of cases evaluated against one document.
type Suite struct {
	Name string `yaml:"name,omitempty"`
	// Document is an HTML file, relative to the suite file once loaded with Load.
	Document string `yaml:"document,omitempty"`
	Cases    []Case `yaml:"cases"`
}

// Case is one locator and the assertions its report must satisfy.
type Case struct {
	Name    string  `yaml:"name,omitempty"`
	Locator string  `yaml:"locator"`
	Kind    string  `yaml:"kind,omitempty"`
	Scope   string  `yaml:"scope,omitempty"`
	Focus   string  `yaml:"focus,omitempty"`
	Press   string  `yaml:"press,omitempty"`
	Asserts Asserts `yaml:"asserts,omitempty"`
}

// Asserts groups the checks of a case. A case without asserts only requires
// the locator to resolve without error.
type Asserts struct {
	Count    []Predicate      `yaml:"count,omitempty"`
	Error    []Predicate      `yaml:"error,omitempty"`
	JSONPath []JSONPathAssert `yaml:"jsonpath,omitempty"`
}

// JSONPathAssert checks a value selected from the JSON form of the match report.
type JSONPathAssert struct {
	Path      string
	Predicate Predicate
}

// UnmarshalYAML separates the path from the predicate fields.
func (j *JSONPathAssert) UnmarshalYAML(node ast.Node) error {
	mapNode, ok := node.(*ast.MappingNode)
	if !ok {
		return fmt.Errorf("%w: jsonpath assert: expected mapping node", ErrSuite)
	}

	var rest []*ast.MappingValueNode
	for _, valNode := range mapNode.Values {
		key, ok := valNode.Key.(*ast.StringNode)
		if !ok {
			return fmt.Errorf("%w: jsonpath assert: key must be string", ErrSuite)
		}
		if key.Value != "path" {
			rest = append(rest, valNode)
			continue
		}
		path, ok := valNode.Value.(*ast.StringNode)
		if !ok {
			return fmt.Errorf("%w: jsonpath assert: path value must be string", ErrSuite)
		}
		j.Path = path.Value
	}

	if j.Path == "" {
		return fmt.Errorf("%w: jsonpath assert: missing required 'path' field", ErrSuite)
	}
	if err := j.Predicate.decode(rest); err != nil {
		return fmt.Errorf("%w: jsonpath assert %s: %v", ErrSuite, j.Path, err)
	}
	return nil
}

func (a Asserts) empty() bool {
	return len(a.Count) == 0 && len(a.Error) == 0 && len(a.JSONPath) == 0
}

// Label names the case in results, falling back to its locator.
func (c Case) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Locator
}

// Parse decodes and validates a suite.
func Parse(r io.Reader) (*Suite, error) {
	var s Suite
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: failed to decode YAML: %v", ErrSuite, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a suite file. A relative Document is resolved against the
// directory of the file, and an empty Name defaults to the file name.
func Load(path string) (*Suite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSuite, err)
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if s.Name == "" {
		s.Name = filepath.Base(path)
	}
	s.Document = pathing.Resolve(s.Document, path)
	return s, nil
}

// Validate checks every case up front so no case fails on a typo at run time.
func (s *Suite) Validate() error {
	if len(s.Cases) == 0 {
		return fmt.Errorf("%w: no cases defined", ErrSuite)
	}

	var errs []error
	for i, c := range s.Cases {
		if err := c.validate(); err != nil {
			errs = append(errs, fmt.Errorf("case %d (%s): %w", i+1, c.Label(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrSuite, errors.Join(errs...))
	}
	return nil
}

func (c Case) validate() error {
	if strings.TrimSpace(c.Locator) == "" {
		return errors.New("locator is required")
	}
	if _, err := locator.ParseKind(c.Kind); err != nil {
		return err
	}

	for _, p := range c.Asserts.Count {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("count: %w", err)
		}
	}
	for _, p := range c.Asserts.Error {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("error: %w", err)
		}
	}
	for _, j := range c.Asserts.JSONPath {
		if _, err := jsonpath.Parse(j.Path); err != nil {
			return fmt.Errorf("jsonpath %s: %w", j.Path, err)
		}
		if err := j.Predicate.Validate(); err != nil {
			return fmt.Errorf("jsonpath %s: %w", j.Path, err)
		}
	}
	return nil
}
