// Package suite loads accessibility test suites from YAML files and runs them against a
// framework.TestHarness.
//
// A suite file looks like this:
//
//	name: checkout
//	config:
//	  impactLevels: [serious, critical]
//	cases:
//	  - name: payment form
//	    file: fixtures/payment.html
//	  - name: legacy banner
//	    html: <div><img src="banner.png"></div>
//	    maxViolations: 1
//	  - name: known image problem
//	    html: <img src="logo.png">
//	    expectViolations: [image-alt]
//
// A case passes if it has no violations, at most maxViolations violations when that is set,
// or exactly the violations named by expectViolations when that is set.
package suite

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	"gopkg.in/yaml.v3"

	"github.com/launchdarkly/axe-contract-tests/axe"
	"github.com/launchdarkly/axe-contract-tests/results"
)

// Suite is a named group of audit cases that share a configuration.
type Suite struct {
	Name   string     `yaml:"name"`
	Config axe.Config `yaml:"config"`
	Cases  []Case     `yaml:"cases"`

	// Path is the file the suite was loaded from, if any.
	Path string `yaml:"-"`
}

// Case is one audit.
type Case struct {
	Name string `yaml:"name"`

	// HTML is the markup to audit. File, relative to the suite file, can be used instead.
	HTML string `yaml:"html"`
	File string `yaml:"file"`

	// Options are merged over the suite configuration for this audit only.
	Options axe.Options `yaml:"options"`

	// ImpactLevels overrides the suite's impact filter.
	ImpactLevels []results.Impact `yaml:"impactLevels"`

	MaxViolations    ldvalue.OptionalInt `yaml:"-"`
	ExpectViolations []string            `yaml:"expectViolations"`

	// Skip, if not empty, is the reason the case is not run.
	Skip string `yaml:"skip"`
}

// UnmarshalYAML decodes a case; ldvalue.OptionalInt has no YAML decoding of its own.
func (c *Case) UnmarshalYAML(node *yaml.Node) error {
	type plainCase Case
	var raw struct {
		Case          plainCase `yaml:",inline"`
		MaxViolations *int      `yaml:"maxViolations"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*c = Case(raw.Case)
	if raw.MaxViolations != nil {
		c.MaxViolations = ldvalue.NewOptionalInt(*raw.MaxViolations)
	}
	return nil
}

// AuditOptions returns the per-call options for the case.
func (c Case) AuditOptions() []axe.Options {
	ret := []axe.Options{c.Options}
	if len(c.ImpactLevels) > 0 {
		ret = append(ret, axe.WithImpactLevels(c.ImpactLevels...))
	}
	return ret
}

// Load reads a suite file. Case files are read relative to the suite file's directory.
func Load(path string) (Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Suite{}, err
	}
	s, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return Suite{}, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	if s.Name == "" {
		s.Name = trimExt(filepath.Base(path))
	}
	return s, nil
}

// LoadAll loads every suite named by paths. A directory contributes all of its .yaml and .yml
// files, in name order.
func LoadAll(paths ...string) ([]Suite, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		var inDir []string
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(p, pattern))
			if err != nil {
				return nil, err
			}
			inDir = append(inDir, matches...)
		}
		sort.Strings(inDir)
		files = append(files, inDir...)
	}
	if len(files) == 0 {
		return nil, errors.New("no suite files found")
	}

	ret := make([]Suite, 0, len(files))
	for _, f := range files {
		s, err := Load(f)
		if err != nil {
			return nil, err
		}
		ret = append(ret, s)
	}
	return ret, nil
}

// Parse decodes a suite. baseDir is used to resolve case files.
func Parse(data []byte, baseDir string) (Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Suite{}, fmt.Errorf("malformed suite: %w", err)
	}
	if err := s.Config.Validate(); err != nil {
		return Suite{}, err
	}
	seen := make(map[string]bool, len(s.Cases))
	for i := range s.Cases {
		c := &s.Cases[i]
		if c.Name == "" {
			c.Name = fmt.Sprintf("case %d", i+1)
		}
		if seen[c.Name] {
			return Suite{}, fmt.Errorf("duplicate case name %q", c.Name)
		}
		seen[c.Name] = true
		if err := c.resolve(baseDir); err != nil {
			return Suite{}, fmt.Errorf("case %q: %w", c.Name, err)
		}
	}
	return s, nil
}

func (c *Case) resolve(baseDir string) error {
	switch {
	case c.HTML != "" && c.File != "":
		return errors.New("html and file cannot both be set")
	case c.File != "":
		path := c.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		c.HTML = string(data)
	case c.HTML == "":
		return errors.New("one of html or file is required")
	}
	if c.MaxViolations.IsDefined() && len(c.ExpectViolations) > 0 {
		return errors.New("maxViolations and expectViolations cannot both be set")
	}
	if c.MaxViolations.IntValue() < 0 {
		return errors.New("maxViolations cannot be negative")
	}
	for i, level := range c.ImpactLevels {
		parsed, err := results.ParseImpact(string(level))
		if err != nil {
			return err
		}
		c.ImpactLevels[i] = parsed
	}
	if c.Options != nil {
		options, err := axe.MergeOptions(c.Options)
		if err != nil {
			return err
		}
		c.Options = options
	}
	return nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
