package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Suite is one directory (or txtar archive) of fixtures together with the
// compiler invocation used to run them.
type Suite struct {
	Name      string   `yaml:"name"`
	Root      string   `yaml:"root"`      // directory or .txtar archive holding the fixtures
	Command   []string `yaml:"command"`   // compiler path followed by fixed flags
	Normalize bool     `yaml:"normalize"` // strip link lines on the harness side
}

// ConfigError is returned when a suite file cannot be used.
type ConfigError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Path, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// defaultSuites returns the built-in suite table. The compiler is asked to
// omit its quick links, so no normalization is done here. Fixture paths are
// relative to the working directory, which keeps the remaining file headers
// host independent.
func defaultSuites() []Suite {
	return []Suite{
		{
			Name:    "parsing",
			Root:    filepath.Join("tests", "parsing"),
			Command: []string{filepath.Join("build", "source", "main", "cringe"), "--std", "1", "--no-links"},
		},
	}
}

type suiteFile struct {
	Suites []Suite `yaml:"suites"`
}

// loadConfig reads a suite table from a YAML file. Relative roots, and
// relative compiler paths that contain a separator, are resolved against the
// directory of the file.
func loadConfig(path string) ([]Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Reason: "cannot read", Err: err}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f suiteFile
	if err := dec.Decode(&f); err != nil {
		return nil, &ConfigError{Path: path, Reason: "cannot parse", Err: err}
	}

	if len(f.Suites) == 0 {
		return nil, &ConfigError{Path: path, Reason: "no suites defined"}
	}

	base := filepath.Dir(path)
	seen := make(map[string]bool)
	suites := make([]Suite, 0, len(f.Suites))
	for i, s := range f.Suites {
		if s.Name == "" {
			s.Name = fmt.Sprintf("suite%d", i+1)
		}
		if seen[s.Name] {
			return nil, &ConfigError{Path: path, Reason: fmt.Sprintf("duplicate suite name %q", s.Name)}
		}
		seen[s.Name] = true

		if s.Root == "" {
			return nil, &ConfigError{Path: path, Reason: fmt.Sprintf("suite %q has no root", s.Name)}
		}
		if len(s.Command) == 0 || s.Command[0] == "" {
			return nil, &ConfigError{Path: path, Reason: fmt.Sprintf("suite %q has no command", s.Name)}
		}

		s.Root = resolvePath(base, s.Root)
		s.Command = slices.Clone(s.Command)
		if strings.ContainsAny(s.Command[0], `/\`) {
			s.Command[0] = resolvePath(base, s.Command[0])
		}
		suites = append(suites, s)
	}
	return suites, nil
}

func resolvePath(base, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// selectSuites keeps the suites whose names are listed, in table order.
// An empty list selects everything.
func selectSuites(suites []Suite, names []string) ([]Suite, error) {
	if len(names) == 0 {
		return suites, nil
	}
	for _, name := range names {
		if !slices.ContainsFunc(suites, func(s Suite) bool { return s.Name == name }) {
			return nil, fmt.Errorf("unknown suite %q", name)
		}
	}
	var selected []Suite
	for _, s := range suites {
		if slices.Contains(names, s.Name) {
			selected = append(selected, s)
		}
	}
	return selected, nil
}
