package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source kinds understood by the source registry.
const (
	SourceStub   = "stub"
	SourceJSON   = "json"
	SourceScrape = "scrape"
)

// SourceDef describes one upstream incident source.
type SourceDef struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	URL  string `yaml:"url"`
	// Note is logged by stub sources as integration guidance.
	Note string `yaml:"note"`
	// Selector is the CSS selector of the incident table for scrape sources.
	Selector string `yaml:"selector"`
}

type sourcesFile struct {
	Sources []SourceDef `yaml:"sources"`
}

// DefaultSources are the public portals the ingester is meant to pull from.
// None of them offers an open API, so each is a stub until integrated.
func DefaultSources() []SourceDef {
	return []SourceDef{
		{
			Name: "crimemapping",
			Kind: SourceStub,
			URL:  "https://www.crimemapping.com",
			Note: "requires an agency data-sharing agreement; export incidents to the import CSV meanwhile",
		},
		{
			Name: "spotcrime",
			Kind: SourceStub,
			URL:  "https://spotcrime.com",
			Note: "API access is by request only",
		},
		{
			Name: "pa-ucr",
			Kind: SourceStub,
			URL:  "https://www.ucr.pa.gov",
			Note: "Pennsylvania UCR publishes aggregate statistics, not incident records",
		},
	}
}

// LoadSources reads source definitions from path. An empty path selects
// DefaultSources.
func LoadSources(path string) ([]SourceDef, error) {
	if path == "" {
		return DefaultSources(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	return ParseSources(data)
}

// ParseSources decodes and validates a YAML sources document.
func ParseSources(data []byte) ([]SourceDef, error) {
	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}

	seen := make(map[string]bool, len(f.Sources))
	for i := range f.Sources {
		s := &f.Sources[i]
		s.Name = strings.TrimSpace(s.Name)
		s.Kind = strings.ToLower(strings.TrimSpace(s.Kind))
		if s.Name == "" {
			return nil, fmt.Errorf("source %d: name is required", i+1)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("source %q: duplicate name", s.Name)
		}
		seen[s.Name] = true

		switch s.Kind {
		case SourceStub:
		case SourceJSON, SourceScrape:
			if s.URL == "" {
				return nil, fmt.Errorf("source %q: url is required for kind %s", s.Name, s.Kind)
			}
		default:
			return nil, fmt.Errorf("source %q: unknown kind %q", s.Name, s.Kind)
		}
		if s.Kind == SourceScrape && s.Selector == "" {
			s.Selector = "table"
		}
	}
	return f.Sources, nil
}
