package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is the path of the facet configuration (YAML or CUE).
	// LoadScenario resolves it relative to the scenario file.
	Config string `yaml:"config"`

	// Setup lists SQL statements run before the steps.
	Setup []string `yaml:"setup,omitempty"`

	// Steps are the fetches to run, in order.
	Steps []Step `yaml:"steps"`

	// FetchID is an optional fixed fetch ID for deterministic output.
	// If empty, defaults to "test-fetch-default".
	FetchID string `yaml:"fetch_id,omitempty"`
}

// Step is one fetch.
type Step struct {
	// Model is the id of the fetched model.
	Model string `yaml:"model"`

	// Modifiers are passed to the fetch as-is.
	Modifiers map[string]any `yaml:"modifiers,omitempty"`

	// Expect lists the checks for this fetch. If nil, the fetch only has
	// to succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	Count      *int              `yaml:"count,omitempty"`
	Total      *int              `yaml:"total,omitempty"`
	Page       *int              `yaml:"page,omitempty"`
	Conditions map[string]any    `yaml:"conditions,omitempty"`
	Humanized  map[string]string `yaml:"humanized,omitempty"`
	Remains    *string           `yaml:"remains,omitempty"`

	// Field and Values check one column of the returned records.
	Field  string `yaml:"field,omitempty"`
	Values []any  `yaml:"values,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Reject unknown fields (catches typos like "step:" vs "steps:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Config != "" && !filepath.IsAbs(scenario.Config) {
		scenario.Config = filepath.Join(filepath.Dir(path), scenario.Config)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Config == "" {
		return fmt.Errorf("config is required")
	}
	if _, err := os.Stat(s.Config); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", s.Config)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, stmt := range s.Setup {
		if stmt == "" {
			return fmt.Errorf("setup[%d]: statement is empty", i)
		}
	}

	for i, step := range s.Steps {
		if step.Model == "" {
			return fmt.Errorf("steps[%d]: model is required", i)
		}
		if e := step.Expect; e != nil && len(e.Values) > 0 && e.Field == "" {
			return fmt.Errorf("steps[%d].expect: field is required with values", i)
		}
	}

	return nil
}
