package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines a calculator conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// SessionID is an optional fixed session ID.
	// If empty, defaults to "test-session-default".
	SessionID string `yaml:"session_id,omitempty"`

	// Config is an optional CUE configuration file or directory.
	// Relative paths are resolved against the scenario file's directory.
	Config string `yaml:"config,omitempty"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	// Supported types: display, expression, history_contains, history_count,
	// history_order
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step presses one key or a list of keys, then optionally checks the state.
// Exactly one of Press and Keys must be set.
type Step struct {
	Press  string        `yaml:"press,omitempty"`
	Keys   []string      `yaml:"keys,omitempty"`
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// KeyList returns the keys this step presses.
func (s Step) KeyList() []string {
	if s.Press != "" {
		return []string{s.Press}
	}
	return s.Keys
}

// ExpectClause specifies the state expected after a step.
// Only the fields that are set are checked.
type ExpectClause struct {
	Display      *string   `yaml:"display,omitempty"`
	CurrentInput *string   `yaml:"current_input,omitempty"`
	Expression   *[]string `yaml:"expression,omitempty"`
	History      *[]string `yaml:"history,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "display": Display equals Value
	// - "expression": Expression tokens equal Tokens
	// - "history_contains": History has a line equal to Value
	// - "history_count": History has exactly Count lines
	// - "history_order": Lines appear in History in this order
	Type string `yaml:"type"`

	// Value is the expected display or history line.
	Value string `yaml:"value,omitempty"`

	// Tokens is the expected expression (used by expression).
	Tokens []string `yaml:"tokens,omitempty"`

	// Count is the expected number of history lines (used by history_count).
	Count int `yaml:"count,omitempty"`

	// Lines is the expected history order (used by history_order).
	Lines []string `yaml:"lines,omitempty"`
}

// Assertion type constants.
const (
	AssertDisplay         = "display"
	AssertExpression      = "expression"
	AssertHistoryContains = "history_contains"
	AssertHistoryCount    = "history_count"
	AssertHistoryOrder    = "history_order"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
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

// FindScenarioFiles returns the .yaml and .yml files under dir in lexical
// order. If filter is set, only files whose base name (without extension)
// matches the glob are returned.
func FindScenarioFiles(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := filepath.Base(path)
			name = name[:len(name)-len(ext)]
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	sort.Strings(files)
	return files, err
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if s.Config != "" {
		if _, err := os.Stat(s.Config); os.IsNotExist(err) {
			return fmt.Errorf("config not found: %s", s.Config)
		}
	}

	for i, step := range s.Steps {
		hasPress := step.Press != ""
		hasKeys := len(step.Keys) > 0
		if hasPress == hasKeys {
			return fmt.Errorf("steps[%d]: exactly one of press or keys is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertDisplay:
		if a.Value == "" {
			return fmt.Errorf("assertions[%d]: value is required for display", index)
		}
	case AssertExpression:
		// An empty token list asserts an empty expression.
	case AssertHistoryContains:
		if a.Value == "" {
			return fmt.Errorf("assertions[%d]: value is required for history_contains", index)
		}
	case AssertHistoryCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for history_count", index)
		}
	case AssertHistoryOrder:
		if len(a.Lines) == 0 {
			return fmt.Errorf("assertions[%d]: lines list is required for history_order", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
