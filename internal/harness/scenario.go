// Package harness provides a YAML-driven scenario runner for the
// transaction engine.
//
// A scenario is a named sequence of input records plus the expected final
// account state and the expected sequence of rejection codes. Scenario
// files live in testdata and double as executable documentation of the
// dispute protocol.
package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario for the engine.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Records is the input stream, applied in order.
	Records []RecordStep `yaml:"records"`

	// Expect lists the expected final state per account.
	// Subset match - accounts not listed are not checked.
	Expect []AccountExpectation `yaml:"expect,omitempty"`

	// Errors is the exact sequence of rejection codes the stream must
	// produce, in record order. Empty means every record must apply.
	Errors []string `yaml:"errors,omitempty"`
}

// RecordStep is one input record in a scenario.
type RecordStep struct {
	// Op is the operation name: deposit, withdrawal, dispute, resolve
	// or chargeback.
	Op string `yaml:"op"`

	// Client and Tx identify the record.
	Client uint16 `yaml:"client"`
	Tx     uint32 `yaml:"tx"`

	// Amount is a decimal string, present only for deposit/withdrawal.
	Amount string `yaml:"amount,omitempty"`
}

// AccountExpectation is the expected final state of one account.
// Amounts are decimal strings at four places, as rendered in the report.
type AccountExpectation struct {
	Client    uint16 `yaml:"client"`
	Available string `yaml:"available"`
	Held      string `yaml:"held"`
	Total     string `yaml:"total"`
	Locked    bool   `yaml:"locked"`
}

// Load reads and parses a scenario YAML file.
// Unknown fields are rejected to catch typos like "expects:" vs "expect:".
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}

	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in a directory, sorted by file name
// for deterministic test order.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("glob scenarios: %w", err)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := Load(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Records) == 0 {
		return fmt.Errorf("records list is required and must be non-empty")
	}

	for i, step := range s.Records {
		if step.Op == "" {
			return fmt.Errorf("records[%d]: op is required", i)
		}
	}

	return nil
}
