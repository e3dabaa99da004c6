// Package scenario reads and writes scenario files in YAML.
package scenario

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/raterudder/retrofit/pkg/types"
)

// File is the on-disk shape of a scenario. Version lets older files be
// migrated.
type File struct {
	Version  int            `yaml:"version"`
	Scenario types.Scenario `yaml:"scenario"`
}

// Load reads, migrates and validates the scenario at path.
func Load(path string) (types.Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.Scenario{}, err
	}
	s, err := Parse(raw)
	if err != nil {
		return types.Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scenario document. A document without a version is taken
// to be the current version.
func Parse(raw []byte) (types.Scenario, error) {
	f := File{Version: types.CurrentScenarioVersion}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return types.Scenario{}, fmt.Errorf("empty scenario document")
		}
		return types.Scenario{}, fmt.Errorf("failed to decode scenario: %w", err)
	}
	s, _, err := types.MigrateScenario(f.Scenario, f.Version)
	if err != nil {
		return types.Scenario{}, err
	}
	if err := s.Validate(); err != nil {
		return types.Scenario{}, err
	}
	return s, nil
}

// Marshal encodes s at the current version.
func Marshal(s types.Scenario) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(File{Version: types.CurrentScenarioVersion, Scenario: s}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write saves s to path.
func Write(path string, s types.Scenario) error {
	raw, err := Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
