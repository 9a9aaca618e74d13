// Package rules loads the versioned vendor policy table.
// The table is read once at process start and treated as immutable for
// the process lifetime.
package rules

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/decide-fyi/refund-notary/internal/domain/refund"
)

//go:embed default_rules.json
var defaultRules []byte

// LoadDefault returns the policy table shipped with the binary.
func LoadDefault() (*refund.PolicyTable, error) {
	return parse(defaultRules, ".json")
}

// LoadFile reads a policy table from a JSON or YAML file, selected by
// extension. The loaded table is validated before being returned.
func LoadFile(path string) (*refund.PolicyTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	table, err := parse(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return table, nil
}

// Load returns the table from path if set, otherwise the embedded default.
func Load(path string) (*refund.PolicyTable, error) {
	if path == "" {
		return LoadDefault()
	}
	return LoadFile(path)
}

func parse(data []byte, ext string) (*refund.PolicyTable, error) {
	var table refund.PolicyTable
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("failed to parse YAML rules: %w", err)
		}
	case ".json", "":
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("failed to parse JSON rules: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported rules file extension %q (use .json, .yaml, or .yml)", ext)
	}

	if err := refund.ValidateTable(&table); err != nil {
		return nil, err
	}
	return &table, nil
}
