package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// ParseFile loads a Plan from a file. The file extension is used to
// determine the format (JSON or YAML).
func ParseFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return ParseJSON(data)
	case ".yml", ".yaml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// ParseYAML loads a Plan from YAML. Unknown fields are rejected.
func ParseYAML(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.UnmarshalWithOptions(data, &plan, yaml.Strict()); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ParseJSON loads a Plan from JSON
func ParseJSON(data []byte) (*Plan, error) {
	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}
