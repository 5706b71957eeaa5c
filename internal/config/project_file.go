package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// LoadProjectFile reads and decodes a myra.yaml project file. A missing
// file is not an error — it returns a zero-value ProjectFile so callers
// can treat "no file" and "empty file" identically.
func LoadProjectFile(path string) (*ProjectFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &ProjectFile{}, nil
	}
	if err != nil {
		return nil, err
	}

	var pf ProjectFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, err
	}
	return &pf, nil
}
