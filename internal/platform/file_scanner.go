package platform

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileScanner reads platform state from a YAML file of string keys and
// values. Operational tooling rewrites the file; each Sync sees the current
// content. A missing file is an empty snapshot, not an error.
type FileScanner struct {
	path string
}

// NewFileScanner creates a FileScanner for the given path.
func NewFileScanner(path string) *FileScanner {
	return &FileScanner{path: path}
}

// Snapshot implements Scanner.
func (f *FileScanner) Snapshot(_ context.Context) (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading platform state file: %w", err)
	}
	var snap map[string]string
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing platform state file: %w", err)
	}
	if snap == nil {
		snap = map[string]string{}
	}
	return snap, nil
}
