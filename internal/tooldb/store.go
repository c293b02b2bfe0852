package tooldb

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// DefaultPath returns the default tool library file location.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "intuicam", "tools.json"), nil
}

// Save writes the library to a JSON file, creating directories as needed.
func Save(path string, db *Database) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a library from a JSON file. A missing file yields an empty
// library rather than an error.
func Load(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDatabase(), nil
		}
		return nil, err
	}
	var db Database
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// ExportTool writes a single tool record to a JSON file for sharing.
func ExportTool(path string, t Tool) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ImportTool reads a single tool record from a JSON file.
func ImportTool(path string) (Tool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tool{}, err
	}
	var t Tool
	if err := json.Unmarshal(data, &t); err != nil {
		return Tool{}, err
	}
	if t.Label == "" {
		return Tool{}, errors.New("imported tool has no label")
	}
	return t, nil
}
