package mlearn

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ModelBundle is the serialized form of a trained model: the forest
// parameters plus everything inference needs to reproduce training-time
// preprocessing: the feature list, the fitted scaler and the categorical
// encodings. Round-tripping a bundle reproduces predictions exactly.
type ModelBundle struct {
	Kind     string                   `json:"kind"`
	Features []string                 `json:"features"`
	Scaler   *StandardScaler          `json:"scaler"`
	Encoders map[string]*LabelEncoder `json:"encoders,omitempty"`
	Forest   *Forest                  `json:"forest"`
}

// Marshal renders the bundle as JSON.
func (b *ModelBundle) Marshal() ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// UnmarshalBundle parses a serialized bundle.
func UnmarshalBundle(data []byte) (*ModelBundle, error) {
	var b ModelBundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse model bundle: %w", err)
	}
	return &b, nil
}

// SaveBundle writes the bundle to disk, creating parent directories.
func SaveBundle(b *ModelBundle, path string) error {
	data, err := b.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode model bundle: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model bundle: %w", err)
	}
	return nil
}

// LoadBundle reads a bundle from disk.
func LoadBundle(path string) (*ModelBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model bundle: %w", err)
	}
	return UnmarshalBundle(data)
}
