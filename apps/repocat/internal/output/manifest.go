package output

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest summarises one run. It is written next to the combined document
// when requested and is not part of the document itself.
type Manifest struct {
	Repository string   `yaml:"repository"`
	Branch     string   `yaml:"branch"`
	Path       string   `yaml:"path,omitempty"`
	Output     string   `yaml:"output"`
	Added      []string `yaml:"added"`
	Skipped    []Item   `yaml:"skipped,omitempty"`
	Failed     []Item   `yaml:"failed,omitempty"`
	FailedDirs []Item   `yaml:"failed_dirs,omitempty"`
}

// Item is a path paired with the reason it was not written.
type Item struct {
	Path   string `yaml:"path"`
	Reason string `yaml:"reason"`
}

// Marshal renders m as YAML.
func (m Manifest) Marshal() ([]byte, error) {
	b, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return b, nil
}

// WriteManifest writes m to path as YAML.
func WriteManifest(path string, m Manifest) error {
	b, err := m.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil { //nolint:gosec // manifest is not sensitive
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}
