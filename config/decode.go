package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed default_scene.yaml
var defaultScene []byte

// Format identifies a manifest encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromPath picks the manifest format from a file extension.
//
// Parameters:
//   - path: the manifest file path
//
// Returns:
//   - Format: the detected format
//   - error: error if the extension is not .yaml, .yml or .toml
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("unsupported manifest extension %q", filepath.Ext(path))
	}
}

// Default returns the embedded diorama manifest.
func Default() Scene {
	var s Scene
	if err := decodeInto(&s, defaultScene, FormatYAML); err != nil {
		panic(fmt.Sprintf("embedded default scene is invalid: %v", err))
	}
	return s
}

// baseline is the default manifest without its groups and assets. User manifests decode over it so omitted
// sections keep the built-in constants while the asset list is entirely their own.
func baseline() Scene {
	s := Default()
	s.Groups = nil
	s.Assets = nil
	s.Defaults = Placement{}
	return s
}

// Decode parses a manifest. Sections missing from data keep their built-in defaults.
//
// Parameters:
//   - data: the manifest bytes
//   - format: the manifest encoding
//
// Returns:
//   - Scene: the decoded manifest
//   - error: decode or validation error
func Decode(data []byte, format Format) (Scene, error) {
	s := baseline()
	if err := decodeInto(&s, data, format); err != nil {
		return Scene{}, err
	}
	if err := s.Validate(); err != nil {
		return Scene{}, fmt.Errorf("invalid manifest: %w", err)
	}
	return s, nil
}

// Load reads and decodes a manifest file, choosing the format by extension.
//
// Parameters:
//   - path: the manifest file path
//
// Returns:
//   - Scene: the decoded manifest
//   - error: read, decode or validation error
func Load(path string) (Scene, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Scene{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	s, err := Decode(data, format)
	if err != nil {
		return Scene{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// decodeInto decodes data over out. TOML is normalized into YAML first so both formats share one schema and
// one set of scalar-or-vector rules.
func decodeInto(out *Scene, data []byte, format Format) error {
	if format == FormatTOML {
		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to decode toml manifest: %w", err)
		}
		normalized, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to normalize toml manifest: %w", err)
		}
		data = normalized
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode manifest: %w", err)
	}
	return nil
}
