package script

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/parley/internal/runtime"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format identifies the serialization of a script document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported script extension %q (use .yaml, .json or .toml)", filepath.Ext(path))
	}
}

// Parse decodes a script document of the given format.
func Parse(data []byte, format Format) (*domain.Script, error) {
	raw := map[string]any{}

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unsupported script format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s script: %w", format, err)
	}

	return Decode(raw)
}

// Decode converts a generic map (as produced by any of the supported parsers
// or by front matter) into a script.
func Decode(raw map[string]any) (*domain.Script, error) {
	var doc Document
	if err := decodeInto(raw, &doc); err != nil {
		return nil, err
	}
	return doc.Script()
}

func decodeInto(raw any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid script document: %w", err)
	}
	return nil
}

// DecodeRule converts the metadata of a single rule document.
func DecodeRule(raw map[string]any) (domain.Rule, error) {
	var doc RuleDocument
	if err := decodeInto(raw, &doc); err != nil {
		return domain.Rule{}, err
	}
	return doc.Rule()
}

// Validate compiles the script and reports every problem found.
// A nil error means an engine can serve the script.
func Validate(s *domain.Script) error {
	_, err := runtime.Compile(s)
	return err
}
