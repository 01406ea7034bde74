// Package config loads and validates bridge configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/archernet/callbridge/application/schema"
	"github.com/archernet/callbridge/application/validation"
	"github.com/archernet/callbridge/domain/entities"
	"github.com/archernet/callbridge/domain/errors"
	"github.com/archernet/callbridge/domain/ports"
	"github.com/archernet/callbridge/infrastructure/parser"
)

// Format names a configuration file syntax.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Default returns the configuration used when no file is given.
func Default() *entities.Config {
	cfg := entities.DefaultConfig()
	return &cfg
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported config file extension %q", filepath.Ext(path))
	}
}

// ParserFor returns the parser of a format.
func ParserFor(format Format) (ports.ConfigParser, error) {
	switch format {
	case FormatYAML:
		return parser.NewYamlConfigParser(), nil
	case FormatTOML:
		return parser.NewTomlConfigParser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}

// Load reads, validates and returns the configuration at path.
// An empty path returns Default().
func Load(path string) (*entities.Config, error) {
	if path == "" {
		return Default(), nil
	}

	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	cfg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data in the given format, checks the raw document against
// the config schema and the decoded struct against its validation tags.
func Parse(data []byte, format Format) (*entities.Config, error) {
	p, err := ParserFor(format)
	if err != nil {
		return nil, err
	}

	doc, err := p.Document(data)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	cfg, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if err := validation.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateDocument(doc map[string]any) error {
	raw, err := schema.ConfigSchema()
	if err != nil {
		return err
	}
	v, err := validation.NewSchemaValidator(schema.ConfigSchemaID, raw)
	if err != nil {
		return err
	}

	res, err := v.Validate(doc)
	if err != nil {
		return err
	}
	if !res.Valid && len(res.Errors) > 0 {
		first := res.Errors[0]
		return &errors.ConfigError{Field: first.Field, Err: fmt.Errorf("%s", first.Message)}
	}
	return nil
}
