// Package parser decodes configuration documents.
package parser

import (
	"github.com/archernet/callbridge/domain/entities"
	"github.com/archernet/callbridge/domain/ports"
	"gopkg.in/yaml.v3"
)

// YamlConfigParser implements ConfigParser for YAML.
type YamlConfigParser struct{}

// NewYamlConfigParser creates a new YamlConfigParser.
func NewYamlConfigParser() ports.ConfigParser {
	return &YamlConfigParser{}
}

// Parse unmarshals YAML bytes over the default Config.
func (p *YamlConfigParser) Parse(data []byte) (*entities.Config, error) {
	cfg := entities.DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Document unmarshals YAML bytes into a generic map.
func (p *YamlConfigParser) Document(data []byte) (map[string]any, error) {
	doc := map[string]any{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
