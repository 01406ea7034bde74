package parser

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/archernet/callbridge/domain/entities"
	"github.com/archernet/callbridge/domain/ports"
)

// TomlConfigParser implements ConfigParser for TOML.
type TomlConfigParser struct{}

// NewTomlConfigParser creates a new TomlConfigParser.
func NewTomlConfigParser() ports.ConfigParser {
	return &TomlConfigParser{}
}

// Parse decodes TOML bytes over the default Config. Keys that match no
// field are rejected.
func (p *TomlConfigParser) Parse(data []byte) (*entities.Config, error) {
	cfg := entities.DefaultConfig()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown configuration key %q", undecoded[0].String())
	}
	return &cfg, nil
}

// Document decodes TOML bytes into a generic map.
func (p *TomlConfigParser) Document(data []byte) (map[string]any, error) {
	doc := map[string]any{}
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
