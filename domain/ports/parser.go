package ports

import "github.com/archernet/callbridge/domain/entities"

// ConfigParser parses raw configuration bytes.
type ConfigParser interface {
	// Parse unmarshals bytes into a Config.
	Parse(data []byte) (*entities.Config, error)

	// Document unmarshals bytes into a generic document for schema validation.
	Document(data []byte) (map[string]any, error)
}
