package ports

import "github.com/archernet/callbridge/domain/entities"

// DocumentValidator validates a raw document against a JSON schema.
type DocumentValidator interface {
	Validate(doc any) (*entities.ValidationResult, error)
}
