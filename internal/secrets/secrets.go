// Package secrets loads process secrets from AWS Secrets Manager.
package secrets

import (
	"errors"
	"strings"
)

var (
	ErrNotFound       = errors.New("secret not found")
	ErrAccessDenied   = errors.New("secret access denied")
	ErrDecryption     = errors.New("secret decryption failed")
	ErrInvalidRequest = errors.New("invalid secret request")
	ErrEmpty          = errors.New("secret is empty")
	ErrFieldNotFound  = errors.New("secret field not found")
)

// Reference names a secret and, optionally, one string field inside a JSON
// secret. It is written as "<secret-id>#<field>" in configuration.
type Reference struct {
	ID    string
	Field string
}

func ParseReference(s string) Reference {
	id, field, _ := strings.Cut(strings.TrimSpace(s), "#")
	return Reference{ID: id, Field: field}
}

func (r Reference) String() string {
	if r.Field == "" {
		return r.ID
	}
	return r.ID + "#" + r.Field
}
