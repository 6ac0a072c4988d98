package valueobjects

import (
	"fmt"

	"memorylane-backend/domain/config"
	pkgerrors "memorylane-backend/pkg/errors"
)

// EncryptedContent is a value object for the opaque memory payload.
// Encryption happens caller-side; the ledger stores the bytes verbatim and
// never interprets them.
type EncryptedContent struct {
	payload string
}

// NewEncryptedContent creates content with validation using default configuration
func NewEncryptedContent(payload string) (EncryptedContent, error) {
	return NewEncryptedContentWithConfig(payload, config.DefaultDomainConfig())
}

// NewEncryptedContentWithConfig creates content with validation and configuration
func NewEncryptedContentWithConfig(payload string, cfg *config.DomainConfig) (EncryptedContent, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if payload == "" {
		return EncryptedContent{}, pkgerrors.NewInvalidInputError("encrypted content cannot be empty")
	}

	if len(payload) > cfg.MaxContentBytes {
		return EncryptedContent{}, pkgerrors.NewInvalidInputError(
			fmt.Sprintf("encrypted content exceeds maximum size of %d bytes", cfg.MaxContentBytes))
	}

	return EncryptedContent{payload: payload}, nil
}

// Payload returns the opaque encrypted payload
func (c EncryptedContent) Payload() string {
	return c.payload
}

// IsEmpty checks if content is empty
func (c EncryptedContent) IsEmpty() bool {
	return c.payload == ""
}

// Size returns the payload size in bytes
func (c EncryptedContent) Size() int {
	return len(c.payload)
}

// Equals checks if two contents are equal
func (c EncryptedContent) Equals(other EncryptedContent) bool {
	return c.payload == other.payload
}
