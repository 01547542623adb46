package agent

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	ErrInvalidID        = errors.New("invalid agent id")
	ErrInvalidSignature = errors.New("invalid signature")
)

// ID identifies an agent by the base64 encoding of its Ed25519 public
// key. It is used both as a record author and as a link endpoint.
type ID string

func (id ID) String() string {
	return string(id)
}

// PublicKey decodes and validates the underlying public key.
func (id ID) PublicKey() (ed25519.PublicKey, error) {
	decoded, err := base64.StdEncoding.DecodeString(string(id))
	if err != nil {
		return nil, fmt.Errorf("%w: not base64", ErrInvalidID)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: must be %d bytes, got %d", ErrInvalidID, ed25519.PublicKeySize, len(decoded))
	}
	return ed25519.PublicKey(decoded), nil
}

// Valid reports whether id decodes to a well-formed public key.
func (id ID) Valid() bool {
	_, err := id.PublicKey()
	return err == nil
}

// FromPublicKey wraps a raw public key as an ID.
func FromPublicKey(pub ed25519.PublicKey) ID {
	return ID(base64.StdEncoding.EncodeToString(pub))
}

// Verify checks a base64 signature over data against the agent's key.
func Verify(id ID, data []byte, signatureB64 string) error {
	pub, err := id.PublicKey()
	if err != nil {
		return err
	}
	signature, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return fmt.Errorf("%w: not base64", ErrInvalidSignature)
	}
	if !ed25519.Verify(pub, data, signature) {
		return ErrInvalidSignature
	}
	return nil
}

// Contains reports whether id appears in the given list.
func Contains(ids []ID, id ID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
