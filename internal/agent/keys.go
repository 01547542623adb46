package agent

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
)

// Keypair holds the signing identity of the local agent.
type Keypair struct {
	priv ed25519.PrivateKey
}

func Generate() (*Keypair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating keypair: %w", err)
	}
	return &Keypair{priv: priv}, nil
}

// LoadKeypair reads a base64-encoded Ed25519 private key from path.
func LoadKeypair(path string) (*Keypair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading keypair: %w", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("loading keypair: decoding key: %w", err)
	}
	if len(decoded) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("loading keypair: key must be %d bytes, got %d", ed25519.PrivateKeySize, len(decoded))
	}
	return &Keypair{priv: ed25519.PrivateKey(decoded)}, nil
}

// Save writes the private key to path with owner-only permissions.
func (k *Keypair) Save(path string) error {
	encoded := base64.StdEncoding.EncodeToString(k.priv)
	if err := os.WriteFile(path, []byte(encoded+"\n"), 0o600); err != nil {
		return fmt.Errorf("saving keypair: %w", err)
	}
	return nil
}

// ID returns the agent identity derived from the public half.
func (k *Keypair) ID() ID {
	return FromPublicKey(k.priv.Public().(ed25519.PublicKey))
}

// Sign returns a base64 signature over data.
func (k *Keypair) Sign(data []byte) string {
	return base64.StdEncoding.EncodeToString(ed25519.Sign(k.priv, data))
}
