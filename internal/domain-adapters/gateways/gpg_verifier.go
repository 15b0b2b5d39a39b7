package gateways

import (
	"fmt"

	"github.com/hivemq/sdkpub/internal/domain/entities"
	"github.com/hivemq/sdkpub/internal/external-adapters/gpg"
)

// gpgVerifier checks publication signatures for the verify command
type gpgVerifier struct {
	keys *gpg.Verifier
}

// NewGPGVerifier creates a verifier with an empty keyring
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewGPGVerifier() *gpgVerifier {
	return &gpgVerifier{keys: gpg.NewVerifier()}
}

// ImportKeyFromFile trusts the keys of an exported public key file
func (g *gpgVerifier) ImportKeyFromFile(keyPath string) error {
	if err := g.keys.ImportKeyFromFile(keyPath); err != nil {
		return fmt.Errorf("failed to import %s: %w", keyPath, err)
	}
	return nil
}

// ImportSigningKey trusts the public half of the release signing key
func (g *gpgVerifier) ImportSigningKey(key entities.SigningKey) error {
	if key.IsEmpty() {
		return fmt.Errorf("signing key is empty")
	}
	if err := g.keys.ImportArmoredKey(key.ArmoredKey); err != nil {
		return fmt.Errorf("failed to import signing key: %w", err)
	}
	return nil
}

// VerifySignatureFromFile verifies the detached signature of one artifact
func (g *gpgVerifier) VerifySignatureFromFile(filePath, sigPath string) error {
	_, err := g.VerifySigner(filePath, sigPath)
	return err
}

// VerifySigner verifies the detached signature of one artifact and returns the signing key ID
func (g *gpgVerifier) VerifySigner(filePath, sigPath string) (string, error) {
	keyID, err := g.keys.VerifyFile(filePath, sigPath)
	if err != nil {
		return "", fmt.Errorf("GPG signature verification failed: %w", err)
	}
	return keyID, nil
}

// KeyringSize returns the number of keys loaded
func (g *gpgVerifier) KeyringSize() int {
	return g.keys.Size()
}
