package gateways

import (
	"context"

	"github.com/hivemq/sdkpub/internal/domain/entities"
)

// Signer produces detached OpenPGP signatures
type Signer interface {
	// SignDetached writes an ASCII-armored detached signature next to filePath and returns its path
	SignDetached(ctx context.Context, key entities.SigningKey, filePath string) (string, error)
}

// SignatureVerifier checks detached signatures against a public keyring
type SignatureVerifier interface {
	ImportKeyFromFile(keyPath string) error
	ImportSigningKey(key entities.SigningKey) error
	VerifySignatureFromFile(filePath, sigPath string) error

	// VerifySigner verifies like VerifySignatureFromFile and returns the signing key ID
	VerifySigner(filePath, sigPath string) (string, error)
	KeyringSize() int
}
