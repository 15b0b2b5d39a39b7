package gateways

import (
	"context"
	"fmt"
	"sync"

	"github.com/hivemq/sdkpub/internal/domain/entities"
	"github.com/hivemq/sdkpub/internal/external-adapters/gpg"
)

// GPGSigner implements the domain Signer with an in-memory OpenPGP key
type GPGSigner struct {
	mu     sync.Mutex
	key    entities.SigningKey
	signer *gpg.Signer
}

// NewGPGSigner creates a new signer gateway
func NewGPGSigner() *GPGSigner {
	return &GPGSigner{}
}

// SignDetached writes filePath.asc and returns its path. The unlocked key is reused across calls.
func (s *GPGSigner) SignDetached(ctx context.Context, key entities.SigningKey, filePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if key.IsEmpty() {
		return "", fmt.Errorf("signing key is empty")
	}

	signer, err := s.unlocked(key)
	if err != nil {
		return "", err
	}

	sigPath := filePath + ".asc"
	if err := signer.SignFile(filePath, sigPath); err != nil {
		return "", err
	}
	return sigPath, nil
}

func (s *GPGSigner) unlocked(key entities.SigningKey) (*gpg.Signer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.signer != nil && s.key == key {
		return s.signer, nil
	}
	signer, err := gpg.NewSigner(key.ArmoredKey, key.Passphrase)
	if err != nil {
		return nil, err
	}
	s.key, s.signer = key, signer
	return signer, nil
}
