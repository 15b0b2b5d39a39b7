package gpg

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// ErrNoSigningKey is returned when the key material holds no usable private key
var ErrNoSigningKey = errors.New("no private signing key found")

// Signer creates ASCII-armored detached signatures with an in-memory private key.
// The key never touches the filesystem.
type Signer struct {
	entity *openpgp.Entity
	config *packet.Config
}

// NewSigner parses an armored private key and unlocks it with passphrase
func NewSigner(armoredKey, passphrase string) (*Signer, error) {
	keyring, err := openpgp.ReadArmoredKeyRing(strings.NewReader(armoredKey))
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key: %w", err)
	}

	for _, entity := range keyring {
		if entity.PrivateKey == nil {
			continue
		}
		if err := unlock(entity, []byte(passphrase)); err != nil {
			return nil, err
		}
		return &Signer{entity: entity, config: &packet.Config{}}, nil
	}
	return nil, ErrNoSigningKey
}

// unlock decrypts the primary key and every private subkey
func unlock(entity *openpgp.Entity, passphrase []byte) error {
	if entity.PrivateKey.Encrypted {
		if err := entity.PrivateKey.Decrypt(passphrase); err != nil {
			return fmt.Errorf("failed to unlock signing key: %w", err)
		}
	}
	for _, sub := range entity.Subkeys {
		if sub.PrivateKey == nil || !sub.PrivateKey.Encrypted {
			continue
		}
		if err := sub.PrivateKey.Decrypt(passphrase); err != nil {
			return fmt.Errorf("failed to unlock signing subkey: %w", err)
		}
	}
	return nil
}

// KeyID returns the hex key ID of the primary key
func (s *Signer) KeyID() string {
	return s.entity.PrimaryKey.KeyIdString()
}

// Sign writes an armored detached signature of message to w
func (s *Signer) Sign(w io.Writer, message io.Reader) error {
	if err := openpgp.ArmoredDetachSign(w, s.entity, message, s.config); err != nil {
		return fmt.Errorf("failed to sign: %w", err)
	}
	return nil
}

// SignFile writes the detached signature of filePath to sigPath
func (s *Signer) SignFile(filePath, sigPath string) error {
	//nolint:gosec // G304: filePath is a pipeline artifact
	in, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer in.Close()

	//nolint:gosec // G304: sigPath is derived from a pipeline artifact
	out, err := os.Create(sigPath)
	if err != nil {
		return fmt.Errorf("failed to create signature file: %w", err)
	}

	if err := s.Sign(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(sigPath)
		return err
	}
	if _, err := out.WriteString("\n"); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write signature file: %w", err)
	}
	return out.Close()
}

// PublicKeyring returns the signer's public key for verification
func (s *Signer) PublicKeyring() openpgp.EntityList {
	return openpgp.EntityList{s.entity}
}
