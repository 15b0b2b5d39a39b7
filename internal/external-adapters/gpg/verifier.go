// Package gpg signs and verifies detached OpenPGP signatures.
package gpg

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
)

const armorPrefix = "-----BEGIN PGP"

// ErrEmptyKeyring is returned when verifying before any key was imported
var ErrEmptyKeyring = errors.New("no GPG keys imported, import a public key first")

// Verifier checks release signatures against the keys it was given
type Verifier struct {
	keyring openpgp.EntityList
}

// NewVerifier creates a verifier with an empty keyring
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Import adds every key of an armored or binary key block
func (v *Verifier) Import(r io.Reader) error {
	br := bufio.NewReader(r)

	var (
		keys openpgp.EntityList
		err  error
	)
	if isArmored(br) {
		keys, err = openpgp.ReadArmoredKeyRing(br)
	} else {
		keys, err = openpgp.ReadKeyRing(br)
	}
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}
	if len(keys) == 0 {
		return fmt.Errorf("no keys found")
	}

	v.keyring = append(v.keyring, keys...)
	return nil
}

// ImportArmoredKey adds the keys of an armored public or private key block.
// Private blocks contribute their public halves.
func (v *Verifier) ImportArmoredKey(armored string) error {
	return v.Import(strings.NewReader(armored))
}

// ImportKeyFromFile adds the keys stored in keyPath
func (v *Verifier) ImportKeyFromFile(keyPath string) error {
	//nolint:gosec // G304: keyPath is given on the command line
	f, err := os.Open(keyPath)
	if err != nil {
		return fmt.Errorf("failed to open key file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer f.Close()

	return v.Import(f)
}

// Verify checks a detached signature over data and returns the signer's key ID
func (v *Verifier) Verify(data, signature io.Reader) (string, error) {
	if len(v.keyring) == 0 {
		return "", ErrEmptyKeyring
	}

	sig := bufio.NewReader(signature)
	var (
		signer *openpgp.Entity
		err    error
	)
	if isArmored(sig) {
		signer, err = openpgp.CheckArmoredDetachedSignature(v.keyring, data, sig, nil)
	} else {
		signer, err = openpgp.CheckDetachedSignature(v.keyring, data, sig, nil)
	}
	if err != nil {
		return "", fmt.Errorf("signature verification failed: %w", err)
	}
	return signer.PrimaryKey.KeyIdString(), nil
}

// VerifyFile checks sigPath against filePath and returns the signer's key ID
func (v *Verifier) VerifyFile(filePath, sigPath string) (string, error) {
	if len(v.keyring) == 0 {
		return "", ErrEmptyKeyring
	}

	//nolint:gosec // G304: sigPath is a pipeline artifact
	sigFile, err := os.Open(sigPath)
	if err != nil {
		return "", fmt.Errorf("failed to open signature file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer sigFile.Close()

	//nolint:gosec // G304: filePath is a pipeline artifact
	dataFile, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open data file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer dataFile.Close()

	return v.Verify(dataFile, sigFile)
}

// VerifySignatureFromFile verifies a detached signature from a local file
func (v *Verifier) VerifySignatureFromFile(filePath, sigPath string) error {
	_, err := v.VerifyFile(filePath, sigPath)
	return err
}

// Size returns the number of imported keys
func (v *Verifier) Size() int {
	return len(v.keyring)
}

func isArmored(r *bufio.Reader) bool {
	head, _ := r.Peek(len(armorPrefix) + 16)
	return bytes.HasPrefix(bytes.TrimLeft(head, " \t\r\n"), []byte(armorPrefix))
}
