package entities

import "strings"

// SigningKey is the in-memory OpenPGP key material used for one run
type SigningKey struct {
	ArmoredKey string
	Passphrase string
}

// IsEmpty reports whether no key material was supplied
func (k SigningKey) IsEmpty() bool {
	return strings.TrimSpace(k.ArmoredKey) == ""
}

// String never reveals the key material
func (k SigningKey) String() string {
	if k.IsEmpty() {
		return "SigningKey(absent)"
	}
	return "SigningKey(present)"
}
