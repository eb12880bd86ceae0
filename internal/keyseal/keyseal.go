// Package keyseal turns provider credentials into opaque tokens that can be
// embedded in generated widgets and opened again only by this server.
package keyseal

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	info      = "weblave-widget-key-v1"
	keySize   = chacha20poly1305.KeySize
	nonceSize = chacha20poly1305.NonceSizeX
	tagSize   = chacha20poly1305.Overhead
	minSealed = nonceSize + tagSize
)

var (
	ErrNoSecret     = errors.New("keyseal: secret is empty")
	ErrInvalidToken = errors.New("keyseal: invalid token")
)

// Sealer seals and opens tokens under keys derived from one server secret.
//
// The nonce is an HMAC of the plaintext, so sealing the same value twice
// yields the same token. Generated snippets depend on that to stay
// byte-for-byte reproducible.
type Sealer struct {
	aeadKey  []byte
	nonceKey []byte
}

// New derives a Sealer from secret with HKDF-SHA256.
func New(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	keys := make([]byte, 2*keySize)
	if _, err := io.ReadFull(r, keys); err != nil {
		return nil, fmt.Errorf("deriving keys: %w", err)
	}
	return &Sealer{aeadKey: keys[:keySize], nonceKey: keys[keySize:]}, nil
}

// NewRandomSecret returns a fresh base64 secret suitable for New.
func NewRandomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Seal encrypts plaintext. Wire format: nonce[24] + ciphertext[N+16],
// base64url without padding.
func (s *Sealer) Seal(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.aeadKey)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, s.nonceKey)
	mac.Write([]byte(plaintext))
	nonce := mac.Sum(nil)[:nonceSize]

	wire := make([]byte, 0, nonceSize+len(plaintext)+tagSize)
	wire = append(wire, nonce...)
	wire = aead.Seal(wire, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(wire), nil
}

// Open reverses Seal. Any malformed or tampered token yields ErrInvalidToken.
func (s *Sealer) Open(token string) (string, error) {
	wire, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(wire) < minSealed {
		return "", ErrInvalidToken
	}
	aead, err := chacha20poly1305.NewX(s.aeadKey)
	if err != nil {
		return "", err
	}
	plaintext, err := aead.Open(nil, wire[:nonceSize], wire[nonceSize:], nil)
	if err != nil {
		return "", ErrInvalidToken
	}
	return string(plaintext), nil
}
