package crypto

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/text/unicode/norm"
)

// SaltSize is the length of the per-message salt.
const SaltSize = 16

var (
	ErrEmptyPassphrase = errors.New("crypto: empty passphrase")
	ErrInvalidSalt     = errors.New("crypto: salt must be 16 bytes")
)

// Cipher encrypts frame payloads. The salt is the one carried in the frame
// header; implementations may ignore it but must accept it.
type Cipher interface {
	Seal(plaintext, salt []byte) ([]byte, error)
	Open(ciphertext, salt []byte) ([]byte, error)
}

// Key is passphrase key state. It is immutable once derived and safe for
// concurrent use; the caller owns it and passes it wherever encryption is
// needed.
type Key struct {
	secret []byte
	params KDFParams
}

var _ Cipher = (*Key)(nil)

// DeriveKey prepares a passphrase for use. The passphrase is NFC
// normalized so that the same text typed on different systems yields the
// same key. Stretching happens per message, against that message's salt.
func DeriveKey(passphrase string, params KDFParams) (*Key, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &Key{
		secret: []byte(norm.NFC.String(passphrase)),
		params: params,
	}, nil
}

// Params returns the key derivation parameters.
func (k *Key) Params() KDFParams { return k.params }

func (k *Key) aead(salt []byte) (*messageAEAD, error) {
	if len(salt) != SaltSize {
		return nil, ErrInvalidSalt
	}
	return newMessageAEAD(k.params.stretch(k.secret, salt))
}

// Seal encrypts plaintext under the key stretched with salt.
func (k *Key) Seal(plaintext, salt []byte) ([]byte, error) {
	a, err := k.aead(salt)
	if err != nil {
		return nil, err
	}
	return a.Seal(plaintext), nil
}

// Open decrypts ciphertext produced by Seal with the same salt.
func (k *Key) Open(ciphertext, salt []byte) ([]byte, error) {
	a, err := k.aead(salt)
	if err != nil {
		return nil, err
	}
	return a.Open(ciphertext)
}

// NewSalt reads a fresh salt from r, or from crypto/rand when r is nil.
func NewSalt(r io.Reader) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(r, salt); err != nil {
		return nil, err
	}
	return salt, nil
}
