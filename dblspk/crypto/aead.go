package crypto

import (
	"crypto/cipher"
	"errors"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	ErrCiphertextTooShort = errors.New("crypto: ciphertext too short")
	ErrDecryptionFailed   = errors.New("crypto: decryption failed")
)

var aeadInfo = []byte("dblspk message aead v0")

// messageAEAD is ChaCha20-Poly1305 with a nonce fixed by the key material.
// Each salt yields fresh material, so a nonce is never reused under one key
// and does not need to travel with the ciphertext.
type messageAEAD struct {
	aead  cipher.AEAD
	nonce []byte
}

// newMessageAEAD splits 44 bytes of HKDF output from material into a
// 32-byte key and a 12-byte nonce.
func newMessageAEAD(material []byte) (*messageAEAD, error) {
	okm, err := expand(material, nil, aeadInfo, chacha20poly1305.KeySize+chacha20poly1305.NonceSize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(okm[:chacha20poly1305.KeySize])
	if err != nil {
		return nil, err
	}
	return &messageAEAD{aead: aead, nonce: okm[chacha20poly1305.KeySize:]}, nil
}

// Seal returns ciphertext || tag (16 bytes).
func (a *messageAEAD) Seal(plaintext []byte) []byte {
	return a.aead.Seal(nil, a.nonce, plaintext, nil)
}

// Open verifies and decrypts ciphertext || tag.
func (a *messageAEAD) Open(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < a.aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	plaintext, err := a.aead.Open(nil, a.nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// Overhead returns the authentication tag overhead.
func (a *messageAEAD) Overhead() int { return a.aead.Overhead() }
