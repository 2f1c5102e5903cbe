// Package crypto provides the ciphers used for encrypted frames.
//
// Design goals:
//   - The key is caller-owned state, immutable after DeriveKey
//   - Every message is sealed under a key stretched with its own 16-byte salt
//     (PBKDF2-HMAC-SHA256 by default, Argon2id optional)
//   - AEAD encryption via ChaCha20-Poly1305 (RFC 8439), key and nonce from
//     HKDF-SHA256, so no nonce travels in the carrier
//   - age (X25519 or scrypt) as an alternative Cipher for public-key use
package crypto
