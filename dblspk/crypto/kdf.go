package crypto

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

var ErrInvalidKDF = errors.New("crypto: invalid key derivation parameters")

// KDF selects the passphrase stretching function.
type KDF uint8

const (
	KDFPBKDF2 KDF = iota
	KDFArgon2id
)

func (k KDF) String() string {
	switch k {
	case KDFPBKDF2:
		return "pbkdf2"
	case KDFArgon2id:
		return "argon2id"
	default:
		return "unknown"
	}
}

// ParseKDF is the inverse of KDF.String.
func ParseKDF(s string) (KDF, error) {
	switch s {
	case "pbkdf2", "":
		return KDFPBKDF2, nil
	case "argon2id", "argon2":
		return KDFArgon2id, nil
	default:
		return 0, fmt.Errorf("%w: unknown kdf %q", ErrInvalidKDF, s)
	}
}

// KDFParams configures passphrase stretching.
//
// Iterations is the PBKDF2 round count, or the Argon2id time cost.
// Memory (KiB) and Threads apply to Argon2id only.
type KDFParams struct {
	KDF        KDF
	Iterations uint32
	Memory     uint32
	Threads    uint8
}

// DefaultKDFParams returns PBKDF2-HMAC-SHA256 with 100k rounds.
func DefaultKDFParams() KDFParams {
	return KDFParams{KDF: KDFPBKDF2, Iterations: 100_000}
}

// DefaultArgon2Params returns the RFC 9106 second recommended option.
func DefaultArgon2Params() KDFParams {
	return KDFParams{KDF: KDFArgon2id, Iterations: 3, Memory: 64 * 1024, Threads: 4}
}

func (p KDFParams) validate() error {
	switch p.KDF {
	case KDFPBKDF2:
		if p.Iterations == 0 {
			return fmt.Errorf("%w: zero iterations", ErrInvalidKDF)
		}
	case KDFArgon2id:
		if p.Iterations == 0 || p.Memory == 0 || p.Threads == 0 {
			return fmt.Errorf("%w: argon2id needs time, memory and threads", ErrInvalidKDF)
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidKDF, p.KDF)
	}
	return nil
}

// stretch derives 32 bytes from secret and salt.
func (p KDFParams) stretch(secret, salt []byte) []byte {
	if p.KDF == KDFArgon2id {
		return argon2.IDKey(secret, salt, p.Iterations, p.Memory, p.Threads, 32)
	}
	return pbkdf2.Key(secret, salt, int(p.Iterations), 32, sha256.New)
}

// expand derives a key of the specified length using HKDF-SHA256.
// salt can be nil (uses zero salt), info provides context binding.
func expand(secret, salt, info []byte, length int) ([]byte, error) {
	hk := hkdf.New(sha256.New, secret, salt, info)
	key := make([]byte, length)
	if _, err := io.ReadFull(hk, key); err != nil {
		return nil, err
	}
	return key, nil
}
