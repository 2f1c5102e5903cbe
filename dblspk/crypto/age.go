package crypto

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"
)

var (
	ErrNoRecipients = errors.New("crypto: age cipher has no recipients")
	ErrNoIdentities = errors.New("crypto: age cipher has no identities")
)

// AgeCipher encrypts payloads with age, either to X25519 public keys or to
// a scrypt passphrase. age carries its own file key and scrypt salt, so the
// frame salt is checked for length and otherwise unused.
//
// An AgeCipher built only from recipients can hide but not reveal.
type AgeCipher struct {
	recipients []age.Recipient
	identities []age.Identity
}

var _ Cipher = (*AgeCipher)(nil)

// NewAgeCipher parses age1... recipients and AGE-SECRET-KEY-1... identities.
// Either list may be empty.
func NewAgeCipher(recipientKeys, identityKeys []string) (*AgeCipher, error) {
	c := &AgeCipher{}
	for _, key := range recipientKeys {
		r, err := age.ParseX25519Recipient(key)
		if err != nil {
			return nil, fmt.Errorf("parsing recipient key %q: %w", key, err)
		}
		c.recipients = append(c.recipients, r)
	}
	for _, key := range identityKeys {
		id, err := age.ParseX25519Identity(key)
		if err != nil {
			return nil, fmt.Errorf("parsing identity key: %w", err)
		}
		c.identities = append(c.identities, id)
	}
	return c, nil
}

// NewAgePassphraseCipher uses age's scrypt recipient. workFactor is log2 of
// the scrypt N parameter; zero keeps age's default.
func NewAgePassphraseCipher(passphrase string, workFactor int) (*AgeCipher, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	r, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}
	id, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}
	if workFactor > 0 {
		r.SetWorkFactor(workFactor)
		id.SetMaxWorkFactor(workFactor)
	}
	return &AgeCipher{recipients: []age.Recipient{r}, identities: []age.Identity{id}}, nil
}

// GenerateAgeKeypair returns a new X25519 identity and its recipient, in
// their age string forms.
func GenerateAgeKeypair() (identity, recipient string, err error) {
	id, err := age.GenerateX25519Identity()
	if err != nil {
		return "", "", fmt.Errorf("generating age keypair: %w", err)
	}
	return id.String(), id.Recipient().String(), nil
}

// Seal encrypts plaintext to every recipient.
func (c *AgeCipher) Seal(plaintext, salt []byte) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, ErrInvalidSalt
	}
	if len(c.recipients) == 0 {
		return nil, ErrNoRecipients
	}
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, c.recipients...)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing plaintext to age encryptor: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing age encryption: %w", err)
	}
	return buf.Bytes(), nil
}

// Open decrypts ciphertext with any matching identity.
func (c *AgeCipher) Open(ciphertext, salt []byte) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, ErrInvalidSalt
	}
	if len(c.identities) == 0 {
		return nil, ErrNoIdentities
	}
	r, err := age.Decrypt(bytes.NewReader(ciphertext), c.identities...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
