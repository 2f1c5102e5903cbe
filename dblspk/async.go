package dblspk

import (
	"context"

	"github.com/TheusHen/dblspk/dblspk/crypto"
	"github.com/TheusHen/dblspk/dblspk/protocol"
)

// DeriveKeyAsync runs crypto.DeriveKey on its own goroutine.
func DeriveKeyAsync(passphrase string, params crypto.KDFParams) *Future[*crypto.Key] {
	return Go(func() (*crypto.Key, error) {
		return crypto.DeriveKey(passphrase, params)
	})
}

// EncodeTextAsync runs EncodeText on its own goroutine.
func (c *Codec) EncodeTextAsync(mode Mode, text string) *Future[[]string] {
	return Go(func() ([]string, error) { return c.EncodeText(mode, text) })
}

// EncodeFileAsync runs EncodeFile on its own goroutine.
func (c *Codec) EncodeFileAsync(mode Mode, f protocol.File) *Future[[]string] {
	return Go(func() ([]string, error) { return c.EncodeFile(mode, f) })
}

// SealTextAsync encrypts text with key once it has been derived.
func (c *Codec) SealTextAsync(key *Future[*crypto.Key], text string) *Future[[]string] {
	return Then(key, func(k *crypto.Key) ([]string, error) {
		return c.EncodeText(Encrypted(k), text)
	})
}

// RevealAsync runs Reveal on its own goroutine. The reveal itself is not
// cancellable; abandon it through Await instead.
func (c *Codec) RevealAsync(mode Mode, text string) *Future[Revealed] {
	return Go(func() (Revealed, error) {
		return c.Reveal(context.Background(), mode, text)
	})
}
