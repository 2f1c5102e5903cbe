// Package dblspk hides text and files inside ordinary text using invisible
// Unicode characters.
//
// A payload is framed with a signature, a CRC-32 checksum, a type byte and a
// VLQ length, then written as runs of sixteen zero-width and format
// characters, one character per nibble. The runs can be placed anywhere in
// a cover text; reading splits them out again and leaves the cover intact.
//
// Payloads can optionally be:
//   - encrypted with a passphrase (PBKDF2 or Argon2id, then ChaCha20-Poly1305)
//     or with age recipients
//   - split into Reed-Solomon shards, one run per shard, so that damaged runs
//     can be rebuilt
//
// The building blocks live in subpackages: alphabet, vlq, checksum, protocol,
// carrier, crypto and parity. Codec ties them together.
package dblspk
