// Package protocol builds and parses dblspk frames.
//
// A frame is a self-describing unit: signature and version, a CRC-32 of the
// payload, a data type byte, a VLQ payload length, a salt when the payload
// is encrypted, and the payload itself. Frames are expanded into invisible
// characters by package alphabet and recovered from carrier text by package
// carrier.
//
// Inner bodies:
//   - text: UTF-8 bytes
//   - file: type NUL name NUL data
//   - encrypted: ciphertext of a kind byte followed by a text or file body
package protocol
