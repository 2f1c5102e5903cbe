package protocol

import (
	"errors"
	"fmt"

	"github.com/TheusHen/dblspk/dblspk/alphabet"
	"github.com/TheusHen/dblspk/dblspk/checksum"
	"github.com/TheusHen/dblspk/dblspk/vlq"
)

const (
	// Signature and Version open every frame ('D', 0).
	Signature byte = 0x44
	Version   byte = 0x00

	// SaltSize is the length of the salt carried by encrypted frames.
	SaltSize = 16

	// headerSize covers signature, version, checksum and flags.
	headerSize  = 2 + checksum.Size + 1
	flagsOffset = headerSize - 1
)

var (
	ErrNoMessage        = errors.New("protocol: no message detected")
	ErrProtocolMismatch = errors.New("protocol: protocol mismatch")
	ErrChecksumMismatch = errors.New("protocol: checksum mismatch")
	ErrTruncated        = errors.New("protocol: truncated frame")
	ErrSaltRequired     = errors.New("protocol: encrypted frame requires a 16-byte salt")
	ErrUnexpectedSalt   = errors.New("protocol: salt on unencrypted frame")
)

// Frame is one message ready to be hidden.
// Format:
//
//	2 bytes: signature 0x44, version 0x00
//	4 bytes: CRC-32 of payload (big endian)
//	1 byte:  data type flags
//	N bytes: payload length (VLQ)
//	16 bytes: salt, only when the data type is encrypted
//	N bytes: payload
type Frame struct {
	Type    DataType
	Salt    []byte
	Payload []byte
}

// Message is the result of parsing one frame.
type Message struct {
	ChecksumValid bool
	Checksum      uint32
	DataType      DataType
	Salt          []byte
	Payload       []byte
}

// Marshal builds the frame bytes. An empty payload produces no frame.
func Marshal(f Frame) ([]byte, error) {
	if len(f.Payload) == 0 {
		return nil, nil
	}
	if f.Type.Encrypted() {
		if len(f.Salt) != SaltSize {
			return nil, ErrSaltRequired
		}
	} else if len(f.Salt) != 0 {
		return nil, ErrUnexpectedSalt
	}

	sum := checksum.Sum(f.Payload)
	out := make([]byte, 0, headerSize+vlq.MaxBytes+len(f.Salt)+len(f.Payload))
	out = append(out, Signature, Version)
	out = append(out, sum.Bytes[:]...)
	out = append(out, byte(f.Type))
	out = vlq.Append(out, uint64(len(f.Payload)))
	out = append(out, f.Salt...)
	out = append(out, f.Payload...)
	return out, nil
}

// Encode builds the frame and expands it into alphabet characters.
func Encode(f Frame) (string, error) {
	b, err := Marshal(f)
	if err != nil {
		return "", err
	}
	return alphabet.EncodeBytes(b), nil
}

// HasSignature reports whether stream starts with the signature and version.
func HasSignature(stream []byte) bool {
	return len(stream) >= 2 && stream[0] == Signature && stream[1] == Version
}

// Decode parses the frame starting at offset and returns the offset just
// past its payload.
//
// ErrProtocolMismatch and ErrNoMessage return no message. A frame cut off
// before its payload ends returns ErrTruncated together with the bytes that
// were present; a checksum mismatch is reported through
// Message.ChecksumValid only.
func Decode(stream []byte, offset int) (Message, int, error) {
	if offset < 0 || offset >= len(stream) {
		return Message{}, offset, ErrNoMessage
	}
	b := stream[offset:]
	if !HasSignature(b) {
		return Message{}, offset, ErrProtocolMismatch
	}
	if len(b) < headerSize {
		return Message{}, len(stream), ErrTruncated
	}

	msg := Message{DataType: DataType(b[flagsOffset])}
	n, err := vlq.FieldLen(b[headerSize:])
	if err != nil {
		return msg, len(stream), fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	length := vlq.Decode(b[headerSize : headerSize+n])

	dataStart := headerSize + n
	if msg.DataType.Encrypted() {
		if len(b) < dataStart+SaltSize {
			return msg, len(stream), ErrTruncated
		}
		msg.Salt = b[dataStart : dataStart+SaltSize]
		dataStart += SaltSize
	}

	available := uint64(len(b) - dataStart)
	if length > available {
		msg.Payload = b[dataStart:]
		msg.Checksum = checksum.Sum(msg.Payload).CRC
		return msg, len(stream), ErrTruncated
	}
	dataEnd := dataStart + int(length)
	msg.Payload = b[dataStart:dataEnd]

	sum := checksum.Sum(msg.Payload)
	msg.Checksum = sum.CRC
	msg.ChecksumValid = sum.Matches(b[2 : 2+checksum.Size])
	return msg, offset + dataEnd, nil
}
