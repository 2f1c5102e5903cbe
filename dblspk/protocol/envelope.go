package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	ErrMalformedFile = errors.New("protocol: malformed file body")
	ErrUnknownKind   = errors.New("protocol: unknown inner data type")
)

// File is a hidden file: a MIME type, a name and its contents.
type File struct {
	Type string
	Name string
	Data []byte
}

// MarshalFile serializes f as type NUL name NUL data.
func MarshalFile(f File) ([]byte, error) {
	if strings.IndexByte(f.Type, 0) >= 0 || strings.IndexByte(f.Name, 0) >= 0 {
		return nil, fmt.Errorf("%w: NUL in type or name", ErrMalformedFile)
	}
	out := make([]byte, 0, len(f.Type)+len(f.Name)+2+len(f.Data))
	out = append(out, f.Type...)
	out = append(out, 0)
	out = append(out, f.Name...)
	out = append(out, 0)
	out = append(out, f.Data...)
	return out, nil
}

// UnmarshalFile splits a file body at its first two NUL bytes.
func UnmarshalFile(b []byte) (File, error) {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return File{}, ErrMalformedFile
	}
	j := bytes.IndexByte(b[i+1:], 0)
	if j < 0 {
		return File{}, ErrMalformedFile
	}
	j += i + 1
	typ, name := b[:i], b[i+1:j]
	if !utf8.Valid(typ) || !utf8.Valid(name) {
		return File{}, fmt.Errorf("%w: invalid UTF-8 header", ErrMalformedFile)
	}
	return File{
		Type: string(typ),
		Name: string(name),
		Data: append([]byte(nil), b[j+1:]...),
	}, nil
}

// SealKind prefixes body with its kind so that, once encrypted, the frame
// type byte no longer has to say what the plaintext is.
func SealKind(kind DataType, body []byte) ([]byte, error) {
	switch kind {
	case DataText, DataFile:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	out := make([]byte, 0, 1+len(body))
	out = append(out, byte(kind))
	return append(out, body...), nil
}

// OpenKind reverses SealKind.
func OpenKind(plain []byte) (DataType, []byte, error) {
	if len(plain) == 0 {
		return 0, nil, ErrUnknownKind
	}
	kind := DataType(plain[0])
	switch kind {
	case DataText, DataFile:
		return kind, plain[1:], nil
	default:
		return 0, nil, fmt.Errorf("%w: %#02x", ErrUnknownKind, plain[0])
	}
}
