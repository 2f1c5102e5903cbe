package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestFileRoundTrip(t *testing.T) {
	in := File{Type: "image/png", Name: "cat.png", Data: []byte{0x89, 'P', 'N', 'G', 0, 0, 1}}
	b, err := MarshalFile(in)
	if err != nil {
		t.Fatalf("MarshalFile: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("image/png\x00cat.png\x00")) {
		t.Fatalf("unexpected file header: %q", b)
	}
	out, err := UnmarshalFile(b)
	if err != nil {
		t.Fatalf("UnmarshalFile: %v", err)
	}
	if out.Type != in.Type || out.Name != in.Name {
		t.Fatalf("header mismatch: %+v", out)
	}
	if !bytes.Equal(out.Data, in.Data) {
		t.Fatalf("data mismatch")
	}
}

func TestFileEmptyType(t *testing.T) {
	b, _ := MarshalFile(File{Name: "notes"})
	out, err := UnmarshalFile(b)
	if err != nil {
		t.Fatalf("UnmarshalFile: %v", err)
	}
	if out.Type != "" || out.Name != "notes" || len(out.Data) != 0 {
		t.Fatalf("unexpected file: %+v", out)
	}
}

func TestFileErrors(t *testing.T) {
	if _, err := MarshalFile(File{Name: "a\x00b"}); !errors.Is(err, ErrMalformedFile) {
		t.Fatalf("expected ErrMalformedFile, got %v", err)
	}
	if _, err := UnmarshalFile([]byte("text/plain\x00missing-second-nul")); err != ErrMalformedFile {
		t.Fatalf("expected ErrMalformedFile, got %v", err)
	}
}

func TestKindRoundTrip(t *testing.T) {
	sealed, err := SealKind(DataFile, []byte("body"))
	if err != nil {
		t.Fatalf("SealKind: %v", err)
	}
	kind, body, err := OpenKind(sealed)
	if err != nil {
		t.Fatalf("OpenKind: %v", err)
	}
	if kind != DataFile || string(body) != "body" {
		t.Fatalf("got %v %q", kind, body)
	}

	if _, err := SealKind(DataEncrypted, nil); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if _, _, err := OpenKind([]byte{0x7F}); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}
