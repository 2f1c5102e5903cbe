package alphabet

import (
	"testing"
	"unicode/utf8"
)

func TestBijection(t *testing.T) {
	seen := map[rune]bool{}
	for n := byte(0); n < Size; n++ {
		r := Char(n)
		if seen[r] {
			t.Fatalf("character %U assigned twice", r)
		}
		seen[r] = true

		got, ok := Nibble(r)
		if !ok {
			t.Fatalf("Nibble(%U) not found", r)
		}
		if got != n {
			t.Fatalf("Nibble(Char(%d)) = %d", n, got)
		}
		if utf8.RuneLen(r) != 3 {
			t.Fatalf("%U is not a three byte rune", r)
		}
	}
}

func TestFixedOrder(t *testing.T) {
	if Char(0x0) != '\u200C' || Char(0x7) != '\u206A' || Char(0xD) != '\uFE00' || Char(0xF) != '\uFEFF' {
		t.Fatalf("alphabet order changed")
	}
}

func TestNotMember(t *testing.T) {
	for _, r := range []rune{'a', ' ', '\u200B', '\u2065', '\uFE02', 0} {
		if Contains(r) {
			t.Fatalf("%U should not be in the alphabet", r)
		}
	}
}

func TestEncodeBytes(t *testing.T) {
	s := EncodeBytes([]byte{0x44, 0x00, 0xF1})
	want := string([]rune{Char(4), Char(4), Char(0), Char(0), Char(0xF), Char(1)})
	if s != want {
		t.Fatalf("EncodeBytes = %q, want %q", s, want)
	}
	if EncodeBytes(nil) != "" {
		t.Fatalf("expected empty string for empty input")
	}
}
