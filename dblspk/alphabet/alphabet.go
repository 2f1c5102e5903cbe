// Package alphabet maps 4-bit values to the sixteen invisible Unicode
// characters that carry hidden data.
//
// The order of the table is part of the wire format and must never change.
package alphabet

import "unicode/utf8"

// Size is the number of characters in the alphabet.
const Size = 16

var chars = [Size]rune{
	'\u200C', // zero-width non-joiner
	'\u200D', // zero-width joiner
	'\u2060', // word joiner
	'\u2061', // function application
	'\u2062', // invisible times
	'\u2063', // invisible separator
	'\u2064', // invisible plus
	'\u206A', // inhibit symmetric swapping
	'\u206B', // activate symmetric swapping
	'\u206C', // inhibit Arabic form shaping
	'\u206D', // activate Arabic form shaping
	'\u206E', // national digit shapes
	'\u206F', // nominal digit shapes
	'\uFE00', // variation selector-1
	'\uFE01', // variation selector-2
	'\uFEFF', // zero-width no-break space
}

var values = func() map[rune]byte {
	m := make(map[rune]byte, Size)
	for i, r := range chars {
		m[r] = byte(i)
	}
	return m
}()

// Char returns the character for the low four bits of n.
func Char(n byte) rune { return chars[n&0x0F] }

// Nibble returns the 4-bit value carried by r.
func Nibble(r rune) (byte, bool) {
	v, ok := values[r]
	return v, ok
}

// Contains reports whether r belongs to the alphabet.
func Contains(r rune) bool {
	_, ok := values[r]
	return ok
}

// AppendBytes appends the UTF-8 form of data to dst, two characters per
// byte, high nibble first.
func AppendBytes(dst []byte, data []byte) []byte {
	for _, b := range data {
		dst = utf8.AppendRune(dst, chars[b>>4])
		dst = utf8.AppendRune(dst, chars[b&0x0F])
	}
	return dst
}

// EncodeBytes returns data as a string of alphabet characters.
func EncodeBytes(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	// Every alphabet character is three bytes in UTF-8.
	return string(AppendBytes(make([]byte, 0, len(data)*6), data))
}
