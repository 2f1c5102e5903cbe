package carrier

import (
	"strings"
	"unicode/utf8"

	"github.com/TheusHen/dblspk/dblspk/alphabet"
)

// MinRunChars is the shortest run decoded as data (8 bytes). Shorter runs
// are left in the cover text.
const MinRunChars = 16

// Run is one maximal sequence of alphabet characters in a carrier.
type Run struct {
	Offset   int  // byte offset in the carrier
	Chars    int  // characters in the run, before any trailing drop
	Retained bool // decoded as data
}

// Scan is a carrier split into cover text and hidden bytes.
//
// RunLengths holds the byte count contributed by each retained run, in
// order; their sum is len(Bytes).
type Scan struct {
	Cover      string
	Bytes      []byte
	RunLengths []int
	Runs       []Run
}

// ScanText partitions s into cover text and hidden bytes.
func ScanText(s string) Scan {
	var (
		res   Scan
		cover strings.Builder
	)
	cover.Grow(len(s))
	walk(s, func(start, end int) {
		cover.WriteString(s[start:end])
	}, func(run Run, text string) {
		res.Runs = append(res.Runs, run)
		if !run.Retained {
			cover.WriteString(text)
			return
		}
		n := len(res.Bytes)
		res.Bytes = appendNibbles(res.Bytes, text, run.Chars&^1)
		res.RunLengths = append(res.RunLengths, len(res.Bytes)-n)
	})
	res.Cover = cover.String()
	return res
}

// Filter returns s with every decodable run removed. Noise runs stay.
func Filter(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	walk(s, func(start, end int) {
		out.WriteString(s[start:end])
	}, func(run Run, text string) {
		if !run.Retained {
			out.WriteString(text)
		}
	})
	return out.String()
}

// walk visits s left to right. Bytes outside any run are reported as
// [start, end) spans, including invalid UTF-8, so cover text stays
// byte-identical.
func walk(s string, plain func(start, end int), run func(Run, string)) {
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !alphabet.Contains(r) {
			j := i + size
			for j < len(s) {
				r, size = utf8.DecodeRuneInString(s[j:])
				if alphabet.Contains(r) {
					break
				}
				j += size
			}
			plain(i, j)
			i = j
			continue
		}

		start, chars := i, 0
		for i < len(s) {
			r, size = utf8.DecodeRuneInString(s[i:])
			if !alphabet.Contains(r) {
				break
			}
			chars++
			i += size
		}
		run(Run{Offset: start, Chars: chars, Retained: chars >= MinRunChars}, s[start:i])
	}
}

// appendNibbles decodes the first n characters of text, n even, pairing
// them into bytes.
func appendNibbles(dst []byte, text string, n int) []byte {
	var hi byte
	i := 0
	for _, r := range text {
		if i == n {
			break
		}
		v, _ := alphabet.Nibble(r)
		if i&1 == 0 {
			hi = v << 4
		} else {
			dst = append(dst, hi|v)
		}
		i++
	}
	return dst
}
