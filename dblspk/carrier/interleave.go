package carrier

import (
	"strings"
	"unicode"
)

// Separator keeps runs apart when the cover has too few places to put them
// in. It is invisible and not part of the alphabet, so it ends a run and
// stays in the cover text.
const Separator = "\u200B"

// Interleave hides runs in cover, each one at the end of a different word,
// spread evenly over the text. When there are fewer words than runs, runs go
// between characters instead; when there are fewer characters too, the
// surplus runs share the last position with a Separator between each pair.
// Every run stays a run of its own either way.
//
// cover should not contain alphabet characters next to an insertion point,
// or they join the inserted run.
func Interleave(cover string, runs []string) string {
	if len(runs) == 0 {
		return cover
	}
	gaps := wordEnds(cover)
	if len(gaps) < len(runs) {
		gaps = runeEnds(cover)
	}

	at := make([]int, len(runs))
	for k := range runs {
		if len(gaps) >= len(runs) {
			at[k] = gaps[k*len(gaps)/len(runs)]
		} else {
			at[k] = gaps[min(k, len(gaps)-1)]
		}
	}

	size := len(cover) + len(runs)*len(Separator)
	for _, r := range runs {
		size += len(r)
	}
	var out strings.Builder
	out.Grow(size)
	prev := 0
	for k, r := range runs {
		out.WriteString(cover[prev:at[k]])
		if k > 0 && at[k] == at[k-1] {
			out.WriteString(Separator)
		}
		out.WriteString(r)
		prev = at[k]
	}
	out.WriteString(cover[prev:])
	return out.String()
}

// wordEnds lists byte offsets where a word is followed by whitespace, plus
// the end of the text.
func wordEnds(s string) []int {
	var ends []int
	inWord := false
	for i, r := range s {
		space := unicode.IsSpace(r)
		if space && inWord {
			ends = append(ends, i)
		}
		inWord = !space
	}
	return append(ends, len(s))
}

// runeEnds lists the byte offset after every character of s, or just 0 for
// an empty s.
func runeEnds(s string) []int {
	var ends []int
	for i := range s {
		if i > 0 {
			ends = append(ends, i)
		}
	}
	return append(ends, len(s))
}
