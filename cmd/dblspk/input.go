package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readText reads path, or in when path is "-". Input starting with a UTF-16
// byte order mark is decoded from UTF-16; anything else is taken as UTF-8
// byte for byte. A leading U+FEFF in UTF-8 is an alphabet character and is
// kept, as is invalid UTF-8, so the cover text survives unchanged.
func readText(path string, in io.Reader) (string, error) {
	src := in
	if path != "-" && path != "" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		src = f
	}
	br := bufio.NewReader(src)
	var r io.Reader = br
	if bom, _ := br.Peek(2); isUTF16BOM(bom) {
		// ExpectBOM lets the mark pick the byte order.
		r = transform.NewReader(br, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", displayName(path), err)
	}
	return string(b), nil
}

// readIdentities returns the age identities in path, one per line, skipping
// blank lines and comments.
func readIdentities(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open identity file: %w", err)
	}
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read identity file: %w", err)
	}
	return ids, nil
}

func isUTF16BOM(b []byte) bool {
	return len(b) == 2 && (b[0] == 0xFE && b[1] == 0xFF || b[0] == 0xFF && b[1] == 0xFE)
}

func displayName(path string) string {
	if path == "-" || path == "" {
		return "stdin"
	}
	return path
}
