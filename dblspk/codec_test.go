package dblspk

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/TheusHen/dblspk/dblspk/alphabet"
	"github.com/TheusHen/dblspk/dblspk/crypto"
	"github.com/TheusHen/dblspk/dblspk/parity"
	"github.com/TheusHen/dblspk/dblspk/protocol"
)

const cover = "the quick brown fox jumps over the lazy dog while nobody watches"

func newCodec(t *testing.T, opts Options) *Codec {
	t.Helper()
	c, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func testKey(t *testing.T, passphrase string) *crypto.Key {
	t.Helper()
	key, err := crypto.DeriveKey(passphrase, crypto.KDFParams{KDF: crypto.KDFPBKDF2, Iterations: 1000})
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	return key
}

// corrupt flips the last nibble of run, breaking its checksum.
func corrupt(run string) string {
	r := []rune(run)
	n, _ := alphabet.Nibble(r[len(r)-1])
	r[len(r)-1] = alphabet.Char((n + 1) & 0x0F)
	return string(r)
}

func TestTextRoundTrip(t *testing.T) {
	c := newCodec(t, Options{})
	runs, err := c.EncodeText(Plain(), "meet me at noon")
	if err != nil {
		t.Fatalf("EncodeText: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	carrier := c.Hide(cover, runs)
	if carrier == cover {
		t.Fatalf("Hide did not add anything")
	}

	got, err := c.Reveal(context.Background(), Plain(), carrier)
	if err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if got.Cover != cover {
		t.Fatalf("cover = %q", got.Cover)
	}
	if len(got.Contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(got.Contents))
	}
	m := got.Contents[0]
	if m.Err != nil || m.Kind != protocol.DataText || m.Encrypted || m.Text != "meet me at noon" {
		t.Fatalf("unexpected content: %+v", m)
	}
}

func TestEncodeTextDropsHiddenInput(t *testing.T) {
	c := newCodec(t, Options{})
	inner, _ := c.EncodeText(Plain(), "inner")
	runs, err := c.EncodeText(Plain(), "outer"+inner[0])
	if err != nil {
		t.Fatalf("EncodeText: %v", err)
	}
	got, _ := c.Reveal(context.Background(), Plain(), runs[0])
	if len(got.Contents) != 1 || got.Contents[0].Text != "outer" {
		t.Fatalf("unexpected contents: %+v", got.Contents)
	}
}

func TestEncodeEmpty(t *testing.T) {
	c := newCodec(t, Options{})
	runs, err := c.EncodeText(Plain(), "")
	if err != nil || runs != nil {
		t.Fatalf("EncodeText(\"\") = %v, %v", runs, err)
	}
}

func TestFileRoundTrip(t *testing.T) {
	c := newCodec(t, Options{})
	in := protocol.File{Type: "image/png", Name: "dot.png", Data: []byte{0x89, 'P', 'N', 'G', 0, 1, 2}}
	runs, err := c.EncodeFile(Plain(), in)
	if err != nil {
		t.Fatalf("EncodeFile: %v", err)
	}
	got, _ := c.Reveal(context.Background(), Plain(), c.Hide(cover, runs))
	m := got.Contents[0]
	if m.Err != nil || m.Kind != protocol.DataFile || m.File == nil {
		t.Fatalf("unexpected content: %+v", m)
	}
	if m.File.Type != in.Type || m.File.Name != in.Name || !bytes.Equal(m.File.Data, in.Data) {
		t.Fatalf("file mismatch: %+v", m.File)
	}
}

func TestEncryptedRoundTrip(t *testing.T) {
	c := newCodec(t, Options{})
	key := testKey(t, "correct horse")
	runs, err := c.EncodeText(Encrypted(key), "secret plans")
	if err != nil {
		t.Fatalf("EncodeText: %v", err)
	}
	carrier := c.Hide(cover, runs)

	got, err := c.Reveal(context.Background(), Encrypted(testKey(t, "correct horse")), carrier)
	if err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	m := got.Contents[0]
	if m.Err != nil || !m.Encrypted || m.Kind != protocol.DataText || m.Text != "secret plans" {
		t.Fatalf("unexpected content: %+v", m)
	}
}

func TestEncryptedFileKeepsKind(t *testing.T) {
	c := newCodec(t, Options{})
	key := testKey(t, "pw")
	runs, _ := c.EncodeFile(Encrypted(key), protocol.File{Type: "text/plain", Name: "a.txt", Data: []byte("abc")})
	got, _ := c.Reveal(context.Background(), Encrypted(key), runs[0])
	m := got.Contents[0]
	if m.Err != nil || m.Kind != protocol.DataFile || m.File.Name != "a.txt" {
		t.Fatalf("unexpected content: %+v", m)
	}
}

func TestWrongPassphrase(t *testing.T) {
	c := newCodec(t, Options{})
	runs, _ := c.EncodeText(Encrypted(testKey(t, "right")), "hello")
	got, err := c.Reveal(context.Background(), Encrypted(testKey(t, "wrong")), runs[0])
	if err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if !errors.Is(got.Contents[0].Err, crypto.ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", got.Contents[0].Err)
	}
}

func TestPlainModeNeedsCipher(t *testing.T) {
	c := newCodec(t, Options{})
	runs, _ := c.EncodeText(Encrypted(testKey(t, "pw")), "hello")
	got, _ := c.Reveal(context.Background(), Plain(), runs[0])
	if m := got.Contents[0]; !m.Encrypted || !errors.Is(m.Err, ErrCipherRequired) {
		t.Fatalf("unexpected content: %+v", m)
	}
}

func TestAgeRoundTrip(t *testing.T) {
	identity, recipient, err := crypto.GenerateAgeKeypair()
	if err != nil {
		t.Fatalf("GenerateAgeKeypair: %v", err)
	}
	ac, err := crypto.NewAgeCipher([]string{recipient}, []string{identity})
	if err != nil {
		t.Fatalf("NewAgeCipher: %v", err)
	}
	c := newCodec(t, Options{})
	runs, err := c.EncodeText(Encrypted(ac), "for your eyes")
	if err != nil {
		t.Fatalf("EncodeText: %v", err)
	}
	got, _ := c.Reveal(context.Background(), Encrypted(ac), c.Hide(cover, runs))
	if m := got.Contents[0]; m.Err != nil || m.Text != "for your eyes" {
		t.Fatalf("unexpected content: %+v", m)
	}
}

func TestMultipleMessages(t *testing.T) {
	c := newCodec(t, Options{})
	a, _ := c.EncodeText(Plain(), "first")
	b, _ := c.EncodeText(Plain(), "second")
	got, _ := c.Reveal(context.Background(), Plain(), c.Hide(cover, append(a, b...)))
	if len(got.Contents) != 2 || got.Contents[0].Text != "first" || got.Contents[1].Text != "second" {
		t.Fatalf("unexpected contents: %+v", got.Contents)
	}
	if got.Cover != cover {
		t.Fatalf("cover = %q", got.Cover)
	}
}

func TestNoMessage(t *testing.T) {
	c := newCodec(t, Options{})
	got, err := c.Reveal(context.Background(), Plain(), "nothing to see")
	if err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if len(got.Contents) != 1 || !errors.Is(got.Contents[0].Err, protocol.ErrNoMessage) {
		t.Fatalf("unexpected contents: %+v", got.Contents)
	}
	if got.Contents[0].Encrypted {
		t.Fatalf("failed entry claims to be encrypted")
	}
}

func TestParityRecoversDamagedRun(t *testing.T) {
	c := newCodec(t, Options{Parity: ParityOptions{DataShards: 4, ParityShards: 2}})
	runs, err := c.EncodeText(Plain(), "a message long enough to be split across every shard")
	if err != nil {
		t.Fatalf("EncodeText: %v", err)
	}
	if len(runs) != 6 {
		t.Fatalf("expected 6 runs, got %d", len(runs))
	}
	runs[1] = corrupt(runs[1])
	runs = append(runs[:3], runs[4:]...)

	got, err := c.Reveal(context.Background(), Plain(), c.Hide(cover, runs))
	if err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if len(got.Contents) != 2 {
		t.Fatalf("expected rebuilt message plus one damaged run, got %+v", got.Contents)
	}
	m := got.Contents[0]
	if m.Err != nil || m.Shards != 4 || m.Text != "a message long enough to be split across every shard" {
		t.Fatalf("unexpected content: %+v", m)
	}
	if !errors.Is(got.Contents[1].Err, protocol.ErrChecksumMismatch) {
		t.Fatalf("expected checksum mismatch, got %v", got.Contents[1].Err)
	}
}

func TestParityEncrypted(t *testing.T) {
	c := newCodec(t, Options{Parity: ParityOptions{DataShards: 2, ParityShards: 1}})
	key := testKey(t, "pw")
	runs, _ := c.EncodeText(Encrypted(key), "sharded secret")
	got, _ := c.Reveal(context.Background(), Encrypted(key), c.Hide(cover, runs[1:]))
	if m := got.Contents[0]; m.Err != nil || !m.Encrypted || m.Text != "sharded secret" {
		t.Fatalf("unexpected content: %+v", m)
	}
}

func TestParityTooManyLost(t *testing.T) {
	c := newCodec(t, Options{Parity: ParityOptions{DataShards: 2, ParityShards: 1}})
	runs, _ := c.EncodeText(Plain(), "fragile")
	got, _ := c.Reveal(context.Background(), Plain(), runs[0])
	if m := got.Contents[0]; m.Err == nil {
		t.Fatalf("expected an error, got %+v", m)
	}
}

func TestRevealRejectsForgedShardSize(t *testing.T) {
	payload, err := parity.Marshal(parity.Shard{Set: 9, Index: 0, Data: 1, Parity: 1, Size: 1 << 50, Bytes: []byte("abcd")})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	run, err := protocol.Encode(protocol.Frame{Type: protocol.DataText | protocol.FlagParity, Payload: payload})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	c := newCodec(t, Options{})
	got, err := c.Reveal(context.Background(), Plain(), "hello "+run)
	if err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if len(got.Contents) != 1 || !errors.Is(got.Contents[0].Err, parity.ErrMalformedShard) {
		t.Fatalf("unexpected contents: %+v", got.Contents)
	}
}

func TestParityOneWordCover(t *testing.T) {
	c := newCodec(t, Options{Parity: ParityOptions{DataShards: 2, ParityShards: 1}})
	runs, err := c.EncodeText(Plain(), "short cover, separate shards")
	if err != nil {
		t.Fatalf("EncodeText: %v", err)
	}
	runs[0] = corrupt(runs[0])

	for _, cover := range []string{"hello", "a", ""} {
		got, err := c.Reveal(context.Background(), Plain(), c.Hide(cover, runs))
		if err != nil {
			t.Fatalf("Reveal: %v", err)
		}
		if len(got.Contents) != 2 {
			t.Fatalf("cover %q: expected rebuilt message plus one damaged run, got %+v", cover, got.Contents)
		}
		if !errors.Is(got.Contents[0].Err, protocol.ErrChecksumMismatch) {
			t.Fatalf("cover %q: expected checksum mismatch first, got %v", cover, got.Contents[0].Err)
		}
		if m := got.Contents[1]; m.Err != nil || m.Shards != 2 || m.Text != "short cover, separate shards" {
			t.Fatalf("cover %q: unexpected content: %+v", cover, m)
		}
	}
}

func TestEncryptedNilIsPlain(t *testing.T) {
	if Encrypted(nil).IsEncrypted() {
		t.Fatalf("Encrypted(nil) should be plain")
	}
}

func TestInvalidParityOptions(t *testing.T) {
	if _, err := New(Options{Parity: ParityOptions{DataShards: 3}}); err != ErrInvalidParity {
		t.Fatalf("expected ErrInvalidParity, got %v", err)
	}
}

func TestStrip(t *testing.T) {
	c := newCodec(t, Options{})
	runs, _ := c.EncodeText(Plain(), "gone")
	if got := c.Strip(c.Hide(cover, runs)); got != cover {
		t.Fatalf("Strip = %q", got)
	}
}

func TestRevealCanceled(t *testing.T) {
	c := newCodec(t, Options{})
	runs, _ := c.EncodeText(Plain(), "late")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Reveal(ctx, Plain(), runs[0]); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := newCodec(t, Options{Logger: log})
	runs, _ := c.EncodeText(Plain(), "logged")
	c.Decode(runs[0])
	out := buf.String()
	for _, want := range []string{"frame encoded", "original_bytes=6", "crc32=", "frame decoded"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}

func BenchmarkEncodeText(b *testing.B) {
	c, _ := New(Options{})
	text := strings.Repeat("lorem ipsum ", 100)
	b.SetBytes(int64(len(text)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.EncodeText(Plain(), text)
	}
}

func BenchmarkReveal(b *testing.B) {
	c, _ := New(Options{})
	text := strings.Repeat("lorem ipsum ", 100)
	runs, _ := c.EncodeText(Plain(), text)
	carrier := c.Hide(cover, runs)
	b.SetBytes(int64(len(text)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Reveal(context.Background(), Plain(), carrier)
	}
}
