package dblspk

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/TheusHen/dblspk/dblspk/carrier"
	"github.com/TheusHen/dblspk/dblspk/checksum"
	"github.com/TheusHen/dblspk/dblspk/crypto"
	"github.com/TheusHen/dblspk/dblspk/parity"
	"github.com/TheusHen/dblspk/dblspk/protocol"
)

var (
	ErrCipherRequired = errors.New("dblspk: encrypted message needs a cipher")
	ErrInvalidParity  = errors.New("dblspk: parity needs both data and parity shards")
)

// Mode says whether payloads are encrypted, and with what.
type Mode struct {
	cipher crypto.Cipher
}

// Plain hides payloads as they are.
func Plain() Mode { return Mode{} }

// Encrypted seals payloads with c. A nil interface gives Plain; a typed nil
// pointer such as a nil *crypto.Key is not detected and must not be passed.
func Encrypted(c crypto.Cipher) Mode { return Mode{cipher: c} }

// IsEncrypted reports whether the mode carries a cipher.
func (m Mode) IsEncrypted() bool { return m.cipher != nil }

// ParityOptions enables Reed-Solomon shards. Zero values disable it.
type ParityOptions struct {
	DataShards   int
	ParityShards int
}

// Options configures a Codec. The zero value is usable.
type Options struct {
	// Logger receives debug records about frame sizes and checksums.
	Logger *slog.Logger
	// Rand supplies salts and parity set IDs. Defaults to crypto/rand.
	Rand   io.Reader
	Parity ParityOptions
}

// Codec hides and reveals messages. It holds no key material and is safe
// for concurrent use; ciphers arrive with each call through Mode.
type Codec struct {
	log    *slog.Logger
	rand   io.Reader
	parity *parity.Codec
}

// New builds a Codec from opts.
func New(opts Options) (*Codec, error) {
	c := &Codec{log: opts.Logger, rand: opts.Rand}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	p := opts.Parity
	switch {
	case p.DataShards == 0 && p.ParityShards == 0:
	case p.DataShards <= 0 || p.ParityShards <= 0:
		return nil, ErrInvalidParity
	default:
		pc, err := parity.NewCodec(p.DataShards, p.ParityShards)
		if err != nil {
			return nil, err
		}
		c.parity = pc
	}
	return c, nil
}

// EncodeText hides text, after removing any hidden runs it already
// contains. The result is one encoded run, or one per shard when parity
// is enabled. Empty text yields no runs.
func (c *Codec) EncodeText(mode Mode, text string) ([]string, error) {
	return c.encode(mode, protocol.DataText, []byte(carrier.Filter(text)))
}

// EncodeFile hides a file.
func (c *Codec) EncodeFile(mode Mode, f protocol.File) ([]string, error) {
	body, err := protocol.MarshalFile(f)
	if err != nil {
		return nil, err
	}
	return c.encode(mode, protocol.DataFile, body)
}

func (c *Codec) encode(mode Mode, kind protocol.DataType, body []byte) ([]string, error) {
	if len(body) == 0 {
		return nil, nil
	}
	original := len(body)

	dataType := kind
	var salt []byte
	if mode.cipher != nil {
		sealed, err := protocol.SealKind(kind, body)
		if err != nil {
			return nil, err
		}
		if salt, err = crypto.NewSalt(c.rand); err != nil {
			return nil, err
		}
		if body, err = mode.cipher.Seal(sealed, salt); err != nil {
			return nil, err
		}
		dataType = protocol.DataEncrypted
	}

	if c.parity == nil {
		run, err := protocol.Encode(protocol.Frame{Type: dataType, Salt: salt, Payload: body})
		if err != nil {
			return nil, err
		}
		c.logEncoded(dataType, original, body, run)
		return []string{run}, nil
	}

	set, err := parity.NewSetID(c.rand)
	if err != nil {
		return nil, err
	}
	shards, err := c.parity.Split(body, set)
	if err != nil {
		return nil, err
	}
	runs := make([]string, 0, len(shards))
	for _, s := range shards {
		payload, err := parity.Marshal(s)
		if err != nil {
			return nil, err
		}
		run, err := protocol.Encode(protocol.Frame{Type: dataType | protocol.FlagParity, Salt: salt, Payload: payload})
		if err != nil {
			return nil, err
		}
		c.logEncoded(dataType|protocol.FlagParity, original, payload, run)
		runs = append(runs, run)
	}
	return runs, nil
}

func (c *Codec) logEncoded(dataType protocol.DataType, original int, payload []byte, run string) {
	if !c.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	c.log.Debug("frame encoded",
		"type", dataType.String(),
		"original_bytes", original,
		"payload_bytes", len(payload),
		"encoded_chars", utf8.RuneCountInString(run),
		"encoded_bytes", len(run),
		"crc32", checksum.Sum(payload).CRC,
	)
}

// Hide places runs in cover. Hidden runs already in cover are dropped
// first. Each run stays separate from the others, so a damaged run costs
// only itself; see carrier.Interleave.
func (c *Codec) Hide(cover string, runs []string) string {
	return carrier.Interleave(carrier.Filter(cover), runs)
}

// Decode splits text into cover text and raw decode attempts.
func (c *Codec) Decode(text string) carrier.Result {
	res := carrier.Decode(text)
	for _, e := range res.Entries {
		if e.Err != nil {
			c.log.Debug("frame rejected", "error", e.Err, "details", e.Details)
			continue
		}
		c.log.Debug("frame decoded",
			"type", e.DataType.String(),
			"payload_bytes", len(e.Payload),
			"crc32", e.Checksum,
		)
	}
	return res
}

// Strip removes hidden messages from text without decoding them.
func (c *Codec) Strip(text string) string {
	return carrier.Filter(text)
}
