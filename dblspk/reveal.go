package dblspk

import (
	"context"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/TheusHen/dblspk/dblspk/carrier"
	"github.com/TheusHen/dblspk/dblspk/parity"
	"github.com/TheusHen/dblspk/dblspk/protocol"
)

// Content is one revealed message, or the reason it could not be read.
type Content struct {
	// Kind is DataText or DataFile once the payload has been read.
	Kind      protocol.DataType
	Encrypted bool
	Text      string
	File      *protocol.File
	// Shards is the number of parity shards the payload was rebuilt from,
	// zero for a plain frame.
	Shards int
	// Details carries the visible text of a run that did not hold a frame.
	Details string
	Err     error
}

// Revealed is the outcome of Reveal: the cover text plus every message
// found in order of appearance.
type Revealed struct {
	Cover    string
	Contents []Content
}

// pending is a payload waiting to be decrypted and parsed.
type pending struct {
	dataType protocol.DataType
	salt     []byte
	body     []byte
	shards   int
	details  string
	err      error
}

// Reveal decodes text and reads every payload it carries. Parity sets are
// rebuilt first; payloads are then opened concurrently. Failures of a single
// payload are reported in its Content and do not fail the call; only ctx
// ending does.
func (c *Codec) Reveal(ctx context.Context, mode Mode, text string) (Revealed, error) {
	res := c.Decode(text)
	items := c.collect(res.Entries)

	contents := make([]Content, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			contents[i] = c.open(mode, items[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Revealed{}, err
	}
	return Revealed{Cover: res.Cover, Contents: contents}, nil
}

// collect turns decode attempts into payloads. Shards of one set collapse
// into a single payload at the position of the set's first shard.
func (c *Codec) collect(entries []carrier.Entry) []pending {
	var (
		items  []pending
		sets   = map[uint32]int{}
		shards = map[uint32][]parity.Shard{}
	)
	for _, e := range entries {
		if e.Err != nil {
			items = append(items, pending{details: e.Details, err: e.Err})
			continue
		}
		if !e.DataType.Parity() {
			items = append(items, pending{dataType: e.DataType, salt: e.Salt, body: e.Payload})
			continue
		}
		s, err := parity.Unmarshal(e.Payload)
		if err != nil {
			items = append(items, pending{dataType: e.DataType, err: err})
			continue
		}
		if _, ok := sets[s.Set]; !ok {
			sets[s.Set] = len(items)
			items = append(items, pending{dataType: e.DataType &^ protocol.FlagParity, salt: e.Salt})
		}
		shards[s.Set] = append(shards[s.Set], s)
	}

	for set, at := range sets {
		body, err := parity.Join(shards[set])
		items[at].body = body
		items[at].shards = len(shards[set])
		items[at].err = err
		if err != nil {
			c.log.Debug("parity set lost", "set", set, "shards", len(shards[set]), "error", err)
		}
	}
	return items
}

func (c *Codec) open(mode Mode, p pending) Content {
	if p.err != nil {
		return Content{Shards: p.shards, Details: p.details, Err: p.err}
	}
	out := Content{
		Kind:      p.dataType.Kind(),
		Encrypted: p.dataType.Encrypted(),
		Shards:    p.shards,
	}

	body := p.body
	if out.Encrypted {
		if mode.cipher == nil {
			out.Err = ErrCipherRequired
			return out
		}
		plain, err := mode.cipher.Open(body, p.salt)
		if err != nil {
			out.Err = err
			return out
		}
		if out.Kind, body, err = protocol.OpenKind(plain); err != nil {
			out.Err = err
			return out
		}
	}

	switch out.Kind {
	case protocol.DataText:
		out.Text = strings.ToValidUTF8(string(body), "\uFFFD")
	case protocol.DataFile:
		f, err := protocol.UnmarshalFile(body)
		if err != nil {
			out.Err = err
			return out
		}
		out.File = &f
	default:
		out.Err = protocol.ErrUnknownKind
	}
	return out
}
