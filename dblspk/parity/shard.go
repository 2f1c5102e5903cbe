package parity

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

var ErrMalformedShard = errors.New("parity: malformed shard")

// Shard is one piece of a parity set, as carried in a frame payload.
// Integer keys keep the CBOR header to a few bytes.
type Shard struct {
	Set    uint32 `cbor:"1,keyasint"`
	Index  int    `cbor:"2,keyasint"`
	Data   int    `cbor:"3,keyasint"`
	Parity int    `cbor:"4,keyasint"`
	Size   int    `cbor:"5,keyasint"`
	Bytes  []byte `cbor:"6,keyasint"`
}

// encMode uses Core Deterministic Encoding so that a shard always
// serializes to the same bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("parity: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{MaxArrayElements: 16, MaxMapPairs: 16}.DecMode()
	if err != nil {
		panic("parity: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes s.
func Marshal(s Shard) ([]byte, error) {
	return encMode.Marshal(s)
}

// Unmarshal decodes a shard and checks its header.
func Unmarshal(b []byte) (Shard, error) {
	var s Shard
	if err := decMode.Unmarshal(b, &s); err != nil {
		return Shard{}, fmt.Errorf("%w: %v", ErrMalformedShard, err)
	}
	if s.Data <= 0 || s.Parity <= 0 || s.Index < 0 || s.Index >= s.Data+s.Parity || s.Size <= 0 {
		return Shard{}, ErrMalformedShard
	}
	if len(s.Bytes) == 0 || s.Size > len(s.Bytes)*s.Data {
		return Shard{}, fmt.Errorf("%w: size %d does not fit %d shards of %d bytes", ErrMalformedShard, s.Size, s.Data, len(s.Bytes))
	}
	return s, nil
}

// NewSetID reads a random set identifier from r, or crypto/rand when r is
// nil.
func NewSetID(r io.Reader) (uint32, error) {
	if r == nil {
		r = rand.Reader
	}
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// Group buckets shards by set, in order of each set's first appearance.
func Group(shards []Shard) [][]Shard {
	var (
		order []uint32
		sets  = map[uint32][]Shard{}
	)
	for _, s := range shards {
		if _, ok := sets[s.Set]; !ok {
			order = append(order, s.Set)
		}
		sets[s.Set] = append(sets[s.Set], s)
	}
	out := make([][]Shard, 0, len(order))
	for _, id := range order {
		out = append(out, sets[id])
	}
	return out
}
