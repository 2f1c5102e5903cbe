package parity

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/klauspost/reedsolomon"
)

var (
	ErrTooManyLost       = errors.New("parity: too many shards lost, cannot recover")
	ErrInvalidConfig     = errors.New("parity: invalid data/parity configuration")
	ErrSetMismatch       = errors.New("parity: shards belong to different sets")
	ErrShardSizeMismatch = errors.New("parity: shard sizes do not match")
	ErrEmptyBody         = errors.New("parity: nothing to split")
)

// Codec splits a body into data and parity shards.
type Codec struct {
	enc          reedsolomon.Encoder
	dataShards   int
	parityShards int
}

// NewCodec creates a new parity codec.
// dataShards: number of data shards
// parityShards: number of parity shards (can lose up to this many)
func NewCodec(dataShards, parityShards int) (*Codec, error) {
	if dataShards <= 0 || parityShards <= 0 || dataShards+parityShards > 256 {
		return nil, ErrInvalidConfig
	}
	enc, err := reedsolomon.New(dataShards, parityShards)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &Codec{
		enc:          enc,
		dataShards:   dataShards,
		parityShards: parityShards,
	}, nil
}

// DataShards returns the number of data shards.
func (c *Codec) DataShards() int { return c.dataShards }

// ParityShards returns the number of parity shards.
func (c *Codec) ParityShards() int { return c.parityShards }

// TotalShards returns the total number of shards (data + parity).
func (c *Codec) TotalShards() int { return c.dataShards + c.parityShards }

// Split encodes body into TotalShards shards tagged with set.
func (c *Codec) Split(body []byte, set uint32) ([]Shard, error) {
	if len(body) == 0 {
		return nil, ErrEmptyBody
	}
	// reedsolomon may split in place; keep the caller's slice intact.
	raw, err := c.enc.Split(append([]byte(nil), body...))
	if err != nil {
		return nil, err
	}
	if err := c.enc.Encode(raw); err != nil {
		return nil, err
	}
	shards := make([]Shard, len(raw))
	for i, b := range raw {
		shards[i] = Shard{
			Set:    set,
			Index:  i,
			Data:   c.dataShards,
			Parity: c.parityShards,
			Size:   len(body),
			Bytes:  b,
		}
	}
	return shards, nil
}

// Join rebuilds the body from the shards of one set. Any DataShards of
// them are enough; duplicates are ignored.
func Join(shards []Shard) ([]byte, error) {
	if len(shards) == 0 {
		return nil, ErrTooManyLost
	}
	first := shards[0]
	c, err := NewCodec(first.Data, first.Parity)
	if err != nil {
		return nil, err
	}
	if first.Size <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidConfig, first.Size)
	}

	raw := make([][]byte, c.TotalShards())
	shardSize := -1
	for _, s := range shards {
		if s.Set != first.Set || s.Data != first.Data || s.Parity != first.Parity || s.Size != first.Size {
			return nil, ErrSetMismatch
		}
		if s.Index < 0 || s.Index >= len(raw) {
			return nil, fmt.Errorf("%w: shard index %d", ErrInvalidConfig, s.Index)
		}
		if shardSize >= 0 && len(s.Bytes) != shardSize {
			return nil, ErrShardSizeMismatch
		}
		shardSize = len(s.Bytes)
		raw[s.Index] = s.Bytes
	}

	if shardSize <= 0 || first.Size > shardSize*first.Data {
		return nil, fmt.Errorf("%w: size %d from %d shards of %d bytes", ErrMalformedShard, first.Size, first.Data, shardSize)
	}

	if err := c.enc.ReconstructData(raw); err != nil {
		if errors.Is(err, reedsolomon.ErrTooFewShards) {
			return nil, ErrTooManyLost
		}
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(first.Size)
	if err := c.enc.Join(&buf, raw, first.Size); err != nil {
		if errors.Is(err, reedsolomon.ErrShortData) {
			return nil, ErrTooManyLost
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

// ShardSize calculates the shard size for a given body size.
func (c *Codec) ShardSize(bodySize int) int {
	return (bodySize + c.dataShards - 1) / c.dataShards
}

// Overhead returns the storage overhead ratio (e.g., 1.5 for 4+2 config).
func (c *Codec) Overhead() float64 {
	return float64(c.TotalShards()) / float64(c.dataShards)
}
