// Package parity provides Reed-Solomon erasure coding for hidden payloads.
//
// A carrier loses a whole run when a frame in it fails its checksum. Splitting
// a payload into data and parity shards, one frame and one run per shard,
// turns that loss into a missing shard. For example, with 4 data shards and
// 2 parity shards, any 2 runs can be damaged and the payload is still fully
// recoverable.
//
// This implementation uses the klauspost/reedsolomon library for the coding
// and deterministic CBOR for shard headers.
package parity
