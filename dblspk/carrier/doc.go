// Package carrier finds hidden frames in ordinary text.
//
// A carrier is any string. Maximal runs of alphabet characters at least
// MinRunChars long are decoded into one byte stream; everything else,
// including shorter runs, is cover text. Frames are then peeled off the
// stream run by run:
//   - several frames may share a run
//   - a run that does not start with the signature is skipped
//   - a frame with a bad checksum costs the rest of its run and nothing more
package carrier
