package carrier

import (
	"errors"
	"strings"

	"github.com/TheusHen/dblspk/dblspk/protocol"
)

// Entry is one decode attempt. Err is nil only for a frame whose checksum
// matched.
type Entry struct {
	protocol.Message
	Err     error
	Details string
}

// OK reports whether the entry carries an intact frame.
func (e Entry) OK() bool { return e.Err == nil && e.ChecksumValid }

// Result is a decoded carrier.
type Result struct {
	Cover   string
	Entries []Entry
}

// Decode scans s and extracts every frame it carries.
func Decode(s string) Result {
	scan := ScanText(s)
	return Result{Cover: scan.Cover, Entries: Extract(scan)}
}

// Extract peels frames off the front of scan.Bytes until none remain.
//
// A protocol mismatch drops the current run and continues with the next. A
// frame with a bad checksum drops the whole run it starts in, so damage
// never spreads past one run. Frames packed back to back in one run are
// returned in order.
func Extract(scan Scan) []Entry {
	stream := scan.Bytes
	runs := append([]int(nil), scan.RunLengths...)

	if len(stream) == 0 {
		return []Entry{{Err: protocol.ErrNoMessage}}
	}

	var entries []Entry
	for len(stream) > 0 && len(runs) > 0 {
		msg, end, err := protocol.Decode(stream, 0)
		switch {
		case errors.Is(err, protocol.ErrProtocolMismatch):
			entries = append(entries, Entry{
				Err:     protocol.ErrProtocolMismatch,
				Details: strings.ToValidUTF8(string(stream[:runs[0]]), "\uFFFD"),
			})
			stream, runs = stream[runs[0]:], runs[1:]
			continue
		case err != nil:
			entries = append(entries, Entry{Message: msg, Err: err})
			stream, runs = stream[runs[0]:], runs[1:]
			continue
		case !msg.ChecksumValid:
			entries = append(entries, Entry{Message: msg, Err: protocol.ErrChecksumMismatch})
			stream, runs = stream[runs[0]:], runs[1:]
			continue
		}

		entries = append(entries, Entry{Message: msg})
		stream = stream[end:]
		runs = consume(runs, end)
	}
	return entries
}

// consume removes n bytes from the front of runs. A frame that fits inside
// the first run shrinks it; one that reaches its end drops it.
func consume(runs []int, n int) []int {
	for n > 0 && len(runs) > 0 {
		if n < runs[0] {
			runs[0] -= n
			return runs
		}
		n -= runs[0]
		runs = runs[1:]
	}
	return runs
}
