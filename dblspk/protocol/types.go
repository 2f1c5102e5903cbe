package protocol

// DataType is the flags byte of a frame.
//
// A frame with neither DataText nor DataFile set is encrypted: its payload
// must go through a cipher before it can be interpreted.
type DataType uint8

const (
	DataEncrypted DataType = 0x00
	DataText      DataType = 0x01
	DataFile      DataType = 0x02

	// FlagParity marks a frame whose payload is one shard of a parity set.
	// It combines with the kind bits above.
	FlagParity DataType = 0x80

	kindMask = DataText | DataFile
)

// Kind strips modifier flags.
func (t DataType) Kind() DataType { return t & kindMask }

// Encrypted reports whether the payload is ciphertext.
func (t DataType) Encrypted() bool { return t.Kind() == DataEncrypted }

// Parity reports whether the payload is a parity shard.
func (t DataType) Parity() bool { return t&FlagParity != 0 }

func (t DataType) String() string {
	var s string
	switch t.Kind() {
	case DataEncrypted:
		s = "ENCRYPTED"
	case DataText:
		s = "TEXT"
	case DataFile:
		s = "FILE"
	default:
		s = "UNKNOWN"
	}
	if t.Parity() {
		s += "+PARITY"
	}
	return s
}
