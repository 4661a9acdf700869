package stampmodel

import (
	"errors"
	"fmt"
)

// RecordSize is the encoded size of one stamp record.
const RecordSize = 4

// ErrCorrupt is returned when encoded stamp data cannot be decoded.
var ErrCorrupt = errors.New("stampmodel: corrupt data")

// Record places one block relative to a stamp anchor.
type Record struct {
	DX, DY, DZ int8
	Block      uint8
}

// Model is an ordered list of placement records. Records are applied in
// order, so a later record overwrites an earlier one at the same offset.
type Model struct {
	Name    string
	Records []Record
}

// Encode returns the flat wire form: 4 bytes per record (dx, dy, dz, id),
// no header.
func Encode(records []Record) []byte {
	out := make([]byte, 0, len(records)*RecordSize)
	for _, r := range records {
		out = append(out, byte(r.DX), byte(r.DY), byte(r.DZ), r.Block)
	}
	return out
}

// Decode parses the flat wire form.
func Decode(data []byte) ([]Record, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrCorrupt)
	}
	if len(data)%RecordSize != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of %d", ErrCorrupt, len(data), RecordSize)
	}
	out := make([]Record, 0, len(data)/RecordSize)
	for i := 0; i < len(data); i += RecordSize {
		out = append(out, Record{
			DX:    int8(data[i]),
			DY:    int8(data[i+1]),
			DZ:    int8(data[i+2]),
			Block: data[i+3],
		})
	}
	return out, nil
}
