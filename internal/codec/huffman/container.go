package huffman

import (
	"encoding/binary"
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordtree/pkg/errors"
)

// Container layout:
//
//	[0]        padding bit count, 0-7
//	[1:5]      big-endian uint32 N, length of the frequency table
//	[5:5+N]    frequency table: uint16 BE entry count K, then K entries of
//	           [symbol byte][uint64 BE count], symbols strictly ascending
//	[5+N:]     payload, most significant bit first
const (
	HeaderSize     = 5
	tableCountSize = 2
	tableEntrySize = 9
	MaxPadding     = 7
)

// Container is the decoded form of a compressed stream.
type Container struct {
	Padding     uint8
	Frequencies FrequencyTable
	Payload     []byte
}

// MarshalBinary serialises the container into its on-disk form.
func (c *Container) MarshalBinary() ([]byte, error) {
	if c.Padding > MaxPadding {
		return nil, fmt.Errorf("padding %d exceeds %d: %w", c.Padding, MaxPadding, apperrors.ErrInvalidInput)
	}
	table, err := marshalTable(c.Frequencies)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, HeaderSize, HeaderSize+len(table)+len(c.Payload))
	buf[0] = c.Padding
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(table)))
	buf = append(buf, table...)
	buf = append(buf, c.Payload...)
	return buf, nil
}

// Size returns the length of the serialised container.
func (c *Container) Size() int {
	return HeaderSize + tableCountSize + tableEntrySize*len(c.Frequencies) + len(c.Payload)
}

// UnmarshalContainer parses the on-disk form. It validates the header and
// the frequency table; the payload is checked by Decode.
func UnmarshalContainer(data []byte) (*Container, error) {
	if len(data) < HeaderSize {
		return nil, malformedf("container is %d bytes, header needs %d", len(data), HeaderSize)
	}
	padding := data[0]
	if padding > MaxPadding {
		return nil, malformedf("padding %d exceeds %d", padding, MaxPadding)
	}
	tableLen := uint64(binary.BigEndian.Uint32(data[1:5]))
	if tableLen > uint64(len(data)-HeaderSize) {
		return nil, malformedf("frequency table length %d exceeds remaining %d bytes", tableLen, len(data)-HeaderSize)
	}
	end := HeaderSize + int(tableLen)
	freqs, err := unmarshalTable(data[HeaderSize:end])
	if err != nil {
		return nil, err
	}
	payload := make([]byte, len(data)-end)
	copy(payload, data[end:])
	return &Container{
		Padding:     padding,
		Frequencies: freqs,
		Payload:     payload,
	}, nil
}

func marshalTable(freqs FrequencyTable) ([]byte, error) {
	if len(freqs) == 0 {
		return nil, fmt.Errorf("marshaling frequency table: %w", apperrors.ErrEmptyInput)
	}
	syms := freqs.Symbols()
	buf := make([]byte, tableCountSize, tableCountSize+tableEntrySize*len(syms))
	binary.BigEndian.PutUint16(buf, uint16(len(syms)))
	var entry [tableEntrySize]byte
	for _, sym := range syms {
		if freqs[sym] == 0 {
			return nil, fmt.Errorf("marshaling frequency table: symbol %d has zero count: %w", sym, apperrors.ErrInvalidInput)
		}
		entry[0] = sym
		binary.BigEndian.PutUint64(entry[1:], freqs[sym])
		buf = append(buf, entry[:]...)
	}
	return buf, nil
}

func unmarshalTable(data []byte) (FrequencyTable, error) {
	if len(data) < tableCountSize {
		return nil, malformedf("frequency table is %d bytes", len(data))
	}
	count := int(binary.BigEndian.Uint16(data))
	if count == 0 || count > 256 {
		return nil, malformedf("frequency table declares %d symbols", count)
	}
	if want := tableCountSize + tableEntrySize*count; len(data) != want {
		return nil, malformedf("frequency table of %d symbols is %d bytes, want %d", count, len(data), want)
	}
	freqs := make(FrequencyTable, count)
	for i := 0; i < count; i++ {
		entry := data[tableCountSize+i*tableEntrySize:]
		sym := entry[0]
		n := binary.BigEndian.Uint64(entry[1:tableEntrySize])
		if i > 0 {
			prev := data[tableCountSize+(i-1)*tableEntrySize]
			if sym <= prev {
				return nil, malformedf("symbol %d follows %d in frequency table", sym, prev)
			}
		}
		if n == 0 {
			return nil, malformedf("symbol %d has zero count", sym)
		}
		freqs[sym] = n
	}
	return freqs, nil
}

func malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperrors.ErrMalformedContainer, fmt.Sprintf(format, args...))
}
