package huffman

import (
	"bytes"
	"fmt"

	"github.com/icza/bitio"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordtree/pkg/errors"
)

// Build counts the frequencies of data and returns its tree and code table.
func Build(data []byte) (*Node, CodeTable, error) {
	if len(data) == 0 {
		return nil, CodeTable{}, fmt.Errorf("building code: %w", apperrors.ErrEmptyInput)
	}
	root, err := BuildTree(CountFrequencies(data))
	if err != nil {
		return nil, CodeTable{}, err
	}
	return root, NewCodeTable(root), nil
}

// Encode compresses data into a container. Encoding the same input always
// yields the same container.
func Encode(data []byte) (*Container, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("encoding: %w", apperrors.ErrEmptyInput)
	}
	freqs := CountFrequencies(data)
	root, err := BuildTree(freqs)
	if err != nil {
		return nil, fmt.Errorf("encoding: %w", err)
	}
	table := NewCodeTable(root)

	var codes [256]string
	for sym, code := range table.Codes {
		codes[sym] = code
	}
	bits, _ := table.EncodedBits(freqs)

	var buf bytes.Buffer
	buf.Grow(int((bits + 7) / 8))
	w := bitio.NewWriter(&buf)
	for _, b := range data {
		for i := 0; i < len(codes[b]); i++ {
			if err := w.WriteBool(codes[b][i] == '1'); err != nil {
				return nil, fmt.Errorf("writing payload: %w", err)
			}
		}
	}
	padding, err := w.Align()
	if err != nil {
		return nil, fmt.Errorf("padding payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("flushing payload: %w", err)
	}
	return &Container{
		Padding:     padding,
		Frequencies: freqs,
		Payload:     buf.Bytes(),
	}, nil
}

// Decode reconstructs the original bytes. Any inconsistency between the
// frequency table, the padding and the payload is reported as
// ErrMalformedContainer and no partial output is returned.
func Decode(c *Container) ([]byte, error) {
	if c == nil || len(c.Frequencies) == 0 {
		return nil, malformedf("container has no frequency table")
	}
	if c.Padding > MaxPadding {
		return nil, malformedf("padding %d exceeds %d", c.Padding, MaxPadding)
	}
	root, err := BuildTree(c.Frequencies)
	if err != nil {
		return nil, malformedf("rebuilding tree: %v", err)
	}
	table := NewCodeTable(root)
	bits, ok := table.EncodedBits(c.Frequencies)
	if !ok {
		return nil, malformedf("frequency table overflows the payload size")
	}
	if len(c.Payload) == 0 {
		return nil, malformedf("payload is empty, frequency table implies %d bits", bits)
	}
	if have := uint64(len(c.Payload))*8 - uint64(c.Padding); have != bits {
		return nil, malformedf("payload holds %d bits, frequency table implies %d", have, bits)
	}

	total := c.Frequencies.Total()
	out := make([]byte, 0, total)
	var seen [256]uint64
	r := bitio.NewReader(bytes.NewReader(c.Payload))
	n := root
	for i := uint64(0); i < bits; i++ {
		bit, err := r.ReadBool()
		if err != nil {
			return nil, malformedf("payload truncated at bit %d: %v", i, err)
		}
		if bit {
			n = n.Right
		} else {
			n = n.Left
		}
		if n == nil {
			return nil, malformedf("bit %d leads past a leaf", i)
		}
		if n.IsLeaf() {
			out = append(out, n.Symbol)
			seen[n.Symbol]++
			n = root
		}
	}
	if n != root {
		return nil, malformedf("payload ends inside a code")
	}
	if c.Padding > 0 {
		filler, err := r.ReadBits(c.Padding)
		if err != nil {
			return nil, malformedf("reading padding: %v", err)
		}
		if filler != 0 {
			return nil, malformedf("padding bits are not zero")
		}
	}
	if uint64(len(out)) != total {
		return nil, malformedf("decoded %d symbols, frequency table counts %d", len(out), total)
	}
	for sym, want := range c.Frequencies {
		if seen[sym] != want {
			return nil, malformedf("decoded symbol %d %d times, frequency table counts %d", sym, seen[sym], want)
		}
	}
	return out, nil
}

// Compress encodes data and serialises the container.
func Compress(data []byte) ([]byte, error) {
	c, err := Encode(data)
	if err != nil {
		return nil, err
	}
	return c.MarshalBinary()
}

// Decompress parses a serialised container and decodes it.
func Decompress(data []byte) ([]byte, error) {
	c, err := UnmarshalContainer(data)
	if err != nil {
		return nil, err
	}
	return Decode(c)
}

// Stats summarises one encoding.
type Stats struct {
	OriginalBytes  uint64  `json:"original_bytes"`
	ContainerBytes int     `json:"container_bytes"`
	PayloadBits    uint64  `json:"payload_bits"`
	Symbols        int     `json:"symbols"`
	AvgCodeLength  float64 `json:"avg_code_length"`
	SavingsPercent float64 `json:"savings_percent"`
}

// Stats describes the container relative to the input it was built from.
func (c *Container) Stats() Stats {
	s := Stats{
		OriginalBytes:  c.Frequencies.Total(),
		ContainerBytes: c.Size(),
		PayloadBits:    uint64(len(c.Payload))*8 - uint64(c.Padding),
		Symbols:        len(c.Frequencies),
	}
	if s.OriginalBytes > 0 {
		s.AvgCodeLength = float64(s.PayloadBits) / float64(s.OriginalBytes)
		s.SavingsPercent = (1 - float64(s.ContainerBytes)/float64(s.OriginalBytes)) * 100
	}
	return s
}
