package huffman

// CodeTable maps symbols to their bit strings ('0'/'1' per bit, most
// significant first) and back.
type CodeTable struct {
	Codes   map[byte]string
	Symbols map[string]byte
}

// NewCodeTable derives the code table with one depth-first walk from root,
// which is labelled with the empty string.
func NewCodeTable(root *Node) CodeTable {
	t := CodeTable{
		Codes:   make(map[byte]string),
		Symbols: make(map[string]byte),
	}
	var walk func(n *Node, code string)
	walk = func(n *Node, code string) {
		if n == nil {
			return
		}
		if n.IsLeaf() {
			t.Codes[n.Symbol] = code
			t.Symbols[code] = n.Symbol
			return
		}
		walk(n.Left, code+"0")
		walk(n.Right, code+"1")
	}
	walk(root, "")
	return t
}

// EncodedBits returns the number of payload bits needed to encode a stream
// with the given frequencies. ok is false if the count overflows.
func (t CodeTable) EncodedBits(freqs FrequencyTable) (bits uint64, ok bool) {
	for sym, n := range freqs {
		l := uint64(len(t.Codes[sym]))
		if l != 0 && n > (^uint64(0)-bits)/l {
			return 0, false
		}
		bits += n * l
	}
	return bits, true
}
