// Package huffman implements a byte-oriented Huffman coder and the
// self-describing container it is persisted in.
//
// The tree is rebuilt on decode from the frequency table alone, so tree
// construction is fully deterministic: nodes are ordered by frequency, then
// by an order key that is the symbol value for leaves and 256 plus the
// creation sequence for internal nodes. The first node popped becomes the
// left child (bit 0) and the second the right child (bit 1).
package huffman

import (
	"container/heap"
	"fmt"
	"sort"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordtree/pkg/errors"
)

// FrequencyTable maps a byte value to its number of occurrences.
type FrequencyTable map[byte]uint64

// CountFrequencies returns the frequency of every byte present in data.
func CountFrequencies(data []byte) FrequencyTable {
	var counts [256]uint64
	for _, b := range data {
		counts[b]++
	}
	freqs := make(FrequencyTable)
	for sym, n := range counts {
		if n > 0 {
			freqs[byte(sym)] = n
		}
	}
	return freqs
}

// Symbols returns the symbols of the table in ascending order.
func (f FrequencyTable) Symbols() []byte {
	syms := make([]byte, 0, len(f))
	for sym := range f {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	return syms
}

// Total returns the sum of all counts.
func (f FrequencyTable) Total() uint64 {
	var total uint64
	for _, n := range f {
		total += n
	}
	return total
}

// Node is a Huffman tree node. Leaves carry a symbol; internal nodes carry
// only the sum of their children's frequencies.
type Node struct {
	Symbol byte
	Freq   uint64
	Left   *Node
	Right  *Node
	order  int
}

// IsLeaf reports whether n carries a symbol.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// nodeQueue is a min-heap of nodes ordered by (Freq, order).
type nodeQueue []*Node

var _ heap.Interface = (*nodeQueue)(nil)

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].Freq != q[j].Freq {
		return q[i].Freq < q[j].Freq
	}
	return q[i].order < q[j].order
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) {
	*q = append(*q, x.(*Node))
}

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return node
}

// BuildTree builds the canonical tree for freqs. A table with a single
// symbol yields a root whose only child is that symbol's leaf, giving it the
// one-bit code "0".
func BuildTree(freqs FrequencyTable) (*Node, error) {
	if len(freqs) == 0 {
		return nil, fmt.Errorf("building tree: %w", apperrors.ErrEmptyInput)
	}
	q := make(nodeQueue, 0, len(freqs))
	for _, sym := range freqs.Symbols() {
		if freqs[sym] == 0 {
			return nil, fmt.Errorf("building tree: symbol %d has zero frequency: %w", sym, apperrors.ErrInvalidInput)
		}
		q = append(q, &Node{Symbol: sym, Freq: freqs[sym], order: int(sym)})
	}
	if len(q) == 1 {
		leaf := q[0]
		return &Node{Freq: leaf.Freq, Left: leaf, order: 256}, nil
	}

	heap.Init(&q)
	next := 256
	for q.Len() > 1 {
		left := heap.Pop(&q).(*Node)
		right := heap.Pop(&q).(*Node)
		heap.Push(&q, &Node{
			Freq:  left.Freq + right.Freq,
			Left:  left,
			Right: right,
			order: next,
		})
		next++
	}
	return heap.Pop(&q).(*Node), nil
}
