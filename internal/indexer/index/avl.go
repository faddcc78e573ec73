package index

// Rotation names the rebalancing case applied at a node.
type Rotation string

const (
	RotationLL Rotation = "ll"
	RotationRR Rotation = "rr"
	RotationLR Rotation = "lr"
	RotationRL Rotation = "rl"
)

type avlNode struct {
	word        string
	occurrences []Occurrence
	left        *avlNode
	right       *avlNode
	height      int
}

// AVL is a height-balanced binary search tree keyed by word. After every
// Insert or Delete the heights of the two subtrees of any node differ by at
// most one.
type AVL struct {
	root     *avlNode
	count    int
	onRotate func(Rotation)
}

// AVLOption configures an AVL tree.
type AVLOption func(*AVL)

// WithRotationObserver registers fn to be called once per rebalancing case
// applied (a double rotation counts once).
func WithRotationObserver(fn func(Rotation)) AVLOption {
	return func(t *AVL) {
		t.onRotate = fn
	}
}

func NewAVL(opts ...AVLOption) *AVL {
	t := &AVL{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func height(n *avlNode) int {
	if n == nil {
		return 0
	}
	return n.height
}

func balanceFactor(n *avlNode) int {
	if n == nil {
		return 0
	}
	return height(n.left) - height(n.right)
}

func updateHeight(n *avlNode) {
	n.height = 1 + max(height(n.left), height(n.right))
}

//	    z            y
//	   / \          / \
//	  y   T4  ->   x   z
//	 / \              / \
//	x   T3           T3  T4
func rotateRight(z *avlNode) *avlNode {
	y := z.left
	z.left = y.right
	y.right = z
	updateHeight(z)
	updateHeight(y)
	return y
}

func rotateLeft(z *avlNode) *avlNode {
	y := z.right
	z.right = y.left
	y.left = z
	updateHeight(z)
	updateHeight(y)
	return y
}

func (t *AVL) observe(r Rotation) {
	if t.onRotate != nil {
		t.onRotate(r)
	}
}

// Insert records an occurrence of word, creating the node on first sight and
// rebalancing the path back to the root.
func (t *AVL) Insert(word string, line, column int) {
	t.root = t.insert(t.root, word, Occurrence{Line: line, Column: column})
}

func (t *AVL) insert(n *avlNode, word string, occ Occurrence) *avlNode {
	if n == nil {
		t.count++
		return &avlNode{word: word, occurrences: []Occurrence{occ}, height: 1}
	}
	switch {
	case word < n.word:
		n.left = t.insert(n.left, word, occ)
	case word > n.word:
		n.right = t.insert(n.right, word, occ)
	default:
		n.occurrences = append(n.occurrences, occ)
		return n
	}

	updateHeight(n)
	bf := balanceFactor(n)
	switch {
	case bf > 1 && word < n.left.word:
		t.observe(RotationLL)
		return rotateRight(n)
	case bf < -1 && word > n.right.word:
		t.observe(RotationRR)
		return rotateLeft(n)
	case bf > 1 && word > n.left.word:
		t.observe(RotationLR)
		n.left = rotateLeft(n.left)
		return rotateRight(n)
	case bf < -1 && word < n.right.word:
		t.observe(RotationRL)
		n.right = rotateRight(n.right)
		return rotateLeft(n)
	}
	return n
}

// Search returns a copy of the occurrences recorded for word.
func (t *AVL) Search(word string) ([]Occurrence, bool) {
	n := t.root
	for n != nil {
		switch {
		case word < n.word:
			n = n.left
		case word > n.word:
			n = n.right
		default:
			return cloneOccurrences(n.occurrences), true
		}
	}
	return nil, false
}

// Delete removes word and rebalances every ancestor of the removed node. It
// reports whether the word was present.
func (t *AVL) Delete(word string) bool {
	var removed bool
	t.root = t.delete(t.root, word, &removed)
	if removed {
		t.count--
	}
	return removed
}

func (t *AVL) delete(n *avlNode, word string, removed *bool) *avlNode {
	if n == nil {
		return nil
	}
	switch {
	case word < n.word:
		n.left = t.delete(n.left, word, removed)
	case word > n.word:
		n.right = t.delete(n.right, word, removed)
	default:
		*removed = true
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		succ := minAVL(n.right)
		n.word = succ.word
		n.occurrences = succ.occurrences
		var ignored bool
		n.right = t.delete(n.right, succ.word, &ignored)
	}
	return t.rebalance(n)
}

func (t *AVL) rebalance(n *avlNode) *avlNode {
	updateHeight(n)
	bf := balanceFactor(n)
	switch {
	case bf > 1 && balanceFactor(n.left) >= 0:
		t.observe(RotationLL)
		return rotateRight(n)
	case bf > 1:
		t.observe(RotationLR)
		n.left = rotateLeft(n.left)
		return rotateRight(n)
	case bf < -1 && balanceFactor(n.right) <= 0:
		t.observe(RotationRR)
		return rotateLeft(n)
	case bf < -1:
		t.observe(RotationRL)
		n.right = rotateRight(n.right)
		return rotateLeft(n)
	}
	return n
}

func minAVL(n *avlNode) *avlNode {
	for n.left != nil {
		n = n.left
	}
	return n
}

// Inorder returns every word in ascending order with its occurrences.
func (t *AVL) Inorder() []Entry {
	entries := make([]Entry, 0, t.count)
	var walk func(n *avlNode)
	walk = func(n *avlNode) {
		if n == nil {
			return
		}
		walk(n.left)
		entries = append(entries, Entry{Word: n.word, Occurrences: cloneOccurrences(n.occurrences)})
		walk(n.right)
	}
	walk(t.root)
	return entries
}

func (t *AVL) Len() int {
	return t.count
}

// Height returns the stored height of the root.
func (t *AVL) Height() int {
	return height(t.root)
}

func (t *AVL) Root() (string, bool) {
	if t.root == nil {
		return "", false
	}
	return t.root.word, true
}

// Validate checks ordering, key uniqueness, the node count, that every
// stored height is exact and that every balance factor is within [-1, 1].
func (t *AVL) Validate() error {
	v := &validator{}
	var walk func(n *avlNode) int
	walk = func(n *avlNode) int {
		if n == nil || v.err != nil {
			return 0
		}
		lh := walk(n.left)
		v.visit(n.word)
		rh := walk(n.right)
		if v.err != nil {
			return 0
		}
		h := 1 + max(lh, rh)
		if n.height != h {
			v.failf("node %q stores height %d, actual %d", n.word, n.height, h)
		} else if bf := lh - rh; bf < -1 || bf > 1 {
			v.failf("node %q has balance factor %d", n.word, bf)
		}
		return h
	}
	walk(t.root)
	return v.finish(t.count)
}
