package index

type bstNode struct {
	word        string
	occurrences []Occurrence
	left        *bstNode
	right       *bstNode
}

// BST is an unbalanced binary search tree keyed by word. Its shape depends
// on insertion order; sorted input degrades it to a list.
type BST struct {
	root  *bstNode
	count int
}

func NewBST() *BST {
	return &BST{}
}

// Insert records an occurrence of word, creating the node on first sight.
func (t *BST) Insert(word string, line, column int) {
	occ := Occurrence{Line: line, Column: column}
	if t.root == nil {
		t.root = &bstNode{word: word, occurrences: []Occurrence{occ}}
		t.count++
		return
	}
	n := t.root
	for {
		switch {
		case word < n.word:
			if n.left == nil {
				n.left = &bstNode{word: word, occurrences: []Occurrence{occ}}
				t.count++
				return
			}
			n = n.left
		case word > n.word:
			if n.right == nil {
				n.right = &bstNode{word: word, occurrences: []Occurrence{occ}}
				t.count++
				return
			}
			n = n.right
		default:
			n.occurrences = append(n.occurrences, occ)
			return
		}
	}
}

// Search returns a copy of the occurrences recorded for word.
func (t *BST) Search(word string) ([]Occurrence, bool) {
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

// Delete removes word and its occurrences. It reports whether the word was
// present.
func (t *BST) Delete(word string) bool {
	var removed bool
	t.root = t.delete(t.root, word, &removed)
	if removed {
		t.count--
	}
	return removed
}

func (t *BST) delete(n *bstNode, word string, removed *bool) *bstNode {
	if n == nil {
		return nil
	}
	switch {
	case word < n.word:
		n.left = t.delete(n.left, word, removed)
		return n
	case word > n.word:
		n.right = t.delete(n.right, word, removed)
		return n
	}

	*removed = true
	if n.left == nil {
		return n.right
	}
	if n.right == nil {
		return n.left
	}
	// Two children: take over the successor's key and payload, then unlink
	// the successor itself so the key is not left twice in the tree.
	succ := minBST(n.right)
	n.word = succ.word
	n.occurrences = succ.occurrences
	var ignored bool
	n.right = t.delete(n.right, succ.word, &ignored)
	return n
}

func minBST(n *bstNode) *bstNode {
	for n.left != nil {
		n = n.left
	}
	return n
}

// Inorder returns every word in ascending order with its occurrences.
func (t *BST) Inorder() []Entry {
	entries := make([]Entry, 0, t.count)
	var walk func(n *bstNode)
	walk = func(n *bstNode) {
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

// Len returns the number of distinct words.
func (t *BST) Len() int {
	return t.count
}

// Height returns the number of nodes on the longest root-to-leaf path.
func (t *BST) Height() int {
	var height func(n *bstNode) int
	height = func(n *bstNode) int {
		if n == nil {
			return 0
		}
		return 1 + max(height(n.left), height(n.right))
	}
	return height(t.root)
}

func (t *BST) Root() (string, bool) {
	if t.root == nil {
		return "", false
	}
	return t.root.word, true
}

// Validate checks ordering, key uniqueness and the node count.
func (t *BST) Validate() error {
	v := &validator{}
	var walk func(n *bstNode)
	walk = func(n *bstNode) {
		if n == nil || v.err != nil {
			return
		}
		walk(n.left)
		v.visit(n.word)
		walk(n.right)
	}
	walk(t.root)
	return v.finish(t.count)
}
