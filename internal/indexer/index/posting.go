package index

// Occurrence is a 1-based (line, column) coordinate of a word in the source
// text.
type Occurrence struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Entry is one row of an in-order traversal.
type Entry struct {
	Word        string       `json:"word"`
	Occurrences []Occurrence `json:"occurrences"`
}

// WordIndex is the contract shared by the unbalanced and the balanced tree.
// Implementations are not safe for concurrent use.
type WordIndex interface {
	Insert(word string, line, column int)
	Search(word string) ([]Occurrence, bool)
	Delete(word string) bool
	Inorder() []Entry
	Len() int
	Height() int
	Root() (string, bool)
	Validate() error
}

var (
	_ WordIndex = (*BST)(nil)
	_ WordIndex = (*AVL)(nil)
)

func cloneOccurrences(occ []Occurrence) []Occurrence {
	out := make([]Occurrence, len(occ))
	copy(out, occ)
	return out
}
