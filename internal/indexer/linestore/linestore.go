// Package linestore holds the raw lines of a corpus in insertion order.
package linestore

// Store is an append-only sequence of lines. Line numbers are dense,
// start at zero and are never reused. Store is not safe for concurrent use.
type Store struct {
	lines []string
	bytes int64
}

func New() *Store {
	return &Store{lines: make([]string, 0, 64)}
}

// Append stores text at the next line number and returns that number.
// Callers enforce the non-empty precondition.
func (s *Store) Append(text string) int {
	n := len(s.lines)
	s.lines = append(s.lines, text)
	s.bytes += int64(len(text))
	return n
}

// Get returns the exact text stored at line n.
func (s *Store) Get(n int) (string, bool) {
	if n < 0 || n >= len(s.lines) {
		return "", false
	}
	return s.lines[n], true
}

func (s *Store) Len() int {
	return len(s.lines)
}

// Size is the total number of bytes held.
func (s *Store) Size() int64 {
	return s.bytes
}
