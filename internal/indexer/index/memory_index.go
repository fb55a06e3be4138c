// Package index implements the inverted index mapping a normalised term to
// the line numbers it occurs in. The index holds line numbers only, never
// line text.
package index

import "sort"

// MemoryIndex is an in-memory inverted index. It is owned by a single caller
// and is not safe for concurrent use.
type MemoryIndex struct {
	index    map[string]PostingList
	postings int
	size     int64
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		index: make(map[string]PostingList),
	}
}

// Add records lineNo under every term. A term repeated within one call is
// recorded once for that call; calling Add again for the same line appends
// again.
func (m *MemoryIndex) Add(lineNo int, terms []string) {
	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		if _, exists := m.index[term]; !exists {
			m.size += int64(len(term) + 48)
		}
		m.index[term] = append(m.index[term], lineNo)
		m.postings++
		m.size += 8
	}
}

// Lookup returns the postings for term, or nil when the term was never
// indexed. The returned slice must not be modified.
func (m *MemoryIndex) Lookup(term string) PostingList {
	return m.index[term]
}

func (m *MemoryIndex) Contains(term string) bool {
	_, ok := m.index[term]
	return ok
}

// Terms returns every indexed term in ascending order.
func (m *MemoryIndex) Terms() []string {
	terms := make([]string, 0, len(m.index))
	for term := range m.index {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// Snapshot copies the index into a slice sorted by term.
func (m *MemoryIndex) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, len(m.index))
	for term, postings := range m.index {
		entries = append(entries, TermEntry{
			Term:     term,
			Postings: append(PostingList(nil), postings...),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

func (m *MemoryIndex) TermCount() int {
	return len(m.index)
}

// PostingCount is the total number of recorded line numbers.
func (m *MemoryIndex) PostingCount() int {
	return m.postings
}

// Size is a rough estimate of the memory held by the index, in bytes.
func (m *MemoryIndex) Size() int64 {
	return m.size
}

func (m *MemoryIndex) Reset() {
	m.index = make(map[string]PostingList)
	m.postings = 0
	m.size = 0
}
