package index

// PostingList is the ordered sequence of line numbers recorded for a term.
// Order is encounter order; equal entries are kept.
type PostingList []int

// TermEntry pairs a term with its postings, used for snapshots.
type TermEntry struct {
	Term     string
	Postings PostingList
}
