package keyword

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/kwic-concordance/internal/indexer/tokenizer"
)

// FindKeywords returns the tokens not in stop, keeping order and
// duplicates. Tokens are expected to be lower-cased already.
func FindKeywords(tokens []string, stop Stopwords) []string {
	keywords := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if stop.Contains(t) {
			continue
		}
		keywords = append(keywords, t)
	}
	return keywords
}

// Collector accumulates the distinct keywords of a corpus line by line.
type Collector struct {
	stop Stopwords
	seen map[string]struct{}
}

func NewCollector(stop Stopwords) *Collector {
	return &Collector{
		stop: stop,
		seen: make(map[string]struct{}),
	}
}

// AddLine lower-cases and splits line, then records its keywords.
func (c *Collector) AddLine(line string) {
	for _, kw := range FindKeywords(tokenizer.LowerFields(line), c.stop) {
		c.seen[kw] = struct{}{}
	}
}

func (c *Collector) Len() int {
	return len(c.seen)
}

// Sorted returns the distinct keywords in ascending order.
func (c *Collector) Sorted() []string {
	out := make([]string, 0, len(c.seen))
	for kw := range c.seen {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}
