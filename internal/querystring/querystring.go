// Package querystring tokenizes a free-text search phrase into words and
// keeps track of which words were claimed by criteria.
//
// Words are split on single spaces, trimmed, and deduplicated keeping the
// first occurrence. Each word carries a normalized form (see Normalize) used
// for every comparison, and a match map from criterion id to the value that
// criterion extracted from the word. A word may be claimed by several
// criteria, each under its own id.
package querystring

import (
	"strings"

	"github.com/roach88/facets/internal/value"
)

// QueryString is a tokenized search phrase with per-word match bookkeeping.
//
// A QueryString is request scoped and not safe for concurrent use.
type QueryString struct {
	phrase string
	words  []*Word
}

// New tokenizes phrase.
func New(phrase string) *QueryString {
	q := &QueryString{phrase: phrase}
	for i, text := range parsePhrase(phrase) {
		q.words = append(q.words, newWord(text, i, q))
	}
	return q
}

// parsePhrase splits a phrase into unique, non-empty, trimmed words.
func parsePhrase(phrase string) []string {
	seen := make(map[string]bool)
	var words []string
	for _, w := range strings.Split(phrase, " ") {
		w = strings.TrimSpace(w)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words
}

// String returns the original phrase.
func (q *QueryString) String() string {
	return q.phrase
}

// Len returns the number of words.
func (q *QueryString) Len() int {
	return len(q.words)
}

// Word returns the word at position i.
func (q *QueryString) Word(i int) *Word {
	return q.words[i]
}

// Words returns the words in phrase order.
func (q *QueryString) Words() []*Word {
	out := make([]*Word, len(q.words))
	copy(out, q.words)
	return out
}

// Search looks for phrase as a contiguous run of words.
//
// Words are compared by normalized form. Non-matching words are skipped until
// the first word of phrase matches; from then on every word must match the
// next word of phrase or the search fails. A failed run is not retried from a
// later position. Returns nil when phrase is not found.
func (q *QueryString) Search(phrase string) []*Word {
	needles := parsePhrase(phrase)
	if len(needles) == 0 {
		return nil
	}
	for i, n := range needles {
		needles[i] = Normalize(n)
	}

	var matches []*Word
	i := 0
	for _, w := range q.words {
		if w.normalized != needles[i] {
			if len(matches) > 0 {
				return nil
			}
			continue
		}

		matches = append(matches, w)
		i++

		if i == len(needles) {
			break
		}
	}

	if i != len(needles) {
		return nil
	}
	return matches
}

// Before returns the word preceding w, or nil when w is first or is not
// one of q's words.
func (q *QueryString) Before(w *Word) *Word {
	if !q.owns(w) || w.index == 0 {
		return nil
	}
	return q.words[w.index-1]
}

// After returns the word following w, or nil when w is last or is not
// one of q's words.
func (q *QueryString) After(w *Word) *Word {
	if !q.owns(w) || w.index+1 >= len(q.words) {
		return nil
	}
	return q.words[w.index+1]
}

func (q *QueryString) owns(w *Word) bool {
	return w != nil && w.q == q && w.index < len(q.words) && q.words[w.index] == w
}

// Matched returns the words claimed by at least one criterion.
func (q *QueryString) Matched() []*Word {
	var out []*Word
	for _, w := range q.words {
		if w.Matched() {
			out = append(out, w)
		}
	}
	return out
}

// NotMatched returns the words no criterion claimed.
func (q *QueryString) NotMatched() []*Word {
	var out []*Word
	for _, w := range q.words {
		if !w.Matched() {
			out = append(out, w)
		}
	}
	return out
}

// MatchIDs returns the criterion ids found in matched words, in the order
// they were first seen.
func (q *QueryString) MatchIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, w := range q.words {
		for _, id := range w.matchOrder {
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// Matches returns, per criterion id, the distinct values claimed by
// matched words.
func (q *QueryString) Matches() map[string][]any {
	matches := make(map[string][]any)
	seen := make(map[string]map[string]bool)
	for _, w := range q.Matched() {
		for _, id := range w.matchOrder {
			v := w.match[id]
			key := value.Format(v)
			if seen[id] == nil {
				seen[id] = make(map[string]bool)
			}
			if seen[id][key] {
				continue
			}
			seen[id][key] = true
			matches[id] = append(matches[id], v)
		}
	}
	return matches
}

// Conditions returns Matches reduced to conditions: a single value stays a
// scalar, several values become a value.Set.
func (q *QueryString) Conditions() map[string]any {
	matches := q.Matches()
	conditions := make(map[string]any, len(matches))
	for id, values := range matches {
		if len(values) == 1 {
			conditions[id] = values[0]
			continue
		}
		conditions[id] = value.Set(values)
	}
	return conditions
}

// Remains returns the words no criterion claimed, joined with single spaces.
func (q *QueryString) Remains() string {
	words := q.NotMatched()
	texts := make([]string, len(words))
	for i, w := range words {
		texts[i] = w.text
	}
	return strings.Join(texts, " ")
}

// Clone returns a deep copy of q. The words of the copy belong to the copy.
func (q *QueryString) Clone() *QueryString {
	if q == nil {
		return nil
	}
	c := &QueryString{phrase: q.phrase, words: make([]*Word, len(q.words))}
	for i, w := range q.words {
		cw := newWord(w.text, w.index, c)
		cw.normalized = w.normalized
		for _, id := range w.matchOrder {
			cw.SetMatch(id, w.match[id])
		}
		c.words[i] = cw
	}
	return c
}
