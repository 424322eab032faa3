package querystring

// Word is one token of a QueryString.
//
// The word is reached from its QueryString through its position; Previous
// and Next resolve neighbors through the same position.
type Word struct {
	text       string
	normalized string
	index      int
	q          *QueryString

	match      map[string]any
	matchOrder []string
}

func newWord(text string, index int, q *QueryString) *Word {
	return &Word{
		text:       text,
		normalized: Normalize(text),
		index:      index,
		q:          q,
	}
}

// Text returns the word as typed.
func (w *Word) Text() string { return w.text }

// Normalized returns the case and diacritic folded word.
func (w *Word) Normalized() string { return w.normalized }

// Index returns the position of the word in its QueryString.
func (w *Word) Index() int { return w.index }

// String returns the word as typed.
func (w *Word) String() string { return w.text }

// Previous returns the preceding word, if any.
func (w *Word) Previous() *Word {
	return w.q.Before(w)
}

// Next returns the following word, if any.
func (w *Word) Next() *Word {
	return w.q.After(w)
}

// SetMatch records that criterion id claimed the word with value v.
// Claims made under other ids are left untouched.
func (w *Word) SetMatch(id string, v any) {
	if w.match == nil {
		w.match = make(map[string]any)
	}
	if _, exists := w.match[id]; !exists {
		w.matchOrder = append(w.matchOrder, id)
	}
	w.match[id] = v
}

// MatchFor returns the value criterion id claimed the word with.
func (w *Word) MatchFor(id string) (any, bool) {
	v, ok := w.match[id]
	return v, ok
}

// Match returns a copy of the word's match map.
func (w *Word) Match() map[string]any {
	out := make(map[string]any, len(w.match))
	for id, v := range w.match {
		out[id] = v
	}
	return out
}

// Matched reports whether any criterion claimed the word.
func (w *Word) Matched() bool {
	return len(w.match) > 0
}
