package fetcher

import (
	"errors"

	"github.com/roach88/facets/internal/query"
	"github.com/roach88/facets/internal/store"
)

// ErrNilReplacement is returned by AlterEvent.Replace when given nil.
var ErrNilReplacement = errors.New("record collection replacement must not be nil")

// RecordCollection is the result of one fetch: the records and a frozen
// snapshot of the Fetcher that produced them.
type RecordCollection struct {
	records []store.Record
	fetcher *Fetcher
}

// NewRecordCollection pairs records with the fetcher snapshot that produced
// them.
func NewRecordCollection(records []store.Record, f *Fetcher) *RecordCollection {
	return &RecordCollection{records: records, fetcher: f}
}

// Records returns the fetched records.
func (c *RecordCollection) Records() []store.Record { return c.records }

// Len returns the number of fetched records.
func (c *RecordCollection) Len() int { return len(c.records) }

// One returns the first record, or nil when there is none.
func (c *RecordCollection) One() store.Record {
	if len(c.records) == 0 {
		return nil
	}
	return c.records[0]
}

// Fetcher returns the snapshot of the fetcher that produced the records.
func (c *RecordCollection) Fetcher() *Fetcher { return c.fetcher }

// ID returns the fetch ID.
func (c *RecordCollection) ID() string { return c.fetcher.ID() }

// Conditions returns the conditions the records were filtered with.
func (c *RecordCollection) Conditions() map[string]any { return c.fetcher.Conditions() }

// Limit returns the page size, 0 when unlimited.
func (c *RecordCollection) Limit() int { return c.fetcher.Limit() }

// Page returns the zero-based page.
func (c *RecordCollection) Page() int { return c.fetcher.Page() }

// TotalCount returns the number of matching records before paging.
func (c *RecordCollection) TotalCount() int { return c.fetcher.Count() }

// InitialQuery returns the query the fetch started from.
func (c *RecordCollection) InitialQuery() *query.Query { return c.fetcher.InitialQuery() }

// Query returns the executed query.
func (c *RecordCollection) Query() *query.Query { return c.fetcher.Query() }

// AlterEvent is passed to alter hooks after records are fetched and before
// the collection is returned.
type AlterEvent struct {
	collection *RecordCollection
}

// Collection returns the collection that will be returned.
func (e *AlterEvent) Collection() *RecordCollection { return e.collection }

// Replace swaps the collection that will be returned.
func (e *AlterEvent) Replace(c *RecordCollection) error {
	if c == nil {
		return ErrNilReplacement
	}
	e.collection = c
	return nil
}

// AlterHook observes or replaces a fetched collection.
type AlterHook func(e *AlterEvent) error
