// Package store defines the reference ANN index's external storage
// interface: a shard-local inverted index from n-gram key to the set of
// queries that produced it. Concrete backends live in sqlite and memstore.
package store

import "context"

// Row is one posting: a query identified by its shard-local id (pqid) and
// global shard index (reminder), with the n-gram's weight at index time.
type Row struct {
	PQID     int64
	Reminder int64
	Weight   byte
}

// Store is the read/write interface the rest of the reference ANN index
// depends on. Implementations must be safe for concurrent use.
type Store interface {
	Close() error

	// PutShardEntry records one shard line: the n-gram key, the query that
	// produced it (identified by pqid/reminder), and its weight byte.
	PutShardEntry(ctx context.Context, ngram string, pqid, reminder int64, weight byte) error

	// Lookup returns every posting recorded for ngram, in insertion order.
	Lookup(ctx context.Context, ngram string) ([]Row, error)

	// NgramCount reports how many distinct n-grams have at least one
	// posting, for basic store introspection.
	NgramCount(ctx context.Context) (int64, error)
}
