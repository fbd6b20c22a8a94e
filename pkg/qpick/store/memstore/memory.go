// Package memstore is an in-memory store.Store implementation, used as a
// fast test double and for small reference indexes.
package memstore

import (
	"context"
	"sync"

	"github.com/cognicore/qpick/pkg/qpick/store"
)

// Memstore is a mutex-guarded in-memory shard index.
type Memstore struct {
	mu    sync.RWMutex
	rows  map[string][]store.Row
}

// New returns an empty Memstore.
func New() *Memstore {
	return &Memstore{rows: make(map[string][]store.Row)}
}

// Close is a no-op; Memstore owns no external resources.
func (m *Memstore) Close() error { return nil }

// PutShardEntry implements store.Store.
func (m *Memstore) PutShardEntry(_ context.Context, ngram string, pqid, reminder int64, weight byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[ngram] = append(m.rows[ngram], store.Row{PQID: pqid, Reminder: reminder, Weight: weight})
	return nil
}

// Lookup implements store.Store.
func (m *Memstore) Lookup(_ context.Context, ngram string) ([]store.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.rows[ngram]
	out := make([]store.Row, len(rows))
	copy(out, rows)
	return out, nil
}

// NgramCount implements store.Store.
func (m *Memstore) NgramCount(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.rows)), nil
}

var _ store.Store = (*Memstore)(nil)
