// Package store supplies stored indicator snapshots and records produced
// explanations.
package store

import (
	"errors"
	"sort"
	"sync"

	"SignalSentinel/internal/model"
)

// ErrNotFound is returned when no snapshot exists for a ticker.
var ErrNotFound = errors.New("snapshot not found")

// ExplanationRecord is one audit row: which label was explained for which
// ticker, and the narrative that was produced.
type ExplanationRecord struct {
	Ticker     string
	Classifier string
	Mode       string
	Label      string
	Resolved   bool
	Narrative  string
}

// Store is the snapshot source plus the explanation audit log.
type Store interface {
	Snapshot(ticker string) (*model.IndicatorSnapshot, error)
	Tickers() ([]string, error)
	SaveSnapshot(snap *model.IndicatorSnapshot) error
	RecordExplanation(rec *ExplanationRecord) error
	Close() error
}

// MemoryStore is an in-memory implementation used when no database is
// configured, and in tests.
type MemoryStore struct {
	mu        sync.Mutex
	snapshots map[string]*model.IndicatorSnapshot
	records   []ExplanationRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]*model.IndicatorSnapshot)}
}

func (m *MemoryStore) Snapshot(ticker string) (*model.IndicatorSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[ticker]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *snap
	return &copied, nil
}

func (m *MemoryStore) Tickers() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tickers := make([]string, 0, len(m.snapshots))
	for t := range m.snapshots {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers, nil
}

func (m *MemoryStore) SaveSnapshot(snap *model.IndicatorSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *snap
	m.snapshots[snap.Ticker] = &copied
	return nil
}

func (m *MemoryStore) RecordExplanation(rec *ExplanationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *rec)
	return nil
}

// Explanations returns the recorded audit rows (test hook).
func (m *MemoryStore) Explanations() []ExplanationRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExplanationRecord{}, m.records...)
}

func (m *MemoryStore) Close() error { return nil }
