// Package store provides the flow-outcome audit store with in-memory and
// Redis backends behind a small factory.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/go-training/discord-oauth/pkg/core"
)

var (
	// ErrRecordNotFound is returned when a flow record is not found in the store.
	ErrRecordNotFound = errors.New("flow record not found")
	// ErrNilRecord is returned when attempting to save a nil flow record.
	ErrNilRecord = errors.New("flow record cannot be nil")
	// ErrEmptyRecordID is returned when the flow record ID is empty.
	ErrEmptyRecordID = errors.New("flow record ID cannot be empty")
)

// maxMemoryRecords caps the in-memory backlog; the oldest records are
// evicted first.
const maxMemoryRecords = 1000

// MemoryStore implements core.AuditStore using an in-memory map.
// It provides thread-safe storage for flow records.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*core.FlowRecord
	order   []string // insertion order, oldest first
}

// NewMemoryStore creates a new instance of MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*core.FlowRecord),
	}
}

// SaveRecord stores a flow record in memory. It returns an error if the
// record is nil or its ID is empty. Saving an existing ID overwrites it.
func (m *MemoryStore) SaveRecord(ctx context.Context, record *core.FlowRecord) error {
	if record == nil {
		return ErrNilRecord
	}
	if record.ID == "" {
		return ErrEmptyRecordID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[record.ID]; !exists {
		m.order = append(m.order, record.ID)
	}
	m.records[record.ID] = record

	for len(m.order) > maxMemoryRecords {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.records, oldest)
	}
	return nil
}

// GetRecord retrieves a flow record by ID.
// It returns ErrRecordNotFound if the record does not exist.
func (m *MemoryStore) GetRecord(ctx context.Context, id string) (*core.FlowRecord, error) {
	if id == "" {
		return nil, ErrEmptyRecordID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	record, exists := m.records[id]
	if !exists {
		return nil, ErrRecordNotFound
	}
	return record, nil
}

// ListRecords returns up to limit records, newest first. A non-positive
// limit returns all records.
func (m *MemoryStore) ListRecords(ctx context.Context, limit int) ([]*core.FlowRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.order)
	if limit <= 0 || limit > n {
		limit = n
	}

	records := make([]*core.FlowRecord, 0, limit)
	for i := n - 1; i >= 0 && len(records) < limit; i-- {
		records = append(records, m.records[m.order[i]])
	}
	return records, nil
}
