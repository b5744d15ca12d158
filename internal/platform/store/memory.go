package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Memory is a process-local Store. Data is copied in and out.
type Memory struct {
	mu        sync.RWMutex
	records   map[string]Record
	snapshots map[string][]Snapshot
	now       func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		records:   make(map[string]Record),
		snapshots: make(map[string][]Snapshot),
		now:       time.Now,
	}
}

func (m *Memory) GetRecord(_ context.Context, id string) (*Record, error) {
	m.mu.RLock()
	r, ok := m.records[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	return copyRecord(r)
}

func (m *Memory) PutRecord(_ context.Context, r *Record) error {
	if err := prepareRecord(r, m.now()); err != nil {
		return err
	}
	data, err := cloneData(r.Data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.records[r.ID]; ok {
		r.CreatedAt = existing.CreatedAt
	}
	stored := *r
	stored.Data = data
	m.records[r.ID] = stored
	return nil
}

func (m *Memory) ListRecords(_ context.Context, f ListFilter) ([]Record, int, error) {
	m.mu.RLock()
	matched := make([]Record, 0, len(m.records))
	for _, r := range m.records {
		if f.FormpackID == "" || r.FormpackID == f.FormpackID {
			matched = append(matched, r)
		}
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	start, end := f.Page.Window(len(matched))
	out := make([]Record, 0, end-start)
	for _, r := range matched[start:end] {
		c, err := copyRecord(r)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, len(matched), nil
}

func (m *Memory) PutSnapshot(_ context.Context, s *Snapshot) error {
	if err := prepareSnapshot(s, m.now()); err != nil {
		return err
	}
	data, err := cloneData(s.Data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[s.RecordID]; !ok {
		return fmt.Errorf("record %s: %w", s.RecordID, ErrNotFound)
	}
	stored := *s
	stored.Data = data
	m.snapshots[s.RecordID] = append(m.snapshots[s.RecordID], stored)
	return nil
}

func (m *Memory) ListSnapshots(_ context.Context, recordID string) ([]Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.records[recordID]; !ok {
		return nil, fmt.Errorf("record %s: %w", recordID, ErrNotFound)
	}
	src := m.snapshots[recordID]
	out := make([]Snapshot, 0, len(src))
	for _, s := range src {
		data, err := cloneData(s.Data)
		if err != nil {
			return nil, err
		}
		s.Data = data
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func copyRecord(r Record) (*Record, error) {
	data, err := cloneData(r.Data)
	if err != nil {
		return nil, err
	}
	r.Data = data
	return &r, nil
}
