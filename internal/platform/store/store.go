// Package store persists formpack records and their snapshots. Records are
// the user's form data; the export pipeline only ever reads them.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paperwork/paperwork/pkg/pagination"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrInvalidRecord is returned for records without a formpack id.
	ErrInvalidRecord = errors.New("store: invalid record")
	// ErrSealed is returned when sealed data is read without a key.
	ErrSealed = errors.New("store: record data is sealed and no key is configured")
)

// Record is one filled-in form.
type Record struct {
	ID         string         `json:"id"`
	FormpackID string         `json:"formpackId"`
	Locale     string         `json:"locale"`
	Title      string         `json:"title,omitempty"`
	Data       map[string]any `json:"data"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// Snapshot is a labelled copy of a record's data at one point in time.
type Snapshot struct {
	ID        string         `json:"id"`
	RecordID  string         `json:"recordId"`
	Label     string         `json:"label,omitempty"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ListFilter narrows ListRecords. An empty FormpackID lists every record.
type ListFilter struct {
	FormpackID string
	Page       pagination.Params
}

// Store is implemented by the memory and SQL backends.
type Store interface {
	GetRecord(ctx context.Context, id string) (*Record, error)
	// PutRecord inserts or replaces a record. A missing ID is generated and
	// CreatedAt is preserved for existing records.
	PutRecord(ctx context.Context, r *Record) error
	// ListRecords returns one page ordered by most recent update, plus the
	// total number of matching records.
	ListRecords(ctx context.Context, f ListFilter) ([]Record, int, error)
	PutSnapshot(ctx context.Context, s *Snapshot) error
	// ListSnapshots returns the snapshots of a record, oldest first.
	ListSnapshots(ctx context.Context, recordID string) ([]Snapshot, error)
}

func prepareRecord(r *Record, now time.Time) error {
	if r == nil || strings.TrimSpace(r.FormpackID) == "" {
		return fmt.Errorf("%w: formpack id is required", ErrInvalidRecord)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	now = now.UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	return nil
}

func prepareSnapshot(s *Snapshot, now time.Time) error {
	if s == nil || s.RecordID == "" {
		return fmt.Errorf("%w: snapshot needs a record id", ErrInvalidRecord)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Data == nil {
		s.Data = map[string]any{}
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.CreatedAt = s.CreatedAt.UTC()
	return nil
}

// cloneData deep-copies a JSON object so callers never share maps with the
// store.
func cloneData(in map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode record data: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode record data: %w", err)
	}
	return out, nil
}
