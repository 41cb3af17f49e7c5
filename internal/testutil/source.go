package testutil

import (
	"sync"

	"github.com/roach88/relq/internal/ir"
)

// CountingSource serves a fixed record sequence and counts how often it is
// read, so tests can observe when materialization happens.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type CountingSource struct {
	mu      sync.Mutex
	records []ir.Record
	reads   int
}

// NewCountingSource creates a source over records.
func NewCountingSource(records []ir.Record) *CountingSource {
	return &CountingSource{records: records}
}

// Records returns the current sequence and increments the read count.
func (s *CountingSource) Records() []ir.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return s.records
}

// Reads returns the number of Records calls so far.
func (s *CountingSource) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Append adds records seen by every later read.
func (s *CountingSource) Append(records ...ir.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]ir.Record, 0, len(s.records)+len(records))
	next = append(next, s.records...)
	s.records = append(next, records...)
}
