package api

import "sync"

// AnalysisStore keeps completed analyses for later retrieval. In-memory
// only; records live for the lifetime of the process.
type AnalysisStore struct {
	mu      sync.Mutex
	records map[string]AnalysisRecord
}

func NewAnalysisStore() *AnalysisStore {
	return &AnalysisStore{records: make(map[string]AnalysisRecord)}
}

func (s *AnalysisStore) Put(record AnalysisRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.AnalysisID] = record
}

func (s *AnalysisStore) Get(analysisID string) (AnalysisRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[analysisID]
	return record, ok
}
