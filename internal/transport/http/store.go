package http

import (
	"sync"
	"time"

	"kpidash/internal/dataprocessing"
	"kpidash/internal/kpi"
)

// Dataset is one uploaded workbook after the pure pipeline stages ran:
// resolved mapping, enriched+sorted rows, candidate metrics. Immutable
// once stored; filter and series stages derive from it per request.
type Dataset struct {
	ID         string
	Table      *dataprocessing.Table
	Mapping    kpi.RoleMapping
	Rows       []kpi.EnrichedRow
	Metrics    []string
	UploadedAt time.Time
}

// DatasetStore keeps uploaded datasets in memory, keyed by the content
// fingerprint of the upload. The fingerprint key doubles as the
// memoization of the resolve/enrich/classify stages: re-uploading the
// same bytes returns the stored dataset. Oldest entries are evicted
// beyond the cap.
type DatasetStore struct {
	mu    sync.RWMutex
	byID  map[string]*Dataset
	order []string
	max   int
}

// NewDatasetStore creates a store holding at most max datasets.
func NewDatasetStore(max int) *DatasetStore {
	if max < 1 {
		max = 1
	}
	return &DatasetStore{
		byID: make(map[string]*Dataset),
		max:  max,
	}
}

// Get returns the dataset for an ID.
func (s *DatasetStore) Get(id string) (*Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.byID[id]
	return ds, ok
}

// Put stores a dataset, evicting the oldest entries beyond the cap.
// Storing an existing ID refreshes nothing; the first entry wins.
func (s *DatasetStore) Put(ds *Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[ds.ID]; ok {
		return
	}
	s.byID[ds.ID] = ds
	s.order = append(s.order, ds.ID)
	for len(s.order) > s.max {
		delete(s.byID, s.order[0])
		s.order = s.order[1:]
	}
}

// Len reports the number of stored datasets.
func (s *DatasetStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
