package state

import (
	"sort"
	"sync"
)

// Subscriber receives every published snapshot. The slice is owned by the
// subscriber.
type Subscriber func([]WindowRecord)

// Store is the shared window collection. Each update replaces the snapshot
// wholesale and publishes it to subscribers.
type Store struct {
	mu      sync.RWMutex
	records []WindowRecord
	version uint64

	subMu  sync.Mutex
	nextID int
	subs   map[int]Subscriber
	// pubMu serializes publication so subscribers observe snapshots in order.
	pubMu sync.Mutex
}

// NewStore seeds a store with records.
func NewStore(records []WindowRecord) *Store {
	return &Store{
		records: CloneRecords(records),
		subs:    make(map[int]Subscriber),
	}
}

// Snapshot returns a deep copy of the current records.
func (s *Store) Snapshot() []WindowRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CloneRecords(s.records)
}

// Version returns the number of updates applied so far.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Find returns a copy of the record with id.
func (s *Store) Find(id string) (WindowRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := Find(s.records, id); i >= 0 {
		return cloneRecord(s.records[i]), true
	}
	return WindowRecord{}, false
}

// Update replaces the snapshot with fn applied to a private copy of it.
// Subscribers are notified after the write lock is released. They may read
// the store but must not call Update from inside the callback.
func (s *Store) Update(fn func([]WindowRecord) []WindowRecord) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	next := fn(CloneRecords(s.records))
	s.records = next
	s.version++
	published := CloneRecords(next)
	s.mu.Unlock()

	s.publish(published)
}

// UpdateRecord applies fn to the record with id. It reports whether the
// record exists; unknown ids leave the store untouched and publish nothing.
func (s *Store) UpdateRecord(id string, fn func(*WindowRecord)) bool {
	if _, ok := s.Find(id); !ok {
		return false
	}
	found := false
	s.Update(func(records []WindowRecord) []WindowRecord {
		if i := Find(records, id); i >= 0 {
			fn(&records[i])
			found = true
		}
		return records
	})
	return found
}

// Subscribe registers fn and immediately calls it with the current snapshot.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.pubMu.Lock()
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()
	fn(s.Snapshot())
	s.pubMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) publish(records []WindowRecord) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	s.subMu.Unlock()
	sort.Ints(ids)
	for _, id := range ids {
		s.subMu.Lock()
		fn, ok := s.subs[id]
		s.subMu.Unlock()
		if !ok {
			continue
		}
		fn(CloneRecords(records))
	}
}
