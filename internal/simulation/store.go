package simulation

import (
	"sync"
	"time"

	"github.com/samber/lo"
)

type storeEntry struct {
	report    *Report
	expiresAt time.Time
}

// Store keeps recent reports by ID so hourly data and ledgers can be fetched
// after the summary. When full, the entry closest to expiry is evicted.
type Store struct {
	mu    sync.RWMutex
	items map[string]*storeEntry
	ttl   time.Duration
	max   int
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

func NewStore(ttl time.Duration, maxItems int) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxItems <= 0 {
		maxItems = 256
	}
	s := &Store{
		items: make(map[string]*storeEntry),
		ttl:   ttl,
		max:   maxItems,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	go s.cleanup(time.Minute)
	return s
}

func (s *Store) Put(r *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[r.ID]; !ok && len(s.items) >= s.max {
		oldest := lo.MinBy(lo.Entries(s.items), func(a, b lo.Entry[string, *storeEntry]) bool {
			return a.Value.expiresAt.Before(b.Value.expiresAt)
		})
		delete(s.items, oldest.Key)
	}
	s.items[r.ID] = &storeEntry{report: r, expiresAt: s.now().Add(s.ttl)}
}

func (s *Store) Get(id string) (*Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.items[id]
	if !ok || s.now().After(e.expiresAt) {
		return nil, false
	}
	return e.report, true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *Store) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.items {
		if now.After(e.expiresAt) {
			delete(s.items, k)
		}
	}
}
