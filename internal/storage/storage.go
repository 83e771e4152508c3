// Package storage provides ephemeral in-memory storage for generated
// document artifacts, evicted by age.
package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxAge is how long an artifact is kept before eviction.
const DefaultMaxAge = time.Hour

// Document is one stored artifact with its metadata.
type Document struct {
	Bytes    []byte
	Filename string
	Created  time.Time
}

// Store is an in-memory, age-evicting artifact store. A background janitor
// removes expired entries until Stop is called.
type Store struct {
	mu      sync.RWMutex
	docs    map[string]Document
	maxAge  time.Duration
	stopCh  chan struct{}
	stopped sync.Once
}

// New creates a store with the given artifact lifetime and starts its
// cleanup goroutine. A non-positive maxAge falls back to DefaultMaxAge.
func New(maxAge time.Duration) *Store {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	s := &Store{
		docs:   make(map[string]Document),
		maxAge: maxAge,
		stopCh: make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Put stores an artifact and returns its generated id.
func (s *Store) Put(docBytes []byte, filename string) string {
	id := uuid.NewString()[:12]
	s.mu.Lock()
	s.docs[id] = Document{
		Bytes:    docBytes,
		Filename: filename,
		Created:  time.Now(),
	}
	s.mu.Unlock()
	return id
}

// Get retrieves an artifact by id. The second return value is false when the
// id is unknown or the artifact has expired.
func (s *Store) Get(id string) (Document, bool) {
	s.mu.RLock()
	doc, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok || time.Since(doc.Created) > s.maxAge {
		return Document{}, false
	}
	return doc, true
}

// Delete removes an artifact by id. Returns true when an entry was removed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return false
	}
	delete(s.docs, id)
	return true
}

// Cleanup removes every artifact older than the store's max age and returns
// the number removed.
func (s *Store) Cleanup() int {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, doc := range s.docs {
		if now.Sub(doc.Created) > s.maxAge {
			delete(s.docs, id)
			removed++
		}
	}
	return removed
}

// Stop terminates the cleanup goroutine.
func (s *Store) Stop() {
	s.stopped.Do(func() {
		close(s.stopCh)
	})
}

// janitor periodically evicts expired artifacts.
func (s *Store) janitor() {
	ticker := time.NewTicker(s.maxAge / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.stopCh:
			return
		}
	}
}
