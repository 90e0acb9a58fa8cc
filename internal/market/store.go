package market

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Price is one item's cached market quote. Known is false for names the
// catalog does not carry; they are remembered so the refresher stops
// re-querying them.
type Price struct {
	Name        string    `json:"name"`
	URLName     string    `json:"url_name,omitempty"`
	AvgPlatinum float64   `json:"avg_platinum"`
	MinPlatinum float64   `json:"min_platinum"`
	MaxPlatinum float64   `json:"max_platinum"`
	Ducats      int       `json:"ducats"`
	Known       bool      `json:"known"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store is a concurrency-safe price cache persisted as a single JSON file.
type Store struct {
	mu     sync.RWMutex
	prices map[string]Price
	path   string
}

// NewStore opens (or initializes) the cache at path. A missing file is an
// empty cache; a corrupt one is discarded with a warning.
func NewStore(path string) *Store {
	s := &Store{prices: make(map[string]Price), path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("price cache unreadable, starting empty", "path", path, "error", err)
		}
		return s
	}
	var prices []Price
	if err := json.Unmarshal(data, &prices); err != nil {
		slog.Warn("price cache corrupt, starting empty", "path", path, "error", err)
		return s
	}
	for _, p := range prices {
		s.prices[p.Name] = p
	}
	slog.Info("price cache loaded", "path", path, "entries", len(prices))
	return s
}

// Get returns the cached price regardless of age.
func (s *Store) Get(name string) (Price, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prices[name]
	return p, ok
}

// GetFresh returns the cached price only when it is younger than maxAge.
func (s *Store) GetFresh(name string, maxAge time.Duration) (Price, bool) {
	p, ok := s.Get(name)
	if !ok || time.Since(p.UpdatedAt) > maxAge {
		return Price{}, false
	}
	return p, true
}

// Put stores a quote, stamping it as fresh.
func (s *Store) Put(p Price) {
	p.UpdatedAt = time.Now()
	s.mu.Lock()
	s.prices[p.Name] = p
	s.mu.Unlock()
}

// InsertUnknown records that name has no market listing.
func (s *Store) InsertUnknown(name string) {
	s.Put(Price{Name: name, Known: false})
}

// Oldest returns the stalest known entry, for the background refresher.
func (s *Store) Oldest() (Price, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var oldest Price
	found := false
	for _, p := range s.prices {
		if !p.Known {
			continue
		}
		if !found || p.UpdatedAt.Before(oldest.UpdatedAt) {
			oldest = p
			found = true
		}
	}
	return oldest, found
}

// Len reports the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.prices)
}

// Save writes the cache to disk via a temp file rename.
func (s *Store) Save() error {
	s.mu.RLock()
	prices := make([]Price, 0, len(s.prices))
	for _, p := range s.prices {
		prices = append(prices, p)
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(prices, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
