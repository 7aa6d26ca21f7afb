package memorybank

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jrsteele09/go-storefront-client/catalog"
	serrors "github.com/jrsteele09/go-storefront-client/internal/errors"
)

// memoryBankFileName mirrors the browser storage key the memory bank has
// always lived under.
const memoryBankFileName = "memoryBank.json"

// Entry is one saved product in the memory bank (wishlist).
type Entry struct {
	Product catalog.Product `json:"product"`
	AddedAt time.Time       `json:"added_at"`
}

// LocalStore persists the guest memory bank as a JSON array under the data
// folder, same posture as the guest cart: synchronous writes, in-process
// serialization only.
type LocalStore struct {
	mu      sync.Mutex
	path    string
	nowFunc func() time.Time
}

func NewLocalStore(dataFolder string) (*LocalStore, error) {
	if err := os.MkdirAll(dataFolder, 0o700); err != nil {
		return nil, fmt.Errorf("memorybank.NewLocalStore MkdirAll: %w", err)
	}
	return &LocalStore{
		path:    filepath.Join(dataFolder, memoryBankFileName),
		nowFunc: time.Now,
	}, nil
}

// Entries returns the saved products. A missing file is an empty bank.
func (s *LocalStore) Entries() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Toggle adds the product if absent or removes it if present, returning the
// updated entries and whether the product is now saved.
func (s *LocalStore) Toggle(product catalog.Product) ([]Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, false, err
	}

	for idx, entry := range entries {
		if entry.Product.ID == product.ID {
			entries = append(entries[:idx], entries[idx+1:]...)
			if err := s.save(entries); err != nil {
				return nil, false, err
			}
			return entries, false, nil
		}
	}

	entries = append(entries, Entry{Product: product, AddedAt: s.nowFunc()})
	if err := s.save(entries); err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

// Contains reports whether a product is saved.
func (s *LocalStore) Contains(productID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry.Product.ID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (s *LocalStore) load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("memorybank.LocalStore.load ReadFile: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", serrors.ErrCorruptStore, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (s *LocalStore) save(entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("memorybank.LocalStore.save Marshal: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("memorybank.LocalStore.save WriteFile: %w", err)
	}
	return nil
}
