package cart

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	serrors "github.com/jrsteele09/go-storefront-client/internal/errors"
)

// localCartFileName mirrors the browser storage key the guest cart has always
// lived under.
const localCartFileName = "cartItems.json"

// LocalStore holds the guest cart: a JSON array of line items persisted
// synchronously under the data folder. It is the authoritative cart whenever
// the user is not authenticated. Writes are serialized within this process
// only; there is no cross-process coordination on the file.
type LocalStore struct {
	mu   sync.Mutex
	path string
}

// NewLocalStore creates the guest cart store rooted at dataFolder, creating
// the folder if missing.
func NewLocalStore(dataFolder string) (*LocalStore, error) {
	if err := os.MkdirAll(dataFolder, 0o700); err != nil {
		return nil, fmt.Errorf("LocalStore.New MkdirAll: %w", err)
	}
	return &LocalStore{path: filepath.Join(dataFolder, localCartFileName)}, nil
}

// Items returns the current guest cart. A missing file is an empty cart.
func (s *LocalStore) Items() ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Add merges a line into the guest cart: if a line with the same product and
// an identical variant selection exists, its quantity is incremented by
// item.Qty; otherwise the line is appended with a fresh LineID. The updated
// array is persisted before returning.
func (s *LocalStore) Add(item Item) ([]Item, error) {
	if item.Qty <= 0 {
		return nil, serrors.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return nil, err
	}

	if idx := findItemIndex(items, item); idx >= 0 {
		items[idx].Qty += item.Qty
	} else {
		item.ID = 0 // guest lines never carry a server id
		item.LineID = uuid.New().String()
		items = append(items, item)
	}

	if err := s.save(items); err != nil {
		return nil, err
	}
	return items, nil
}

// SetQty sets the quantity of the line identified by lineID. A quantity of
// zero or less removes the line.
func (s *LocalStore) SetQty(lineID string, qty int) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return nil, err
	}

	updated := items[:0]
	found := false
	for _, item := range items {
		if item.LineID == lineID {
			found = true
			if qty <= 0 {
				continue
			}
			item.Qty = qty
		}
		updated = append(updated, item)
	}
	if !found {
		return nil, serrors.ErrNotFound
	}

	if err := s.save(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Clear empties the guest cart.
func (s *LocalStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save([]Item{})
}

func (s *LocalStore) load() ([]Item, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LocalStore.load ReadFile: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", serrors.ErrCorruptStore, err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func (s *LocalStore) save(items []Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("LocalStore.save Marshal: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("LocalStore.save WriteFile: %w", err)
	}
	return nil
}
