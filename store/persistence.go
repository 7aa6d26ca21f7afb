package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jrsteele09/go-storefront-client/memorybank"
)

const stateFileName = "state.json"

// persistedState is the serialize/deserialize boundary: only slices that are
// meaningful across restarts are written. Credentials are never part of the
// state tree; catalog and search data is re-fetched, not restored.
type persistedState struct {
	Auth       AuthState          `json:"auth"`
	Cart       CartState          `json:"cart"`
	MemoryBank []memorybank.Entry `json:"memory_bank,omitempty"`
}

// Persist writes the persisted subset of the state as JSON.
func (s *Store) Persist(w io.Writer) error {
	snapshot := s.Snapshot()

	out := persistedState{
		Auth:       snapshot.Auth,
		Cart:       snapshot.Cart,
		MemoryBank: snapshot.MemoryBank,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("store.Persist Encode: %w", err)
	}
	return nil
}

// Restore loads a previously persisted subset into the state tree and
// notifies subscribers once.
func (s *Store) Restore(r io.Reader) error {
	var in persistedState
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return fmt.Errorf("store.Restore Decode: %w", err)
	}

	s.Update(func(st *State) {
		st.Auth = in.Auth
		st.Cart = in.Cart
		st.MemoryBank = in.MemoryBank
	})
	return nil
}

// SaveFile persists to the conventional state file under dataFolder.
func (s *Store) SaveFile(dataFolder string) error {
	if err := os.MkdirAll(dataFolder, 0o700); err != nil {
		return fmt.Errorf("store.SaveFile MkdirAll: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dataFolder, stateFileName), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("store.SaveFile OpenFile: %w", err)
	}
	defer f.Close()
	return s.Persist(f)
}

// LoadFile restores from the conventional state file. A missing file leaves
// the store untouched.
func (s *Store) LoadFile(dataFolder string) error {
	f, err := os.Open(filepath.Join(dataFolder, stateFileName))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store.LoadFile Open: %w", err)
	}
	defer f.Close()
	return s.Restore(f)
}
