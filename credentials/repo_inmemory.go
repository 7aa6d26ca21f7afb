package credentials

import "sync"

// InMemoryRepo keeps the token pair in process memory only. Useful for tests
// and for callers that prefer the tokens never touch disk.
type InMemoryRepo struct {
	mu   sync.RWMutex
	pair *TokenPair
}

var _ Repo = (*InMemoryRepo)(nil)

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{}
}

func (r *InMemoryRepo) Save(pair TokenPair) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Copy to avoid external modification
	p := pair
	r.pair = &p
	return nil
}

func (r *InMemoryRepo) Load() (*TokenPair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.pair == nil {
		return nil, nil
	}
	p := *r.pair
	return &p, nil
}

func (r *InMemoryRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pair = nil
	return nil
}
