package fakecredentialsrepo

import (
	"sync"

	"github.com/jrsteele09/go-storefront-client/credentials"
)

var _ credentials.Repo = (*FakeRepo)(nil)

// FakeRepo is a test double for credentials.Repo that records calls and can
// be primed to fail.
type FakeRepo struct {
	lock sync.RWMutex

	pair *credentials.TokenPair

	SaveErr  error
	LoadErr  error
	ClearErr error

	SaveCalls  int
	LoadCalls  int
	ClearCalls int
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{}
}

// NewFakeRepoWithPair returns a fake pre-loaded with the given pair.
func NewFakeRepoWithPair(pair credentials.TokenPair) *FakeRepo {
	return &FakeRepo{pair: &pair}
}

func (r *FakeRepo) Save(pair credentials.TokenPair) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.SaveCalls++
	if r.SaveErr != nil {
		return r.SaveErr
	}
	p := pair
	r.pair = &p
	return nil
}

func (r *FakeRepo) Load() (*credentials.TokenPair, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.LoadCalls++
	if r.LoadErr != nil {
		return nil, r.LoadErr
	}
	if r.pair == nil {
		return nil, nil
	}
	p := *r.pair
	return &p, nil
}

func (r *FakeRepo) Clear() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.ClearCalls++
	if r.ClearErr != nil {
		return r.ClearErr
	}
	r.pair = nil
	return nil
}

// Stored returns the currently stored pair without counting as a Load.
func (r *FakeRepo) Stored() *credentials.TokenPair {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.pair == nil {
		return nil
	}
	p := *r.pair
	return &p
}
