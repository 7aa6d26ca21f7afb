package store

import (
	"sync"

	"github.com/jrsteele09/go-storefront-client/account"
	"github.com/jrsteele09/go-storefront-client/cart"
	"github.com/jrsteele09/go-storefront-client/catalog"
	"github.com/jrsteele09/go-storefront-client/checkout"
	"github.com/jrsteele09/go-storefront-client/credentials"
	"github.com/jrsteele09/go-storefront-client/disputes"
	"github.com/jrsteele09/go-storefront-client/inventory"
	"github.com/jrsteele09/go-storefront-client/memorybank"
)

// AuthState is the authentication slice.
type AuthState struct {
	Authenticated bool                  `json:"authenticated"`
	Identity      *credentials.Identity `json:"identity,omitempty"`
	Profile       *account.Profile      `json:"profile,omitempty"`
}

// ProductsState is the catalog slice.
type ProductsState struct {
	Listing []catalog.Product `json:"listing,omitempty"`
	Detail  *catalog.Product  `json:"detail,omitempty"`
}

// SearchState is the search slice.
type SearchState struct {
	Query   string            `json:"query,omitempty"`
	Results []catalog.Product `json:"results,omitempty"`
}

// MerchantState is the merchant storefront slice.
type MerchantState struct {
	Merchant *catalog.Merchant `json:"merchant,omitempty"`
	Products []catalog.Product `json:"products,omitempty"`
}

// CartState is the active cart slice; Source records which of the two
// disjoint carts is being displayed.
type CartState struct {
	Source cart.Source `json:"source,omitempty"`
	Items  []cart.Item `json:"items,omitempty"`
}

// State is the full client state tree. All mutation goes through
// Store.Update; everything else reads copies.
type State struct {
	Auth       AuthState                 `json:"auth"`
	Products   ProductsState             `json:"products"`
	Search     SearchState               `json:"search"`
	Merchant   MerchantState             `json:"merchant"`
	Cart       CartState                 `json:"cart"`
	Disputes   []disputes.Dispute        `json:"disputes,omitempty"`
	Inventory  map[int64]inventory.Stock `json:"inventory,omitempty"`
	MemoryBank []memorybank.Entry        `json:"memory_bank,omitempty"`
	Orders     []checkout.Order          `json:"orders,omitempty"`
	LastOrder  *checkout.Order           `json:"last_order,omitempty"`
}

// Store is a process-wide state container with a single controlled mutation
// point and a subscription mechanism for re-rendering. It is the explicit
// replacement for an implicit global store: typed slices, no middleware, and
// persistence only through the Persist/Restore boundary.
type Store struct {
	mu    sync.RWMutex
	state State

	subMu   sync.Mutex
	nextSub int
	subs    map[int]chan State
}

func New() *Store {
	return &Store{
		subs: map[int]chan State{},
	}
}

// Update applies fn to the state under the write lock and notifies
// subscribers with a copy of the result. fn must not retain the *State.
func (s *Store) Update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)
}

// Snapshot returns a copy of the current state. Slice backing arrays are
// shared; treat the contents as read-only.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Select derives a value from the current state without the caller touching
// locks.
func Select[T any](s *Store, fn func(State) T) T {
	return fn(s.Snapshot())
}

// Subscribe registers for state change notifications. Each update delivers
// the latest snapshot; a slow subscriber only ever misses intermediate
// states, never the newest one. The returned function unsubscribes.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan State, 1)
	s.subs[id] = ch

	unsubscribe := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, unsubscribe
}

func (s *Store) notify(snapshot State) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		// Replace any undelivered snapshot with the newest one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}
