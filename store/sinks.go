package store

import (
	"github.com/jrsteele09/go-storefront-client/account"
	"github.com/jrsteele09/go-storefront-client/cart"
	"github.com/jrsteele09/go-storefront-client/catalog"
	"github.com/jrsteele09/go-storefront-client/checkout"
	"github.com/jrsteele09/go-storefront-client/credentials"
	"github.com/jrsteele09/go-storefront-client/disputes"
	"github.com/jrsteele09/go-storefront-client/inventory"
	"github.com/jrsteele09/go-storefront-client/memorybank"
)

// The store implements every domain sink so services stay decoupled from it:
// each service sees only the narrow interface it dispatches into.
var (
	_ account.Sink    = (*Store)(nil)
	_ catalog.Sink    = (*Store)(nil)
	_ cart.Sink       = (*Store)(nil)
	_ checkout.Sink   = (*Store)(nil)
	_ disputes.Sink   = (*Store)(nil)
	_ inventory.Sink  = (*Store)(nil)
	_ memorybank.Sink = (*Store)(nil)
)

func (s *Store) SetAuthenticated(identity credentials.Identity) {
	s.Update(func(st *State) {
		st.Auth = AuthState{Authenticated: true, Identity: &identity}
	})
}

func (s *Store) SetProfile(profile account.Profile) {
	s.Update(func(st *State) {
		st.Auth.Profile = &profile
	})
}

// ClearAuth drops everything tied to the signed-in user, not just the
// identity: disputes, orders and inventory snapshots belong to the session.
// The guest cart and memory bank slices are refreshed by their services on
// the next read.
func (s *Store) ClearAuth() {
	s.Update(func(st *State) {
		st.Auth = AuthState{}
		st.Disputes = nil
		st.Orders = nil
		st.LastOrder = nil
		st.Inventory = nil
	})
}

func (s *Store) SetProducts(products []catalog.Product) {
	s.Update(func(st *State) {
		st.Products.Listing = products
	})
}

func (s *Store) SetProductDetail(product catalog.Product) {
	s.Update(func(st *State) {
		st.Products.Detail = &product
	})
}

func (s *Store) SetSearchResults(query string, results []catalog.Product) {
	s.Update(func(st *State) {
		st.Search = SearchState{Query: query, Results: results}
	})
}

func (s *Store) SetMerchantStorefront(merchant catalog.Merchant, products []catalog.Product) {
	s.Update(func(st *State) {
		st.Merchant = MerchantState{Merchant: &merchant, Products: products}
	})
}

func (s *Store) SetCart(source cart.Source, items []cart.Item) {
	s.Update(func(st *State) {
		st.Cart = CartState{Source: source, Items: items}
	})
}

func (s *Store) SetOrders(orders []checkout.Order) {
	s.Update(func(st *State) {
		st.Orders = orders
	})
}

func (s *Store) SetLastOrder(order checkout.Order) {
	s.Update(func(st *State) {
		st.LastOrder = &order
	})
}

func (s *Store) SetDisputes(d []disputes.Dispute) {
	s.Update(func(st *State) {
		st.Disputes = d
	})
}

func (s *Store) SetStock(stock inventory.Stock) {
	s.Update(func(st *State) {
		if st.Inventory == nil {
			st.Inventory = map[int64]inventory.Stock{}
		}
		st.Inventory[stock.Product] = stock
	})
}

func (s *Store) SetMemoryBank(entries []memorybank.Entry) {
	s.Update(func(st *State) {
		st.MemoryBank = entries
	})
}
