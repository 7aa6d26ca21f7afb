package cart

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-storefront-client/api"
	"github.com/jrsteele09/go-storefront-client/catalog"
	"github.com/jrsteele09/go-storefront-client/credentials"
)

// Source identifies which of the two disjoint carts is active.
type Source string

const (
	SourceGuest  Source = "guest"
	SourceServer Source = "server"
)

// Sink receives the active cart for reactive rendering.
type Sink interface {
	SetCart(source Source, items []Item)
}

// Service presents a single logical "current cart" while the data lives in
// one of two disjoint stores: the server cart when authenticated, the local
// guest cart otherwise. The two are never merged; on login the service
// simply stops reading the guest cart.
type Service struct {
	client *api.Client
	creds  credentials.Repo
	local  *LocalStore
	sink   Sink
	logger zerolog.Logger
}

type ServiceOption func(*Service)

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(client *api.Client, creds credentials.Repo, local *LocalStore, sink Sink, options ...ServiceOption) *Service {
	s := &Service{
		client: client,
		creds:  creds,
		local:  local,
		sink:   sink,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Authenticated reports whether a token pair is stored. Credential read
// errors count as unauthenticated; the guest cart stays usable either way.
func (s *Service) Authenticated() bool {
	pair, err := s.creds.Load()
	return err == nil && pair != nil && pair.AccessToken != ""
}

// serverCartResponse is the authoritative cart returned by the backend.
type serverCartResponse struct {
	Items []Item `json:"items"`
}

// addRequest is the authenticated add payload: product ids only, the server
// owns the product data.
type addRequest struct {
	Items []addRequestItem `json:"items"`
}

type addRequestItem struct {
	Qty     int                `json:"qty"`
	Product int64              `json:"product"`
	Variant []VariantSelection `json:"variant,omitempty"`
}

// Current returns the active cart and mirrors it into the sink.
func (s *Service) Current(ctx context.Context) (Source, []Item, error) {
	if !s.Authenticated() {
		items, err := s.local.Items()
		if err != nil {
			return SourceGuest, nil, errors.Wrap(err, "cart.Service.Current")
		}
		s.publish(SourceGuest, items)
		return SourceGuest, items, nil
	}

	items, err := s.fetchServerCart(ctx)
	if err != nil {
		return SourceServer, nil, err
	}
	s.publish(SourceServer, items)
	return SourceServer, items, nil
}

// AddItem adds qty of a product with the given variant selection to the
// active cart.
//
// Authenticated: the product id is sent to the server, then the server cart
// is re-fetched so the client state is the authoritative one. A rejected add
// leaves both carts untouched.
//
// Guest: the local array is loaded, merged on (product id, variant set)
// identity, persisted, and mirrored into the sink.
func (s *Service) AddItem(ctx context.Context, product catalog.Product, qty int, variants []VariantSelection) ([]Item, error) {
	if !s.Authenticated() {
		items, err := s.local.Add(Item{Qty: qty, Product: product, Variants: variants})
		if err != nil {
			return nil, errors.Wrap(err, "cart.Service.AddItem local")
		}
		s.publish(SourceGuest, items)
		return items, nil
	}

	req := addRequest{Items: []addRequestItem{{
		Qty:     qty,
		Product: product.ID,
		Variant: variants,
	}}}
	if err := s.client.Post(ctx, "cart/add/", req, nil); err != nil {
		return nil, errors.Wrap(err, "cart.Service.AddItem")
	}

	items, err := s.fetchServerCart(ctx)
	if err != nil {
		return nil, err
	}
	s.publish(SourceServer, items)
	return items, nil
}

// GuestSetQty updates or removes a guest cart line. Only meaningful for the
// guest cart; authenticated carts are mutated via the API.
func (s *Service) GuestSetQty(lineID string, qty int) ([]Item, error) {
	items, err := s.local.SetQty(lineID, qty)
	if err != nil {
		return nil, errors.Wrap(err, "cart.Service.GuestSetQty")
	}
	if !s.Authenticated() {
		s.publish(SourceGuest, items)
	}
	return items, nil
}

// ClearLocal empties the guest cart, e.g. after a guest checkout converts.
func (s *Service) ClearLocal() error {
	if err := s.local.Clear(); err != nil {
		return errors.Wrap(err, "cart.Service.ClearLocal")
	}
	if !s.Authenticated() {
		s.publish(SourceGuest, []Item{})
	}
	return nil
}

func (s *Service) fetchServerCart(ctx context.Context) ([]Item, error) {
	var resp serverCartResponse
	if err := s.client.Get(ctx, "cart/", &resp); err != nil {
		return nil, errors.Wrap(err, "cart.Service.fetchServerCart")
	}
	if resp.Items == nil {
		resp.Items = []Item{}
	}
	return resp.Items, nil
}

func (s *Service) publish(source Source, items []Item) {
	if s.sink != nil {
		s.sink.SetCart(source, items)
	}
	s.logger.Debug().Str("source", string(source)).Int("lines", len(items)).Msg("cart updated")
}
