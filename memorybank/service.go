package memorybank

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-storefront-client/api"
	"github.com/jrsteele09/go-storefront-client/catalog"
	"github.com/jrsteele09/go-storefront-client/credentials"
)

// Sink receives memory bank state for reactive rendering.
type Sink interface {
	SetMemoryBank(entries []Entry)
}

// Service presents the memory bank with the same split posture as the cart:
// the server copy when authenticated, the local file otherwise, never merged.
type Service struct {
	client *api.Client
	creds  credentials.Repo
	local  *LocalStore
	sink   Sink
}

func NewService(client *api.Client, creds credentials.Repo, local *LocalStore, sink Sink) *Service {
	return &Service{client: client, creds: creds, local: local, sink: sink}
}

func (s *Service) authenticated() bool {
	pair, err := s.creds.Load()
	return err == nil && pair != nil && pair.AccessToken != ""
}

type serverBankResponse struct {
	Items []Entry `json:"items"`
}

// List returns the active memory bank and mirrors it into the sink.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	if !s.authenticated() {
		entries, err := s.local.Entries()
		if err != nil {
			return nil, errors.Wrap(err, "memorybank.Service.List local")
		}
		s.publish(entries)
		return entries, nil
	}

	var resp serverBankResponse
	if err := s.client.Get(ctx, "memory-bank/", &resp); err != nil {
		return nil, errors.Wrap(err, "memorybank.Service.List")
	}
	if resp.Items == nil {
		resp.Items = []Entry{}
	}
	s.publish(resp.Items)
	return resp.Items, nil
}

type toggleRequest struct {
	Product int64 `json:"product"`
}

// Toggle saves or removes a product, reporting whether it is now saved.
func (s *Service) Toggle(ctx context.Context, product catalog.Product) ([]Entry, bool, error) {
	if !s.authenticated() {
		entries, saved, err := s.local.Toggle(product)
		if err != nil {
			return nil, false, errors.Wrap(err, "memorybank.Service.Toggle local")
		}
		s.publish(entries)
		return entries, saved, nil
	}

	var result struct {
		Saved bool `json:"saved"`
	}
	if err := s.client.Post(ctx, "memory-bank/toggle/", toggleRequest{Product: product.ID}, &result); err != nil {
		return nil, false, errors.Wrap(err, "memorybank.Service.Toggle")
	}

	entries, err := s.List(ctx)
	if err != nil {
		return nil, result.Saved, err
	}
	return entries, result.Saved, nil
}

func (s *Service) publish(entries []Entry) {
	if s.sink != nil {
		s.sink.SetMemoryBank(entries)
	}
}
