package catalog

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-storefront-client/api"
)

// Sink receives catalog data for reactive rendering. The state store
// implements it; services never depend on the store directly.
type Sink interface {
	SetProducts(products []Product)
	SetProductDetail(product Product)
	SetSearchResults(query string, results []Product)
	SetMerchantStorefront(merchant Merchant, products []Product)
}

// Service fetches catalog data from the storefront API and mirrors it into
// the sink.
type Service struct {
	client *api.Client
	sink   Sink
}

func NewService(client *api.Client, sink Sink) *Service {
	return &Service{client: client, sink: sink}
}

// Products fetches the product listing.
func (s *Service) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := s.client.Get(ctx, "products/", &products); err != nil {
		return nil, errors.Wrap(err, "catalog.Service.Products")
	}
	if s.sink != nil {
		s.sink.SetProducts(products)
	}
	return products, nil
}

// Product fetches a single product with its variants.
func (s *Service) Product(ctx context.Context, id int64) (*Product, error) {
	var product Product
	if err := s.client.Get(ctx, fmt.Sprintf("products/%d/", id), &product); err != nil {
		return nil, errors.Wrap(err, "catalog.Service.Product")
	}
	if s.sink != nil {
		s.sink.SetProductDetail(product)
	}
	return &product, nil
}

// Search queries the catalog. An empty query returns an empty result without
// a round trip.
func (s *Service) Search(ctx context.Context, query string) ([]Product, error) {
	if query == "" {
		if s.sink != nil {
			s.sink.SetSearchResults("", nil)
		}
		return nil, nil
	}

	var results []Product
	path := "products/search/?query=" + url.QueryEscape(query)
	if err := s.client.Get(ctx, path, &results); err != nil {
		return nil, errors.Wrap(err, "catalog.Service.Search")
	}
	if s.sink != nil {
		s.sink.SetSearchResults(query, results)
	}
	return results, nil
}

// Merchant fetches a merchant storefront page: the merchant plus their
// product listing.
func (s *Service) Merchant(ctx context.Context, slug string) (*Merchant, []Product, error) {
	var merchant Merchant
	if err := s.client.Get(ctx, fmt.Sprintf("merchants/%s/", url.PathEscape(slug)), &merchant); err != nil {
		return nil, nil, errors.Wrap(err, "catalog.Service.Merchant")
	}

	var products []Product
	if err := s.client.Get(ctx, fmt.Sprintf("merchants/%s/products/", url.PathEscape(slug)), &products); err != nil {
		return nil, nil, errors.Wrap(err, "catalog.Service.Merchant products")
	}

	if s.sink != nil {
		s.sink.SetMerchantStorefront(merchant, products)
	}
	return &merchant, products, nil
}
