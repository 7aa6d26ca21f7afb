package inventory

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-storefront-client/api"
)

// Stock is the availability of a product, optionally broken down per variant
// value. The backend is the only truth; this is a read-through snapshot.
type Stock struct {
	Product   int64          `json:"product"`
	Available int            `json:"available"`
	Variants  []VariantStock `json:"variants,omitempty"`
}

// VariantStock is availability for one (variant, value) combination.
type VariantStock struct {
	Variant      int64 `json:"variant"`
	VariantValue int64 `json:"variant_value"`
	Available    int   `json:"available"`
}

// Sink receives stock snapshots for reactive rendering.
type Sink interface {
	SetStock(stock Stock)
}

// Service fetches availability snapshots.
type Service struct {
	client *api.Client
	sink   Sink
}

func NewService(client *api.Client, sink Sink) *Service {
	return &Service{client: client, sink: sink}
}

// Stock fetches current availability for a product.
func (s *Service) Stock(ctx context.Context, productID int64) (*Stock, error) {
	var stock Stock
	if err := s.client.Get(ctx, fmt.Sprintf("inventory/%d/", productID), &stock); err != nil {
		return nil, errors.Wrap(err, "inventory.Service.Stock")
	}
	if s.sink != nil {
		s.sink.SetStock(stock)
	}
	return &stock, nil
}

// InStock reports whether the requested quantity of a specific variant value
// combination is available in the snapshot.
func (st *Stock) InStock(qty int, variant, variantValue int64) bool {
	if qty <= 0 {
		return false
	}
	if variant == 0 {
		return st.Available >= qty
	}
	for _, vs := range st.Variants {
		if vs.Variant == variant && vs.VariantValue == variantValue {
			return vs.Available >= qty
		}
	}
	return false
}
