package inventory_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-storefront-client/api"
	fakecredentialsrepo "github.com/jrsteele09/go-storefront-client/credentials/repofake"
	"github.com/jrsteele09/go-storefront-client/inventory"
)

type stockSink struct {
	stock *inventory.Stock
}

func (s *stockSink) SetStock(stock inventory.Stock) { s.stock = &stock }

func TestService_Stock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/inventory/5/", r.URL.Path)
		_ = json.NewEncoder(w).Encode(inventory.Stock{
			Product:   5,
			Available: 3,
			Variants: []inventory.VariantStock{
				{Variant: 1, VariantValue: 2, Available: 1},
			},
		})
	}))
	defer server.Close()

	sink := &stockSink{}
	client, err := api.New(server.URL, fakecredentialsrepo.NewFakeRepo())
	require.NoError(t, err)
	svc := inventory.NewService(client, sink)

	stock, err := svc.Stock(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, 3, stock.Available)
	require.NotNil(t, sink.stock)
	require.Equal(t, int64(5), sink.stock.Product)
}

func TestStock_InStock(t *testing.T) {
	stock := inventory.Stock{
		Product:   5,
		Available: 3,
		Variants: []inventory.VariantStock{
			{Variant: 1, VariantValue: 2, Available: 1},
		},
	}

	require.True(t, stock.InStock(3, 0, 0))
	require.False(t, stock.InStock(4, 0, 0))
	require.True(t, stock.InStock(1, 1, 2))
	require.False(t, stock.InStock(2, 1, 2))
	require.False(t, stock.InStock(1, 1, 9), "unknown variant value")
	require.False(t, stock.InStock(0, 0, 0), "zero quantity")
}
