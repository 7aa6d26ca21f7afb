package cart_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-storefront-client/cart"
	"github.com/jrsteele09/go-storefront-client/catalog"
)

func TestSameVariants(t *testing.T) {
	colourRed := cart.VariantSelection{Variant: 1, VariantValue: 2}
	colourBlue := cart.VariantSelection{Variant: 1, VariantValue: 9}
	sizeLarge := cart.VariantSelection{Variant: 3, VariantValue: 7}

	t.Run("identical pairs regardless of order", func(t *testing.T) {
		a := []cart.VariantSelection{colourRed, sizeLarge}
		b := []cart.VariantSelection{sizeLarge, colourRed}
		require.True(t, cart.SameVariants(a, b))
		require.True(t, cart.SameVariants(b, a))
	})

	t.Run("nil and empty both mean no variants", func(t *testing.T) {
		require.True(t, cart.SameVariants(nil, nil))
		require.True(t, cart.SameVariants(nil, []cart.VariantSelection{}))
		require.True(t, cart.SameVariants([]cart.VariantSelection{}, nil))
	})

	t.Run("different value same dimension", func(t *testing.T) {
		require.False(t, cart.SameVariants(
			[]cart.VariantSelection{colourRed},
			[]cart.VariantSelection{colourBlue},
		))
	})

	t.Run("different entry counts", func(t *testing.T) {
		require.False(t, cart.SameVariants(
			[]cart.VariantSelection{colourRed},
			[]cart.VariantSelection{colourRed, sizeLarge},
		))
	})

	t.Run("variants against none", func(t *testing.T) {
		require.False(t, cart.SameVariants([]cart.VariantSelection{colourRed}, nil))
	})
}

func TestLocalStore_Add(t *testing.T) {
	product5 := catalog.Product{ID: 5, Name: "Canvas Tote"}
	colourRed := []cart.VariantSelection{{Variant: 1, VariantValue: 2}}
	colourBlue := []cart.VariantSelection{{Variant: 1, VariantValue: 9}}

	newStore := func(t *testing.T) *cart.LocalStore {
		t.Helper()
		s, err := cart.NewLocalStore(t.TempDir())
		require.NoError(t, err)
		return s
	}

	t.Run("appends a new line with the requested quantity", func(t *testing.T) {
		s := newStore(t)
		items, err := s.Add(cart.Item{Qty: 2, Product: product5, Variants: colourRed})
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.Equal(t, 2, items[0].Qty)
		require.NotEmpty(t, items[0].LineID)
		require.Zero(t, items[0].ID)
	})

	t.Run("matching product and variants increments quantity", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Add(cart.Item{Qty: 1, Product: product5, Variants: colourRed})
		require.NoError(t, err)

		items, err := s.Add(cart.Item{Qty: 2, Product: product5, Variants: colourRed})
		require.NoError(t, err)
		require.Len(t, items, 1, "no new entry appended")
		require.Equal(t, 3, items[0].Qty)
	})

	t.Run("same product different variant appends", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Add(cart.Item{Qty: 1, Product: product5, Variants: colourRed})
		require.NoError(t, err)

		items, err := s.Add(cart.Item{Qty: 1, Product: product5, Variants: colourBlue})
		require.NoError(t, err)
		require.Len(t, items, 2)
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Add(cart.Item{Qty: 0, Product: product5})
		require.Error(t, err)
	})

	t.Run("persists across store instances", func(t *testing.T) {
		folder := t.TempDir()
		s, err := cart.NewLocalStore(folder)
		require.NoError(t, err)
		_, err = s.Add(cart.Item{Qty: 4, Product: product5})
		require.NoError(t, err)

		reopened, err := cart.NewLocalStore(folder)
		require.NoError(t, err)
		items, err := reopened.Items()
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.Equal(t, 4, items[0].Qty)
	})
}

func TestLocalStore_SetQty(t *testing.T) {
	product := catalog.Product{ID: 8, Name: "Mug"}

	s, err := cart.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	items, err := s.Add(cart.Item{Qty: 1, Product: product})
	require.NoError(t, err)
	lineID := items[0].LineID

	t.Run("updates quantity", func(t *testing.T) {
		items, err := s.SetQty(lineID, 5)
		require.NoError(t, err)
		require.Equal(t, 5, items[0].Qty)
	})

	t.Run("zero removes the line", func(t *testing.T) {
		items, err := s.SetQty(lineID, 0)
		require.NoError(t, err)
		require.Empty(t, items)
	})

	t.Run("unknown line id", func(t *testing.T) {
		_, err := s.SetQty("nope", 1)
		require.Error(t, err)
	})
}
