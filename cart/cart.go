package cart

import (
	"github.com/jrsteele09/go-storefront-client/catalog"
)

// VariantSelection is one chosen (dimension, value) pair on a line item,
// e.g. colour=red.
type VariantSelection struct {
	Variant      int64 `json:"variant"`
	VariantValue int64 `json:"variant_value"`
}

// Item is one cart line. ID is assigned by the server and absent on guest
// cart lines; LineID is a client-generated identifier so guest lines can be
// addressed before they ever reach the server.
type Item struct {
	ID       int64              `json:"id,omitempty"`
	LineID   string             `json:"line_id,omitempty"`
	Qty      int                `json:"qty"`
	Product  catalog.Product    `json:"product"`
	Variants []VariantSelection `json:"variant,omitempty"`
}

// SameVariants reports whether two variant selections are equal: same number
// of entries and every entry in one has a matching entry in the other on both
// variant and variant value. Order does not matter, and nil and empty both
// mean "no variants selected" and compare equal.
func SameVariants(a, b []VariantSelection) bool {
	if len(a) != len(b) {
		return false
	}
	for _, va := range a {
		found := false
		for _, vb := range b {
			if va.Variant == vb.Variant && va.VariantValue == vb.VariantValue {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Matches reports whether another line refers to the same product with the
// same variant selection, the identity used when merging quantities.
func (i Item) Matches(other Item) bool {
	return i.Product.ID == other.Product.ID && SameVariants(i.Variants, other.Variants)
}

// findItemIndex returns the index of the line matching item, or -1.
func findItemIndex(items []Item, item Item) int {
	for idx := range items {
		if items[idx].Matches(item) {
			return idx
		}
	}
	return -1
}

// TotalQty sums quantities across lines.
func TotalQty(items []Item) int {
	total := 0
	for _, item := range items {
		total += item.Qty
	}
	return total
}
