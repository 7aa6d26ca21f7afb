package catalog

// Product is a storefront catalog entry. Optional fields are pointers:
// listing endpoints may omit them and the zero value is not a usable default.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug,omitempty"`
	Price       float64   `json:"price"`
	Image       *string   `json:"image,omitempty"`
	Description *string   `json:"description,omitempty"`
	Merchant    *Merchant `json:"merchant,omitempty"`
	Variants    []Variant `json:"variants,omitempty"`
}

// Variant is a product option dimension (e.g. colour) with its selectable
// values.
type Variant struct {
	ID     int64          `json:"id"`
	Name   string         `json:"name"`
	Values []VariantValue `json:"values,omitempty"`
}

// VariantValue is one selectable value of a variant dimension (e.g. red).
type VariantValue struct {
	ID    int64  `json:"id"`
	Value string `json:"value"`
}

// Merchant is a seller with their own storefront page.
type Merchant struct {
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}
