package checkout

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-storefront-client/api"
	"github.com/jrsteele09/go-storefront-client/cart"
	serrors "github.com/jrsteele09/go-storefront-client/internal/errors"
)

// Address is the shipping destination on an order.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Order is a placed order as reported by the backend.
type Order struct {
	ID        int64       `json:"id"`
	Status    string      `json:"status"`
	Total     float64     `json:"total"`
	Items     []cart.Item `json:"items,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// Sink receives order state for reactive rendering.
type Sink interface {
	SetOrders(orders []Order)
	SetLastOrder(order Order)
}

// Service places orders and lists order history. Checkout requires an
// authenticated session: the backend charges against its own cart, so a
// guest must sign in (their guest cart stays local and untouched).
type Service struct {
	client *api.Client
	carts  *cart.Service
	sink   Sink
}

func NewService(client *api.Client, carts *cart.Service, sink Sink) *Service {
	return &Service{client: client, carts: carts, sink: sink}
}

type placeOrderRequest struct {
	Shipping Address `json:"shipping"`
}

// PlaceOrder submits the server cart for checkout. The backend consumes the
// cart; the empty authoritative cart is re-fetched afterwards so the cart
// state never shows already-ordered lines.
func (s *Service) PlaceOrder(ctx context.Context, shipping Address) (*Order, error) {
	if !s.carts.Authenticated() {
		return nil, serrors.ErrNotAuthenticated
	}

	var order Order
	if err := s.client.Post(ctx, "checkout/", placeOrderRequest{Shipping: shipping}, &order); err != nil {
		return nil, errors.Wrap(err, "checkout.Service.PlaceOrder")
	}

	if _, _, err := s.carts.Current(ctx); err != nil {
		// The order stands either way; only the cached cart view is stale.
		return &order, errors.Wrap(err, "checkout.Service.PlaceOrder refresh cart")
	}

	if s.sink != nil {
		s.sink.SetLastOrder(order)
	}
	return &order, nil
}

// Orders fetches the signed-in user's order history.
func (s *Service) Orders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := s.client.Get(ctx, "orders/", &orders); err != nil {
		return nil, errors.Wrap(err, "checkout.Service.Orders")
	}
	if s.sink != nil {
		s.sink.SetOrders(orders)
	}
	return orders, nil
}
