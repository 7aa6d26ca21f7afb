package disputes

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-storefront-client/api"
)

// Dispute is a buyer-opened case against an order.
type Dispute struct {
	ID          int64     `json:"id"`
	OrderID     int64     `json:"order"`
	Reason      string    `json:"reason"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Sink receives dispute state for reactive rendering.
type Sink interface {
	SetDisputes(disputes []Dispute)
}

// Service lists and opens disputes. Resolution is entirely server-side; the
// client only submits and observes.
type Service struct {
	client *api.Client
	sink   Sink
}

func NewService(client *api.Client, sink Sink) *Service {
	return &Service{client: client, sink: sink}
}

// List fetches the signed-in user's disputes.
func (s *Service) List(ctx context.Context) ([]Dispute, error) {
	var disputes []Dispute
	if err := s.client.Get(ctx, "disputes/", &disputes); err != nil {
		return nil, errors.Wrap(err, "disputes.Service.List")
	}
	if s.sink != nil {
		s.sink.SetDisputes(disputes)
	}
	return disputes, nil
}

type openRequest struct {
	Order       int64  `json:"order"`
	Reason      string `json:"reason"`
	Description string `json:"description,omitempty"`
}

// Open files a new dispute against an order and re-fetches the listing so
// the local view reflects the server's numbering and status.
func (s *Service) Open(ctx context.Context, orderID int64, reason, description string) (*Dispute, error) {
	var dispute Dispute
	req := openRequest{Order: orderID, Reason: reason, Description: description}
	if err := s.client.Post(ctx, "disputes/open/", req, &dispute); err != nil {
		return nil, errors.Wrap(err, "disputes.Service.Open")
	}

	if _, err := s.List(ctx); err != nil {
		return &dispute, errors.Wrap(err, "disputes.Service.Open refresh")
	}
	return &dispute, nil
}

// Dispute fetches one dispute by id.
func (s *Service) Dispute(ctx context.Context, id int64) (*Dispute, error) {
	var dispute Dispute
	if err := s.client.Get(ctx, fmt.Sprintf("disputes/%d/", id), &dispute); err != nil {
		return nil, errors.Wrap(err, "disputes.Service.Dispute")
	}
	return &dispute, nil
}
