package pubsub

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/tdex-network/payoutd/internal/core/ports"
)

type Subscription struct {
	ID       string
	Event    string
	Endpoint string
	Secret   string
}

type subscriptions []Subscription

func (s subscriptions) toPortable() []ports.Subscription {
	subs := make([]ports.Subscription, 0, len(s))
	for i := range s {
		sub := s[i]
		subs = append(subs, &sub)
	}
	return subs
}

func NewSubscription(event, endpoint, secret string) (*Subscription, error) {
	if len(event) <= 0 {
		return nil, fmt.Errorf("%w: missing event", ports.ErrInvalidSubscription)
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf(
			"%w: endpoint must be a valid URI", ports.ErrInvalidSubscription,
		)
	}
	id := uuid.New().String()
	return &Subscription{id, event, endpoint, secret}, nil
}

func (h *Subscription) Topic() string {
	return h.Event
}

func (h *Subscription) Id() string {
	return h.ID
}

func (h *Subscription) NotifyAt() string {
	return h.Endpoint
}

func (h *Subscription) IsSecured() bool {
	return len(h.Secret) > 0
}
