package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/tdex-network/payoutd/internal/core/domain"
	"github.com/tdex-network/payoutd/internal/core/ports"
)

const (
	EventDepositCreated      = "DEPOSIT_CREATED"
	EventPaymentSkipped      = "PAYMENT_SKIPPED"
	EventPaymentCancelled    = "PAYMENT_CANCELLED"
	EventWithdrawalCompleted = "WITHDRAWAL_COMPLETED"
	EventAny                 = ports.AnyTopic
)

var ErrUnknownEvent = errors.New("unknown webhook event")

var events = map[string]struct{}{
	EventDepositCreated:      {},
	EventPaymentSkipped:      {},
	EventPaymentCancelled:    {},
	EventWithdrawalCompleted: {},
	EventAny:                 {},
}

// WebhookInfo is the public info of a subscription, the secret is never
// exposed.
type WebhookInfo struct {
	ID        string `json:"id"`
	Event     string `json:"event"`
	Endpoint  string `json:"endpoint"`
	IsSecured bool   `json:"is_secured"`
}

type Service struct {
	pubsub ports.PubSub
}

func NewService(pubsub ports.PubSub) *Service {
	return &Service{pubsub}
}

func (s *Service) AddWebhook(
	_ context.Context, event, endpoint, secret string,
) (string, error) {
	if _, ok := events[event]; !ok {
		return "", ErrUnknownEvent
	}
	return s.pubsub.Subscribe(event, endpoint, secret)
}

func (s *Service) RemoveWebhook(_ context.Context, id string) error {
	return s.pubsub.Unsubscribe(id)
}

// ListWebhooks returns the webhooks notified for the given event. An empty
// event lists every webhook.
func (s *Service) ListWebhooks(
	_ context.Context, event string,
) ([]WebhookInfo, error) {
	if _, ok := events[event]; !ok && event != ports.UnspecifiedTopic {
		return nil, ErrUnknownEvent
	}

	subs, err := s.pubsub.ListSubscriptionsForTopic(event)
	if err != nil {
		return nil, err
	}
	webhooks := make([]WebhookInfo, 0, len(subs))
	for _, sub := range subs {
		webhooks = append(webhooks, WebhookInfo{
			ID:        sub.Id(),
			Event:     sub.Topic(),
			Endpoint:  sub.NotifyAt(),
			IsSecured: sub.IsSecured(),
		})
	}
	return webhooks, nil
}

func (s *Service) PublishDepositCreatedEvent(deposit domain.Deposit) error {
	event := EventDepositCreated
	payload := map[string]interface{}{
		"event":   event,
		"deposit": getDepositPayload(deposit),
	}
	return s.publish(event, payload)
}

func (s *Service) PublishPaymentSkippedEvent(skip domain.Skip) error {
	event := EventPaymentSkipped
	payload := map[string]interface{}{
		"event":       event,
		"beneficiary": skip.Beneficiary,
		"deposit_id":  skip.DepositID,
		"timestamp":   skip.Timestamp,
	}
	return s.publish(event, payload)
}

func (s *Service) PublishPaymentCancelledEvent(
	cancellation domain.Cancellation,
) error {
	event := EventPaymentCancelled
	payload := map[string]interface{}{
		"event":      event,
		"deposit_id": cancellation.DepositID,
		"timestamp":  cancellation.Timestamp,
	}
	return s.publish(event, payload)
}

func (s *Service) PublishWithdrawalCompletedEvent(
	withdrawal domain.Withdrawal,
) error {
	event := EventWithdrawalCompleted
	payload := map[string]interface{}{
		"event":           event,
		"id":              withdrawal.ID,
		"beneficiary":     withdrawal.Beneficiary,
		"from_deposit":    withdrawal.FromDeposit,
		"to_deposit":      withdrawal.ToDeposit,
		"amounts":         getAmountsPayload(withdrawal.Amounts),
		"timestamp":       withdrawal.Timestamp,
		"withdrawal_date": time.Unix(withdrawal.Timestamp, 0).Format(time.RFC3339),
	}
	return s.publish(event, payload)
}

func (s *Service) Close() error {
	return s.pubsub.Close()
}

func (s *Service) publish(event string, payload map[string]interface{}) error {
	message, _ := json.Marshal(payload)
	return s.pubsub.Publish(event, string(message))
}
