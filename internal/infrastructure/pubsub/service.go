package pubsub

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/golang-jwt/jwt"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/payoutd/internal/core/ports"
	"github.com/tdex-network/payoutd/pkg/circuitbreaker"
	"golang.org/x/sync/errgroup"
)

type service struct {
	store      *store
	httpClient *client
	cb         *gobreaker.CircuitBreaker
}

// NewService returns a webhook pubsub service whose subscriptions are
// persisted in datadir. An empty datadir keeps them in memory.
func NewService(
	datadir string, logger badger.Logger, requestTimeout time.Duration,
) (ports.PubSub, error) {
	store, err := newStore(datadir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening pubsub db: %w", err)
	}

	return &service{
		store:      store,
		httpClient: newHTTPClient(requestTimeout),
		cb:         circuitbreaker.NewCircuitBreaker("webhooks"),
	}, nil
}

func (ws *service) Subscribe(topic, endpoint, secret string) (string, error) {
	sub, err := NewSubscription(topic, endpoint, secret)
	if err != nil {
		return "", err
	}

	if err := ws.store.add(*sub); err != nil {
		return "", err
	}
	return sub.ID, nil
}

func (ws *service) Unsubscribe(id string) error {
	return ws.store.remove(id)
}

func (ws *service) ListSubscriptionsForTopic(
	topic string,
) ([]ports.Subscription, error) {
	subs, err := ws.listSubscriptionsForTopic(topic)
	if err != nil {
		return nil, err
	}
	return subs.toPortable(), nil
}

func (ws *service) Publish(topic string, message string) error {
	return ws.publishForTopic(topic, message)
}

func (ws *service) Close() error {
	return ws.store.close()
}

// listSubscriptionsForTopic returns the subscriptions for the topic plus those
// for any topic.
func (ws *service) listSubscriptionsForTopic(topic string) (subscriptions, error) {
	subs, err := ws.store.get(topic)
	if err != nil {
		return nil, err
	}
	if topic != ports.AnyTopic && topic != ports.UnspecifiedTopic {
		subsForAnyTopic, err := ws.store.get(ports.AnyTopic)
		if err != nil {
			return nil, err
		}
		subs = append(subs, subsForAnyTopic...)
	}
	return subs, nil
}

func (ws *service) publishForTopic(topic, message string) error {
	subs, err := ws.listSubscriptionsForTopic(topic)
	if err != nil {
		return err
	}

	eg := &errgroup.Group{}
	for i := range subs {
		sub := subs[i]
		eg.Go(func() error { return ws.doRequest(sub, message) })
	}
	return eg.Wait()
}

func (ws *service) doRequest(sub Subscription, payload string) error {
	_, err := ws.cb.Execute(func() (interface{}, error) {
		headers := map[string]string{
			"Content-Type": "application/json",
		}
		if sub.IsSecured() {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
				IssuedAt: time.Now().Unix(),
				Subject:  sub.Event,
			})
			tokenString, err := token.SignedString([]byte(sub.Secret))
			if err != nil {
				return nil, err
			}
			headers["Authorization"] = fmt.Sprintf("Bearer %s", tokenString)
		}

		status, resp, err := ws.httpClient.post(sub.Endpoint, payload, headers)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("webhook %s replied with status %d: %s", sub.ID, status, resp)
		}
		return nil, nil
	})

	return err
}
