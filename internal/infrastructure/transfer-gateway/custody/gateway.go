package custodygateway

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/payoutd/internal/core/domain"
	"github.com/tdex-network/payoutd/internal/core/ports"
)

var (
	// ErrInsufficientFunds is returned when the custody doesn't hold enough
	// funds for a transfer.
	ErrInsufficientFunds = errors.New("insufficient custody funds")
	// ErrRecipientRejected is returned when transferring to a blocked account.
	ErrRecipientRejected = errors.New("recipient rejected")
	// ErrBalanceOverflow is returned when a collect would overflow the
	// custody balance.
	ErrBalanceOverflow = errors.New("custody balance overflow")
)

// Gateway is an in-process custody vault. Collected funds are held in a
// pool per asset and paid out to beneficiaries on transfer. It keeps track
// of every amount paid so that it can be used for reconciliation.
// Operations carrying an idempotency key are executed only the first time
// the key is seen.
type Gateway struct {
	lock     *sync.RWMutex
	balances map[string]uint64
	paid     map[string]map[string]uint64
	blocked  map[string]bool
	executed map[string]struct{}
}

func NewGateway() *Gateway {
	return &Gateway{
		lock:     &sync.RWMutex{},
		balances: make(map[string]uint64),
		paid:     make(map[string]map[string]uint64),
		blocked:  make(map[string]bool),
		executed: make(map[string]struct{}),
	}
}

func (g *Gateway) TransferNative(
	ctx context.Context, to string, amount uint64,
) error {
	return g.TransferAll(ctx, to, []domain.AssetAmount{
		{Asset: domain.NativeAsset(), Amount: amount},
	})
}

func (g *Gateway) TransferToken(
	ctx context.Context, token, to string, amount uint64,
) error {
	return g.TransferAll(ctx, to, []domain.AssetAmount{
		{Asset: domain.TokenAsset(token), Amount: amount},
	})
}

// TransferAll moves all amounts or none of them.
func (g *Gateway) TransferAll(
	ctx context.Context, to string, amounts []domain.AssetAmount,
) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	opKey, done := g.alreadyExecuted(ctx)
	if done {
		log.Debugf("custody: transfer %s already executed", opKey)
		return nil
	}

	if g.blocked[to] {
		return fmt.Errorf("%w: %s", ErrRecipientRejected, to)
	}

	required := make(map[string]uint64)
	for _, a := range amounts {
		key := a.Asset.Key()
		sum, carry := bits.Add64(required[key], a.Amount, 0)
		if carry != 0 || sum > g.balances[key] {
			return fmt.Errorf(
				"%w: %s balance %d", ErrInsufficientFunds, key, g.balances[key],
			)
		}
		required[key] = sum
	}

	if _, ok := g.paid[to]; !ok {
		g.paid[to] = make(map[string]uint64)
	}
	for key, amount := range required {
		g.balances[key] -= amount
		g.paid[to][key] += amount
	}
	g.markExecuted(opKey)

	log.Debugf("custody: paid %v to %s", required, to)
	return nil
}

func (g *Gateway) Collect(
	ctx context.Context, from string, asset domain.Asset, amount uint64,
) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	opKey, done := g.alreadyExecuted(ctx)
	if done {
		log.Debugf("custody: collect %s already executed", opKey)
		return nil
	}

	key := asset.Key()
	balance, carry := bits.Add64(g.balances[key], amount, 0)
	if carry != 0 {
		return ErrBalanceOverflow
	}
	g.balances[key] = balance
	g.markExecuted(opKey)

	log.Debugf("custody: collected %d %s from %s", amount, key, from)
	return nil
}

// Block makes every following transfer to the given account fail.
func (g *Gateway) Block(account string) {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.blocked[account] = true
}

func (g *Gateway) Unblock(account string) {
	g.lock.Lock()
	defer g.lock.Unlock()

	delete(g.blocked, account)
}

// Balance returns the custody balance of the given asset.
func (g *Gateway) Balance(asset domain.Asset) uint64 {
	g.lock.RLock()
	defer g.lock.RUnlock()

	return g.balances[asset.Key()]
}

// Paid returns the overall amount of the given asset paid to the account.
func (g *Gateway) Paid(account string, asset domain.Asset) uint64 {
	g.lock.RLock()
	defer g.lock.RUnlock()

	return g.paid[account][asset.Key()]
}

func (g *Gateway) alreadyExecuted(ctx context.Context) (string, bool) {
	key, ok := ports.IdempotencyKeyFromContext(ctx)
	if !ok {
		return "", false
	}
	_, done := g.executed[key]
	return key, done
}

func (g *Gateway) markExecuted(key string) {
	if key != "" {
		g.executed[key] = struct{}{}
	}
}
