package ports

import (
	"context"

	"github.com/tdex-network/payoutd/internal/core/domain"
)

type idempotencyKey struct{}

// WithIdempotencyKey attaches to ctx the key a gateway must use to recognize
// the retry of an operation it already executed.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

// IdempotencyKeyFromContext returns the key attached with WithIdempotencyKey.
func IdempotencyKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(idempotencyKey{}).(string)
	return key, ok && key != ""
}

// TransferGateway moves value in and out of the ledger custody.
// Implementations must execute at most once every operation whose context
// carries an idempotency key, and report success for the repeated ones.
type TransferGateway interface {
	TransferNative(ctx context.Context, to string, amount uint64) error
	TransferToken(ctx context.Context, token, to string, amount uint64) error
	// Collect moves the given amount from the depositor into custody.
	Collect(
		ctx context.Context, from string, asset domain.Asset, amount uint64,
	) error
}

// BatchTransferGateway is implemented by gateways able to move several assets
// in a single all-or-nothing operation.
type BatchTransferGateway interface {
	TransferGateway
	TransferAll(ctx context.Context, to string, amounts []domain.AssetAmount) error
}
