package ledger

import "github.com/tdex-network/payoutd/internal/core/domain"

// DepositRequest is what a depositor provides to append a deposit. A nil
// Marker stands for the latest settled weight snapshot.
// Requests with the same IdempotencyKey append a single deposit and collect
// its funds once.
type DepositRequest struct {
	Asset          domain.Asset
	Amount         uint64
	Marker         *uint64
	IdempotencyKey string
}
