package domain

import "context"

// DepositRepository is the abstraction for any kind of database intended to
// persist the append-only deposit ledger.
type DepositRepository interface {
	// AddDeposit appends the given deposit to the ledger and returns the id
	// assigned to it, that is always the ledger length before the append.
	AddDeposit(ctx context.Context, deposit Deposit) (uint64, error)
	// GetDeposit returns the deposit with the given id or ErrDepositNotFound.
	GetDeposit(ctx context.Context, id uint64) (*Deposit, error)
	// GetDepositsInRange returns the deposits with id in [from, to), sorted
	// by id.
	GetDepositsInRange(ctx context.Context, from, to uint64) ([]Deposit, error)
	// ListDeposits returns a page of deposits sorted by id.
	ListDeposits(ctx context.Context, page Page) ([]Deposit, error)
	// GetDepositByIdempotencyKey returns the deposit the depositor appended
	// with the given key or ErrDepositNotFound.
	GetDepositByIdempotencyKey(
		ctx context.Context, depositor, key string,
	) (*Deposit, error)
	// CountDeposits returns the ledger length.
	CountDeposits(ctx context.Context) (uint64, error)
}
