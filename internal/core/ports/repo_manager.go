package ports

import (
	"context"

	"github.com/tdex-network/payoutd/internal/core/domain"
)

// RepoManager interface defines the methods to access the ledger, override,
// cursor and withdrawal repositories.
type RepoManager interface {
	DepositRepository() domain.DepositRepository
	OverrideRepository() domain.OverrideRepository
	CursorRepository() domain.CursorRepository
	WithdrawalRepository() domain.WithdrawalRepository

	// RunTransaction runs the handler in a transaction that is committed only
	// if the handler does not return an error, otherwise all changes made
	// through the repositories are discarded. The handler must use the
	// given context for every repository call.
	RunTransaction(
		ctx context.Context,
		readOnly bool,
		handler func(ctx context.Context) (interface{}, error),
	) (interface{}, error)

	Close()
}
