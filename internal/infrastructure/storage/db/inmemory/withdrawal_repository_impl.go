package inmemory

import (
	"context"

	"github.com/tdex-network/payoutd/internal/core/domain"
)

type withdrawalRepositoryImpl struct {
	store *store
}

// NewWithdrawalRepositoryImpl returns a new inmemory WithdrawalRepository
// implementation.
func NewWithdrawalRepositoryImpl(store *store) domain.WithdrawalRepository {
	return &withdrawalRepositoryImpl{store}
}

func (r *withdrawalRepositoryImpl) AddWithdrawal(
	_ context.Context, withdrawal domain.Withdrawal,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	list := r.store.withdrawals[withdrawal.Beneficiary]
	for _, w := range list {
		if w.ID == withdrawal.ID {
			return nil
		}
	}
	r.store.withdrawals[withdrawal.Beneficiary] = append(list, withdrawal)
	return nil
}

func (r *withdrawalRepositoryImpl) ListWithdrawalsForBeneficiary(
	_ context.Context, beneficiary string, page domain.Page,
) ([]domain.Withdrawal, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	list := r.store.withdrawals[beneficiary]
	result := make([]domain.Withdrawal, 0, page.Size)
	for i := len(list) - 1 - page.Offset(); i >= 0 && len(result) < page.Size; i-- {
		result = append(result, list[i])
	}
	return result, nil
}
