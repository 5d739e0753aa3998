package dbbadger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/payoutd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type withdrawalRepositoryImpl struct {
	store *badgerhold.Store
}

// NewWithdrawalRepositoryImpl returns a new badger WithdrawalRepository
// implementation.
func NewWithdrawalRepositoryImpl(store *badgerhold.Store) domain.WithdrawalRepository {
	return &withdrawalRepositoryImpl{store}
}

func (r *withdrawalRepositoryImpl) AddWithdrawal(
	ctx context.Context, withdrawal domain.Withdrawal,
) error {
	return withTx(ctx, r.store, true, func(tx *badger.Txn) error {
		err := r.store.TxInsert(tx, withdrawal.ID, withdrawal)
		if err != nil && !errors.Is(err, badgerhold.ErrKeyExists) {
			return err
		}
		return nil
	})
}

// ListWithdrawalsForBeneficiary sorts receipts by the end of their range,
// that strictly increases across the withdrawals of a beneficiary.
func (r *withdrawalRepositoryImpl) ListWithdrawalsForBeneficiary(
	ctx context.Context, beneficiary string, page domain.Page,
) ([]domain.Withdrawal, error) {
	query := badgerhold.Where("Beneficiary").Eq(beneficiary).
		SortBy("ToDeposit").Reverse().
		Skip(page.Offset()).Limit(page.Size)

	withdrawals := make([]domain.Withdrawal, 0)
	err := withTx(ctx, r.store, false, func(tx *badger.Txn) error {
		return r.store.TxFind(tx, &withdrawals, query)
	})
	if err != nil {
		return nil, err
	}
	return withdrawals, nil
}
