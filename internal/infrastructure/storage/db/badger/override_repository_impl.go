package dbbadger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/payoutd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type overrideRepositoryImpl struct {
	store *badgerhold.Store
}

// NewOverrideRepositoryImpl returns a new badger OverrideRepository
// implementation.
func NewOverrideRepositoryImpl(store *badgerhold.Store) domain.OverrideRepository {
	return &overrideRepositoryImpl{store}
}

func (r *overrideRepositoryImpl) AddSkip(
	ctx context.Context, skip domain.Skip,
) error {
	return withTx(ctx, r.store, true, func(tx *badger.Txn) error {
		err := r.store.TxInsert(tx, skipKey(skip.Beneficiary, skip.DepositID), skip)
		if err != nil && !errors.Is(err, badgerhold.ErrKeyExists) {
			return err
		}
		return nil
	})
}

func (r *overrideRepositoryImpl) AddCancellation(
	ctx context.Context, cancellation domain.Cancellation,
) (bool, error) {
	added := true
	err := withTx(ctx, r.store, true, func(tx *badger.Txn) error {
		err := r.store.TxInsert(tx, cancellation.DepositID, cancellation)
		if err != nil {
			if errors.Is(err, badgerhold.ErrKeyExists) {
				added = false
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

func (r *overrideRepositoryImpl) IsSkipped(
	ctx context.Context, beneficiary string, depositID uint64,
) (bool, error) {
	var skip domain.Skip
	return r.exists(ctx, skipKey(beneficiary, depositID), &skip)
}

func (r *overrideRepositoryImpl) IsCancelled(
	ctx context.Context, depositID uint64,
) (bool, error) {
	var cancellation domain.Cancellation
	return r.exists(ctx, depositID, &cancellation)
}

func (r *overrideRepositoryImpl) GetOverrides(
	ctx context.Context, beneficiary string, from, to uint64,
) (domain.Overrides, error) {
	skips := make([]domain.Skip, 0)
	cancellations := make([]domain.Cancellation, 0)
	if from >= to {
		return domain.NewOverrides(skips, cancellations), nil
	}

	skipQuery := badgerhold.Where("Beneficiary").Eq(beneficiary).
		And("DepositID").Ge(from).And("DepositID").Lt(to)
	cancelQuery := badgerhold.Where("DepositID").Ge(from).And("DepositID").Lt(to)

	err := withTx(ctx, r.store, false, func(tx *badger.Txn) error {
		if err := r.store.TxFind(tx, &skips, skipQuery); err != nil {
			return err
		}
		return r.store.TxFind(tx, &cancellations, cancelQuery)
	})
	if err != nil {
		return domain.Overrides{}, err
	}
	return domain.NewOverrides(skips, cancellations), nil
}

func (r *overrideRepositoryImpl) exists(
	ctx context.Context, key, result interface{},
) (bool, error) {
	err := withTx(ctx, r.store, false, func(tx *badger.Txn) error {
		return r.store.TxGet(tx, key, result)
	})
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func skipKey(beneficiary string, depositID uint64) string {
	return fmt.Sprintf("%s/%d", beneficiary, depositID)
}
