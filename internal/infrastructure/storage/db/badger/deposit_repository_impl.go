package dbbadger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/payoutd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const ledgerMetaKey = "ledger"

// ledgerMeta keeps track of the ledger length so that ids can be assigned
// and counted without scanning the deposits.
type ledgerMeta struct {
	Length uint64
}

type depositRepositoryImpl struct {
	store *badgerhold.Store
}

// NewDepositRepositoryImpl returns a new badger DepositRepository
// implementation.
func NewDepositRepositoryImpl(store *badgerhold.Store) domain.DepositRepository {
	return &depositRepositoryImpl{store}
}

func (r *depositRepositoryImpl) AddDeposit(
	ctx context.Context, deposit domain.Deposit,
) (uint64, error) {
	var id uint64
	err := withTx(ctx, r.store, true, func(tx *badger.Txn) error {
		meta, err := r.getMeta(tx)
		if err != nil {
			return err
		}

		deposit.ID = meta.Length
		if err := r.store.TxInsert(tx, deposit.ID, deposit); err != nil {
			return err
		}

		meta.Length++
		if err := r.store.TxUpsert(tx, ledgerMetaKey, *meta); err != nil {
			return err
		}
		id = deposit.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *depositRepositoryImpl) GetDeposit(
	ctx context.Context, id uint64,
) (*domain.Deposit, error) {
	var deposit domain.Deposit
	err := withTx(ctx, r.store, false, func(tx *badger.Txn) error {
		return r.store.TxGet(tx, id, &deposit)
	})
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrDepositNotFound
		}
		return nil, err
	}
	return &deposit, nil
}

func (r *depositRepositoryImpl) GetDepositsInRange(
	ctx context.Context, from, to uint64,
) ([]domain.Deposit, error) {
	if from >= to {
		return []domain.Deposit{}, nil
	}

	query := badgerhold.Where("ID").Ge(from).And("ID").Lt(to).SortBy("ID")
	return r.findDeposits(ctx, query)
}

func (r *depositRepositoryImpl) ListDeposits(
	ctx context.Context, page domain.Page,
) ([]domain.Deposit, error) {
	from := uint64(page.Offset())
	to := from + uint64(page.Size)
	return r.GetDepositsInRange(ctx, from, to)
}

func (r *depositRepositoryImpl) GetDepositByIdempotencyKey(
	ctx context.Context, depositor, key string,
) (*domain.Deposit, error) {
	if key == "" {
		return nil, domain.ErrDepositNotFound
	}

	query := badgerhold.Where("Depositor").Eq(depositor).
		And("IdempotencyKey").Eq(key).Limit(1)
	deposits, err := r.findDeposits(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(deposits) == 0 {
		return nil, domain.ErrDepositNotFound
	}
	return &deposits[0], nil
}

func (r *depositRepositoryImpl) CountDeposits(
	ctx context.Context,
) (uint64, error) {
	var count uint64
	err := withTx(ctx, r.store, false, func(tx *badger.Txn) error {
		meta, err := r.getMeta(tx)
		if err != nil {
			return err
		}
		count = meta.Length
		return nil
	})
	return count, err
}

func (r *depositRepositoryImpl) findDeposits(
	ctx context.Context, query *badgerhold.Query,
) ([]domain.Deposit, error) {
	deposits := make([]domain.Deposit, 0)
	err := withTx(ctx, r.store, false, func(tx *badger.Txn) error {
		return r.store.TxFind(tx, &deposits, query)
	})
	if err != nil {
		return nil, err
	}
	return deposits, nil
}

func (r *depositRepositoryImpl) getMeta(tx *badger.Txn) (*ledgerMeta, error) {
	var meta ledgerMeta
	if err := r.store.TxGet(tx, ledgerMetaKey, &meta); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return &ledgerMeta{}, nil
		}
		return nil, err
	}
	return &meta, nil
}
