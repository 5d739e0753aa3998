package inmemory

import (
	"context"

	"github.com/tdex-network/payoutd/internal/core/domain"
)

type depositRepositoryImpl struct {
	store *store
}

// NewDepositRepositoryImpl returns a new inmemory DepositRepository
// implementation.
func NewDepositRepositoryImpl(store *store) domain.DepositRepository {
	return &depositRepositoryImpl{store}
}

func (r *depositRepositoryImpl) AddDeposit(
	_ context.Context, deposit domain.Deposit,
) (uint64, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	deposit.ID = uint64(len(r.store.deposits))
	r.store.deposits = append(r.store.deposits, deposit)
	return deposit.ID, nil
}

func (r *depositRepositoryImpl) GetDeposit(
	_ context.Context, id uint64,
) (*domain.Deposit, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	if id >= uint64(len(r.store.deposits)) {
		return nil, domain.ErrDepositNotFound
	}
	deposit := r.store.deposits[id]
	return &deposit, nil
}

func (r *depositRepositoryImpl) GetDepositsInRange(
	_ context.Context, from, to uint64,
) ([]domain.Deposit, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	count := uint64(len(r.store.deposits))
	if to > count {
		to = count
	}
	if from >= to {
		return []domain.Deposit{}, nil
	}

	deposits := make([]domain.Deposit, to-from)
	copy(deposits, r.store.deposits[from:to])
	return deposits, nil
}

func (r *depositRepositoryImpl) ListDeposits(
	_ context.Context, page domain.Page,
) ([]domain.Deposit, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	from := page.Offset()
	if from >= len(r.store.deposits) {
		return []domain.Deposit{}, nil
	}
	to := from + page.Size
	if to > len(r.store.deposits) {
		to = len(r.store.deposits)
	}

	deposits := make([]domain.Deposit, to-from)
	copy(deposits, r.store.deposits[from:to])
	return deposits, nil
}

func (r *depositRepositoryImpl) GetDepositByIdempotencyKey(
	_ context.Context, depositor, key string,
) (*domain.Deposit, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	if key == "" {
		return nil, domain.ErrDepositNotFound
	}
	for _, d := range r.store.deposits {
		if d.Depositor == depositor && d.IdempotencyKey == key {
			deposit := d
			return &deposit, nil
		}
	}
	return nil, domain.ErrDepositNotFound
}

func (r *depositRepositoryImpl) CountDeposits(_ context.Context) (uint64, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	return uint64(len(r.store.deposits)), nil
}
