package inmemory

import (
	"context"
	"sync"

	"github.com/tdex-network/payoutd/internal/core/domain"
	"github.com/tdex-network/payoutd/internal/core/ports"
)

type repoManager struct {
	store  *store
	txLock *sync.Mutex

	depositRepository    domain.DepositRepository
	overrideRepository   domain.OverrideRepository
	cursorRepository     domain.CursorRepository
	withdrawalRepository domain.WithdrawalRepository
}

func NewRepoManager() ports.RepoManager {
	store := newStore()

	return &repoManager{
		store:                store,
		txLock:               &sync.Mutex{},
		depositRepository:    NewDepositRepositoryImpl(store),
		overrideRepository:   NewOverrideRepositoryImpl(store),
		cursorRepository:     NewCursorRepositoryImpl(store),
		withdrawalRepository: NewWithdrawalRepositoryImpl(store),
	}
}

func (r *repoManager) DepositRepository() domain.DepositRepository {
	return r.depositRepository
}

func (r *repoManager) OverrideRepository() domain.OverrideRepository {
	return r.overrideRepository
}

func (r *repoManager) CursorRepository() domain.CursorRepository {
	return r.cursorRepository
}

func (r *repoManager) WithdrawalRepository() domain.WithdrawalRepository {
	return r.withdrawalRepository
}

// RunTransaction serializes read-write transactions and restores the state
// preceding the handler if it returns an error.
func (r *repoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	if readOnly {
		return handler(ctx)
	}

	r.txLock.Lock()
	defer r.txLock.Unlock()

	snap := r.store.snapshot()
	res, err := handler(ctx)
	if err != nil {
		r.store.restore(snap)
		return nil, err
	}
	return res, nil
}

func (r *repoManager) Close() {}
