package inmemory

import (
	"context"

	"github.com/tdex-network/payoutd/internal/core/domain"
)

type overrideRepositoryImpl struct {
	store *store
}

// NewOverrideRepositoryImpl returns a new inmemory OverrideRepository
// implementation.
func NewOverrideRepositoryImpl(store *store) domain.OverrideRepository {
	return &overrideRepositoryImpl{store}
}

func (r *overrideRepositoryImpl) AddSkip(
	_ context.Context, skip domain.Skip,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	skips, ok := r.store.skips[skip.Beneficiary]
	if !ok {
		skips = make(map[uint64]domain.Skip)
		r.store.skips[skip.Beneficiary] = skips
	}
	if _, ok := skips[skip.DepositID]; !ok {
		skips[skip.DepositID] = skip
	}
	return nil
}

func (r *overrideRepositoryImpl) AddCancellation(
	_ context.Context, cancellation domain.Cancellation,
) (bool, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.cancellations[cancellation.DepositID]; ok {
		return false, nil
	}
	r.store.cancellations[cancellation.DepositID] = cancellation
	return true, nil
}

func (r *overrideRepositoryImpl) IsSkipped(
	_ context.Context, beneficiary string, depositID uint64,
) (bool, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	_, ok := r.store.skips[beneficiary][depositID]
	return ok, nil
}

func (r *overrideRepositoryImpl) IsCancelled(
	_ context.Context, depositID uint64,
) (bool, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	_, ok := r.store.cancellations[depositID]
	return ok, nil
}

func (r *overrideRepositoryImpl) GetOverrides(
	_ context.Context, beneficiary string, from, to uint64,
) (domain.Overrides, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	skips := make([]domain.Skip, 0)
	for id, skip := range r.store.skips[beneficiary] {
		if id >= from && id < to {
			skips = append(skips, skip)
		}
	}
	cancellations := make([]domain.Cancellation, 0)
	for id, c := range r.store.cancellations {
		if id >= from && id < to {
			cancellations = append(cancellations, c)
		}
	}
	return domain.NewOverrides(skips, cancellations), nil
}
