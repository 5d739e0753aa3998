package inmemory

import (
	"context"

	"github.com/tdex-network/payoutd/internal/core/domain"
)

type cursorRepositoryImpl struct {
	store *store
}

// NewCursorRepositoryImpl returns a new inmemory CursorRepository
// implementation.
func NewCursorRepositoryImpl(store *store) domain.CursorRepository {
	return &cursorRepositoryImpl{store}
}

func (r *cursorRepositoryImpl) GetCursor(
	_ context.Context, beneficiary string,
) (*domain.Cursor, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	return r.getCursor(beneficiary), nil
}

func (r *cursorRepositoryImpl) UpdateCursor(
	_ context.Context, beneficiary string,
	updateFn func(c *domain.Cursor) (*domain.Cursor, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	updated, err := updateFn(r.getCursor(beneficiary))
	if err != nil {
		return err
	}
	r.store.cursors[beneficiary] = *updated
	return nil
}

func (r *cursorRepositoryImpl) getCursor(beneficiary string) *domain.Cursor {
	cursor, ok := r.store.cursors[beneficiary]
	if !ok {
		return domain.NewCursor(beneficiary)
	}
	return &cursor
}
