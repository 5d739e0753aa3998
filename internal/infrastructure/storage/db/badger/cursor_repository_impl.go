package dbbadger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/payoutd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type cursorRepositoryImpl struct {
	store *badgerhold.Store
}

// NewCursorRepositoryImpl returns a new badger CursorRepository
// implementation.
func NewCursorRepositoryImpl(store *badgerhold.Store) domain.CursorRepository {
	return &cursorRepositoryImpl{store}
}

func (r *cursorRepositoryImpl) GetCursor(
	ctx context.Context, beneficiary string,
) (*domain.Cursor, error) {
	var cursor *domain.Cursor
	err := withTx(ctx, r.store, false, func(tx *badger.Txn) (err error) {
		cursor, err = r.getCursor(tx, beneficiary)
		return
	})
	if err != nil {
		return nil, err
	}
	return cursor, nil
}

func (r *cursorRepositoryImpl) UpdateCursor(
	ctx context.Context, beneficiary string,
	updateFn func(c *domain.Cursor) (*domain.Cursor, error),
) error {
	return withTx(ctx, r.store, true, func(tx *badger.Txn) error {
		cursor, err := r.getCursor(tx, beneficiary)
		if err != nil {
			return err
		}

		updated, err := updateFn(cursor)
		if err != nil {
			return err
		}
		return r.store.TxUpsert(tx, beneficiary, *updated)
	})
}

func (r *cursorRepositoryImpl) getCursor(
	tx *badger.Txn, beneficiary string,
) (*domain.Cursor, error) {
	var cursor domain.Cursor
	if err := r.store.TxGet(tx, beneficiary, &cursor); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.NewCursor(beneficiary), nil
		}
		return nil, err
	}
	return &cursor, nil
}
