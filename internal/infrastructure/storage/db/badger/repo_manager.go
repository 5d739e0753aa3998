package dbbadger

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/tdex-network/payoutd/internal/core/domain"
	"github.com/tdex-network/payoutd/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

type txContextKey struct{}

// txKey is the context key under which the running *badger.Txn is stored.
var txKey = txContextKey{}

type repoManager struct {
	store *badgerhold.Store

	depositRepository    domain.DepositRepository
	overrideRepository   domain.OverrideRepository
	cursorRepository     domain.CursorRepository
	withdrawalRepository domain.WithdrawalRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on disk.
// It expects a base data dir and an optional logger. If the base dir is
// empty, the store is kept in memory.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	var ledgerDir string
	if len(baseDbDir) > 0 {
		ledgerDir = filepath.Join(baseDbDir, "ledger")
	}

	store, err := createDb(ledgerDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	return &repoManager{
		store:                store,
		depositRepository:    NewDepositRepositoryImpl(store),
		overrideRepository:   NewOverrideRepositoryImpl(store),
		cursorRepository:     NewCursorRepositoryImpl(store),
		withdrawalRepository: NewWithdrawalRepositoryImpl(store),
	}, nil
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

// RunTransaction opens a badger transaction and makes it available to the
// repositories through the handler's context. A handler running within an
// already open transaction joins it.
func (r *repoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	if _, ok := ctx.Value(txKey).(*badger.Txn); ok {
		return handler(ctx)
	}

	tx := r.store.Badger().NewTransaction(!readOnly)
	defer tx.Discard()

	res, err := handler(context.WithValue(ctx, txKey, tx))
	if err != nil {
		return nil, err
	}
	if readOnly {
		return res, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return res, nil
}

func (r *repoManager) Close() {
	r.store.Close()
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}

// withTx runs fn within the transaction found in the context, or within a
// brand new one otherwise.
func withTx(
	ctx context.Context, store *badgerhold.Store, update bool,
	fn func(tx *badger.Txn) error,
) error {
	if tx, ok := ctx.Value(txKey).(*badger.Txn); ok {
		return fn(tx)
	}
	if update {
		return store.Badger().Update(fn)
	}
	return store.Badger().View(fn)
}
