package pubsub

import (
	"errors"
	"path/filepath"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/tdex-network/payoutd/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

var ErrSubscriptionNotFound = ports.ErrSubscriptionNotFound

type store struct {
	db *badgerhold.Store
}

// newStore opens the subscription store in the given datadir, or in memory
// if datadir is empty.
func newStore(datadir string, logger badger.Logger) (*store, error) {
	var opts badger.Options
	if len(datadir) <= 0 {
		opts = badger.DefaultOptions("")
		opts.InMemory = true
	} else {
		opts = badger.DefaultOptions(filepath.Join(datadir, "pubsub"))
		opts.Compression = options.ZSTD
	}
	opts.Logger = logger

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}
	return &store{db}, nil
}

func (s *store) add(sub Subscription) error {
	if err := s.db.Insert(sub.ID, sub); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return nil
		}
		return err
	}
	return nil
}

func (s *store) remove(id string) error {
	if err := s.db.Delete(id, Subscription{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return ErrSubscriptionNotFound
		}
		return err
	}
	return nil
}

// get returns the subscriptions for the given topic sorted by id. The
// unspecified topic matches every subscription.
func (s *store) get(topic string) (subscriptions, error) {
	var query *badgerhold.Query
	if topic != ports.UnspecifiedTopic {
		query = badgerhold.Where("Event").Eq(topic)
	}

	subs := make(subscriptions, 0)
	if err := s.db.Find(&subs, query); err != nil {
		return nil, err
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].ID < subs[j].ID
	})
	return subs, nil
}

func (s *store) close() error {
	return s.db.Close()
}
