package inmemory

import (
	"sync"

	"github.com/tdex-network/payoutd/internal/core/domain"
)

// store holds the whole state of the ledger. All repositories share the same
// store so that a transaction can take a snapshot of everything at once.
type store struct {
	locker *sync.RWMutex

	deposits      []domain.Deposit
	skips         map[string]map[uint64]domain.Skip
	cancellations map[uint64]domain.Cancellation
	cursors       map[string]domain.Cursor
	withdrawals   map[string][]domain.Withdrawal
}

func newStore() *store {
	return &store{
		locker:        &sync.RWMutex{},
		deposits:      make([]domain.Deposit, 0),
		skips:         make(map[string]map[uint64]domain.Skip),
		cancellations: make(map[uint64]domain.Cancellation),
		cursors:       make(map[string]domain.Cursor),
		withdrawals:   make(map[string][]domain.Withdrawal),
	}
}

type snapshot struct {
	deposits      []domain.Deposit
	skips         map[string]map[uint64]domain.Skip
	cancellations map[uint64]domain.Cancellation
	cursors       map[string]domain.Cursor
	withdrawals   map[string][]domain.Withdrawal
}

func (s *store) snapshot() snapshot {
	s.locker.RLock()
	defer s.locker.RUnlock()

	snap := snapshot{
		deposits:      make([]domain.Deposit, len(s.deposits)),
		skips:         make(map[string]map[uint64]domain.Skip, len(s.skips)),
		cancellations: make(map[uint64]domain.Cancellation, len(s.cancellations)),
		cursors:       make(map[string]domain.Cursor, len(s.cursors)),
		withdrawals:   make(map[string][]domain.Withdrawal, len(s.withdrawals)),
	}
	copy(snap.deposits, s.deposits)
	for beneficiary, skips := range s.skips {
		m := make(map[uint64]domain.Skip, len(skips))
		for id, skip := range skips {
			m[id] = skip
		}
		snap.skips[beneficiary] = m
	}
	for id, c := range s.cancellations {
		snap.cancellations[id] = c
	}
	for beneficiary, c := range s.cursors {
		snap.cursors[beneficiary] = c
	}
	for beneficiary, list := range s.withdrawals {
		l := make([]domain.Withdrawal, len(list))
		copy(l, list)
		snap.withdrawals[beneficiary] = l
	}
	return snap
}

func (s *store) restore(snap snapshot) {
	s.locker.Lock()
	defer s.locker.Unlock()

	s.deposits = snap.deposits
	s.skips = snap.skips
	s.cancellations = snap.cancellations
	s.cursors = snap.cursors
	s.withdrawals = snap.withdrawals
}
