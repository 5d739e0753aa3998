package domain

import (
	"strings"
	"time"
)

// Deposit is a single, immutable entry of the payout ledger. The ID is
// assigned by the ledger on append and forms a dense zero-based sequence.
// IdempotencyKey is the optional key the depositor provided to make the
// deposit safe to retry, unique per depositor.
type Deposit struct {
	ID               uint64
	Asset            Asset
	Amount           uint64
	HistoricalMarker uint64
	Depositor        string
	IdempotencyKey   string
	Timestamp        int64
}

// NewDeposit returns a deposit not yet appended to the ledger.
func NewDeposit(
	depositor string, asset Asset, amount, historicalMarker uint64,
) (*Deposit, error) {
	if strings.TrimSpace(depositor) == "" {
		return nil, ErrInvalidAccount
	}
	if err := asset.Validate(); err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, ErrInvalidAmount
	}

	return &Deposit{
		Asset:            asset,
		Amount:           amount,
		HistoricalMarker: historicalMarker,
		Depositor:        depositor,
		Timestamp:        time.Now().Unix(),
	}, nil
}
