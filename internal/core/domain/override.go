package domain

import "time"

// Skip is a beneficiary's irrevocable forfeiture of its share of a deposit.
type Skip struct {
	Beneficiary string
	DepositID   uint64
	Timestamp   int64
}

func NewSkip(beneficiary string, depositID uint64) Skip {
	return Skip{beneficiary, depositID, time.Now().Unix()}
}

// Cancellation voids a deposit for every beneficiary.
type Cancellation struct {
	DepositID uint64
	Timestamp int64
}

func NewCancellation(depositID uint64) Cancellation {
	return Cancellation{depositID, time.Now().Unix()}
}

// Overrides is the view of the override registry relevant to a single
// beneficiary over a replay range.
type Overrides struct {
	Skipped   map[uint64]struct{}
	Cancelled map[uint64]struct{}
}

func NewOverrides(skips []Skip, cancellations []Cancellation) Overrides {
	o := Overrides{
		Skipped:   make(map[uint64]struct{}, len(skips)),
		Cancelled: make(map[uint64]struct{}, len(cancellations)),
	}
	for _, s := range skips {
		o.Skipped[s.DepositID] = struct{}{}
	}
	for _, c := range cancellations {
		o.Cancelled[c.DepositID] = struct{}{}
	}
	return o
}

func (o Overrides) IsSkipped(depositID uint64) bool {
	_, ok := o.Skipped[depositID]
	return ok
}

func (o Overrides) IsCancelled(depositID uint64) bool {
	_, ok := o.Cancelled[depositID]
	return ok
}
