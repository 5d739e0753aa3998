package domain

import (
	"time"

	"github.com/google/uuid"
)

// Withdrawal is the receipt of a successful withdraw call. It covers the
// deposits with id in [FromDeposit, ToDeposit) and lists the amounts actually
// transferred to the beneficiary.
type Withdrawal struct {
	ID          string
	Beneficiary string
	FromDeposit uint64
	ToDeposit   uint64
	Amounts     []AssetAmount
	Timestamp   int64
}

func NewWithdrawal(payout Payout) *Withdrawal {
	amounts := make([]AssetAmount, len(payout.Totals))
	copy(amounts, payout.Totals)

	return &Withdrawal{
		ID:          uuid.New().String(),
		Beneficiary: payout.Beneficiary,
		FromDeposit: payout.From,
		ToDeposit:   payout.To,
		Amounts:     amounts,
		Timestamp:   time.Now().Unix(),
	}
}

// AmountFor returns how much of the given asset was transferred.
func (w Withdrawal) AmountFor(asset Asset) uint64 {
	for _, a := range w.Amounts {
		if a.Asset == asset {
			return a.Amount
		}
	}
	return 0
}
