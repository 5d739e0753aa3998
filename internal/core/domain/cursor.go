package domain

import (
	"fmt"
	"time"
)

// Cursor marks the boundary between processed and unprocessed deposits of a
// beneficiary. Next is the id of the first deposit not processed yet.
// Pending is the payout whose transfer has been started but not confirmed.
// Until it is settled, every withdrawal retries exactly that payout.
type Cursor struct {
	Beneficiary string
	Next        uint64
	Pending     *Payout
	UpdatedAt   int64
}

func NewCursor(beneficiary string) *Cursor {
	return &Cursor{Beneficiary: beneficiary}
}

// IsProcessed returns whether the deposit is behind the cursor or part of the
// payout being settled.
func (c *Cursor) IsProcessed(depositID uint64) bool {
	if c.Pending != nil && depositID < c.Pending.To {
		return true
	}
	return depositID < c.Next
}

// Advance moves the cursor to the given ledger length. Moving backwards is
// rejected, staying in place is allowed.
func (c *Cursor) Advance(to uint64) error {
	if to < c.Next {
		return ErrCursorRewind
	}
	if c.Pending != nil && to != c.Pending.To {
		return fmt.Errorf(
			"%w: cannot move to %d while payout up to %d is pending",
			ErrSettlementMismatch, to, c.Pending.To,
		)
	}
	c.Next = to
	c.Pending = nil
	c.UpdatedAt = time.Now().Unix()
	return nil
}

// Reserve records the payout as pending. The payout must start at the cursor
// and no other payout must be pending.
func (c *Cursor) Reserve(payout Payout) error {
	if c.Pending != nil {
		if c.Pending.From == payout.From && c.Pending.To == payout.To {
			return nil
		}
		return fmt.Errorf(
			"%w: payout [%d, %d) pending", ErrSettlementMismatch,
			c.Pending.From, c.Pending.To,
		)
	}
	if payout.Beneficiary != c.Beneficiary || payout.From != c.Next {
		return fmt.Errorf(
			"%w: payout of %s starts at %d, cursor of %s at %d",
			ErrSettlementMismatch, payout.Beneficiary, payout.From,
			c.Beneficiary, c.Next,
		)
	}
	p := payout
	c.Pending = &p
	c.UpdatedAt = time.Now().Unix()
	return nil
}
