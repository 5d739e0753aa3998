package domain

import (
	"fmt"
	"math/bits"

	"github.com/tdex-network/payoutd/pkg/mathutil"
)

const (
	EntryPaid EntryStatus = iota
	EntryCancelled
	EntrySkipped
	EntryNoWeight
)

var entryStatusToString = map[EntryStatus]string{
	EntryPaid:      "PAID",
	EntryCancelled: "CANCELLED",
	EntrySkipped:   "SKIPPED",
	EntryNoWeight:  "NO_WEIGHT",
}

// EntryStatus tells how a deposit contributed to a payout.
type EntryStatus int

func (s EntryStatus) String() string {
	str, ok := entryStatusToString[s]
	if !ok {
		return "UNKNOWN"
	}
	return str
}

type PayoutEntry struct {
	DepositID uint64
	Asset     Asset
	Amount    uint64
	Status    EntryStatus
}

// Payout is the outcome of replaying the deposits [From, To) for a
// beneficiary. Totals contains only non-zero amounts, native asset first.
type Payout struct {
	Beneficiary string
	From        uint64
	To          uint64
	Entries     []PayoutEntry
	Totals      []AssetAmount
}

// IsEmpty returns whether there's nothing to transfer.
func (p Payout) IsEmpty() bool {
	return len(p.Totals) == 0
}

// SettlementKey identifies the transfer of the payout. It depends only on the
// beneficiary and the replayed range.
func (p Payout) SettlementKey() string {
	return fmt.Sprintf("payout/%s/%d-%d", p.Beneficiary, p.From, p.To)
}

func (p Payout) TotalFor(asset Asset) uint64 {
	for _, t := range p.Totals {
		if t.Asset == asset {
			return t.Amount
		}
	}
	return 0
}

// WeightFunc returns the weight of the replaying beneficiary and the total
// weight of the population at the given historical marker.
type WeightFunc func(marker uint64) (weight, totalWeight uint64, err error)

// Entitlement returns floor(amount * weight / totalWeight). A zero total
// weight entitles to nothing.
func Entitlement(amount, weight, totalWeight uint64) (uint64, error) {
	if totalWeight == 0 {
		return 0, nil
	}
	if weight > totalWeight {
		return 0, fmt.Errorf(
			"%w: weight %d exceeds total weight %d",
			ErrWeightUnavailable, weight, totalWeight,
		)
	}
	return mathutil.ProRata(amount, weight, totalWeight), nil
}

// Replay computes what the beneficiary is entitled to for the given
// deposits, that must be the dense ledger range starting at from.
// Cancelled deposits and those skipped by the beneficiary contribute zero.
// The truncated remainder of every share stays in custody.
func Replay(
	beneficiary string, from uint64, deposits []Deposit,
	overrides Overrides, weightAt WeightFunc,
) (*Payout, error) {
	type weights struct{ weight, total uint64 }
	weightsByMarker := make(map[uint64]weights)

	totals := make(map[Asset]uint64)
	entries := make([]PayoutEntry, 0, len(deposits))

	for i, d := range deposits {
		if d.ID != from+uint64(i) {
			return nil, fmt.Errorf(
				"%w: expected deposit %d, got %d", ErrLedgerGap, from+uint64(i), d.ID,
			)
		}

		entry := PayoutEntry{DepositID: d.ID, Asset: d.Asset}

		switch {
		case overrides.IsCancelled(d.ID):
			entry.Status = EntryCancelled
		case overrides.IsSkipped(d.ID):
			entry.Status = EntrySkipped
		default:
			w, ok := weightsByMarker[d.HistoricalMarker]
			if !ok {
				weight, total, err := weightAt(d.HistoricalMarker)
				if err != nil {
					return nil, fmt.Errorf(
						"%w: marker %d: %s", ErrWeightUnavailable, d.HistoricalMarker, err,
					)
				}
				w = weights{weight, total}
				weightsByMarker[d.HistoricalMarker] = w
			}

			amount, err := Entitlement(d.Amount, w.weight, w.total)
			if err != nil {
				return nil, err
			}
			if amount == 0 {
				entry.Status = EntryNoWeight
				break
			}

			sum, carry := bits.Add64(totals[d.Asset], amount, 0)
			if carry != 0 {
				return nil, fmt.Errorf("total amount of %s overflows", d.Asset)
			}
			totals[d.Asset] = sum
			entry.Amount = amount
			entry.Status = EntryPaid
		}

		entries = append(entries, entry)
	}

	amounts := make([]AssetAmount, 0, len(totals))
	for asset, amount := range totals {
		amounts = append(amounts, AssetAmount{asset, amount})
	}
	sortAssetAmounts(amounts)

	return &Payout{
		Beneficiary: beneficiary,
		From:        from,
		To:          from + uint64(len(deposits)),
		Entries:     entries,
		Totals:      amounts,
	}, nil
}
