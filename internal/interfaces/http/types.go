package httpinterface

import (
	"github.com/tdex-network/payoutd/internal/core/domain"
)

type assetInfo struct {
	Kind       string `json:"kind"`
	Identifier string `json:"identifier,omitempty"`
}

func (a assetInfo) toDomain() (domain.Asset, error) {
	kind, err := domain.ParseAssetKind(a.Kind)
	if err != nil {
		return domain.Asset{}, err
	}
	asset := domain.Asset{Kind: kind, Identifier: a.Identifier}
	if err := asset.Validate(); err != nil {
		return domain.Asset{}, err
	}
	return asset, nil
}

func newAssetInfo(asset domain.Asset) assetInfo {
	return assetInfo{asset.Kind.String(), asset.Identifier}
}

type assetAmountInfo struct {
	Asset  assetInfo `json:"asset"`
	Amount uint64    `json:"amount"`
}

func newAssetAmountsInfo(amounts []domain.AssetAmount) []assetAmountInfo {
	info := make([]assetAmountInfo, 0, len(amounts))
	for _, a := range amounts {
		info = append(info, assetAmountInfo{newAssetInfo(a.Asset), a.Amount})
	}
	return info
}

type depositRequest struct {
	Asset          assetInfo `json:"asset"`
	Amount         uint64    `json:"amount"`
	Marker         *uint64   `json:"marker,omitempty"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
}

type depositReply struct {
	ID uint64 `json:"id"`
}

type depositInfo struct {
	ID               uint64    `json:"id"`
	Asset            assetInfo `json:"asset"`
	Amount           uint64    `json:"amount"`
	HistoricalMarker uint64    `json:"historical_marker"`
	Depositor        string    `json:"depositor"`
	Timestamp        int64     `json:"timestamp"`
}

func newDepositInfo(d domain.Deposit) depositInfo {
	return depositInfo{
		ID:               d.ID,
		Asset:            newAssetInfo(d.Asset),
		Amount:           d.Amount,
		HistoricalMarker: d.HistoricalMarker,
		Depositor:        d.Depositor,
		Timestamp:        d.Timestamp,
	}
}

type countReply struct {
	Count uint64 `json:"count"`
}

type overridesReply struct {
	DepositID uint64 `json:"deposit_id"`
	Account   string `json:"account,omitempty"`
	Skipped   bool   `json:"skipped"`
	Cancelled bool   `json:"cancelled"`
}

type payoutEntryInfo struct {
	DepositID uint64    `json:"deposit_id"`
	Asset     assetInfo `json:"asset"`
	Amount    uint64    `json:"amount"`
	Status    string    `json:"status"`
}

type payoutInfo struct {
	Beneficiary string            `json:"beneficiary"`
	From        uint64            `json:"from"`
	To          uint64            `json:"to"`
	Entries     []payoutEntryInfo `json:"entries"`
	Totals      []assetAmountInfo `json:"totals"`
}

func newPayoutInfo(p domain.Payout) payoutInfo {
	entries := make([]payoutEntryInfo, 0, len(p.Entries))
	for _, e := range p.Entries {
		entries = append(entries, payoutEntryInfo{
			DepositID: e.DepositID,
			Asset:     newAssetInfo(e.Asset),
			Amount:    e.Amount,
			Status:    e.Status.String(),
		})
	}
	return payoutInfo{
		Beneficiary: p.Beneficiary,
		From:        p.From,
		To:          p.To,
		Entries:     entries,
		Totals:      newAssetAmountsInfo(p.Totals),
	}
}

type canWithdrawReply struct {
	CanWithdraw bool `json:"can_withdraw"`
}

type withdrawalInfo struct {
	ID          string            `json:"id"`
	Beneficiary string            `json:"beneficiary"`
	FromDeposit uint64            `json:"from_deposit"`
	ToDeposit   uint64            `json:"to_deposit"`
	Amounts     []assetAmountInfo `json:"amounts"`
	Timestamp   int64             `json:"timestamp"`
}

func newWithdrawalInfo(w domain.Withdrawal) withdrawalInfo {
	return withdrawalInfo{
		ID:          w.ID,
		Beneficiary: w.Beneficiary,
		FromDeposit: w.FromDeposit,
		ToDeposit:   w.ToDeposit,
		Amounts:     newAssetAmountsInfo(w.Amounts),
		Timestamp:   w.Timestamp,
	}
}

type cursorInfo struct {
	Beneficiary string `json:"beneficiary"`
	Next        uint64 `json:"next"`
	PendingTo   uint64 `json:"pending_to,omitempty"`
	UpdatedAt   int64  `json:"updated_at"`
}

type addWebhookRequest struct {
	Event    string `json:"event"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret"`
}

type addWebhookReply struct {
	ID string `json:"id"`
}

type errorReply struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
