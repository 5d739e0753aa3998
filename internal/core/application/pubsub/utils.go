package pubsub

import (
	"time"

	"github.com/tdex-network/payoutd/internal/core/domain"
)

func getDepositPayload(deposit domain.Deposit) map[string]interface{} {
	return map[string]interface{}{
		"id":                deposit.ID,
		"asset":             getAssetPayload(deposit.Asset),
		"amount":            deposit.Amount,
		"historical_marker": deposit.HistoricalMarker,
		"depositor":         deposit.Depositor,
		"timestamp":         deposit.Timestamp,
		"deposit_date":      time.Unix(deposit.Timestamp, 0).Format(time.RFC3339),
	}
}

func getAssetPayload(asset domain.Asset) map[string]interface{} {
	payload := map[string]interface{}{
		"kind": asset.Kind.String(),
	}
	if !asset.IsNative() {
		payload["identifier"] = asset.Identifier
	}
	return payload
}

func getAmountsPayload(amounts []domain.AssetAmount) []map[string]interface{} {
	payload := make([]map[string]interface{}, 0, len(amounts))
	for _, a := range amounts {
		payload = append(payload, map[string]interface{}{
			"asset":  getAssetPayload(a.Asset),
			"amount": a.Amount,
		})
	}
	return payload
}
