package ports

import "context"

// WeightOracle is the point-in-time source of beneficiary weights.
type WeightOracle interface {
	// WeightAt returns the weight of the account and the total weight of the
	// whole population at the given historical marker. Values returned for a
	// settled marker must never change.
	WeightAt(
		ctx context.Context, account string, marker uint64,
	) (weight, totalWeight uint64, err error)
	// CurrentMarker returns the marker of the snapshot still open. Every lower
	// marker is settled.
	CurrentMarker(ctx context.Context) (uint64, error)
}
