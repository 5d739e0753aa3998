package domain

import "context"

// OverrideRepository persists skip and cancel flags. Both are monotonic:
// once set there's no way to unset them.
type OverrideRepository interface {
	// AddSkip sets the skip flag for the pair (beneficiary, deposit). Setting
	// an already set flag is a no-op.
	AddSkip(ctx context.Context, skip Skip) error
	// AddCancellation sets the global cancel flag of a deposit and returns
	// whether it was not set before.
	AddCancellation(ctx context.Context, cancellation Cancellation) (bool, error)
	IsSkipped(ctx context.Context, beneficiary string, depositID uint64) (bool, error)
	IsCancelled(ctx context.Context, depositID uint64) (bool, error)
	// GetOverrides returns the flags relevant to the given beneficiary for
	// deposits with id in [from, to).
	GetOverrides(
		ctx context.Context, beneficiary string, from, to uint64,
	) (Overrides, error)
}
