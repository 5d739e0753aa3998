package domain

import "context"

type CursorRepository interface {
	// GetCursor returns the cursor of the given beneficiary. A beneficiary
	// that never withdrew gets a brand new cursor pointing at 0.
	GetCursor(ctx context.Context, beneficiary string) (*Cursor, error)
	// UpdateCursor allows to commit changes to the cursor of a beneficiary.
	UpdateCursor(
		ctx context.Context, beneficiary string,
		updateFn func(c *Cursor) (*Cursor, error),
	) error
}
