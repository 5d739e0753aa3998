package domain

import "errors"

var (
	// ErrInvalidAmount is returned when a deposit carries a zero amount.
	ErrInvalidAmount = errors.New("deposit amount must be greater than zero")
	// ErrInvalidAsset is returned when the asset kind and identifier pair is
	// malformed, ie. a token without identifier or a native asset with one.
	ErrInvalidAsset = errors.New("invalid asset")
	// ErrInvalidAccount is returned when a beneficiary or depositor is empty.
	ErrInvalidAccount = errors.New("account must not be empty")
	// ErrInvalidMarker is returned when a deposit refers to a historical
	// marker whose weight snapshot is not settled yet.
	ErrInvalidMarker = errors.New("historical marker must refer to a settled snapshot")
	// ErrDepositNotFound is returned when referencing a deposit id that is out
	// of the ledger range.
	ErrDepositNotFound = errors.New("deposit not found")
	// ErrAlreadyProcessed is returned when attempting to skip a deposit that
	// the beneficiary's cursor has already passed.
	ErrAlreadyProcessed = errors.New("deposit already processed by beneficiary")
	// ErrUnauthorized is returned when the caller lacks the role required by
	// the operation.
	ErrUnauthorized = errors.New("caller is not authorized to perform this operation")
	// ErrTransferFailure is returned when the transfer gateway fails moving
	// funds. The operation that triggered it can be retried as is.
	ErrTransferFailure = errors.New("asset transfer failed")
	// ErrWeightUnavailable is returned when the weight oracle cannot be queried
	// or returns inconsistent values.
	ErrWeightUnavailable = errors.New("weight snapshot unavailable")
	// ErrCursorRewind is returned when attempting to move a cursor backwards.
	ErrCursorRewind = errors.New("cursor can only move forward")
	// ErrIdempotencyKeyReused is returned when a depositor reuses the key of
	// a previous deposit for a different one.
	ErrIdempotencyKeyReused = errors.New("idempotency key already used for another deposit")
	// ErrSettlementMismatch is returned when reserving a payout that doesn't
	// start at the cursor or while another one is pending.
	ErrSettlementMismatch = errors.New("payout does not match cursor state")
	// ErrLedgerGap is returned when a replay range is not a dense sequence of
	// deposits.
	ErrLedgerGap = errors.New("deposit ledger range is not contiguous")
)
