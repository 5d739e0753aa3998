package domain

import "context"

type WithdrawalRepository interface {
	AddWithdrawal(ctx context.Context, withdrawal Withdrawal) error
	// ListWithdrawalsForBeneficiary returns the receipts of the given
	// beneficiary, most recent first.
	ListWithdrawalsForBeneficiary(
		ctx context.Context, beneficiary string, page Page,
	) ([]Withdrawal, error)
}
