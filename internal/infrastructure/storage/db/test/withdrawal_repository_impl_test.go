package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/payoutd/internal/core/domain"
)

func TestWithdrawalRepositoryImplementations(t *testing.T) {
	repositories := createRepoManagers(t)

	for i := range repositories {
		repo := repositories[i]

		t.Run(repo.Name, func(t *testing.T) {
			t.Run("add_and_list_withdrawals", func(t *testing.T) {
				testAddAndListWithdrawals(t, repo.Manager.WithdrawalRepository())
			})
		})
	}
}

func testAddAndListWithdrawals(
	t *testing.T, withdrawalRepository domain.WithdrawalRepository,
) {
	ctx := context.Background()
	beneficiary := randomAccount()

	withdrawals := make([]domain.Withdrawal, 0, 6)
	for i := 0; i < 6; i++ {
		w := domain.NewWithdrawal(domain.Payout{
			Beneficiary: beneficiary,
			From:        uint64(i * 10),
			To:          uint64(i*10 + 10),
			Totals: []domain.AssetAmount{
				{Asset: domain.NativeAsset(), Amount: uint64(randomIntInRange(1, 1000))},
			},
		})
		withdrawals = append(withdrawals, *w)
		err := withdrawalRepository.AddWithdrawal(ctx, *w)
		require.NoError(t, err)
	}
	// Adding the same receipt twice is a no-op.
	err := withdrawalRepository.AddWithdrawal(ctx, withdrawals[0])
	require.NoError(t, err)

	err = withdrawalRepository.AddWithdrawal(ctx, *domain.NewWithdrawal(domain.Payout{
		Beneficiary: randomAccount(), From: 0, To: 1,
	}))
	require.NoError(t, err)

	list, err := withdrawalRepository.ListWithdrawalsForBeneficiary(
		ctx, beneficiary, domain.NewPage(1, 4),
	)
	require.NoError(t, err)
	require.Len(t, list, 4)
	require.Equal(t, withdrawals[5].ID, list[0].ID)
	require.Equal(t, withdrawals[2].ID, list[3].ID)
	require.Equal(t, withdrawals[5].Amounts, list[0].Amounts)

	list, err = withdrawalRepository.ListWithdrawalsForBeneficiary(
		ctx, beneficiary, domain.NewPage(2, 4),
	)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, withdrawals[0].ID, list[1].ID)

	list, err = withdrawalRepository.ListWithdrawalsForBeneficiary(
		ctx, beneficiary, domain.NewPage(1<<62, 4),
	)
	require.NoError(t, err)
	require.Empty(t, list)

	list, err = withdrawalRepository.ListWithdrawalsForBeneficiary(
		ctx, randomAccount(), domain.NewPage(1, 4),
	)
	require.NoError(t, err)
	require.Empty(t, list)
}
