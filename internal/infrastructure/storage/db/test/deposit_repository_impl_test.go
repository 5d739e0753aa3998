package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/payoutd/internal/core/domain"
)

func TestDepositRepositoryImplementations(t *testing.T) {
	repositories := createRepoManagers(t)

	for i := range repositories {
		repo := repositories[i]

		t.Run(repo.Name, func(t *testing.T) {
			t.Run("add_and_get_deposits", func(t *testing.T) {
				testAddAndGetDeposits(t, repo.Manager.DepositRepository())
			})
			t.Run("get_deposit_by_idempotency_key", func(t *testing.T) {
				testGetDepositByIdempotencyKey(t, repo.Manager.DepositRepository())
			})
		})
	}
}

func testAddAndGetDeposits(t *testing.T, depositRepository domain.DepositRepository) {
	ctx := context.Background()
	deposits := makeRandomDeposits(20)

	count, err := depositRepository.CountDeposits(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	deposit, err := depositRepository.GetDeposit(ctx, 0)
	require.ErrorIs(t, err, domain.ErrDepositNotFound)
	require.Nil(t, deposit)

	for i, d := range deposits {
		id, err := depositRepository.AddDeposit(ctx, d)
		require.NoError(t, err)
		require.Equal(t, uint64(i), id)
		deposits[i].ID = id
	}

	count, err = depositRepository.CountDeposits(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(20), count)

	deposit, err = depositRepository.GetDeposit(ctx, 7)
	require.NoError(t, err)
	require.Exactly(t, deposits[7], *deposit)

	inRange, err := depositRepository.GetDepositsInRange(ctx, 5, 12)
	require.NoError(t, err)
	require.Exactly(t, deposits[5:12], inRange)

	inRange, err = depositRepository.GetDepositsInRange(ctx, 18, 30)
	require.NoError(t, err)
	require.Exactly(t, deposits[18:], inRange)

	inRange, err = depositRepository.GetDepositsInRange(ctx, 20, 20)
	require.NoError(t, err)
	require.Empty(t, inRange)

	// Test that pagination is correct by getting all 20 deposits in 4 pages,
	// each including 5 items. The concatenation of all pages must match the
	// non-paginated list item per item.
	allPagedDeposits := make([]domain.Deposit, 0)
	for i := 1; i <= 4; i++ {
		pagedDeposits, err := depositRepository.ListDeposits(
			ctx, domain.NewPage(i, 5),
		)
		require.NoError(t, err)
		require.Len(t, pagedDeposits, 5)
		allPagedDeposits = append(allPagedDeposits, pagedDeposits...)
	}
	require.Exactly(t, deposits, allPagedDeposits)

	pagedDeposits, err := depositRepository.ListDeposits(ctx, domain.NewPage(5, 5))
	require.NoError(t, err)
	require.Empty(t, pagedDeposits)

	// A page whose offset overflows is just empty.
	pagedDeposits, err = depositRepository.ListDeposits(ctx, domain.NewPage(1<<62, 4))
	require.NoError(t, err)
	require.Empty(t, pagedDeposits)
}

func testGetDepositByIdempotencyKey(
	t *testing.T, depositRepository domain.DepositRepository,
) {
	ctx := context.Background()
	deposits := makeRandomDeposits(3)
	deposits[1].IdempotencyKey = "k1"

	for _, d := range deposits {
		_, err := depositRepository.AddDeposit(ctx, d)
		require.NoError(t, err)
	}

	deposit, err := depositRepository.GetDepositByIdempotencyKey(
		ctx, deposits[1].Depositor, "k1",
	)
	require.NoError(t, err)
	require.Equal(t, deposits[1].Amount, deposit.Amount)
	require.Equal(t, "k1", deposit.IdempotencyKey)

	// Keys are scoped to the depositor.
	_, err = depositRepository.GetDepositByIdempotencyKey(
		ctx, deposits[0].Depositor, "k1",
	)
	require.ErrorIs(t, err, domain.ErrDepositNotFound)

	_, err = depositRepository.GetDepositByIdempotencyKey(
		ctx, deposits[0].Depositor, "",
	)
	require.ErrorIs(t, err, domain.ErrDepositNotFound)
}
