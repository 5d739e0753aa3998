package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/payoutd/internal/core/domain"
)

func TestNewDeposit(t *testing.T) {
	t.Parallel()

	d, err := domain.NewDeposit("depositor", domain.TokenAsset(tokenID), 100, 9)
	require.NoError(t, err)
	require.NotNil(t, d)
	require.Zero(t, d.ID)
	require.Equal(t, uint64(100), d.Amount)
	require.Equal(t, uint64(9), d.HistoricalMarker)
	require.Equal(t, "depositor", d.Depositor)
	require.NotZero(t, d.Timestamp)
}

func TestFailingNewDeposit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		depositor     string
		asset         domain.Asset
		amount        uint64
		expectedError error
	}{
		{
			name:          "zero_amount",
			depositor:     "depositor",
			asset:         domain.NativeAsset(),
			amount:        0,
			expectedError: domain.ErrInvalidAmount,
		},
		{
			name:          "missing_depositor",
			asset:         domain.NativeAsset(),
			amount:        10,
			expectedError: domain.ErrInvalidAccount,
		},
		{
			name:          "invalid_asset",
			depositor:     "depositor",
			asset:         domain.TokenAsset(""),
			amount:        10,
			expectedError: domain.ErrInvalidAsset,
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, err := domain.NewDeposit(tt.depositor, tt.asset, tt.amount, 1)
			require.ErrorIs(t, err, tt.expectedError)
			require.Nil(t, d)
		})
	}
}
