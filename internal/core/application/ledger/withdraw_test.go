package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/payoutd/internal/core/domain"
	"github.com/tdex-network/payoutd/internal/core/ports"
	dbbadger "github.com/tdex-network/payoutd/internal/infrastructure/storage/db/badger"
	custodygateway "github.com/tdex-network/payoutd/internal/infrastructure/transfer-gateway/custody"
)

// lostReplyGateway executes every operation on the custody but reports the
// first lostReplies transfers as failed.
type lostReplyGateway struct {
	*custodygateway.Gateway
	lostReplies int
	keys        []string
}

func (g *lostReplyGateway) TransferAll(
	ctx context.Context, to string, amounts []domain.AssetAmount,
) error {
	key, _ := ports.IdempotencyKeyFromContext(ctx)
	g.keys = append(g.keys, key)

	if err := g.Gateway.TransferAll(ctx, to, amounts); err != nil {
		return err
	}
	if g.lostReplies > 0 {
		g.lostReplies--
		return context.DeadlineExceeded
	}
	return nil
}

func TestWithdraw(t *testing.T) {
	gateway := newTestGateway()
	gateway.On("TransferNative", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc, _ := newTestService(t, newTestOracle(), gateway)

	deposit(t, svc, native, 100)

	expected := map[string]uint64{alice: 50, bob: 30, carol: 20}
	for account, amount := range expected {
		canWithdraw, err := svc.CanWithdraw(ctx, account)
		require.NoError(t, err)
		require.True(t, canWithdraw)

		payout, err := svc.PendingPayout(ctx, account)
		require.NoError(t, err)
		require.Equal(t, amount, payout.TotalFor(native))

		withdrawal, err := svc.Withdraw(ctx, account)
		require.NoError(t, err)
		require.Equal(t, amount, withdrawal.AmountFor(native))
		require.Equal(t, uint64(0), withdrawal.FromDeposit)
		require.Equal(t, uint64(1), withdrawal.ToDeposit)
		gateway.AssertCalled(t, "TransferNative", mock.Anything, account, amount)

		cursor, err := svc.GetCursor(ctx, account)
		require.NoError(t, err)
		require.Equal(t, uint64(1), cursor.Next)

		canWithdraw, err = svc.CanWithdraw(ctx, account)
		require.NoError(t, err)
		require.False(t, canWithdraw)
	}

	// Withdrawing again pays nothing.
	withdrawal, err := svc.Withdraw(ctx, alice)
	require.NoError(t, err)
	require.Empty(t, withdrawal.Amounts)
	gateway.AssertNumberOfCalls(t, "TransferNative", 3)

	withdrawals, err := svc.ListWithdrawals(ctx, alice, domain.NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, withdrawals, 1)
	require.Equal(t, uint64(50), withdrawals[0].AmountFor(native))

	_, err = svc.Withdraw(ctx, "")
	require.ErrorIs(t, err, domain.ErrInvalidAccount)
}

func TestWithdrawWithoutWeight(t *testing.T) {
	oracle := newTestOracle()
	oracle.On("WeightAt", mock.Anything, "dave", mock.Anything).
		Return(uint64(0), uint64(10), nil)
	gateway := newTestGateway()
	svc, _ := newTestService(t, oracle, gateway)

	deposit(t, svc, native, 100)
	deposit(t, svc, token, 100)

	canWithdraw, err := svc.CanWithdraw(ctx, "dave")
	require.NoError(t, err)
	require.False(t, canWithdraw)

	// The cursor moves forward even if there's nothing to pay.
	withdrawal, err := svc.Withdraw(ctx, "dave")
	require.NoError(t, err)
	require.Empty(t, withdrawal.Amounts)

	cursor, err := svc.GetCursor(ctx, "dave")
	require.NoError(t, err)
	require.Equal(t, uint64(2), cursor.Next)
	gateway.AssertNotCalled(t, "TransferNative", mock.Anything, mock.Anything, mock.Anything)
}

// Four deposits, a skip, a global cancel after the first withdrawal and a
// late deposit.
func TestSkipAndCancelScenario(t *testing.T) {
	gateway := newTestGateway()
	gateway.On("TransferNative", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	gateway.On("TransferToken", mock.Anything, tokenID, mock.Anything, mock.Anything).Return(nil)
	svc, _ := newTestService(t, newTestOracle(), gateway)

	deposit(t, svc, native, 1000)
	tokenDeposit := deposit(t, svc, token, 100)
	skippedDeposit := deposit(t, svc, token, 200)
	deposit(t, svc, native, 2000)

	err := svc.SkipPayment(ctx, carol, skippedDeposit)
	require.NoError(t, err)

	w, err := svc.Withdraw(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(1500), w.AmountFor(native))
	require.Equal(t, uint64(150), w.AmountFor(token))

	err = svc.CancelPaymentGlobally(ctx, admin, tokenDeposit)
	require.NoError(t, err)

	w, err = svc.Withdraw(ctx, bob)
	require.NoError(t, err)
	require.Equal(t, uint64(900), w.AmountFor(native))
	require.Equal(t, uint64(60), w.AmountFor(token))

	deposit(t, svc, native, 3000)

	w, err = svc.Withdraw(ctx, carol)
	require.NoError(t, err)
	require.Equal(t, uint64(1200), w.AmountFor(native))
	require.Zero(t, w.AmountFor(token))

	w, err = svc.Withdraw(ctx, bob)
	require.NoError(t, err)
	require.Equal(t, uint64(900), w.AmountFor(native))
	require.Equal(t, uint64(4), w.FromDeposit)

	w, err = svc.Withdraw(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(1500), w.AmountFor(native))
	require.Zero(t, w.AmountFor(token))

	gateway.AssertCalled(t, "TransferToken", mock.Anything, tokenID, alice, uint64(150))
	gateway.AssertCalled(t, "TransferToken", mock.Anything, tokenID, bob, uint64(60))
	gateway.AssertNotCalled(t, "TransferToken", mock.Anything, tokenID, carol, mock.Anything)
}

func TestAtomicWithdrawFailure(t *testing.T) {
	t.Run("sequential transfers", func(t *testing.T) {
		gateway := newTestGateway()
		gateway.On("TransferNative", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		gateway.On("TransferToken", mock.Anything, tokenID, bob, uint64(30)).
			Return(errors.New("recipient rejected transfer")).Once()
		gateway.On("TransferToken", mock.Anything, tokenID, bob, uint64(30)).
			Return(nil)
		svc, _ := newTestService(t, newTestOracle(), gateway)

		deposit(t, svc, native, 100)
		deposit(t, svc, token, 100)

		_, err := svc.Withdraw(ctx, bob)
		require.ErrorIs(t, err, domain.ErrTransferFailure)

		cursor, err := svc.GetCursor(ctx, bob)
		require.NoError(t, err)
		require.Zero(t, cursor.Next)

		withdrawals, err := svc.ListWithdrawals(ctx, bob, domain.NewPage(1, 10))
		require.NoError(t, err)
		require.Empty(t, withdrawals)

		w, err := svc.Withdraw(ctx, bob)
		require.NoError(t, err)
		require.Equal(t, uint64(30), w.AmountFor(native))
		require.Equal(t, uint64(30), w.AmountFor(token))

		cursor, err = svc.GetCursor(ctx, bob)
		require.NoError(t, err)
		require.Equal(t, uint64(2), cursor.Next)
	})

	t.Run("batch transfer", func(t *testing.T) {
		expectedAmounts := []domain.AssetAmount{
			{Asset: native, Amount: 30},
			{Asset: token, Amount: 30},
		}
		gateway := &mockBatchGateway{}
		gateway.On("Collect", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil)
		gateway.On("TransferAll", mock.Anything, bob, expectedAmounts).
			Return(errors.New("insufficient custody balance")).Once()
		gateway.On("TransferAll", mock.Anything, bob, expectedAmounts).
			Return(nil)
		svc, _ := newTestService(t, newTestOracle(), gateway)

		deposit(t, svc, token, 100)
		deposit(t, svc, native, 100)

		_, err := svc.Withdraw(ctx, bob)
		require.ErrorIs(t, err, domain.ErrTransferFailure)

		canWithdraw, err := svc.CanWithdraw(ctx, bob)
		require.NoError(t, err)
		require.True(t, canWithdraw)

		w, err := svc.Withdraw(ctx, bob)
		require.NoError(t, err)
		require.Equal(t, expectedAmounts, w.Amounts)
		gateway.AssertNotCalled(t, "TransferNative", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("oracle failure", func(t *testing.T) {
		oracle := &mockOracle{}
		oracle.On("CurrentMarker", mock.Anything).Return(currentMarker, nil)
		oracle.On("WeightAt", mock.Anything, alice, mock.Anything).
			Return(nil, nil, errors.New("snapshot not available")).Once()
		oracle.On("WeightAt", mock.Anything, alice, mock.Anything).
			Return(uint64(5), uint64(10), nil)
		gateway := newTestGateway()
		gateway.On("TransferNative", mock.Anything, alice, uint64(50)).Return(nil)
		svc, _ := newTestService(t, oracle, gateway)

		deposit(t, svc, native, 100)

		_, err := svc.Withdraw(ctx, alice)
		require.ErrorIs(t, err, domain.ErrWeightUnavailable)

		cursor, err := svc.GetCursor(ctx, alice)
		require.NoError(t, err)
		require.Zero(t, cursor.Next)

		w, err := svc.Withdraw(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, uint64(50), w.AmountFor(native))
	})
}

func TestAccountingClosure(t *testing.T) {
	gateway := newTestGateway()
	gateway.On("TransferNative", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc, _ := newTestService(t, newTestOracle(), gateway)

	amounts := []uint64{7, 13, 1, 999, 100}
	var deposited uint64
	for _, amount := range amounts {
		deposit(t, svc, native, amount)
		deposited += amount
	}

	var withdrawn uint64
	for account := range weights {
		w, err := svc.Withdraw(ctx, account)
		require.NoError(t, err)
		withdrawn += w.AmountFor(native)
	}

	// Every share is truncated, so the dust stays in custody and is never
	// larger than one unit per beneficiary per deposit.
	dust := deposited - withdrawn
	require.LessOrEqual(t, withdrawn, deposited)
	require.Less(t, dust, uint64(len(amounts)*len(weights)))

	var expectedDust uint64
	for _, amount := range amounts {
		var paid uint64
		for _, weight := range weights {
			paid += amount * weight / 10
		}
		expectedDust += amount - paid
	}
	require.Equal(t, expectedDust, dust)
}

func TestWithdrawRetryAfterLostReply(t *testing.T) {
	custody := custodygateway.NewGateway()
	gateway := &lostReplyGateway{Gateway: custody, lostReplies: 2}
	svc, _ := newTestService(t, newTestOracle(), gateway)

	deposit(t, svc, native, 100)

	_, err := svc.Withdraw(ctx, alice)
	require.ErrorIs(t, err, domain.ErrTransferFailure)
	require.Equal(t, uint64(50), custody.Paid(alice, native))

	cursor, err := svc.GetCursor(ctx, alice)
	require.NoError(t, err)
	require.Zero(t, cursor.Next)
	require.NotNil(t, cursor.Pending)
	require.Equal(t, uint64(1), cursor.Pending.To)

	// Deposits appended in the meantime don't change the payout being
	// settled, nor can it be skipped anymore.
	id := deposit(t, svc, native, 100)
	err = svc.SkipPayment(ctx, alice, 0)
	require.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	payout, err := svc.PendingPayout(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(1), payout.To)

	_, err = svc.Withdraw(ctx, alice)
	require.ErrorIs(t, err, domain.ErrTransferFailure)

	w, err := svc.Withdraw(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(50), w.AmountFor(native))
	require.Equal(t, uint64(1), w.ToDeposit)
	require.Equal(t, uint64(50), custody.Paid(alice, native))
	require.Equal(t, []string{
		"payout/alice/0-1", "payout/alice/0-1", "payout/alice/0-1",
	}, gateway.keys)

	w, err = svc.Withdraw(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, id, w.FromDeposit)
	require.Equal(t, uint64(50), w.AmountFor(native))
	require.Equal(t, uint64(100), custody.Paid(alice, native))

	cursor, err = svc.GetCursor(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(2), cursor.Next)
	require.Nil(t, cursor.Pending)
}

func TestSequentialTransfersSettlementKeys(t *testing.T) {
	gateway := newTestGateway()
	gateway.On("TransferNative", mock.Anything, bob, uint64(30)).Return(nil)
	gateway.On("TransferToken", mock.Anything, tokenID, bob, uint64(30)).Return(nil)
	svc, _ := newTestService(t, newTestOracle(), gateway)

	deposit(t, svc, native, 100)
	deposit(t, svc, token, 100)

	_, err := svc.Withdraw(ctx, bob)
	require.NoError(t, err)

	keys := make([]string, 0)
	for _, call := range gateway.Calls {
		if call.Method == "Collect" {
			continue
		}
		key, ok := ports.IdempotencyKeyFromContext(call.Arguments.Get(0).(context.Context))
		require.True(t, ok)
		keys = append(keys, key)
	}
	require.Equal(t, []string{
		"payout/bob/0-2/native",
		"payout/bob/0-2/" + token.Key(),
	}, keys)
}

func TestAtomicWithdrawFailureOnBadger(t *testing.T) {
	repoManager, err := dbbadger.NewRepoManager("", nil)
	require.NoError(t, err)
	t.Cleanup(repoManager.Close)

	expectedAmounts := []domain.AssetAmount{
		{Asset: native, Amount: 50},
		{Asset: token, Amount: 50},
	}
	gateway := &mockBatchGateway{}
	gateway.On("Collect", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil)
	gateway.On("TransferAll", mock.Anything, alice, expectedAmounts).
		Return(errors.New("settlement service unavailable")).Once()
	gateway.On("TransferAll", mock.Anything, alice, expectedAmounts).
		Return(nil)
	svc, _ := newTestServiceWithRepo(t, repoManager, newTestOracle(), gateway)

	deposit(t, svc, native, 100)
	deposit(t, svc, token, 100)

	_, err = svc.Withdraw(ctx, alice)
	require.ErrorIs(t, err, domain.ErrTransferFailure)

	cursor, err := svc.GetCursor(ctx, alice)
	require.NoError(t, err)
	require.Zero(t, cursor.Next)

	withdrawals, err := svc.ListWithdrawals(ctx, alice, domain.NewPage(1, 10))
	require.NoError(t, err)
	require.Empty(t, withdrawals)

	w, err := svc.Withdraw(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, expectedAmounts, w.Amounts)

	cursor, err = svc.GetCursor(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(2), cursor.Next)
	require.Nil(t, cursor.Pending)

	withdrawals, err = svc.ListWithdrawals(ctx, alice, domain.NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, withdrawals, 1)
	gateway.AssertNumberOfCalls(t, "TransferAll", 2)
}
