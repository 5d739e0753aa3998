package ledger

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/payoutd/internal/core/application/pubsub"
	"github.com/tdex-network/payoutd/internal/core/domain"
	"github.com/tdex-network/payoutd/internal/core/ports"
	"github.com/tdex-network/payoutd/pkg/metrics"
)

// Withdraw pays out everything the beneficiary is entitled to since its last
// withdrawal and moves its cursor to the ledger length observed when the
// payout was computed.
// The payout is reserved on the cursor before transferring and settled only
// after the gateway confirmed the transfer. Until then, every call retries
// the reserved payout with the same settlement key, so that gateways can
// recognize transfers already executed.
func (s *service) Withdraw(
	ctx context.Context, beneficiary string,
) (*domain.Withdrawal, error) {
	if beneficiary == "" {
		return nil, domain.ErrInvalidAccount
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	res, err := s.repoManager.RunTransaction(
		ctx, !readOnlyTx, func(ctx context.Context) (interface{}, error) {
			payout, err := s.nextPayout(ctx, beneficiary)
			if err != nil {
				return nil, err
			}
			if payout.IsEmpty() {
				return payout, nil
			}

			if err := s.repoManager.CursorRepository().UpdateCursor(
				ctx, beneficiary, func(c *domain.Cursor) (*domain.Cursor, error) {
					if err := c.Reserve(*payout); err != nil {
						return nil, err
					}
					return c, nil
				},
			); err != nil {
				return nil, err
			}
			return payout, nil
		},
	)
	if err != nil {
		metrics.Withdrawals.WithLabelValues("failed").Inc()
		return nil, err
	}
	payout := res.(*domain.Payout)

	if err := s.transfer(ctx, payout); err != nil {
		metrics.Withdrawals.WithLabelValues("failed").Inc()
		log.WithError(err).WithFields(log.Fields{
			"beneficiary": beneficiary,
			"from":        payout.From,
			"to":          payout.To,
		}).Warn("payout transfer failed, it will be retried on next withdrawal")
		return nil, err
	}

	res, err = s.repoManager.RunTransaction(
		ctx, !readOnlyTx, func(ctx context.Context) (interface{}, error) {
			if err := s.repoManager.CursorRepository().UpdateCursor(
				ctx, beneficiary, func(c *domain.Cursor) (*domain.Cursor, error) {
					if err := c.Advance(payout.To); err != nil {
						return nil, err
					}
					return c, nil
				},
			); err != nil {
				return nil, err
			}

			withdrawal := domain.NewWithdrawal(*payout)
			if payout.To > payout.From {
				if err := s.repoManager.WithdrawalRepository().AddWithdrawal(
					ctx, *withdrawal,
				); err != nil {
					return nil, err
				}
			}
			return withdrawal, nil
		},
	)
	if err != nil {
		metrics.Withdrawals.WithLabelValues("failed").Inc()
		if !payout.IsEmpty() {
			log.WithError(err).WithFields(log.Fields{
				"beneficiary": beneficiary,
				"from":        payout.From,
				"to":          payout.To,
				"key":         payout.SettlementKey(),
			}).Error("funds transferred but payout not settled, it stays reserved until next withdrawal")
		}
		return nil, err
	}

	withdrawal := res.(*domain.Withdrawal)
	if len(withdrawal.Amounts) == 0 {
		metrics.Withdrawals.WithLabelValues("empty").Inc()
		log.Debugf(
			"nothing to pay for %s, cursor moved to %d",
			beneficiary, withdrawal.ToDeposit,
		)
		return withdrawal, nil
	}

	metrics.Withdrawals.WithLabelValues("ok").Inc()
	for _, a := range withdrawal.Amounts {
		metrics.WithdrawnAmount.WithLabelValues(a.Asset.Key()).Add(float64(a.Amount))
	}
	log.WithFields(log.Fields{
		"id":          withdrawal.ID,
		"beneficiary": beneficiary,
		"from":        withdrawal.FromDeposit,
		"to":          withdrawal.ToDeposit,
	}).Info("withdrawal completed")

	w := *withdrawal
	s.publishEvent(func(svc *pubsub.Service) error {
		return svc.PublishWithdrawalCompletedEvent(w)
	})

	return withdrawal, nil
}

func (s *service) CanWithdraw(
	ctx context.Context, account string,
) (bool, error) {
	payout, err := s.PendingPayout(ctx, account)
	if err != nil {
		return false, err
	}
	return !payout.IsEmpty(), nil
}

// PendingPayout returns what the account would receive by withdrawing now,
// without changing any state. A reserved payout is returned as is.
func (s *service) PendingPayout(
	ctx context.Context, account string,
) (*domain.Payout, error) {
	if account == "" {
		return nil, domain.ErrInvalidAccount
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	res, err := s.repoManager.RunTransaction(
		ctx, readOnlyTx, func(ctx context.Context) (interface{}, error) {
			return s.nextPayout(ctx, account)
		},
	)
	if err != nil {
		return nil, err
	}
	return res.(*domain.Payout), nil
}

func (s *service) ListWithdrawals(
	ctx context.Context, account string, page domain.Page,
) ([]domain.Withdrawal, error) {
	if account == "" {
		return nil, domain.ErrInvalidAccount
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.repoManager.WithdrawalRepository().ListWithdrawalsForBeneficiary(
		ctx, account, page,
	)
}

func (s *service) GetCursor(
	ctx context.Context, account string,
) (*domain.Cursor, error) {
	if account == "" {
		return nil, domain.ErrInvalidAccount
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.repoManager.CursorRepository().GetCursor(ctx, account)
}

// nextPayout returns the payout reserved on the cursor of the beneficiary if
// any, otherwise replays the deposits in [cursor, ledger length). Both bounds
// are read within the same transaction.
func (s *service) nextPayout(
	ctx context.Context, beneficiary string,
) (*domain.Payout, error) {
	cursor, err := s.repoManager.CursorRepository().GetCursor(ctx, beneficiary)
	if err != nil {
		return nil, err
	}
	if cursor.Pending != nil {
		payout := *cursor.Pending
		return &payout, nil
	}

	upper, err := s.repoManager.DepositRepository().CountDeposits(ctx)
	if err != nil {
		return nil, err
	}
	if cursor.Next > upper {
		return nil, fmt.Errorf(
			"cursor of %s (%d) is beyond ledger length %d",
			beneficiary, cursor.Next, upper,
		)
	}

	deposits, err := s.repoManager.DepositRepository().GetDepositsInRange(
		ctx, cursor.Next, upper,
	)
	if err != nil {
		return nil, err
	}
	overrides, err := s.repoManager.OverrideRepository().GetOverrides(
		ctx, beneficiary, cursor.Next, upper,
	)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	payout, err := domain.Replay(
		beneficiary, cursor.Next, deposits, overrides,
		func(marker uint64) (uint64, uint64, error) {
			return s.oracle.WeightAt(ctx, beneficiary, marker)
		},
	)
	metrics.ReplayDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Errors.WithLabelValues("replay").Inc()
		return nil, err
	}
	return payout, nil
}

// transfer moves every non-zero total of the payout to the beneficiary.
// Gateways supporting batches move all assets at once, otherwise assets are
// transferred one by one and the first failure aborts the sequence.
// Every transfer carries a key derived from the settlement key of the payout.
func (s *service) transfer(ctx context.Context, payout *domain.Payout) error {
	if payout.IsEmpty() {
		return nil
	}

	key := payout.SettlementKey()
	if batch, ok := s.gateway.(ports.BatchTransferGateway); ok {
		if err := batch.TransferAll(
			ports.WithIdempotencyKey(ctx, key), payout.Beneficiary, payout.Totals,
		); err != nil {
			metrics.Errors.WithLabelValues("gateway").Inc()
			return fmt.Errorf("%w: %s", domain.ErrTransferFailure, err)
		}
		return nil
	}

	for i, t := range payout.Totals {
		ctx := ports.WithIdempotencyKey(
			ctx, fmt.Sprintf("%s/%s", key, t.Asset.Key()),
		)

		var err error
		if t.Asset.IsNative() {
			err = s.gateway.TransferNative(ctx, payout.Beneficiary, t.Amount)
		} else {
			err = s.gateway.TransferToken(
				ctx, t.Asset.Identifier, payout.Beneficiary, t.Amount,
			)
		}
		if err != nil {
			metrics.Errors.WithLabelValues("gateway").Inc()
			if i > 0 {
				log.Warnf(
					"transfer of %s to %s failed after moving %v",
					t.Asset, payout.Beneficiary, payout.Totals[:i],
				)
			}
			return fmt.Errorf(
				"%w: %d %s: %s", domain.ErrTransferFailure, t.Amount, t.Asset, err,
			)
		}
	}
	return nil
}
