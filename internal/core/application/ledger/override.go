package ledger

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/payoutd/internal/core/application/pubsub"
	"github.com/tdex-network/payoutd/internal/core/domain"
	"github.com/tdex-network/payoutd/pkg/metrics"
)

func (s *service) SkipPayment(
	ctx context.Context, beneficiary string, depositID uint64,
) error {
	if beneficiary == "" {
		return domain.ErrInvalidAccount
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	skip := domain.NewSkip(beneficiary, depositID)
	res, err := s.repoManager.RunTransaction(
		ctx, !readOnlyTx, func(ctx context.Context) (interface{}, error) {
			if err := s.checkDepositExists(ctx, depositID); err != nil {
				return nil, err
			}

			cursor, err := s.repoManager.CursorRepository().GetCursor(
				ctx, beneficiary,
			)
			if err != nil {
				return nil, err
			}
			if cursor.IsProcessed(depositID) {
				return nil, domain.ErrAlreadyProcessed
			}

			overrideRepo := s.repoManager.OverrideRepository()
			skipped, err := overrideRepo.IsSkipped(ctx, beneficiary, depositID)
			if err != nil {
				return nil, err
			}
			if skipped {
				return false, nil
			}
			if err := overrideRepo.AddSkip(ctx, skip); err != nil {
				return nil, err
			}
			return true, nil
		},
	)
	if err != nil {
		return err
	}

	if added := res.(bool); added {
		metrics.Overrides.WithLabelValues("skip").Inc()
		log.Debugf("%s skipped payment of deposit %d", beneficiary, depositID)
		s.publishEvent(func(svc *pubsub.Service) error {
			return svc.PublishPaymentSkippedEvent(skip)
		})
	}
	return nil
}

func (s *service) CancelPaymentGlobally(
	ctx context.Context, caller string, depositID uint64,
) error {
	if !s.acl.IsAdmin(caller) {
		return domain.ErrUnauthorized
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	cancellation := domain.NewCancellation(depositID)
	res, err := s.repoManager.RunTransaction(
		ctx, !readOnlyTx, func(ctx context.Context) (interface{}, error) {
			if err := s.checkDepositExists(ctx, depositID); err != nil {
				return nil, err
			}
			return s.repoManager.OverrideRepository().AddCancellation(
				ctx, cancellation,
			)
		},
	)
	if err != nil {
		return err
	}

	if added := res.(bool); added {
		metrics.Overrides.WithLabelValues("cancel").Inc()
		log.Infof("payment of deposit %d cancelled by %s", depositID, caller)
		s.publishEvent(func(svc *pubsub.Service) error {
			return svc.PublishPaymentCancelledEvent(cancellation)
		})
	}
	return nil
}

func (s *service) IsSkipped(
	ctx context.Context, beneficiary string, depositID uint64,
) (bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if err := s.checkDepositExists(ctx, depositID); err != nil {
		return false, err
	}
	return s.repoManager.OverrideRepository().IsSkipped(
		ctx, beneficiary, depositID,
	)
}

func (s *service) IsCancelled(
	ctx context.Context, depositID uint64,
) (bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if err := s.checkDepositExists(ctx, depositID); err != nil {
		return false, err
	}
	return s.repoManager.OverrideRepository().IsCancelled(ctx, depositID)
}

func (s *service) checkDepositExists(ctx context.Context, id uint64) error {
	count, err := s.repoManager.DepositRepository().CountDeposits(ctx)
	if err != nil {
		return err
	}
	if id >= count {
		return domain.ErrDepositNotFound
	}
	return nil
}
