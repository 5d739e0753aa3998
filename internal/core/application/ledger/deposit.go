package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/payoutd/internal/core/application/pubsub"
	"github.com/tdex-network/payoutd/internal/core/domain"
	"github.com/tdex-network/payoutd/internal/core/ports"
	"github.com/tdex-network/payoutd/pkg/metrics"
)

func (s *service) Deposit(
	ctx context.Context, caller string, req DepositRequest,
) (uint64, error) {
	if !s.acl.IsDepositor(caller) && !s.acl.IsAdmin(caller) {
		return 0, domain.ErrUnauthorized
	}

	deposit, err := domain.NewDeposit(caller, req.Asset, req.Amount, 0)
	if err != nil {
		return 0, err
	}
	deposit.IdempotencyKey = req.IdempotencyKey

	s.lock.Lock()
	defer s.lock.Unlock()

	if req.IdempotencyKey != "" {
		existing, err := s.repoManager.DepositRepository().GetDepositByIdempotencyKey(
			ctx, caller, req.IdempotencyKey,
		)
		if err == nil {
			if !sameDeposit(*existing, req) {
				return 0, fmt.Errorf(
					"%w: key %s refers to deposit %d",
					domain.ErrIdempotencyKeyReused, req.IdempotencyKey, existing.ID,
				)
			}
			log.Debugf(
				"deposit with key %s already appended with id %d",
				req.IdempotencyKey, existing.ID,
			)
			return existing.ID, nil
		}
		if !errors.Is(err, domain.ErrDepositNotFound) {
			return 0, err
		}
	}

	marker, err := s.resolveMarker(ctx, req.Marker)
	if err != nil {
		return 0, err
	}
	deposit.HistoricalMarker = marker

	opKey := req.IdempotencyKey
	if opKey == "" {
		opKey = uuid.New().String()
	}
	if err := s.gateway.Collect(
		ports.WithIdempotencyKey(ctx, fmt.Sprintf("collect/%s/%s", caller, opKey)),
		caller, deposit.Asset, deposit.Amount,
	); err != nil {
		metrics.Errors.WithLabelValues("gateway").Inc()
		return 0, fmt.Errorf("%w: %s", domain.ErrTransferFailure, err)
	}

	res, err := s.repoManager.RunTransaction(
		ctx, !readOnlyTx, func(ctx context.Context) (interface{}, error) {
			return s.repoManager.DepositRepository().AddDeposit(ctx, *deposit)
		},
	)
	if err != nil {
		// Funds collected under a key provided by the depositor stay in
		// custody, the retry with the same key appends the deposit without
		// collecting them again.
		if req.IdempotencyKey != "" {
			log.WithError(err).Warnf(
				"failed to append deposit with key %s, collected funds kept for retry",
				req.IdempotencyKey,
			)
			return 0, err
		}
		s.refund(ctx, *deposit, opKey)
		return 0, err
	}

	deposit.ID = res.(uint64)
	metrics.Deposits.WithLabelValues(deposit.Asset.Kind.String()).Inc()
	log.Debugf(
		"added deposit %d of %d %s at marker %d",
		deposit.ID, deposit.Amount, deposit.Asset, deposit.HistoricalMarker,
	)

	d := *deposit
	s.publishEvent(func(svc *pubsub.Service) error {
		return svc.PublishDepositCreatedEvent(d)
	})

	return deposit.ID, nil
}

func (s *service) GetDeposit(
	ctx context.Context, id uint64,
) (*domain.Deposit, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.repoManager.DepositRepository().GetDeposit(ctx, id)
}

func (s *service) DepositCount(ctx context.Context) (uint64, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.repoManager.DepositRepository().CountDeposits(ctx)
}

func (s *service) ListDeposits(
	ctx context.Context, page domain.Page,
) ([]domain.Deposit, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.repoManager.DepositRepository().ListDeposits(ctx, page)
}

// resolveMarker makes sure the deposit refers to a settled snapshot of the
// oracle. A missing marker is replaced with the latest settled one.
func (s *service) resolveMarker(
	ctx context.Context, requested *uint64,
) (uint64, error) {
	current, err := s.oracle.CurrentMarker(ctx)
	if err != nil {
		metrics.Errors.WithLabelValues("oracle").Inc()
		return 0, fmt.Errorf("%w: %s", domain.ErrWeightUnavailable, err)
	}

	if requested == nil {
		if current == 0 {
			return 0, fmt.Errorf("%w: no snapshot settled yet", domain.ErrInvalidMarker)
		}
		return current - 1, nil
	}
	marker := *requested
	if marker >= current {
		return 0, fmt.Errorf(
			"%w: marker %d is not lower than current marker %d",
			domain.ErrInvalidMarker, marker, current,
		)
	}
	return marker, nil
}

// refund gives back collected funds whose deposit could not be appended.
func (s *service) refund(ctx context.Context, deposit domain.Deposit, opKey string) {
	ctx = ports.WithIdempotencyKey(
		ctx, fmt.Sprintf("refund/%s/%s", deposit.Depositor, opKey),
	)

	var err error
	if deposit.Asset.IsNative() {
		err = s.gateway.TransferNative(ctx, deposit.Depositor, deposit.Amount)
	} else {
		err = s.gateway.TransferToken(
			ctx, deposit.Asset.Identifier, deposit.Depositor, deposit.Amount,
		)
	}
	if err != nil {
		metrics.Errors.WithLabelValues("gateway").Inc()
		log.WithError(err).Errorf(
			"failed to refund %d %s to %s, please do it manually",
			deposit.Amount, deposit.Asset, deposit.Depositor,
		)
	}
}

// sameDeposit returns whether the request describes the given deposit.
func sameDeposit(deposit domain.Deposit, req DepositRequest) bool {
	if deposit.Asset != req.Asset || deposit.Amount != req.Amount {
		return false
	}
	return req.Marker == nil || *req.Marker == deposit.HistoricalMarker
}
