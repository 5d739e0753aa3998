package ledger

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/payoutd/internal/core/application/pubsub"
	"github.com/tdex-network/payoutd/internal/core/domain"
	"github.com/tdex-network/payoutd/internal/core/ports"
	"github.com/tdex-network/payoutd/pkg/metrics"
)

const readOnlyTx = true

// Service is the payout ledger: it holds the deposits, the overrides and the
// cursors of every beneficiary and pays out entitlements on withdraw.
type Service interface {
	Deposit(ctx context.Context, caller string, req DepositRequest) (uint64, error)
	GetDeposit(ctx context.Context, id uint64) (*domain.Deposit, error)
	DepositCount(ctx context.Context) (uint64, error)
	ListDeposits(ctx context.Context, page domain.Page) ([]domain.Deposit, error)

	SkipPayment(ctx context.Context, beneficiary string, depositID uint64) error
	CancelPaymentGlobally(ctx context.Context, caller string, depositID uint64) error
	IsSkipped(ctx context.Context, beneficiary string, depositID uint64) (bool, error)
	IsCancelled(ctx context.Context, depositID uint64) (bool, error)

	Withdraw(ctx context.Context, beneficiary string) (*domain.Withdrawal, error)
	CanWithdraw(ctx context.Context, account string) (bool, error)
	PendingPayout(ctx context.Context, account string) (*domain.Payout, error)
	ListWithdrawals(
		ctx context.Context, account string, page domain.Page,
	) ([]domain.Withdrawal, error)
	GetCursor(ctx context.Context, account string) (*domain.Cursor, error)
}

type service struct {
	// lock serializes every mutation of the ledger, queries hold it in read
	// mode so that they never observe a half-applied withdrawal.
	lock *sync.RWMutex

	repoManager ports.RepoManager
	oracle      ports.WeightOracle
	gateway     ports.TransferGateway
	acl         ports.AccessControl
	pubsub      *pubsub.Service
}

// NewService returns a ledger service. The pubsub service is optional, if
// nil no webhook is ever notified.
func NewService(
	repoManager ports.RepoManager, oracle ports.WeightOracle,
	gateway ports.TransferGateway, acl ports.AccessControl,
	pubsubSvc *pubsub.Service,
) (Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if oracle == nil {
		return nil, fmt.Errorf("missing weight oracle")
	}
	if gateway == nil {
		return nil, fmt.Errorf("missing transfer gateway")
	}
	if acl == nil {
		return nil, fmt.Errorf("missing access control")
	}

	return &service{
		lock:        &sync.RWMutex{},
		repoManager: repoManager,
		oracle:      oracle,
		gateway:     gateway,
		acl:         acl,
		pubsub:      pubsubSvc,
	}, nil
}

func (s *service) publishEvent(publish func(svc *pubsub.Service) error) {
	if s.pubsub == nil {
		return
	}

	go func() {
		if err := publish(s.pubsub); err != nil {
			metrics.Errors.WithLabelValues("pubsub").Inc()
			log.WithError(err).Warn("failed to publish webhook event")
		}
	}()
}
