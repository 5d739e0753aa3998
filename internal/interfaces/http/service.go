package httpinterface

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/payoutd/internal/core/application/ledger"
	"github.com/tdex-network/payoutd/internal/core/application/pubsub"
	"github.com/tdex-network/payoutd/internal/core/ports"
	interfaces "github.com/tdex-network/payoutd/internal/interfaces"
	"github.com/tdex-network/payoutd/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

type ServiceOpts struct {
	Port          int
	NoAuth        bool
	AuthSecret    string
	EnableMetrics bool

	LedgerSvc ledger.Service
	// PubSubSvc is optional, webhook routes are registered only if defined.
	PubSubSvc *pubsub.Service
	ACL       ports.AccessControl
}

func (o ServiceOpts) validate() error {
	if o.Port <= 0 || o.Port > 65535 {
		return fmt.Errorf("invalid port %d", o.Port)
	}
	if !o.NoAuth && len(o.AuthSecret) <= 0 {
		return fmt.Errorf("auth secret must not be empty")
	}
	if o.LedgerSvc == nil {
		return fmt.Errorf("ledger app service must not be null")
	}
	if o.ACL == nil {
		return fmt.Errorf("access control must not be null")
	}
	return nil
}

type service struct {
	opts   ServiceOpts
	server *http.Server
}

func NewService(opts ServiceOpts) (interfaces.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %s", err)
	}

	return &service{
		opts: opts,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           NewRouter(opts),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (s *service) Start() error {
	lis, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}

	go func() {
		if err := s.server.Serve(lis); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http interface stopped unexpectedly")
		}
	}()

	log.Infof("http interface listening on %s", s.server.Addr)
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("failed to gracefully stop http interface")
	}
	log.Debug("disabled http interface")
}

// NewRouter returns the handler of every route exposed by the daemon.
func NewRouter(opts ServiceOpts) http.Handler {
	h := &handler{opts.LedgerSvc, opts.PubSubSvc, opts.ACL}

	router := mux.NewRouter()
	router.Use(loggerMiddleware)
	if opts.EnableMetrics {
		router.Use(metrics.HttpMiddleware)
		router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	v1 := router.PathPrefix("/v1").Subrouter()
	v1.Use(authMiddleware([]byte(opts.AuthSecret), opts.NoAuth))

	v1.HandleFunc("/deposits", h.deposit).Methods(http.MethodPost)
	v1.HandleFunc("/deposits", h.listDeposits).Methods(http.MethodGet)
	v1.HandleFunc("/deposits/count", h.depositCount).Methods(http.MethodGet)
	v1.HandleFunc("/deposits/{id:[0-9]+}", h.getDeposit).Methods(http.MethodGet)
	v1.HandleFunc("/deposits/{id:[0-9]+}/overrides", h.getOverrides).Methods(http.MethodGet)
	v1.HandleFunc("/deposits/{id:[0-9]+}/skip", h.skipPayment).Methods(http.MethodPost)
	v1.HandleFunc("/deposits/{id:[0-9]+}/cancel", h.cancelPayment).Methods(http.MethodPost)

	v1.HandleFunc("/withdraw", h.withdraw).Methods(http.MethodPost)
	v1.HandleFunc("/accounts/{account}/can-withdraw", h.canWithdraw).Methods(http.MethodGet)
	v1.HandleFunc("/accounts/{account}/pending", h.pendingPayout).Methods(http.MethodGet)
	v1.HandleFunc("/accounts/{account}/withdrawals", h.listWithdrawals).Methods(http.MethodGet)
	v1.HandleFunc("/accounts/{account}/cursor", h.getCursor).Methods(http.MethodGet)

	if opts.PubSubSvc != nil {
		v1.HandleFunc("/webhooks", h.addWebhook).Methods(http.MethodPost)
		v1.HandleFunc("/webhooks", h.listWebhooks).Methods(http.MethodGet)
		v1.HandleFunc("/webhooks/{id}", h.removeWebhook).Methods(http.MethodDelete)
	}

	return router
}
