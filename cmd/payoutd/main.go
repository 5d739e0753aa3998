package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/payoutd/internal/config"
	"github.com/tdex-network/payoutd/internal/core/application/ledger"
	"github.com/tdex-network/payoutd/internal/core/application/pubsub"
	"github.com/tdex-network/payoutd/internal/core/ports"
	"github.com/tdex-network/payoutd/internal/infrastructure/acl"
	pubsubinfra "github.com/tdex-network/payoutd/internal/infrastructure/pubsub"
	dbbadger "github.com/tdex-network/payoutd/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/payoutd/internal/infrastructure/storage/db/inmemory"
	custodygateway "github.com/tdex-network/payoutd/internal/infrastructure/transfer-gateway/custody"
	httpgateway "github.com/tdex-network/payoutd/internal/infrastructure/transfer-gateway/http"
	httporacle "github.com/tdex-network/payoutd/internal/infrastructure/weight-oracle/http"
	snapshotoracle "github.com/tdex-network/payoutd/internal/infrastructure/weight-oracle/snapshot"
	httpinterface "github.com/tdex-network/payoutd/internal/interfaces/http"
	"github.com/tdex-network/payoutd/pkg/stats"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to initialize config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	requestTimeout := config.GetDuration(config.RequestTimeoutKey)

	repoManager, err := newRepoManager()
	if err != nil {
		log.WithError(err).Fatal("failed to open ledger db")
	}

	oracle, err := newWeightOracle()
	if err != nil {
		log.WithError(err).Fatal("failed to initialize weight oracle")
	}

	gateway, err := newTransferGateway()
	if err != nil {
		log.WithError(err).Fatal("failed to initialize transfer gateway")
	}

	accessControl := acl.NewAccessControl(
		config.GetList(config.AdminAccountsKey),
		config.GetList(config.DepositorAccountsKey),
	)

	ps, err := pubsubinfra.NewService(
		config.GetDbDir(), log.StandardLogger(), requestTimeout,
	)
	if err != nil {
		log.WithError(err).Fatal("failed to open webhook db")
	}
	pubsubSvc := pubsub.NewService(ps)

	ledgerSvc, err := ledger.NewService(
		repoManager, oracle, gateway, accessControl, pubsubSvc,
	)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize ledger service")
	}

	svc, err := httpinterface.NewService(httpinterface.ServiceOpts{
		Port:          config.GetInt(config.ListeningPortKey),
		NoAuth:        config.GetBool(config.NoAuthKey),
		AuthSecret:    config.GetString(config.AuthSecretKey),
		EnableMetrics: config.GetBool(config.EnableMetricsKey),
		LedgerSvc:     ledgerSvc,
		PubSubSvc:     pubsubSvc,
		ACL:           accessControl,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to initialize http interface")
	}

	ctx, cancel := context.WithCancel(context.Background())
	if interval := config.GetDuration(config.StatsIntervalKey); interval > 0 {
		stats.EnableMemoryStatistics(ctx, interval, config.GetDatadir())
	}

	if err := svc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start http interface")
	}

	if config.GetBool(config.NoAuthKey) {
		log.Warn("auth is disabled, callers are trusted by header")
	}
	log.Info("payout daemon started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down daemon")
	cancel()
	svc.Stop()
	closeStores(repoManager, pubsubSvc)

	log.Info("exiting")
}

func newRepoManager() (ports.RepoManager, error) {
	if config.GetString(config.DBTypeKey) == config.DBInMemory {
		return inmemory.NewRepoManager(), nil
	}
	return dbbadger.NewRepoManager(config.GetDbDir(), log.StandardLogger())
}

func newWeightOracle() (ports.WeightOracle, error) {
	if config.GetString(config.OracleTypeKey) == config.OracleHTTP {
		return httporacle.NewWeightOracle(
			config.GetString(config.OracleUrlKey),
			config.GetInt(config.OracleCacheSizeKey),
			config.GetDuration(config.RequestTimeoutKey),
		)
	}

	log.Warn("using local snapshot weight oracle seeded from config")
	return snapshotoracle.NewOracleFromString(
		config.GetString(config.StaticWeightsKey),
	)
}

func newTransferGateway() (ports.TransferGateway, error) {
	if config.GetString(config.GatewayTypeKey) == config.GatewayHTTP {
		return httpgateway.NewTransferGateway(
			config.GetString(config.GatewayUrlKey),
			config.GetString(config.GatewayAuthTokenKey),
			config.GetInt(config.GatewayRateLimitKey),
			config.GetDuration(config.RequestTimeoutKey),
		)
	}

	log.Warn("using local custody gateway, funds are held in memory only")
	return custodygateway.NewGateway(), nil
}

func closeStores(repoManager ports.RepoManager, pubsubSvc *pubsub.Service) {
	if err := pubsubSvc.Close(); err != nil {
		log.WithError(err).Warn("failed to close webhook db")
	}
	log.Debug("closed webhook db")

	repoManager.Close()
	log.Debug("closed ledger db")
}
