package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
)

const (
	// ListeningPortKey is the port where the HTTP interface will listen on
	ListeningPortKey = "LISTENING_PORT"
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// OracleTypeKey selects the weight oracle, either a remote one or a local
	// snapshot one
	OracleTypeKey = "ORACLE_TYPE"
	// OracleUrlKey is the base url of the remote weight oracle
	OracleUrlKey = "ORACLE_URL"
	// OracleCacheSizeKey is the number of weight query results to cache
	OracleCacheSizeKey = "ORACLE_CACHE_SIZE"
	// StaticWeightsKey are the account:weight pairs to seed the snapshot oracle
	// with, ie. alice:5,bob:3
	StaticWeightsKey = "STATIC_WEIGHTS"
	// GatewayTypeKey selects the transfer gateway, either a remote settlement
	// service or the local custody
	GatewayTypeKey = "GATEWAY_TYPE"
	// GatewayUrlKey is the base url of the remote settlement service
	GatewayUrlKey = "GATEWAY_URL"
	// GatewayAuthTokenKey is the bearer token for the remote settlement service
	GatewayAuthTokenKey = "GATEWAY_AUTH_TOKEN"
	// GatewayRateLimitKey is the max number of requests per second made to the
	// remote settlement service
	GatewayRateLimitKey = "GATEWAY_RATE_LIMIT"
	// AuthSecretKey is the HMAC secret used to verify the JWT of callers
	AuthSecretKey = "AUTH_SECRET"
	// AdminAccountsKey is the comma separated list of admin accounts
	AdminAccountsKey = "ADMIN_ACCOUNTS"
	// DepositorAccountsKey is the comma separated list of accounts allowed to
	// deposit
	DepositorAccountsKey = "DEPOSITOR_ACCOUNTS"
	// NoAuthKey is used to start the daemon without JWT auth. The caller is
	// then taken from the X-Payout-Account header
	NoAuthKey = "NO_AUTH"
	// EnableMetricsKey exposes prometheus metrics at /metrics
	EnableMetricsKey = "ENABLE_METRICS"
	// RequestTimeoutKey is the timeout in seconds of outbound requests to
	// oracle, gateway and webhooks
	RequestTimeoutKey = "REQUEST_TIMEOUT"
	// StatsIntervalKey defines interval in seconds for printing memory
	// statistics, 0 disables them
	StatsIntervalKey = "STATS_INTERVAL"

	DBBadger   = "badger"
	DBInMemory = "inmemory"

	OracleHTTP     = "http"
	OracleSnapshot = "snapshot"

	GatewayHTTP    = "http"
	GatewayCustody = "custody"

	DbLocation = "db"
)

var (
	vip            *viper.Viper
	defaultDatadir = btcutil.AppDataDir("payoutd", false)

	supportedDBTypes = map[string]struct{}{
		DBBadger:   {},
		DBInMemory: {},
	}
	supportedOracleTypes = map[string]struct{}{
		OracleHTTP:     {},
		OracleSnapshot: {},
	}
	supportedGatewayTypes = map[string]struct{}{
		GatewayHTTP:    {},
		GatewayCustody: {},
	}
)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("PAYOUT")
	vip.AutomaticEnv()

	vip.SetDefault(ListeningPortKey, 9090)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, DBBadger)
	vip.SetDefault(OracleTypeKey, OracleSnapshot)
	vip.SetDefault(OracleCacheSizeKey, 10000)
	vip.SetDefault(StaticWeightsKey, "")
	vip.SetDefault(GatewayTypeKey, GatewayCustody)
	vip.SetDefault(GatewayRateLimitKey, 10)
	vip.SetDefault(AdminAccountsKey, "")
	vip.SetDefault(DepositorAccountsKey, "")
	vip.SetDefault(NoAuthKey, false)
	vip.SetDefault(EnableMetricsKey, true)
	vip.SetDefault(RequestTimeoutKey, 10)
	vip.SetDefault(StatsIntervalKey, 0)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

// GetDuration interprets the value of the key as a number of seconds.
func GetDuration(key string) time.Duration {
	return time.Duration(vip.GetInt(key)) * time.Second
}

// GetList returns the non empty items of a comma separated value.
func GetList(key string) []string {
	list := make([]string, 0)
	for _, item := range strings.Split(vip.GetString(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetDbDir returns the directory for the badger db, empty when running in
// memory.
func GetDbDir() string {
	if GetString(DBTypeKey) == DBInMemory {
		return ""
	}
	return filepath.Join(GetDatadir(), DbLocation)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if _, ok := supportedDBTypes[GetString(DBTypeKey)]; !ok {
		return fmt.Errorf("unsupported db type %q", GetString(DBTypeKey))
	}

	oracleType := GetString(OracleTypeKey)
	if _, ok := supportedOracleTypes[oracleType]; !ok {
		return fmt.Errorf("unsupported oracle type %q", oracleType)
	}
	if oracleType == OracleHTTP {
		if err := validateUrl(GetString(OracleUrlKey)); err != nil {
			return fmt.Errorf("invalid oracle url: %s", err)
		}
	}

	gatewayType := GetString(GatewayTypeKey)
	if _, ok := supportedGatewayTypes[gatewayType]; !ok {
		return fmt.Errorf("unsupported gateway type %q", gatewayType)
	}
	if gatewayType == GatewayHTTP {
		if err := validateUrl(GetString(GatewayUrlKey)); err != nil {
			return fmt.Errorf("invalid gateway url: %s", err)
		}
	}

	if !GetBool(NoAuthKey) && len(GetString(AuthSecretKey)) <= 0 {
		return fmt.Errorf("missing auth secret, required unless %s is set", NoAuthKey)
	}

	if len(GetList(AdminAccountsKey)) <= 0 {
		return fmt.Errorf("at least one admin account is required")
	}

	if GetInt(RequestTimeoutKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", RequestTimeoutKey)
	}
	if GetInt(StatsIntervalKey) < 0 {
		return fmt.Errorf("%s must not be negative", StatsIntervalKey)
	}

	return nil
}

func validateUrl(str string) error {
	if len(str) <= 0 {
		return fmt.Errorf("missing url")
	}
	u, err := url.Parse(str)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func initDatadir() error {
	if dbDir := GetDbDir(); dbDir != "" {
		return makeDirectoryIfNotExists(dbDir)
	}
	return makeDirectoryIfNotExists(GetDatadir())
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
