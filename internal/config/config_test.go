package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/payoutd/internal/config"
)

func setEnv(t *testing.T, env map[string]string) {
	for key, value := range env {
		t.Setenv("PAYOUT_"+key, value)
	}
}

func TestInitConfig(t *testing.T) {
	datadir := t.TempDir()
	setEnv(t, map[string]string{
		config.DatadirKey:           datadir,
		config.AuthSecretKey:        "secret",
		config.AdminAccountsKey:     "admin, ops",
		config.DepositorAccountsKey: "treasury,,",
		config.RequestTimeoutKey:    "5",
	})

	require.NoError(t, config.InitConfig())

	require.Equal(t, 9090, config.GetInt(config.ListeningPortKey))
	require.Equal(t, config.DBBadger, config.GetString(config.DBTypeKey))
	require.Equal(t, []string{"admin", "ops"}, config.GetList(config.AdminAccountsKey))
	require.Equal(t, []string{"treasury"}, config.GetList(config.DepositorAccountsKey))
	require.Equal(t, 5*time.Second, config.GetDuration(config.RequestTimeoutKey))

	dbDir := filepath.Join(datadir, config.DbLocation)
	require.Equal(t, dbDir, config.GetDbDir())
	_, err := os.Stat(dbDir)
	require.NoError(t, err)
}

func TestInitConfigInMemory(t *testing.T) {
	setEnv(t, map[string]string{
		config.DatadirKey:       t.TempDir(),
		config.DBTypeKey:        config.DBInMemory,
		config.NoAuthKey:        "true",
		config.AdminAccountsKey: "admin",
	})

	require.NoError(t, config.InitConfig())
	require.Empty(t, config.GetDbDir())
}

func TestFailingInitConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "unsupported_db_type",
			env:  map[string]string{config.DBTypeKey: "postgres"},
		},
		{
			name: "missing_oracle_url",
			env:  map[string]string{config.OracleTypeKey: config.OracleHTTP},
		},
		{
			name: "invalid_gateway_url",
			env: map[string]string{
				config.GatewayTypeKey: config.GatewayHTTP,
				config.GatewayUrlKey:  "ftp://gateway",
			},
		},
		{
			name: "missing_auth_secret",
			env:  map[string]string{config.AuthSecretKey: ""},
		},
		{
			name: "missing_admins",
			env:  map[string]string{config.AdminAccountsKey: " , "},
		},
		{
			name: "invalid_request_timeout",
			env:  map[string]string{config.RequestTimeoutKey: "0"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, map[string]string{
				config.DatadirKey:       t.TempDir(),
				config.AuthSecretKey:    "secret",
				config.AdminAccountsKey: "admin",
			})
			setEnv(t, tt.env)

			require.Error(t, config.InitConfig())
		})
	}
}
