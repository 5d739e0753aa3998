package db_test

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/payoutd/internal/core/domain"
	"github.com/tdex-network/payoutd/internal/core/ports"
	dbbadger "github.com/tdex-network/payoutd/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/payoutd/internal/infrastructure/storage/db/inmemory"
	"github.com/thanhpk/randstr"
)

type repoManager struct {
	Name    string
	Manager ports.RepoManager
}

func createRepoManagers(t *testing.T) []repoManager {
	badgerRepoManager, err := dbbadger.NewRepoManager("", nil)
	require.NoError(t, err)
	t.Cleanup(badgerRepoManager.Close)

	return []repoManager{
		{
			Name:    "badger",
			Manager: badgerRepoManager,
		},
		{
			Name:    "inmemory",
			Manager: inmemory.NewRepoManager(),
		},
	}
}

func makeRandomDeposits(num int) []domain.Deposit {
	deposits := make([]domain.Deposit, 0, num)
	for i := 0; i < num; i++ {
		asset := domain.NativeAsset()
		if i%2 == 1 {
			asset = domain.TokenAsset(randomAccount())
		}
		deposits = append(deposits, domain.Deposit{
			Asset:            asset,
			Amount:           uint64(randomIntInRange(1, 1000000)),
			HistoricalMarker: uint64(randomIntInRange(1, 100)),
			Depositor:        randomAccount(),
			Timestamp:        randomTimestamp(),
		})
	}
	return deposits
}

func randomAccount() string {
	return "0x" + randstr.Hex(20)
}

func randomTimestamp() int64 {
	return int64(randomIntInRange(1000000000, 1662688000))
}

func randomIntInRange(min, max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max-min)))
	return int(n.Int64()) + min
}
