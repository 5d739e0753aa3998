package httpgateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/payoutd/internal/core/domain"
	"github.com/tdex-network/payoutd/internal/core/ports"
	httpgateway "github.com/tdex-network/payoutd/internal/infrastructure/transfer-gateway/http"
	"github.com/tdex-network/payoutd/pkg/util"
)

const authToken = "secret"

type settlementServer struct {
	*httptest.Server
	lock      sync.Mutex
	transfers []map[string]interface{}
	collects  []map[string]interface{}
}

func newSettlementServer(t *testing.T) *settlementServer {
	srv := &settlementServer{}
	handle := func(list *[]map[string]interface{}) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+authToken {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			var body map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if body["to"] == "rejected" {
				w.WriteHeader(http.StatusUnprocessableEntity)
				//nolint
				json.NewEncoder(w).Encode(map[string]string{
					"error": "recipient rejected",
				})
				return
			}
			srv.lock.Lock()
			*list = append(*list, body)
			srv.lock.Unlock()
			w.WriteHeader(http.StatusOK)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/transfers", handle(&srv.transfers))
	mux.HandleFunc("/collect", handle(&srv.collects))
	srv.Server = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestTransferGateway(t *testing.T) {
	server := newSettlementServer(t)
	ctx := context.Background()

	gateway, err := httpgateway.NewTransferGateway(server.URL, authToken, 0, 0)
	require.NoError(t, err)

	err = gateway.TransferAll(ctx, "alice", []domain.AssetAmount{
		{Asset: domain.NativeAsset(), Amount: 1500},
		{Asset: domain.TokenAsset("tk1"), Amount: 150},
	})
	require.NoError(t, err)
	require.NoError(t, gateway.TransferNative(ctx, "bob", 10))
	require.NoError(t, gateway.TransferToken(ctx, "tk1", "bob", 20))
	require.NoError(t, gateway.Collect(ctx, "carol", domain.TokenAsset("tk1"), 30))

	require.Len(t, server.transfers, 3)
	require.Equal(t, "alice", server.transfers[0]["to"])
	require.Equal(t, []interface{}{
		map[string]interface{}{"asset": "native", "amount": "1500"},
		map[string]interface{}{"asset": "token:tk1", "amount": "150"},
	}, server.transfers[0]["amounts"])
	require.Equal(t, []interface{}{
		map[string]interface{}{"asset": "token:tk1", "amount": "20"},
	}, server.transfers[2]["amounts"])

	require.Len(t, server.collects, 1)
	require.Equal(t, map[string]interface{}{
		"from": "carol", "asset": "token:tk1", "amount": "30",
	}, server.collects[0])

	err = gateway.TransferNative(ctx, "rejected", 10)
	var httpErr *util.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnprocessableEntity, httpErr.StatusCode)
	require.Equal(t, "recipient rejected", httpErr.Msg)
}

func TestUnauthorizedTransferGateway(t *testing.T) {
	server := newSettlementServer(t)

	gateway, err := httpgateway.NewTransferGateway(server.URL, "", 0, 0)
	require.NoError(t, err)

	err = gateway.TransferNative(context.Background(), "alice", 10)
	require.Error(t, err)
	require.Empty(t, server.transfers)
}

// dedupServer executes every keyed transfer once. The reply to the first
// execution of a key is delayed past the client timeout.
type dedupServer struct {
	*httptest.Server
	lock     sync.Mutex
	keys     []string
	executed map[string]int
}

func newDedupServer(t *testing.T, replyDelay time.Duration) *dedupServer {
	srv := &dedupServer{executed: make(map[string]int)}
	srv.Server = httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(httpgateway.IdempotencyKeyHeader)

			srv.lock.Lock()
			srv.keys = append(srv.keys, key)
			_, done := srv.executed[key]
			if !done || key == "" {
				srv.executed[key]++
			}
			srv.lock.Unlock()

			if !done {
				time.Sleep(replyDelay)
			}
			w.WriteHeader(http.StatusOK)
		},
	))
	t.Cleanup(srv.Close)
	return srv
}

func TestTransferGatewayIdempotencyKey(t *testing.T) {
	server := newDedupServer(t, 300*time.Millisecond)
	gateway, err := httpgateway.NewTransferGateway(
		server.URL, authToken, 0, 100*time.Millisecond,
	)
	require.NoError(t, err)

	amounts := []domain.AssetAmount{{Asset: domain.NativeAsset(), Amount: 50}}
	ctx := ports.WithIdempotencyKey(context.Background(), "payout/alice/0-1")

	// The transfer is executed but the reply is lost.
	err = gateway.TransferAll(ctx, "alice", amounts)
	require.Error(t, err)

	err = gateway.TransferAll(ctx, "alice", amounts)
	require.NoError(t, err)

	server.lock.Lock()
	defer server.lock.Unlock()
	require.Equal(t, []string{"payout/alice/0-1", "payout/alice/0-1"}, server.keys)
	require.Equal(t, 1, server.executed["payout/alice/0-1"])
}

func TestCollectIdempotencyKey(t *testing.T) {
	server := newDedupServer(t, 0)
	gateway, err := httpgateway.NewTransferGateway(server.URL, authToken, 0, 0)
	require.NoError(t, err)

	ctx := ports.WithIdempotencyKey(context.Background(), "collect/depositor/k1")
	for i := 0; i < 2; i++ {
		err := gateway.Collect(ctx, "depositor", domain.NativeAsset(), 10)
		require.NoError(t, err)
	}
	err = gateway.Collect(context.Background(), "depositor", domain.NativeAsset(), 10)
	require.NoError(t, err)

	server.lock.Lock()
	defer server.lock.Unlock()
	require.Equal(t, []string{"collect/depositor/k1", "collect/depositor/k1", ""}, server.keys)
	require.Equal(t, 1, server.executed["collect/depositor/k1"])
}
