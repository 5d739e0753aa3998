package httporacle_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	httporacle "github.com/tdex-network/payoutd/internal/infrastructure/weight-oracle/http"
	"github.com/tdex-network/payoutd/pkg/util"
)

type weightServer struct {
	*httptest.Server
	weightCalls int32
	markerCalls int32
}

func newWeightServer(t *testing.T) *weightServer {
	srv := &weightServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/weight", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&srv.weightCalls, 1)

		var req struct {
			Account string `json:"account"`
			Marker  string `json:"marker"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Account == "unknown" {
			w.WriteHeader(http.StatusNotFound)
			//nolint
			json.NewEncoder(w).Encode(map[string]string{
				"error": "account not found", "code": "not_found",
			})
			return
		}
		//nolint
		json.NewEncoder(w).Encode(map[string]string{
			"weight": "5", "total_weight": "10",
		})
	})
	mux.HandleFunc("/current_marker", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&srv.markerCalls, 1)
		//nolint
		json.NewEncoder(w).Encode(map[string]string{"marker": "42"})
	})
	srv.Server = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestWeightOracle(t *testing.T) {
	server := newWeightServer(t)
	ctx := context.Background()

	oracle, err := httporacle.NewWeightOracle(server.URL+"/", 10, 0)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		weight, total, err := oracle.WeightAt(ctx, "alice", 7)
		require.NoError(t, err)
		require.Equal(t, uint64(5), weight)
		require.Equal(t, uint64(10), total)
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&server.weightCalls))

	_, _, err = oracle.WeightAt(ctx, "alice", 8)
	require.NoError(t, err)
	require.Equal(t, int32(2), atomic.LoadInt32(&server.weightCalls))

	for i := 0; i < 2; i++ {
		marker, err := oracle.CurrentMarker(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(42), marker)
	}
	require.Equal(t, int32(2), atomic.LoadInt32(&server.markerCalls))

	_, _, err = oracle.WeightAt(ctx, "unknown", 7)
	var httpErr *util.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	require.Equal(t, "not_found", httpErr.Code)

	// Failures are never cached.
	_, _, err = oracle.WeightAt(ctx, "unknown", 7)
	require.Error(t, err)
	require.Equal(t, int32(4), atomic.LoadInt32(&server.weightCalls))
}

func TestNewWeightOracle(t *testing.T) {
	_, err := httporacle.NewWeightOracle("", 0, 0)
	require.Error(t, err)
}
