package httporacle

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/payoutd/internal/core/ports"
	"github.com/tdex-network/payoutd/pkg/circuitbreaker"
	"github.com/tdex-network/payoutd/pkg/util"
)

const (
	// DefaultRequestTimeout is the timeout for a complete query.
	DefaultRequestTimeout = 10 * time.Second
	// DefaultCacheSize is the max number of weight query results to cache.
	DefaultCacheSize = 10000
)

type weightCacheKey struct {
	account string
	marker  uint64
}

type weights struct {
	weight      uint64
	totalWeight uint64
}

type weightRequest struct {
	Account string `json:"account"`
	Marker  string `json:"marker"`
}

type weightResponse struct {
	Weight      string `json:"weight"`
	TotalWeight string `json:"total_weight"`
}

type markerResponse struct {
	Marker string `json:"marker"`
}

// oracle is a client of a remote weight oracle exposing a REST interface.
// Settled snapshots never change, therefore weights are cached without
// expiration. The current marker is always fetched.
type oracle struct {
	baseURL        string
	httpClient     *http.Client
	requestTimeout time.Duration
	cache          *lru.Cache
	cb             *gobreaker.CircuitBreaker
}

func NewWeightOracle(
	baseURL string, cacheSize int, requestTimeout time.Duration,
) (ports.WeightOracle, error) {
	if len(baseURL) <= 0 {
		return nil, fmt.Errorf("missing weight oracle url")
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}

	return &oracle{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		httpClient:     &http.Client{},
		requestTimeout: requestTimeout,
		cache:          cache,
		cb:             circuitbreaker.NewCircuitBreaker("weight-oracle"),
	}, nil
}

func (o *oracle) WeightAt(
	ctx context.Context, account string, marker uint64,
) (uint64, uint64, error) {
	key := weightCacheKey{account, marker}
	if v, ok := o.cache.Get(key); ok {
		w := v.(weights)
		return w.weight, w.totalWeight, nil
	}

	req := weightRequest{
		Account: account,
		Marker:  strconv.FormatUint(marker, 10),
	}
	var resp weightResponse
	if err := o.doRequest(ctx, "/weight", req, &resp); err != nil {
		return 0, 0, err
	}

	weight, err := strconv.ParseUint(resp.Weight, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid weight value %q: %w", resp.Weight, err)
	}
	totalWeight, err := strconv.ParseUint(resp.TotalWeight, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf(
			"invalid total weight value %q: %w", resp.TotalWeight, err,
		)
	}

	o.cache.Add(key, weights{weight, totalWeight})
	return weight, totalWeight, nil
}

func (o *oracle) CurrentMarker(ctx context.Context) (uint64, error) {
	var resp markerResponse
	if err := o.doRequest(ctx, "/current_marker", struct{}{}, &resp); err != nil {
		return 0, err
	}

	marker, err := strconv.ParseUint(resp.Marker, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid marker value %q: %w", resp.Marker, err)
	}
	return marker, nil
}

func (o *oracle) doRequest(
	ctx context.Context, endpoint string, req, result interface{},
) error {
	_, err := o.cb.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, o.requestTimeout)
		defer cancel()

		return nil, util.DoJSONRequest(
			ctx, o.httpClient, http.MethodPost, o.baseURL+endpoint,
			req, result, nil,
		)
	})
	return err
}
