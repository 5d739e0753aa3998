package httpgateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tdex-network/payoutd/internal/core/domain"
	"github.com/tdex-network/payoutd/internal/core/ports"
	"github.com/tdex-network/payoutd/pkg/circuitbreaker"
	"github.com/tdex-network/payoutd/pkg/util"
	"go.uber.org/ratelimit"
)

const (
	// DefaultRateLimit is the max number of requests per second.
	DefaultRateLimit = 10
	// DefaultRequestTimeout is the timeout for a complete request.
	DefaultRequestTimeout = 30 * time.Second
	// IdempotencyKeyHeader carries the key the settlement service uses to
	// execute every operation at most once.
	IdempotencyKeyHeader = "Idempotency-Key"
)

type assetAmount struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

type transferRequest struct {
	To      string        `json:"to"`
	Amounts []assetAmount `json:"amounts"`
}

type collectRequest struct {
	From   string `json:"from"`
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

// gateway is a client of a remote settlement service. Every transfer,
// including the single asset ones, goes through the all-or-nothing batch
// endpoint. The idempotency key found in the request context is forwarded
// with the Idempotency-Key header.
type gateway struct {
	baseURL        string
	authToken      string
	httpClient     *http.Client
	requestTimeout time.Duration
	limiter        ratelimit.Limiter
	cb             *gobreaker.CircuitBreaker
}

func NewTransferGateway(
	baseURL, authToken string, rateLimit int, requestTimeout time.Duration,
) (ports.BatchTransferGateway, error) {
	if len(baseURL) <= 0 {
		return nil, fmt.Errorf("missing transfer gateway url")
	}
	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	return &gateway{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		authToken:      authToken,
		httpClient:     &http.Client{},
		requestTimeout: requestTimeout,
		limiter:        ratelimit.New(rateLimit),
		cb:             circuitbreaker.NewCircuitBreaker("transfer-gateway"),
	}, nil
}

func (g *gateway) TransferNative(
	ctx context.Context, to string, amount uint64,
) error {
	return g.TransferAll(ctx, to, []domain.AssetAmount{
		{Asset: domain.NativeAsset(), Amount: amount},
	})
}

func (g *gateway) TransferToken(
	ctx context.Context, token, to string, amount uint64,
) error {
	return g.TransferAll(ctx, to, []domain.AssetAmount{
		{Asset: domain.TokenAsset(token), Amount: amount},
	})
}

func (g *gateway) TransferAll(
	ctx context.Context, to string, amounts []domain.AssetAmount,
) error {
	req := transferRequest{
		To:      to,
		Amounts: make([]assetAmount, 0, len(amounts)),
	}
	for _, a := range amounts {
		req.Amounts = append(req.Amounts, assetAmount{
			Asset:  a.Asset.Key(),
			Amount: strconv.FormatUint(a.Amount, 10),
		})
	}
	return g.doRequest(ctx, "/transfers", req)
}

func (g *gateway) Collect(
	ctx context.Context, from string, asset domain.Asset, amount uint64,
) error {
	req := collectRequest{
		From:   from,
		Asset:  asset.Key(),
		Amount: strconv.FormatUint(amount, 10),
	}
	return g.doRequest(ctx, "/collect", req)
}

func (g *gateway) doRequest(
	ctx context.Context, endpoint string, req interface{},
) error {
	header := make(map[string]string)
	if g.authToken != "" {
		header["Authorization"] = fmt.Sprintf("Bearer %s", g.authToken)
	}
	if key, ok := ports.IdempotencyKeyFromContext(ctx); ok {
		header[IdempotencyKeyHeader] = key
	}

	g.limiter.Take()
	_, err := g.cb.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, g.requestTimeout)
		defer cancel()

		return nil, util.DoJSONRequest(
			ctx, g.httpClient, http.MethodPost, g.baseURL+endpoint,
			req, nil, header,
		)
	})
	return err
}
