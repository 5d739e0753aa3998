package httpinterface

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/payoutd/internal/core/application/pubsub"
	"github.com/tdex-network/payoutd/internal/core/domain"
	"github.com/tdex-network/payoutd/internal/core/ports"
)

const (
	codeInvalidArgument = "invalid_argument"
	codeUnauthenticated = "unauthenticated"
	codeForbidden       = "forbidden"
	codeNotFound        = "not_found"
	codeConflict        = "conflict"
	codeBadGateway      = "bad_gateway"
	codeUnavailable     = "unavailable"
	codeInternal        = "internal"
)

var (
	errMissingToken = errors.New("missing bearer token")
	errInvalidToken = errors.New("invalid bearer token")
	errMissingBody  = errors.New("malformed request body")
	errInvalidID    = errors.New("deposit id must be a non negative integer")
	errInvalidPage  = errors.New("page and size must be positive integers within range")
)

type errorStatus struct {
	status int
	code   string
}

var errorStatuses = []struct {
	err error
	errorStatus
}{
	{domain.ErrInvalidAmount, errorStatus{http.StatusBadRequest, codeInvalidArgument}},
	{domain.ErrInvalidAsset, errorStatus{http.StatusBadRequest, codeInvalidArgument}},
	{domain.ErrInvalidMarker, errorStatus{http.StatusBadRequest, codeInvalidArgument}},
	{domain.ErrInvalidAccount, errorStatus{http.StatusBadRequest, codeInvalidArgument}},
	{pubsub.ErrUnknownEvent, errorStatus{http.StatusBadRequest, codeInvalidArgument}},
	{ports.ErrInvalidSubscription, errorStatus{http.StatusBadRequest, codeInvalidArgument}},
	{errMissingBody, errorStatus{http.StatusBadRequest, codeInvalidArgument}},
	{errInvalidID, errorStatus{http.StatusBadRequest, codeInvalidArgument}},
	{errInvalidPage, errorStatus{http.StatusBadRequest, codeInvalidArgument}},
	{errMissingToken, errorStatus{http.StatusUnauthorized, codeUnauthenticated}},
	{errInvalidToken, errorStatus{http.StatusUnauthorized, codeUnauthenticated}},
	{domain.ErrUnauthorized, errorStatus{http.StatusForbidden, codeForbidden}},
	{domain.ErrDepositNotFound, errorStatus{http.StatusNotFound, codeNotFound}},
	{ports.ErrSubscriptionNotFound, errorStatus{http.StatusNotFound, codeNotFound}},
	{domain.ErrAlreadyProcessed, errorStatus{http.StatusConflict, codeConflict}},
	{domain.ErrCursorRewind, errorStatus{http.StatusConflict, codeConflict}},
	{domain.ErrSettlementMismatch, errorStatus{http.StatusConflict, codeConflict}},
	{domain.ErrIdempotencyKeyReused, errorStatus{http.StatusConflict, codeConflict}},
	{domain.ErrTransferFailure, errorStatus{http.StatusBadGateway, codeBadGateway}},
	{domain.ErrWeightUnavailable, errorStatus{http.StatusServiceUnavailable, codeUnavailable}},
	{gobreaker.ErrOpenState, errorStatus{http.StatusServiceUnavailable, codeUnavailable}},
	{gobreaker.ErrTooManyRequests, errorStatus{http.StatusServiceUnavailable, codeUnavailable}},
}

func statusOf(err error) errorStatus {
	for _, s := range errorStatuses {
		if errors.Is(err, s.err) {
			return s.errorStatus
		}
	}
	return errorStatus{http.StatusInternalServerError, codeInternal}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	s := statusOf(err)
	if s.status >= http.StatusInternalServerError {
		log.WithError(err).Warnf("%s %s", r.Method, r.URL.Path)
	}
	writeJSON(w, s.status, errorReply{err.Error(), s.code})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("error serializing json response")
	}
}
